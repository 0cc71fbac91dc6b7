package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dagbolade/molselector/internal/audit"
	"github.com/dagbolade/molselector/internal/server"
	"github.com/dagbolade/molselector/internal/session"
	"github.com/stretchr/testify/require"
)

// TestEnvironment represents a complete test environment
type TestEnvironment struct {
	Server     *server.Server
	Session    *session.Session
	AuditStore audit.Store
	Folder     string
	Outside    string
	DBPath     string
	HTTPServer *httptest.Server
	t          *testing.T
}

// SetupTestEnvironment creates a molecule folder, an audit store and a
// running HTTP server around them
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	tmpDir := t.TempDir()
	folder := filepath.Join(tmpDir, "molecules")
	dbPath := filepath.Join(tmpDir, "db", "audit.db")

	require.NoError(t, os.MkdirAll(folder, 0755))

	auditStore, err := audit.NewSQLiteStore(dbPath)
	require.NoError(t, err)

	env := &TestEnvironment{
		Session:    session.New(auditStore),
		AuditStore: auditStore,
		Folder:     folder,
		Outside:    tmpDir,
		DBPath:     dbPath,
		t:          t,
	}

	env.WriteFile("alpha.xyz", "alpha contents\n")
	env.WriteFile("Beta.mol2", "beta contents\n")
	env.WriteFile("ignore.txt", "should be ignored\n")

	env.Server = server.New(server.Config{
		Port:            8080,
		ReadTimeout:     30,
		WriteTimeout:    30,
		ShutdownTimeout: 5,
		DefaultFolder:   folder,
	}, env.Session, auditStore)
	env.HTTPServer = httptest.NewServer(env.Server.Handler())

	t.Cleanup(func() {
		env.HTTPServer.Close()
		env.AuditStore.Close()
	})

	return env
}

// WriteFile creates name inside the molecule folder
func (e *TestEnvironment) WriteFile(name, content string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(filepath.Join(e.Folder, name), []byte(content), 0644))
}

// BaseURL returns the base URL of the test HTTP server
func (e *TestEnvironment) BaseURL() string {
	return e.HTTPServer.URL
}

// HTTPClient returns a configured HTTP client for testing
func (e *TestEnvironment) HTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
	}
}

// PostJSON sends body to path and decodes the JSON response into out
func (e *TestEnvironment) PostJSON(path string, body interface{}, out interface{}) int {
	e.t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(e.t, err)

	resp, err := e.HTTPClient().Post(e.BaseURL()+path, "application/json", bytes.NewReader(payload))
	require.NoError(e.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// GetJSON fetches path and decodes the JSON response into out
func (e *TestEnvironment) GetJSON(path string, out interface{}) int {
	e.t.Helper()

	resp, err := e.HTTPClient().Get(e.BaseURL() + path)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// SelectFolder selects the environment's molecule folder over HTTP
func (e *TestEnvironment) SelectFolder() session.Listing {
	e.t.Helper()

	var listing session.Listing
	status := e.PostJSON("/api/folder", map[string]string{"folder": e.Folder}, &listing)
	require.Equal(e.t, http.StatusOK, status)
	return listing
}

// WaitForAuditEntries waits for audit entries to be written
func (e *TestEnvironment) WaitForAuditEntries(minCount int, timeout time.Duration) ([]audit.Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		entries, err := e.AuditStore.GetAll(context.Background())
		if err != nil {
			return nil, err
		}
		if len(entries) >= minCount {
			return entries, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timeout waiting for audit entries: have %d, want %d", len(entries), minCount)
		case <-ticker.C:
		}
	}
}
