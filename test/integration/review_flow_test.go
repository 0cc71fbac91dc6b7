package integration

import (
	"encoding/csv"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dagbolade/molselector/internal/ledger"
	"github.com/dagbolade/molselector/internal/session"
	"github.com/stretchr/testify/require"
)

type detailResponse struct {
	Detail string `json:"detail"`
}

func TestFolderListingMergesPriorDecisions(t *testing.T) {
	env := SetupTestEnvironment(t)
	resultsPath := filepath.Join(env.Folder, ledger.FileName)
	env.WriteFile(ledger.FileName, "file,decision,timestamp\nalpha.xyz,accept,2024-01-01T00:00:00\n")

	listing := env.SelectFolder()

	require.Equal(t, env.Folder, listing.Folder)
	require.Equal(t, resultsPath, listing.ResultsCSV)
	require.Len(t, listing.Files, 2)

	decisions := map[string]*ledger.Decision{}
	for _, f := range listing.Files {
		decisions[f.Name] = f.Decision
	}
	require.NotNil(t, decisions["alpha.xyz"])
	require.Equal(t, ledger.DecisionAccept, *decisions["alpha.xyz"])
	require.Contains(t, decisions, "Beta.mol2")
	require.Nil(t, decisions["Beta.mol2"])
	require.NotContains(t, decisions, "ignore.txt")
}

func TestMoleculeContent(t *testing.T) {
	env := SetupTestEnvironment(t)
	env.SelectFolder()

	var mol struct {
		Filename string `json:"filename"`
		Format   string `json:"format"`
		Content  string `json:"content"`
	}
	status := env.GetJSON("/api/molecule?path="+url.QueryEscape("alpha.xyz"), &mol)

	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "alpha.xyz", mol.Filename)
	require.Equal(t, "xyz", mol.Format)
	require.Contains(t, mol.Content, "alpha contents")
}

func TestDecisionPersistsToLedger(t *testing.T) {
	env := SetupTestEnvironment(t)
	env.SelectFolder()

	var conf session.Confirmation
	status := env.PostJSON("/api/decision", map[string]string{"path": "Beta.mol2", "decision": "decline"}, &conf)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Beta.mol2", conf.File)
	require.Equal(t, ledger.DecisionDecline, conf.Decision)

	f, err := os.Open(filepath.Join(env.Folder, ledger.FileName))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"file", "decision", "timestamp"}, rows[0])
	require.Len(t, rows, 2)
	require.Equal(t, "Beta.mol2", rows[1][0])
	require.Equal(t, "decline", rows[1][1])
	_, err = time.Parse(time.RFC3339, rows[1][2])
	require.NoError(t, err)

	var listing session.Listing
	require.Equal(t, http.StatusOK, env.GetJSON("/api/folder", &listing))
	require.Equal(t, ledger.DecisionDecline, *listing.Files[1].Decision)

	entries, err := env.WaitForAuditEntries(1, 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, "Beta.mol2", entries[0].File)
	require.Equal(t, env.Folder, entries[0].Folder)
}

func TestInvalidDecisionRejected(t *testing.T) {
	env := SetupTestEnvironment(t)
	env.SelectFolder()

	var resp detailResponse
	status := env.PostJSON("/api/decision", map[string]string{"path": "alpha.xyz", "decision": "maybe"}, &resp)

	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, resp.Detail, "Decision must be")

	_, err := os.Stat(filepath.Join(env.Folder, ledger.FileName))
	require.True(t, errors.Is(err, os.ErrNotExist), "ledger must not be created")
}

func TestPathTraversalBlocked(t *testing.T) {
	env := SetupTestEnvironment(t)
	env.SelectFolder()
	require.NoError(t, os.WriteFile(filepath.Join(env.Outside, "outside.xyz"), []byte("outside"), 0644))

	var resp detailResponse
	status := env.GetJSON("/api/molecule?path="+url.QueryEscape("../outside.xyz"), &resp)

	require.Equal(t, http.StatusForbidden, status)
	require.Contains(t, resp.Detail, "outside the selected folder")
}

func TestRequestsBeforeSelection(t *testing.T) {
	env := SetupTestEnvironment(t)

	var resp detailResponse
	require.Equal(t, http.StatusBadRequest, env.GetJSON("/api/folder", &resp))
	require.Equal(t, "No folder selected", resp.Detail)

	require.Equal(t, http.StatusBadRequest, env.GetJSON("/api/molecule?path=alpha.xyz", &resp))
	require.Equal(t, http.StatusBadRequest, env.PostJSON("/api/decision", map[string]string{"path": "alpha.xyz", "decision": "accept"}, &resp))
	require.Equal(t, http.StatusBadRequest, env.GetJSON("/api/history", &resp))

	var cfg map[string]string
	require.Equal(t, http.StatusOK, env.GetJSON("/api/config", &cfg))
	require.Equal(t, env.Folder, cfg["default_folder"])
}

func TestHistoryAndAuditTrail(t *testing.T) {
	env := SetupTestEnvironment(t)
	env.SelectFolder()

	for _, d := range []string{"accept", "decline", "accept"} {
		status := env.PostJSON("/api/decision", map[string]string{"path": "alpha.xyz", "decision": d}, nil)
		require.Equal(t, http.StatusOK, status)
	}

	var history session.History
	require.Equal(t, http.StatusOK, env.GetJSON("/api/history", &history))
	require.Equal(t, 3, history.Total)
	require.Equal(t, filepath.Join(env.Folder, ledger.FileName), history.ResultsCSV)

	var trail struct {
		Total   int `json:"total"`
		Entries []struct {
			File     string `json:"file"`
			Decision string `json:"decision"`
		} `json:"entries"`
	}
	require.Equal(t, http.StatusOK, env.GetJSON("/api/audit", &trail))
	require.Equal(t, 3, trail.Total)
	require.Equal(t, "accept", trail.Entries[0].Decision)
	require.Equal(t, "decline", trail.Entries[1].Decision)
}
