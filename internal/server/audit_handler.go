package server

import (
	"net/http"

	"github.com/dagbolade/molselector/internal/audit"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type AuditHandler struct {
	store audit.Store
}

// NewAuditHandler accepts a nil store, in which case the trail reads empty.
func NewAuditHandler(store audit.Store) *AuditHandler {
	return &AuditHandler{store: store}
}

func (h *AuditHandler) GetAuditLog(c echo.Context) error {
	if h.store == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"total":   0,
			"entries": []audit.Entry{},
		})
	}

	ctx := c.Request().Context()

	entries, err := h.store.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Str("remote_addr", c.Request().RemoteAddr).Msg("failed to retrieve audit log")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"detail": "failed to retrieve audit log",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"total":   len(entries),
		"entries": entries,
	})
}
