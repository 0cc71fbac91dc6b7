package server

import (
	"net/http"

	"github.com/dagbolade/molselector/internal/session"
	"github.com/labstack/echo/v4"
)

type HistoryHandler struct {
	session *session.Session
}

func NewHistoryHandler(sess *session.Session) *HistoryHandler {
	return &HistoryHandler{session: sess}
}

// Get handles GET /api/history
func (h *HistoryHandler) Get(c echo.Context) error {
	history, err := h.session.History()
	if err != nil {
		return errorResponse(c, err, "read decision history")
	}

	return c.JSON(http.StatusOK, history)
}
