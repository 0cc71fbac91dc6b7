package server

import (
	"net/http"

	"github.com/dagbolade/molselector/internal/session"
	"github.com/labstack/echo/v4"
)

type DecisionHandler struct {
	session *session.Session
}

func NewDecisionHandler(sess *session.Session) *DecisionHandler {
	return &DecisionHandler{session: sess}
}

// Decision is checked by the session so that a bad value gets the
// accept/decline message rather than a generic one.
type decisionRequest struct {
	Path     string `json:"path" validate:"required"`
	Decision string `json:"decision"`
}

// Record handles POST /api/decision
func (h *DecisionHandler) Record(c echo.Context) error {
	var req decisionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errorResponse(c, err, "record decision")
	}

	conf, err := h.session.RecordDecision(c.Request().Context(), req.Path, req.Decision)
	if err != nil {
		return errorResponse(c, err, "record decision")
	}

	return c.JSON(http.StatusOK, conf)
}
