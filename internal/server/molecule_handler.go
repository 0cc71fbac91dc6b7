package server

import (
	"net/http"

	"github.com/dagbolade/molselector/internal/session"
	"github.com/labstack/echo/v4"
)

type MoleculeHandler struct {
	session *session.Session
}

func NewMoleculeHandler(sess *session.Session) *MoleculeHandler {
	return &MoleculeHandler{session: sess}
}

type moleculeRequest struct {
	Path string `query:"path" json:"path" validate:"required"`
}

// Get handles GET /api/molecule?path=
func (h *MoleculeHandler) Get(c echo.Context) error {
	var req moleculeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errorResponse(c, err, "read molecule")
	}

	mol, err := h.session.ReadMolecule(req.Path)
	if err != nil {
		return errorResponse(c, err, "read molecule")
	}

	return c.JSON(http.StatusOK, mol)
}
