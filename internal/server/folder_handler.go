package server

import (
	"net/http"

	"github.com/dagbolade/molselector/internal/session"
	"github.com/labstack/echo/v4"
)

type FolderHandler struct {
	session       *session.Session
	defaultFolder string
}

func NewFolderHandler(sess *session.Session, defaultFolder string) *FolderHandler {
	return &FolderHandler{
		session:       sess,
		defaultFolder: defaultFolder,
	}
}

type selectFolderRequest struct {
	Folder string `json:"folder" validate:"required"`
}

// GetConfig returns the folder the client should offer first.
func (h *FolderHandler) GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"default_folder": h.defaultFolder,
	})
}

// Select handles POST /api/folder
func (h *FolderHandler) Select(c echo.Context) error {
	var req selectFolderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errorResponse(c, err, "select folder")
	}

	listing, err := h.session.SelectFolder(c.Request().Context(), req.Folder)
	if err != nil {
		return errorResponse(c, err, "select folder")
	}

	return c.JSON(http.StatusOK, listing)
}

// Current handles GET /api/folder
func (h *FolderHandler) Current(c echo.Context) error {
	listing, err := h.session.Snapshot()
	if err != nil {
		return errorResponse(c, err, "read folder listing")
	}

	return c.JSON(http.StatusOK, listing)
}
