package handlers

import (
	"net/http"

	"rental-manager/internal/hierarchy"

	"github.com/gin-gonic/gin"
)

// SelectionHandler manages the property filter set
type SelectionHandler struct {
	store *hierarchy.Store
}

func NewSelectionHandler(store *hierarchy.Store) *SelectionHandler {
	return &SelectionHandler{store: store}
}

func (h *SelectionHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ids": h.store.SelectedIDs()})
}

// Replace sets the selection to the given ids
func (h *SelectionHandler) Replace(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.store.SetSelectedIDs(req.IDs)
	c.JSON(http.StatusOK, gin.H{"ids": h.store.SelectedIDs()})
}

func (h *SelectionHandler) Toggle(c *gin.Context) {
	selected := h.store.ToggleSelected(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"selected": selected,
		"ids":      h.store.SelectedIDs(),
	})
}

func (h *SelectionHandler) Clear(c *gin.Context) {
	h.store.ClearSelection()
	c.Status(http.StatusNoContent)
}
