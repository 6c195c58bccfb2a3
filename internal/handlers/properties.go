package handlers

import (
	"errors"
	"net/http"

	"rental-manager/internal/hierarchy"
	"rental-manager/internal/identity"
	"rental-manager/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PropertyHandler serves the property, unit and room endpoints
type PropertyHandler struct {
	store    *hierarchy.Store
	identity identity.Provider
	log      *logrus.Entry
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(store *hierarchy.Store, ids identity.Provider, log *logrus.Entry) *PropertyHandler {
	return &PropertyHandler{store: store, identity: ids, log: log}
}

// ownerID returns the signed-in user, or "" when there is none
func ownerID(c *gin.Context, ids identity.Provider) (string, error) {
	if ids == nil {
		return "", identity.ErrNoIdentity
	}
	return ids.CurrentUserID(c.Request.Context())
}

// ListProperties returns the properties matching the current selection
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	properties := h.store.FilteredProperties()
	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"count":      len(properties),
		"selected":   h.store.SelectedIDs(),
	})
}

// GetProperty returns one property with its units and rooms
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	p, ok := h.store.GetPropertyByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProperty creates a property for the signed-in user, or a local-only one
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var draft models.PropertyDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner, err := ownerID(c, h.identity)
	if err != nil && !errors.Is(err, identity.ErrNoIdentity) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	res, err := h.store.CreateProperty(c.Request.Context(), draft, owner)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if res.LocalOnly {
		h.log.WithField("id", res.ID).Info("property created locally")
	}

	p, _ := h.store.GetPropertyByID(res.ID)
	c.JSON(http.StatusCreated, gin.H{
		"id":         res.ID,
		"local_only": res.LocalOnly,
		"property":   p,
	})
}

// UpdateProperty applies a partial update
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	var patch models.PropertyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	if err := patch.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if !h.store.UpdateProperty(id, patch) {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	p, _ := h.store.GetPropertyByID(id)
	c.JSON(http.StatusOK, p)
}

// DeleteProperty removes a property with its units and rooms
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	if !h.store.DeleteProperty(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// AddUnit adds a unit to a property
func (h *PropertyHandler) AddUnit(c *gin.Context) {
	var draft models.UnitDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, ok := h.store.AddUnit(c.Param("id"), draft)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// UpdateUnit applies a partial update to a unit
func (h *PropertyHandler) UpdateUnit(c *gin.Context) {
	var patch models.UnitPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	propertyID, unitID := c.Param("id"), c.Param("unitId")
	if !h.store.UpdateUnit(propertyID, unitID, patch) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unit not found"})
		return
	}
	u, _ := h.store.GetUnit(propertyID, unitID)
	c.JSON(http.StatusOK, u)
}

// DeleteUnit removes a unit with its rooms
func (h *PropertyHandler) DeleteUnit(c *gin.Context) {
	if !h.store.DeleteUnit(c.Param("id"), c.Param("unitId")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unit not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// AddRoom adds a room to a unit
func (h *PropertyHandler) AddRoom(c *gin.Context) {
	var draft models.SubUnitDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, ok := h.store.AddSubUnit(c.Param("id"), c.Param("unitId"), draft)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unit not found"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// AddRoomToProperty adds a room to the property's main unit, creating it if needed
func (h *PropertyHandler) AddRoomToProperty(c *gin.Context) {
	var draft models.SubUnitDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, ok := h.store.AddRoomToSingleUnit(c.Param("id"), draft)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// UpdateRoom applies a partial update to a room
func (h *PropertyHandler) UpdateRoom(c *gin.Context) {
	var patch models.SubUnitPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	if !h.store.UpdateSubUnit(c.Param("id"), c.Param("unitId"), c.Param("roomId"), patch) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteRoom removes a room
func (h *PropertyHandler) DeleteRoom(c *gin.Context) {
	if !h.store.DeleteSubUnit(c.Param("id"), c.Param("unitId"), c.Param("roomId")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
