package handlers

import (
	"errors"
	"net/http"

	"rental-manager/internal/breaker"
	"rental-manager/internal/hierarchy"
	"rental-manager/internal/identity"
	"rental-manager/internal/models"
	"rental-manager/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Indexer receives the full property list after a hydration
type Indexer interface {
	ReplaceAll(props []models.Property) error
}

// Searcher runs search queries
type Searcher interface {
	Search(params search.FilterParams) (*search.SearchResult, error)
}

// BreakerStatus reports the remote circuit breaker state
type BreakerStatus interface {
	GetStatus() breaker.Status
}

// SyncHandler serves status, hydration and bulk push
type SyncHandler struct {
	store    *hierarchy.Store
	identity identity.Provider
	indexer  Indexer
	breaker  BreakerStatus
	log      *logrus.Entry
}

// NewSyncHandler creates a new sync handler. indexer and cb may be nil.
func NewSyncHandler(store *hierarchy.Store, ids identity.Provider, indexer Indexer, cb BreakerStatus, log *logrus.Entry) *SyncHandler {
	return &SyncHandler{store: store, identity: ids, indexer: indexer, breaker: cb, log: log}
}

// GetStatus reports the loading and sync flags
func (h *SyncHandler) GetStatus(c *gin.Context) {
	owner, _ := ownerID(c, h.identity)
	resp := gin.H{
		"status":  h.store.Status(),
		"user_id": owner,
	}
	if h.breaker != nil {
		resp["breaker"] = h.breaker.GetStatus()
	}
	c.JSON(http.StatusOK, resp)
}

// Load replaces local state with the signed-in user's remote tree
func (h *SyncHandler) Load(c *gin.Context) {
	owner, err := ownerID(c, h.identity)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	n, err := h.store.LoadFromRemote(c.Request.Context(), owner)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, hierarchy.ErrNoGateway) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if h.indexer != nil {
		if err := h.indexer.ReplaceAll(h.store.Properties()); err != nil {
			h.log.WithError(err).Warn("reindex after hydration failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"loaded": n,
		"status": h.store.Status(),
	})
}

// Push uploads every local entity as a new remote row.
// Each call creates new rows; nothing is deduplicated.
func (h *SyncHandler) Push(c *gin.Context) {
	owner, err := ownerID(c, h.identity)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	h.log.WithField("owner_id", owner).Info("bulk push requested")
	report, err := h.store.SyncToRemote(c.Request.Context(), owner)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, hierarchy.ErrNoGateway) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}

// SearchHandler serves full-text search over the property index
type SearchHandler struct {
	searcher Searcher
}

func NewSearchHandler(searcher Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

func (h *SearchHandler) Search(c *gin.Context) {
	if h.searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is disabled"})
		return
	}
	var params search.FilterParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.searcher.Search(params)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
