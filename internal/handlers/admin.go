package handlers

import (
	"context"
	"net/http"
	"strconv"

	"rental-manager/internal/hierarchy"
	"rental-manager/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Runner runs a hydration and reindex pass
type Runner interface {
	RunNow(ctx context.Context) error
}

// AdminHandler handles admin-related requests
type AdminHandler struct {
	store     *hierarchy.Store
	scheduler Runner
	log       *logrus.Entry
}

// NewAdminHandler creates a new admin handler. sched may be nil.
func NewAdminHandler(store *hierarchy.Store, sched Runner, log *logrus.Entry) *AdminHandler {
	return &AdminHandler{
		store:     store,
		scheduler: sched,
		log:       log,
	}
}

// GetStats returns counts over the local tree
func (h *AdminHandler) GetStats(c *gin.Context) {
	properties := h.store.Properties()

	byStatus := map[models.PropertyStatus]int{}
	byType := map[models.PropertyType]int{}
	var units, rooms, occupied, pending int
	for _, p := range properties {
		byStatus[p.Status]++
		byType[p.Type]++
		if !p.Sync.IsSynced() {
			pending++
		}
		for _, u := range p.Units {
			units++
			if u.Occupied {
				occupied++
			}
			if !u.Sync.IsSynced() {
				pending++
			}
			for _, s := range u.SubUnits {
				rooms++
				if !s.Sync.IsSynced() {
					pending++
				}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": gin.H{
			"total":     len(properties),
			"by_status": byStatus,
			"by_type":   byType,
		},
		"units": gin.H{
			"total":    units,
			"occupied": occupied,
			"vacant":   units - occupied,
		},
		"rooms":       rooms,
		"local_only":  pending,
		"sync":        h.store.Status(),
		"error_count": len(h.store.Errors()),
	})
}

// GetErrors returns recent remote failures, newest first
func (h *AdminHandler) GetErrors(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	errs := h.store.Errors()
	out := make([]string, 0, len(errs))
	for i := len(errs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, errs[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"errors": out,
		"count":  len(out),
	})
}

// TriggerHydration starts a hydration and reindex pass in the background
func (h *AdminHandler) TriggerHydration(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Scheduler not available",
		})
		return
	}

	h.log.Info("manual hydration requested")

	// Run in goroutine to avoid blocking
	go func() {
		if err := h.scheduler.RunNow(context.Background()); err != nil {
			h.log.WithError(err).Warn("manual hydration failed")
		} else {
			h.log.Info("manual hydration completed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Hydration started",
		"status":  "running",
	})
}

// GetRentDistribution buckets unit rents
func (h *AdminHandler) GetRentDistribution(c *gin.Context) {
	type RentRange struct {
		RangeLabel string  `json:"range_label"`
		MinRent    float64 `json:"min_rent"`
		MaxRent    float64 `json:"max_rent"`
		Count      int     `json:"count"`
	}

	ranges := []RentRange{
		{RangeLabel: "< 500", MinRent: 0, MaxRent: 500},
		{RangeLabel: "500-1000", MinRent: 500, MaxRent: 1000},
		{RangeLabel: "1000-1500", MinRent: 1000, MaxRent: 1500},
		{RangeLabel: "1500-2500", MinRent: 1500, MaxRent: 2500},
		{RangeLabel: "2500+", MinRent: 2500, MaxRent: 1e12},
	}

	unpriced := 0
	for _, p := range h.store.Properties() {
		for _, u := range p.Units {
			if u.RentPrice == nil {
				unpriced++
				continue
			}
			for i := range ranges {
				if *u.RentPrice >= ranges[i].MinRent && *u.RentPrice < ranges[i].MaxRent {
					ranges[i].Count++
					break
				}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"rent_distribution": ranges,
		"unpriced":          unpriced,
	})
}
