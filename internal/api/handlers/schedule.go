package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gridalpha/internal/api/models"
	"gridalpha/internal/model"
)

// ScheduleHandler serves schedule computations.
type ScheduleHandler struct {
	deps *Deps
}

func NewScheduleHandler(d *Deps) *ScheduleHandler {
	return &ScheduleHandler{deps: d.withDefaults()}
}

// Compute handles POST /api/v1/schedule for caller-supplied prices.
func (h *ScheduleHandler) Compute(c *gin.Context) {
	var req models.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cfg, err := resolveBattery(h.deps, req.Battery)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}

	curve := model.PriceCurve{Zone: req.Zone, Prices: req.Prices, Source: model.SourceInput}
	if req.Date != "" {
		day, err := resolveDay(req.Date, h.deps.Now)
		if err != nil {
			respondError(c, h.deps.Log, err)
			return
		}
		curve.Date = day
	}

	resp, err := buildSchedule(curve, cfg, h.deps.Thresholds, req.IncludeLedger)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}
	h.deps.Log.Infow("schedule computed", "id", resp.ID, "zone", req.Zone, "net_profit", resp.Profit.NetProfit, "signal", resp.Signal)
	c.JSON(http.StatusOK, resp)
}

// ForZone handles GET /api/v1/zones/:zone/schedule using the zone's curve
// for the requested day.
func (h *ScheduleHandler) ForZone(c *gin.Context) {
	zone, ok := resolveZone(c, c.Param("zone"))
	if !ok {
		return
	}
	var q models.ZoneScheduleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	day, err := resolveDay(q.Date, h.deps.Now)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}
	cfg, err := resolveBattery(h.deps, q.ToConfig())
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}

	curve, err := h.deps.Curves.Curve(c.Request.Context(), zone.ID, day)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}

	resp, err := buildSchedule(curve, cfg, h.deps.Thresholds, q.IncludeLedger)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
