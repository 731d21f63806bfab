package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gridalpha/internal/analysis"
	"gridalpha/internal/api/models"
	"gridalpha/internal/data"
	"gridalpha/internal/model"
)

// Reference figures shown alongside the dashboard numbers.
const (
	queueSuccessRatePct   = 17.4
	solarELCCPct          = 19.0
	staleThresholdMinutes = 90
	downThresholdMinutes  = 180
)

// ZoneHandler serves zone reference data and per-zone prices.
type ZoneHandler struct {
	deps *Deps
}

func NewZoneHandler(d *Deps) *ZoneHandler {
	return &ZoneHandler{deps: d.withDefaults()}
}

// ListZones handles GET /api/v1/zones
func (h *ZoneHandler) ListZones(c *gin.Context) {
	c.JSON(http.StatusOK, models.ZonesResponse{Zones: data.Zones()})
}

// Assumptions handles GET /api/v1/assumptions
func (h *ZoneHandler) Assumptions(c *gin.Context) {
	b := h.deps.Battery
	c.JSON(http.StatusOK, models.AssumptionsResponse{
		CyclingHurdlePerMWh:     b.CyclingCost,
		DefaultEfficiencyPct:    model.Round2(b.Efficiency * 100),
		DefaultDurationHours:    b.Duration,
		DefaultBatterySizeMW:    b.BatterySize,
		DefaultHeatRateMMBtuMWh: analysis.DefaultHeatRate,
		DefaultGasPriceMMBtu:    analysis.DefaultGasPrice,
		QueueSuccessRatePct:     queueSuccessRatePct,
		SolarELCCPct:            solarELCCPct,
		StaleThresholdMinutes:   staleThresholdMinutes,
		DownThresholdMinutes:    downThresholdMinutes,
		SignalStrongAbove:       h.deps.Thresholds.Strong,
		SignalModerateAbove:     h.deps.Thresholds.Moderate,
	})
}

// PutPrices handles PUT /api/v1/zones/:zone/prices
func (h *ZoneHandler) PutPrices(c *gin.Context) {
	zone, ok := resolveZone(c, c.Param("zone"))
	if !ok {
		return
	}
	if h.deps.Store == nil {
		writeError(c, http.StatusServiceUnavailable, "STORE_DISABLED", "price storage is not configured", nil)
		return
	}
	var req models.PutPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	day, err := resolveDay(req.Date, h.deps.Now)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}

	curve := model.PriceCurve{Zone: zone.ID, Date: day, Prices: req.Prices, Source: model.SourceInput}
	if err := h.deps.Store.Save(c.Request.Context(), curve); err != nil {
		respondError(c, h.deps.Log, err)
		return
	}
	dates, err := h.deps.Store.ListDates(c.Request.Context(), zone.ID)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}
	h.deps.Log.Infow("prices stored", "zone", zone.ID, "date", day.Format(dayLayout))
	c.JSON(http.StatusOK, models.PutPricesResponse{
		Zone:        zone.ID,
		Date:        day.Format(dayLayout),
		Stored:      len(curve.Prices),
		StoredDates: dates,
	})
}

// SparkSpread handles GET /api/v1/zones/:zone/spark-spread
func (h *ZoneHandler) SparkSpread(c *gin.Context) {
	zone, ok := resolveZone(c, c.Param("zone"))
	if !ok {
		return
	}
	var q models.SparkSpreadQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	day, err := resolveDay(q.Date, h.deps.Now)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}
	gas, heatRate := analysis.DefaultGasPrice, analysis.DefaultHeatRate
	if q.GasPrice != nil {
		gas = *q.GasPrice
	}
	if q.HeatRate != nil {
		heatRate = *q.HeatRate
	}

	curve, err := h.deps.Curves.Curve(c.Request.Context(), zone.ID, day)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}
	summary, err := analysis.CurveSparkSpread(curve, gas, heatRate, h.deps.Thresholds)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}
	c.JSON(http.StatusOK, models.SparkSpreadResponse{
		SparkSummary: summary,
		Date:         day.Format(dayLayout),
		Source:       curve.Source,
	})
}

// Convergence handles GET /api/v1/zones/:zone/convergence. The day defaults
// to yesterday on the market clock, the latest day with a full real-time
// record.
func (h *ZoneHandler) Convergence(c *gin.Context) {
	zone, ok := resolveZone(c, c.Param("zone"))
	if !ok {
		return
	}
	if h.deps.RealTime == nil {
		writeError(c, http.StatusServiceUnavailable, "REALTIME_DISABLED", "real-time prices are not configured", nil)
		return
	}
	var q models.ConvergenceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	yesterday := func() time.Time { return h.deps.Now().In(data.EPT).AddDate(0, 0, -1) }
	day, err := resolveDay(q.Date, yesterday)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}

	ctx := c.Request.Context()
	da, err := h.deps.Curves.Curve(ctx, zone.ID, day)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}
	rt, err := h.deps.RealTime.RealTimeCurve(ctx, zone.ID, day)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}
	summary, err := analysis.Convergence(da, rt)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}
	summary.Zone = zone.ID

	h.deps.Log.Infow("convergence",
		"zone", zone.ID,
		"date", day.Format(dayLayout),
		"hours", summary.TotalHours,
		"avg_spread", summary.AvgSpread,
		"signal", summary.DominantSignal,
	)
	c.JSON(http.StatusOK, models.ConvergenceResponse{
		ConvergenceSummary: summary,
		Date:               day.Format(dayLayout),
		DASource:           da.Source,
		RTSource:           rt.Source,
	})
}
