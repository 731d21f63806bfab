package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gridalpha/internal/api/models"
	"gridalpha/internal/backtest"
	"gridalpha/internal/config"
	"gridalpha/internal/data"
	"gridalpha/internal/logger"
	"gridalpha/internal/model"
	"gridalpha/internal/strategy"
)

// CurveSource is satisfied by *data.Provider.
type CurveSource interface {
	Curve(ctx context.Context, zone string, date time.Time) (model.PriceCurve, error)
}

// RealTimeSource is satisfied by *data.Provider.
type RealTimeSource interface {
	RealTimeCurve(ctx context.Context, zone string, date time.Time) (model.PriceCurve, error)
}

// CurveStore is satisfied by *store.PriceStore.
type CurveStore interface {
	Save(ctx context.Context, curve model.PriceCurve) error
	ListDates(ctx context.Context, zone string) ([]string, error)
}

// Deps is what the handlers share. Store may be nil when persistence is off
// and RealTime may be nil when no real-time prices are wired.
type Deps struct {
	Curves     CurveSource
	RealTime   RealTimeSource
	Store      CurveStore
	Battery    model.BatteryConfig
	BatteryDir string
	Thresholds strategy.Thresholds
	Log        *logger.Logger
	Now        func() time.Time
}

func (d *Deps) withDefaults() *Deps {
	out := *d
	if out.Log == nil {
		out.Log = logger.Nop()
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	if out.Battery == (model.BatteryConfig{}) {
		out.Battery = model.DefaultBatteryConfig()
	}
	if out.Thresholds == (strategy.Thresholds{}) {
		out.Thresholds = strategy.DefaultThresholds()
	}
	return &out
}

const dayLayout = "2006-01-02"

func writeError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondError maps domain errors to HTTP responses.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var inputErr *model.InvalidInputError
	if errors.As(err, &inputErr) {
		writeError(c, http.StatusBadRequest, "INVALID_INPUT", inputErr.Error(), map[string]interface{}{
			"field": inputErr.Field,
		})
		return
	}

	var feedErr *data.FeedError
	if errors.Is(err, data.ErrNoData) || errors.As(err, &feedErr) {
		details := map[string]interface{}{}
		if feedErr != nil {
			details["feed_code"] = feedErr.Code
			details["status_code"] = feedErr.StatusCode
			if feedErr.RetryAfter != "" {
				details["retry_after"] = feedErr.RetryAfter
			}
		}
		writeError(c, http.StatusBadGateway, "FEED_UNAVAILABLE", err.Error(), details)
		return
	}

	log.Errorw("request failed", "path", c.FullPath(), "error", err)
	writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
}

func bindError(c *gin.Context, err error) {
	writeError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
}

// resolveZone writes a 404 and returns false for unknown zones.
func resolveZone(c *gin.Context, id string) (data.Zone, bool) {
	z, ok := data.LookupZone(id)
	if !ok {
		writeError(c, http.StatusNotFound, "ZONE_NOT_FOUND", "unknown zone: "+id, map[string]interface{}{
			"zone": id,
		})
		return data.Zone{}, false
	}
	return z, true
}

// resolveDay parses YYYY-MM-DD, defaulting to today on the market clock.
func resolveDay(s string, now func() time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return data.DayOf(now().In(data.EPT)), nil
	}
	d, err := data.ParseDay(s)
	if err != nil {
		return time.Time{}, &model.InvalidInputError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	return d, nil
}

// resolveBattery layers defaults, an optional preset file and explicit
// overrides, then validates the result.
func resolveBattery(d *Deps, req models.BatteryConfig) (model.BatteryConfig, error) {
	base := config.BatteryConfig{
		BatterySize: d.Battery.BatterySize,
		Duration:    d.Battery.Duration,
		Efficiency:  d.Battery.Efficiency,
		CyclingCost: config.Float(d.Battery.CyclingCost),
	}
	if req.BatteryFile != "" {
		// presets are addressed by name only
		name := filepath.Base(req.BatteryFile)
		if !strings.HasSuffix(name, ".yaml") {
			name += ".yaml"
		}
		preset, err := config.LoadBatteryFile(filepath.Join(d.BatteryDir, name))
		if err != nil {
			return model.BatteryConfig{}, &model.InvalidInputError{Field: "battery_file", Reason: "unknown battery preset " + req.BatteryFile}
		}
		base = config.MergeBattery(base, preset)
	}
	merged := config.MergeBattery(base, config.BatteryConfig{
		BatterySize: req.BatterySize,
		Duration:    req.Duration,
		Efficiency:  req.Efficiency,
		CyclingCost: req.CyclingCost,
	}).ToModel()
	if err := merged.Validate(); err != nil {
		return model.BatteryConfig{}, err
	}
	return merged, nil
}

// buildSchedule runs the core for one curve and shapes the response.
func buildSchedule(curve model.PriceCurve, cfg model.BatteryConfig, th strategy.Thresholds, includeLedger bool) (models.ScheduleResponse, error) {
	schedule, err := strategy.ComputeSchedule(curve.Prices, cfg)
	if err != nil {
		return models.ScheduleResponse{}, err
	}
	profit, err := strategy.ComputeDailyProfit(schedule, cfg)
	if err != nil {
		return models.ScheduleResponse{}, err
	}
	perUnit := profit.PerUnitEnergy(cfg)
	signal := strategy.ClassifyArbitrageSignal(perUnit, th)

	resp := models.ScheduleResponse{
		ID:           uuid.NewString(),
		Zone:         curve.Zone,
		Source:       curve.Source,
		Battery:      cfg,
		Schedule:     schedule,
		Profit:       profit.Rounded(),
		ProfitPerMWh: model.Round2(perUnit),
		Signal:       signal,
		SpreadLabel:  signal.SpreadLabel(),
	}
	if !curve.Date.IsZero() {
		resp.Date = curve.Date.Format(dayLayout)
	}
	if includeLedger {
		res, err := backtest.New().ReplaySchedule(curve, schedule, cfg)
		if err != nil {
			return models.ScheduleResponse{}, err
		}
		resp.Ledger = res.Ledger
	}
	return resp, nil
}
