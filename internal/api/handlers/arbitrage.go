package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gridalpha/internal/analysis"
	"gridalpha/internal/api/models"
	"gridalpha/internal/data"
	"gridalpha/internal/model"
)

// maxConcurrentFetches bounds parallel curve lookups for a ranking.
const maxConcurrentFetches = 4

// ArbitrageHandler ranks zones by battery arbitrage profit.
type ArbitrageHandler struct {
	deps *Deps
}

func NewArbitrageHandler(d *Deps) *ArbitrageHandler {
	return &ArbitrageHandler{deps: d.withDefaults()}
}

// Rank handles GET /api/v1/battery-arbitrage
func (h *ArbitrageHandler) Rank(c *gin.Context) {
	var q models.ArbitrageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	zones := data.ZoneIDs()
	if q.Zone != "" {
		z, ok := resolveZone(c, q.Zone)
		if !ok {
			return
		}
		zones = []string{z.ID}
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

	curves := make([]model.PriceCurve, len(zones))
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.SetLimit(maxConcurrentFetches)
	for i, zone := range zones {
		i, zone := i, zone
		g.Go(func() error {
			curve, err := h.deps.Curves.Curve(ctx, zone, day)
			if err != nil {
				return fmt.Errorf("zone %s: %w", zone, err)
			}
			curves[i] = curve
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		respondError(c, h.deps.Log, err)
		return
	}

	ranked, summary, err := analysis.RankZones(curves, cfg, h.deps.Thresholds)
	if err != nil {
		respondError(c, h.deps.Log, err)
		return
	}

	resp := models.ArbitrageResponse{
		ID:       uuid.NewString(),
		Date:     day.Format(dayLayout),
		Battery:  cfg,
		Rankings: make([]models.ZoneRanking, 0, len(ranked)),
		Summary:  roundSummary(summary),
	}
	for i, r := range ranked {
		if r.Source == model.SourceDemo {
			resp.IsDemo = true
		}
		p := r.Profit.Rounded()
		resp.Rankings = append(resp.Rankings, models.ZoneRanking{
			Rank:              i + 1,
			Zone:              r.Zone,
			Source:            r.Source,
			GrossProfit:       p.GrossProfit,
			NetProfit:         p.NetProfit,
			CycleCount:        p.CycleCount,
			AvgChargePrice:    model.Round2(r.AvgChargePrice),
			AvgDischargePrice: model.Round2(r.AvgDischargePrice),
			SpreadPerMWh:      model.Round2(r.SpreadPerMWh),
			ProfitPerMWh:      model.Round2(r.PerUnitEnergy),
			Signal:            r.Signal,
			SpreadLabel:       r.SpreadLabel,
			HoursGatedOut:     r.HoursGatedOut,
		})
	}
	h.deps.Log.Infow("zones ranked", "id", resp.ID, "date", resp.Date, "zones", len(ranked), "best", summary.BestZone, "demo", resp.IsDemo)
	c.JSON(http.StatusOK, resp)
}

func roundSummary(s analysis.RankSummary) analysis.RankSummary {
	s.AvgSpread = model.Round2(s.AvgSpread)
	s.AvgNetProfit = model.Round2(s.AvgNetProfit)
	s.BestNetProfit = model.Round2(s.BestNetProfit)
	s.WorstNetProfit = model.Round2(s.WorstNetProfit)
	return s
}
