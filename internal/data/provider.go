package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gridalpha/internal/logger"
	"gridalpha/internal/model"
)

// ErrNoData means no source could supply a curve and demo fallback is off.
var ErrNoData = errors.New("no price data available")

// CurveStore is the persistence the provider reads through and writes back to.
// Load must return an error wrapping model.ErrCurveNotFound when nothing is
// stored.
type CurveStore interface {
	Load(ctx context.Context, zone string, date time.Time) (model.PriceCurve, error)
	Save(ctx context.Context, curve model.PriceCurve) error
}

// DayAheadFetcher is satisfied by *FeedClient.
type DayAheadFetcher interface {
	DayAhead(ctx context.Context, zone string, date time.Time) (model.PriceCurve, error)
}

// RealTimeFetcher is satisfied by *FeedClient.
type RealTimeFetcher interface {
	RealTime(ctx context.Context, zone string, date time.Time) (model.PriceCurve, error)
}

// Provider resolves a zone's curve for a day, trying in order: the store,
// the in-memory cache, the live feed and finally the demo curve.
// Any of Store, Cache and Feed may be nil.
type Provider struct {
	Store        CurveStore
	Cache        *CurveCache
	Feed         DayAheadFetcher
	RealTimeFeed RealTimeFetcher
	DemoFallback bool
	log          *logger.Logger
}

func NewProvider(store CurveStore, cache *CurveCache, feed DayAheadFetcher, demoFallback bool, log *logger.Logger) *Provider {
	if log == nil {
		log = logger.Nop()
	}
	p := &Provider{
		Store:        store,
		Cache:        cache,
		Feed:         feed,
		DemoFallback: demoFallback,
		log:          log.Component("provider"),
	}
	if rt, ok := feed.(RealTimeFetcher); ok {
		p.RealTimeFeed = rt
	}
	return p
}

// Curve returns the curve with Source set to where it came from.
func (p *Provider) Curve(ctx context.Context, zone string, date time.Time) (model.PriceCurve, error) {
	day := DayOf(date)

	if p.Store != nil {
		c, err := p.Store.Load(ctx, zone, day)
		switch {
		case err == nil:
			c.Source = model.SourceStored
			return c, nil
		case !errors.Is(err, model.ErrCurveNotFound):
			p.log.Warnw("store read failed", "zone", zone, "date", day.Format(feedDateLayout), "error", err)
		}
	}

	if c, ok := p.Cache.Get(zone, day); ok {
		c.Source = model.SourceCached
		return c, nil
	}

	var feedErr error
	if p.Feed != nil {
		c, err := p.Feed.DayAhead(ctx, zone, day)
		if err == nil {
			c.Source = model.SourceLive
			p.Cache.Set(c)
			if p.Store != nil {
				if err := p.Store.Save(ctx, c); err != nil {
					p.log.Warnw("store write failed", "zone", zone, "error", err)
				}
			}
			return c, nil
		}
		feedErr = err
		p.log.Warnw("feed unavailable", "zone", zone, "date", day.Format(feedDateLayout), "error", err)
	}

	if !p.DemoFallback {
		if feedErr != nil {
			return model.PriceCurve{}, fmt.Errorf("%w: %w", ErrNoData, feedErr)
		}
		return model.PriceCurve{}, ErrNoData
	}
	p.log.Infow("serving demo curve", "zone", zone, "date", day.Format(feedDateLayout))
	return DemoCurve(zone, day), nil
}

// RealTimeCurve returns the real-time prices published for the day, falling
// back to the demo real-time curve. Real-time prices are neither stored nor
// cached since they are revised until verified.
func (p *Provider) RealTimeCurve(ctx context.Context, zone string, date time.Time) (model.PriceCurve, error) {
	day := DayOf(date)

	var feedErr error
	if p.RealTimeFeed != nil {
		c, err := p.RealTimeFeed.RealTime(ctx, zone, day)
		if err == nil {
			c.Source = model.SourceLive
			return c, nil
		}
		feedErr = err
		p.log.Warnw("real-time feed unavailable", "zone", zone, "date", day.Format(feedDateLayout), "error", err)
	}

	if !p.DemoFallback {
		if feedErr != nil {
			return model.PriceCurve{}, fmt.Errorf("%w: %w", ErrNoData, feedErr)
		}
		return model.PriceCurve{}, ErrNoData
	}
	p.log.Infow("serving demo real-time curve", "zone", zone, "date", day.Format(feedDateLayout))
	return DemoRealTimeCurve(zone, day), nil
}
