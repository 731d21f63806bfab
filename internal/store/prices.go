package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gridalpha/internal/model"
)

// ErrNotFound is returned by Load when the day is missing or incomplete.
var ErrNotFound = model.ErrCurveNotFound

const dateLayout = "2006-01-02"

const (
	upsertPriceSQL = `
		INSERT INTO price_curves (zone, date, hour, price, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(zone, date, hour) DO UPDATE SET
			price=excluded.price,
			source=excluded.source,
			updated_at=excluded.updated_at
	`

	selectCurveSQL = `
		SELECT hour, price, source
		FROM price_curves WHERE zone=? AND date=?
		ORDER BY hour
	`

	selectDatesSQL = `
		SELECT date FROM price_curves WHERE zone=?
		GROUP BY date HAVING COUNT(*) = 24
		ORDER BY date
	`
)

// PriceStore persists one row per zone, date and hour.
type PriceStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPriceStore(db *sql.DB) *PriceStore {
	return &PriceStore{db: db, now: time.Now}
}

// Save writes all 24 hours of the curve in one transaction, replacing any
// existing values for that zone and date.
func (s *PriceStore) Save(ctx context.Context, curve model.PriceCurve) error {
	if err := curve.Validate(); err != nil {
		return err
	}
	if curve.Zone == "" {
		return &model.InvalidInputError{Field: "zone", Reason: "is required"}
	}
	source := curve.Source
	if source == "" {
		source = model.SourceInput
	}
	day := curve.Date.Format(dateLayout)
	updated := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for h, p := range curve.Prices {
		if _, err := tx.ExecContext(ctx, upsertPriceSQL, curve.Zone, day, h, p, string(source), updated); err != nil {
			return fmt.Errorf("save %s %s hour %d: %w", curve.Zone, day, h, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}
	return nil
}

// Load returns the stored curve, or ErrNotFound unless all 24 hours exist.
func (s *PriceStore) Load(ctx context.Context, zone string, date time.Time) (model.PriceCurve, error) {
	day := date.Format(dateLayout)
	rows, err := s.db.QueryContext(ctx, selectCurveSQL, zone, day)
	if err != nil {
		return model.PriceCurve{}, fmt.Errorf("query %s %s: %w", zone, day, err)
	}
	defer rows.Close()

	prices := make([]float64, model.HoursPerDay)
	n := 0
	var source string
	for rows.Next() {
		var (
			hour  int
			price float64
		)
		if err := rows.Scan(&hour, &price, &source); err != nil {
			return model.PriceCurve{}, fmt.Errorf("scan %s %s: %w", zone, day, err)
		}
		if hour < 0 || hour >= model.HoursPerDay {
			continue
		}
		prices[hour] = price
		n++
	}
	if err := rows.Err(); err != nil {
		return model.PriceCurve{}, fmt.Errorf("iterate %s %s: %w", zone, day, err)
	}
	if n != model.HoursPerDay {
		return model.PriceCurve{}, fmt.Errorf("%s %s has %d of %d hours: %w", zone, day, n, model.HoursPerDay, ErrNotFound)
	}
	return model.PriceCurve{
		Zone:   zone,
		Date:   date,
		Prices: prices,
		Source: model.Source(source),
	}, nil
}

// ListDates returns the complete days stored for zone, oldest first.
func (s *PriceStore) ListDates(ctx context.Context, zone string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, selectDatesSQL, zone)
	if err != nil {
		return nil, fmt.Errorf("query dates for %s: %w", zone, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
