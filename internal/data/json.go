package data

import (
	"encoding/json"
	"fmt"
	"os"

	"gridalpha/internal/model"
)

// curveFile is the on-disk JSON shape for a single day:
//
//	{"zone": "PSEG", "date": "2024-07-15", "prices": [24 numbers]}
type curveFile struct {
	Zone   string    `json:"zone"`
	Date   string    `json:"date"`
	Prices []float64 `json:"prices"`
}

// LoadCurveJSON reads one day of prices. Zone and date are optional in the
// file; a missing date leaves Date zero.
func LoadCurveJSON(path string) (model.PriceCurve, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.PriceCurve{}, err
	}
	return ParseCurveJSON(raw)
}

func ParseCurveJSON(raw []byte) (model.PriceCurve, error) {
	var f curveFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return model.PriceCurve{}, fmt.Errorf("parse curve: %w", err)
	}
	curve := model.PriceCurve{Zone: f.Zone, Prices: f.Prices, Source: model.SourceInput}
	if f.Date != "" {
		d, err := ParseDay(f.Date)
		if err != nil {
			return model.PriceCurve{}, err
		}
		curve.Date = d
	}
	if err := curve.Validate(); err != nil {
		return model.PriceCurve{}, err
	}
	return curve, nil
}

// LoadCurvesJSON loads several files and groups them by zone, keeping the
// input order within each zone.
func LoadCurvesJSON(paths []string) (map[string][]model.PriceCurve, error) {
	out := map[string][]model.PriceCurve{}
	for _, p := range paths {
		c, err := LoadCurveJSON(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out[c.Zone] = append(out[c.Zone], c)
	}
	return out, nil
}
