package data

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridalpha/internal/model"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func flatCurve(zone string, day time.Time, v float64) model.PriceCurve {
	p := make([]float64, model.HoursPerDay)
	for i := range p {
		p[i] = v
	}
	return model.PriceCurve{Zone: zone, Date: DayOf(day), Prices: p}
}

type memStore struct {
	curves map[string]model.PriceCurve
	saves  int
	err    error
}

func (m *memStore) Load(_ context.Context, zone string, date time.Time) (model.PriceCurve, error) {
	if m.err != nil {
		return model.PriceCurve{}, m.err
	}
	c, ok := m.curves[cacheKey(zone, date)]
	if !ok {
		return model.PriceCurve{}, model.ErrCurveNotFound
	}
	return c, nil
}

func (m *memStore) Save(_ context.Context, c model.PriceCurve) error {
	if m.curves == nil {
		m.curves = map[string]model.PriceCurve{}
	}
	m.curves[cacheKey(c.Zone, c.Date)] = c
	m.saves++
	return nil
}

type stubFeed struct {
	curve model.PriceCurve
	err   error
	calls int
}

func (s *stubFeed) DayAhead(_ context.Context, zone string, date time.Time) (model.PriceCurve, error) {
	s.calls++
	if s.err != nil {
		return model.PriceCurve{}, s.err
	}
	c := s.curve
	c.Zone, c.Date = zone, DayOf(date)
	return c, nil
}

func TestCurveCache_TTL(t *testing.T) {
	c := NewCurveCache(time.Minute)
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	day := DayOf(now)
	c.Set(flatCurve("BGE", day, 40))

	got, ok := c.Get("BGE", day)
	require.True(t, ok)
	got.Prices[0] = -1 // caller mutation must not leak into the cache

	again, ok := c.Get("BGE", day)
	require.True(t, ok)
	assert.Equal(t, 40.0, again.Prices[0])

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("BGE", day)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Prune())
	assert.Equal(t, 0, c.Len())

	var nilCache *CurveCache
	_, ok = nilCache.Get("BGE", day)
	assert.False(t, ok)
	nilCache.Set(flatCurve("BGE", day, 1))
}

func TestDemoCurve_Deterministic(t *testing.T) {
	day := time.Date(2024, 7, 15, 0, 0, 0, 0, EPT)
	a := DemoCurve("PSEG", day)
	b := DemoCurve("PSEG", day.Add(5*time.Hour))
	other := DemoCurve("COMED", day)

	require.NoError(t, a.Validate())
	assert.Equal(t, a.Prices, b.Prices)
	assert.NotEqual(t, a.Prices, other.Prices)
	assert.Equal(t, model.SourceDemo, a.Source)

	// evening peak above overnight trough
	assert.Greater(t, a.Prices[18], a.Prices[3])
}

func TestProvider_FallbackOrder(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 7, 15, 0, 0, 0, 0, EPT)

	t.Run("stored wins", func(t *testing.T) {
		store := &memStore{}
		require.NoError(t, store.Save(ctx, flatCurve("AEP", day, 11)))
		feed := &stubFeed{curve: flatCurve("", day, 99)}
		p := NewProvider(store, NewCurveCache(time.Hour), feed, true, nil)

		c, err := p.Curve(ctx, "AEP", day)
		require.NoError(t, err)
		assert.Equal(t, model.SourceStored, c.Source)
		assert.Equal(t, 11.0, c.Prices[0])
		assert.Equal(t, 0, feed.calls)
	})

	t.Run("live then cached", func(t *testing.T) {
		store := &memStore{}
		feed := &stubFeed{curve: flatCurve("", day, 55)}
		p := NewProvider(nil, NewCurveCache(time.Hour), feed, true, nil)

		c, err := p.Curve(ctx, "AEP", day)
		require.NoError(t, err)
		assert.Equal(t, model.SourceLive, c.Source)

		c, err = p.Curve(ctx, "AEP", day)
		require.NoError(t, err)
		assert.Equal(t, model.SourceCached, c.Source)
		assert.Equal(t, 1, feed.calls)
		assert.Equal(t, 0, store.saves)
	})

	t.Run("live is written back to store", func(t *testing.T) {
		store := &memStore{}
		feed := &stubFeed{curve: flatCurve("", day, 55)}
		p := NewProvider(store, nil, feed, true, nil)

		_, err := p.Curve(ctx, "AEP", day)
		require.NoError(t, err)
		assert.Equal(t, 1, store.saves)
	})

	t.Run("demo when feed fails", func(t *testing.T) {
		store := &memStore{err: errors.New("disk on fire")}
		feed := &stubFeed{err: &FeedError{StatusCode: 500, Code: "API_ERROR", Message: "boom"}}
		p := NewProvider(store, nil, feed, true, nil)

		c, err := p.Curve(ctx, "AEP", day)
		require.NoError(t, err)
		assert.Equal(t, model.SourceDemo, c.Source)
		assert.Equal(t, DemoCurve("AEP", day).Prices, c.Prices)
	})

	t.Run("error when demo disabled", func(t *testing.T) {
		feed := &stubFeed{err: &FeedError{StatusCode: 500, Code: "API_ERROR", Message: "boom"}}
		p := NewProvider(nil, nil, feed, false, nil)

		_, err := p.Curve(ctx, "AEP", day)
		assert.ErrorIs(t, err, ErrNoData)
		var fe *FeedError
		assert.True(t, errors.As(err, &fe))

		_, err = NewProvider(nil, nil, nil, false, nil).Curve(ctx, "AEP", day)
		assert.ErrorIs(t, err, ErrNoData)
	})
}

func TestZones(t *testing.T) {
	all := Zones()
	require.Len(t, all, 24)
	for i, z := range all {
		assert.Equal(t, i+1, z.SortOrder)
	}
	assert.Len(t, ZoneIDs(), 22)

	z, ok := LookupZone("pseg")
	require.True(t, ok)
	assert.Equal(t, "PSEG", z.ID)

	z, ok = LookupZone("west_hub")
	require.True(t, ok)
	assert.Equal(t, ZoneTypeHub, z.Type)

	_, ok = LookupZone("ERCOT")
	assert.False(t, ok)

	all[0].ID = "changed"
	assert.Equal(t, "AEP", Zones()[0].ID)
}

func TestLoadCurveJSON(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"zone":"PSEG","date":"2024-07-15","prices":[1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17,18,19,20,21,22,23,24]}`), 0o644))

	c, err := LoadCurveJSON(good)
	require.NoError(t, err)
	assert.Equal(t, "PSEG", c.Zone)
	assert.Equal(t, model.SourceInput, c.Source)
	assert.Equal(t, 24.0, c.Prices[23])
	assert.Equal(t, 2024, c.Date.Year())

	short := filepath.Join(dir, "short.json")
	require.NoError(t, os.WriteFile(short, []byte(`{"zone":"PSEG","prices":[1,2,3]}`), 0o644))
	_, err = LoadCurveJSON(short)
	var inputErr *model.InvalidInputError
	assert.True(t, errors.As(err, &inputErr))

	grouped, err := LoadCurvesJSON([]string{good, good})
	require.NoError(t, err)
	assert.Len(t, grouped["PSEG"], 2)

	_, err = LoadCurvesJSON([]string{good, short})
	assert.Error(t, err)
}

type stubRealTime struct {
	stubFeed
	rt    model.PriceCurve
	rtErr error
}

func (s *stubRealTime) RealTime(_ context.Context, zone string, date time.Time) (model.PriceCurve, error) {
	if s.rtErr != nil {
		return model.PriceCurve{}, s.rtErr
	}
	c := s.rt
	c.Zone, c.Date = zone, DayOf(date)
	return c, nil
}

func TestProvider_RealTimeCurve(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 7, 15, 0, 0, 0, 0, EPT)

	feed := &stubRealTime{rt: model.PriceCurve{Prices: []float64{41, 42, 43}}}
	p := NewProvider(nil, nil, feed, true, nil)
	require.NotNil(t, p.RealTimeFeed)

	c, err := p.RealTimeCurve(ctx, "AEP", day)
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, c.Source)
	assert.Equal(t, []float64{41, 42, 43}, c.Prices)

	feed.rtErr = &FeedError{StatusCode: 500, Code: "API_ERROR", Message: "boom"}
	c, err = p.RealTimeCurve(ctx, "AEP", day)
	require.NoError(t, err)
	assert.Equal(t, model.SourceDemo, c.Source)
	assert.Equal(t, DemoRealTimeCurve("AEP", day).Prices, c.Prices)

	p.DemoFallback = false
	_, err = p.RealTimeCurve(ctx, "AEP", day)
	assert.ErrorIs(t, err, ErrNoData)

	// a day-ahead only feed has no real-time source
	_, err = NewProvider(nil, nil, &stubFeed{}, false, nil).RealTimeCurve(ctx, "AEP", day)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestDemoRealTimeCurve(t *testing.T) {
	day := time.Date(2024, 7, 15, 0, 0, 0, 0, EPT)
	rt := DemoRealTimeCurve("PSEG", day)
	require.Len(t, rt.Prices, model.HoursPerDay)
	assert.Equal(t, rt, DemoRealTimeCurve("PSEG", day))
	assert.NotEqual(t, DemoCurve("PSEG", day).Prices, rt.Prices)
	assert.Equal(t, model.SourceDemo, rt.Source)
}
