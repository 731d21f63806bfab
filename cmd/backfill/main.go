package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gridalpha/internal/config"
	"gridalpha/internal/data"
	"gridalpha/internal/logger"
	"gridalpha/internal/model"
	"gridalpha/internal/store"
)

// backfill pulls day-ahead curves from the feed into the price store so the
// API can serve past days without calling the feed again.
func main() {
	var (
		cfgPath = flag.String("config", "", "Path to YAML config (optional)")
		dbPath  = flag.String("db", "", "SQLite price store (default: store.path from config)")
		zones   = flag.String("zones", "", "Comma-separated zones (default: every transmission zone)")
		endDate = flag.String("end", "", "Last day to fetch, YYYY-MM-DD (default: today)")
		days    = flag.Int("days", 7, "Number of days to look back")
		force   = flag.Bool("force", false, "Refetch days that are already stored")
	)
	flag.Parse()

	log := logger.Get(logger.InfoLevel)

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatalw("error reading config", "err", err)
		}
	}
	if cfg.Feed.APIKey == "" {
		log.Fatalw("PJM_API_KEY environment variable or feed.api_key is required")
	}

	path := *dbPath
	if path == "" {
		path = cfg.Store.Path
	}
	if path == "" {
		path = "gridalpha.db"
	}
	db, err := store.Open(path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", path, "err", err)
	}
	defer db.Close()
	ps := store.NewPriceStore(db)

	end := data.DayOf(time.Now().In(data.EPT))
	if *endDate != "" {
		if end, err = data.ParseDay(*endDate); err != nil {
			log.Fatalw("invalid --end", "err", err)
		}
	}

	zoneIDs, err := resolveZones(*zones)
	if err != nil {
		log.Fatalw("invalid --zones", "err", err)
	}

	feed := data.NewFeedClient(cfg.Feed.APIKey, cfg.Feed.BaseURL, cfg.Feed.Timeout(), log).
		WithRateLimit(cfg.Feed.RequestsPerSecond, cfg.Feed.Burst)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := end.AddDate(0, 0, -(*days - 1))
	fmt.Printf("Backfilling %d zones from %s to %s into %s\n",
		len(zoneIDs), start.Format("2006-01-02"), end.Format("2006-01-02"), path)

	st := backfill(ctx, feed, ps, zoneIDs, start, end, *force, log)
	fmt.Printf("Stored %d, skipped %d, failed %d\n", st.stored, st.skipped, st.failed)
	if st.failed > 0 {
		os.Exit(1)
	}
}

type stats struct {
	stored, skipped, failed int
}

func backfill(ctx context.Context, feed data.DayAheadFetcher, ps *store.PriceStore, zoneIDs []string, start, end time.Time, force bool, log *logger.Logger) stats {
	var st stats
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		for _, zone := range zoneIDs {
			if ctx.Err() != nil {
				return st
			}
			if !force {
				if _, err := ps.Load(ctx, zone, day); err == nil {
					st.skipped++
					continue
				} else if !errors.Is(err, model.ErrCurveNotFound) {
					log.Warnw("store read failed", "zone", zone, "date", day.Format("2006-01-02"), "err", err)
				}
			}

			curve, err := feed.DayAhead(ctx, zone, day)
			if err != nil {
				st.failed++
				log.Warnw("fetch failed", "zone", zone, "date", day.Format("2006-01-02"), "err", err)
				continue
			}
			curve.Source = model.SourceLive
			if err := ps.Save(ctx, curve); err != nil {
				st.failed++
				log.Warnw("save failed", "zone", zone, "date", day.Format("2006-01-02"), "err", err)
				continue
			}
			st.stored++
			log.Infow("stored curve", "zone", zone, "date", day.Format("2006-01-02"))
		}
	}
	return st
}

func resolveZones(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return data.ZoneIDs(), nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		z, ok := data.LookupZone(p)
		if !ok {
			return nil, fmt.Errorf("unknown zone %q", p)
		}
		out = append(out, z.ID)
	}
	return out, nil
}
