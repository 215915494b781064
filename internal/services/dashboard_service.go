package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/report"

	"golang.org/x/sync/singleflight"
)

// DashboardService serves summarized ledgers from a short lived cache.
// Returned dashboards are shared with the cache and must not be mutated.
type DashboardService struct {
	source   TransactionSource
	cache    cache.Cache[report.Dashboard]
	defaults report.Options
	recorder Recorder
	logger   *applog.Logger

	group singleflight.Group

	mu          sync.Mutex
	generations map[string]uint64
}

func NewDashboardService(source TransactionSource, c cache.Cache[report.Dashboard], defaults report.Options, recorder Recorder, logger *applog.Logger) *DashboardService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = applog.New(applog.Config{Component: applog.ComponentReport})
	}
	if defaults.SeriesWindow <= 0 {
		defaults.SeriesWindow = report.DefaultSeriesWindow
	}
	if defaults.RecentLimit <= 0 {
		defaults.RecentLimit = report.DefaultRecentLimit
	}
	return &DashboardService{
		source:      source,
		cache:       c,
		defaults:    defaults,
		recorder:    recorder,
		logger:      logger,
		generations: make(map[string]uint64),
	}
}

// Defaults returns the options used for zero fields of a request.
func (d *DashboardService) Defaults() report.Options { return d.defaults }

// Dashboard returns the session's summary. Zero option fields take the
// service defaults.
func (d *DashboardService) Dashboard(ctx context.Context, session core.Session, opts report.Options) (report.Dashboard, error) {
	if err := session.Validate(); err != nil {
		return report.Dashboard{}, err
	}
	if opts.SeriesWindow <= 0 {
		opts.SeriesWindow = d.defaults.SeriesWindow
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = d.defaults.RecentLimit
	}

	key := d.key(session.UserID, opts)
	if dash, ok := d.cache.Get(key); ok {
		d.recorder.RecordCache(true)
		return dash, nil
	}
	d.recorder.RecordCache(false)

	v, err, _ := d.group.Do(key, func() (any, error) {
		txs, err := d.source.All(ctx, session)
		if err != nil {
			return report.Dashboard{}, err
		}
		dash, err := report.Summarize(txs, opts)
		if err != nil {
			d.logger.ErrorContext(ctx, "Stored ledger failed validation",
				applog.FieldUserID, session.UserID, applog.FieldError, err)
			return report.Dashboard{}, fmt.Errorf("summarize ledger: %w", err)
		}
		d.cache.Set(key, dash)
		return dash, nil
	})
	if err != nil {
		return report.Dashboard{}, err
	}
	return v.(report.Dashboard), nil
}

// Invalidate drops every cached dashboard of the user. Computations already
// in flight store their result under a retired key, so later reads never
// observe them.
func (d *DashboardService) Invalidate(userID string) {
	d.mu.Lock()
	d.generations[userID]++
	d.mu.Unlock()
	n := d.cache.DeletePrefix(userID + "|")
	d.logger.Debug("Invalidated cached dashboards", applog.FieldUserID, userID, "entries", n)
}

func (d *DashboardService) key(userID string, opts report.Options) string {
	d.mu.Lock()
	gen := d.generations[userID]
	d.mu.Unlock()
	return strings.Join([]string{
		userID,
		strconv.FormatUint(gen, 10),
		strconv.Itoa(opts.SeriesWindow),
		strconv.Itoa(opts.RecentLimit),
	}, "|")
}
