package autoscan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"updatescan/internal/alarm"
	"updatescan/internal/models"
	"updatescan/internal/notify"
	"updatescan/internal/providers"
	"updatescan/internal/scan"
	"updatescan/internal/store"
	"updatescan/internal/structures"
)

var ErrCycleInProgress = errors.New("autoscan: cycle already in progress")

type SchedulerInterface interface {
	Start(ctx context.Context)
	Stop(ctx context.Context)
	RunCycle(ctx context.Context) (int, error)
	HandleAlarm(ctx context.Context, name string) (int, error)
}

type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	settings providers.SettingsProviderInterface
	store    store.PageStoreInterface
	scanner  scan.ScannerInterface
	notifier notify.NotifierInterface
	alarms   alarm.ServiceInterface
	metrics  providers.MetricsProviderInterface
	clock    providers.Clock

	cycleMu    sync.Mutex
	listenOnce sync.Once
}

// Start arms the autoscan alarm, replacing any alarm left from a previous
// start. The debug flag is read once here and picks the alarm timing.
func (s *Scheduler) Start(ctx context.Context) {
	debug := providers.LoadBool(ctx, s.settings, s.logger, "debug", false)

	timing := s.config.Autoscan.Normal
	if debug {
		timing = s.config.Autoscan.Debug
	}

	s.listenOnce.Do(func() {
		s.alarms.OnAlarm(s.onAlarm)
	})

	s.alarms.Clear(AlarmID)
	s.alarms.Create(AlarmID, alarm.Timing{Delay: timing.Delay, Period: timing.Period})
	s.logger.Infof(providers.TypeApp, "Autoscan started: first cycle in %s, then every %s", timing.Delay, timing.Period)
}

func (s *Scheduler) Stop(_ context.Context) {
	if s.alarms.Clear(AlarmID) {
		s.logger.Infof(providers.TypeApp, "Autoscan stopped")
	}
}

func (s *Scheduler) onAlarm(a alarm.Alarm) {
	n, err := s.HandleAlarm(context.Background(), a.Name)
	switch {
	case errors.Is(err, ErrCycleInProgress):
		s.logger.Warnf(providers.TypeScan, "Skipping autoscan fired at %s: previous cycle still running", a.ScheduledTime.Format(time.RFC3339))
	case err != nil:
		s.logger.Errorf(providers.TypeScan, "Autoscan cycle failed: %s", err)
	case n > 0:
		s.logger.Infof(providers.TypeScan, "Autoscan found %d major changes", n)
	}
}

// HandleAlarm runs a cycle when name is the autoscan alarm and ignores
// every other alarm.
func (s *Scheduler) HandleAlarm(ctx context.Context, name string) (int, error) {
	if name != AlarmID {
		return 0, nil
	}
	return s.RunCycle(ctx)
}

// RunCycle scans the due pages once and returns the number of major changes
// found. Only one cycle runs at a time; an overlapping call returns
// ErrCycleInProgress without touching any page.
func (s *Scheduler) RunCycle(ctx context.Context) (int, error) {
	if !s.cycleMu.TryLock() {
		s.metrics.IncCyclesTotal(providers.CycleSkipped)
		return 0, ErrCycleInProgress
	}
	defer s.cycleMu.Unlock()

	started := time.Now()
	defer func() {
		s.metrics.ObserveCycleDuration(time.Since(started))
	}()

	n, err := s.runCycle(ctx)
	switch {
	case err != nil:
		s.metrics.IncCyclesTotal(providers.CycleFailed)
	case n < 0:
		s.metrics.IncCyclesTotal(providers.CycleIdle)
		n = 0
	default:
		s.metrics.IncCyclesTotal(providers.CycleScanned)
	}
	return n, err
}

// runCycle returns -1 when nothing was due.
func (s *Scheduler) runCycle(ctx context.Context) (int, error) {
	if providers.LoadBool(ctx, s.settings, s.logger, "debug", false) {
		s.logger.Debugf(providers.TypeScan, "Autoscan cycle starting")
	}

	collection, err := s.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("autoscan: load pages: %w", err)
	}

	batch, err := s.selectDuePages(ctx, collection.GetPageList())
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return -1, nil
	}

	s.logger.Infof(providers.TypeScan, "Autoscanning %d pages", len(batch))
	n, err := s.scanner.Scan(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("autoscan: scan: %w", err)
	}

	for state, count := range collection.CountByState() {
		s.metrics.SetPagesTotal(string(state), count)
	}

	// never announce more changes than the user has left unseen
	notifyCount := min(n, len(collection.GetChangedPageList()))
	if notifyCount > 0 {
		s.notifier.ShowNotification(ctx, notifyCount)
		s.metrics.AddNotifications(notifyCount)
	}
	return n, nil
}

// selectDuePages records the autoscan attempt for every due page before the
// scan runs. The recorded times are kept even if the scan then fails.
func (s *Scheduler) selectDuePages(ctx context.Context, pages []*models.Page) ([]*models.Page, error) {
	batch, updates := DueBatch(pages, s.clock())
	if len(batch) == 0 {
		return nil, nil
	}

	if err := s.store.UpdateAutoscanTimes(ctx, updates); err != nil {
		return nil, fmt.Errorf("autoscan: record scan times: %w", err)
	}
	for i, page := range batch {
		page.SetLastAutoscanTime(updates[i].LastAutoscanTime)
	}
	return batch, nil
}

func NewScheduler(
	config *structures.Config,
	logger providers.Logger,
	settings providers.SettingsProviderInterface,
	pageStore store.PageStoreInterface,
	scanner scan.ScannerInterface,
	notifier notify.NotifierInterface,
	alarms alarm.ServiceInterface,
	metrics providers.MetricsProviderInterface,
	clock providers.Clock,
) SchedulerInterface {
	return &Scheduler{
		config:   config,
		logger:   logger,
		settings: settings,
		store:    pageStore,
		scanner:  scanner,
		notifier: notifier,
		alarms:   alarms,
		metrics:  metrics,
		clock:    clock,
	}
}
