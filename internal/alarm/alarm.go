// Package alarm provides named, repeating timers that deliver to registered
// listeners.
package alarm

import (
	"sync"
	"time"
	"updatescan/internal/providers"

	"github.com/roylee0704/gron"
)

// Timing configures a repeating alarm: the first fire happens Delay after
// creation and every Period after that.
type Timing struct {
	Delay  time.Duration
	Period time.Duration
}

// Alarm is what a listener receives when a timer fires.
type Alarm struct {
	Name          string
	ScheduledTime time.Time
}

type Listener func(Alarm)

type ServiceInterface interface {
	// Create replaces any alarm with the same name.
	Create(name string, timing Timing)
	// Clear reports whether an alarm with that name existed.
	Clear(name string) bool
	OnAlarm(listener Listener)
	StopAll()
}

type Service struct {
	logger    providers.Logger
	mu        sync.Mutex
	alarms    map[string]*gron.Cron
	listeners []Listener
}

func NewService(logger providers.Logger) ServiceInterface {
	return &Service{
		logger: logger,
		alarms: make(map[string]*gron.Cron),
	}
}

func (s *Service) Create(name string, timing Timing) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cron, ok := s.alarms[name]; ok {
		cron.Stop()
	}

	sched := &delayedSchedule{timing: timing}
	cron := gron.New()
	cron.Add(sched, gron.JobFunc(func() {
		s.fire(Alarm{Name: name, ScheduledTime: sched.scheduledTime()})
	}))
	cron.Start()
	s.alarms[name] = cron

	s.logger.Debugf(providers.TypeApp, "Alarm %s created: delay %s, period %s", name, timing.Delay, timing.Period)
}

func (s *Service) Clear(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cron, ok := s.alarms[name]
	if !ok {
		return false
	}
	cron.Stop()
	delete(s.alarms, name)
	return true
}

func (s *Service) OnAlarm(listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

func (s *Service) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, cron := range s.alarms {
		cron.Stop()
		delete(s.alarms, name)
	}
}

func (s *Service) fire(a Alarm) {
	s.mu.Lock()
	_, active := s.alarms[a.Name]
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	// a job may already be in flight when its alarm is cleared
	if !active {
		return
	}
	for _, l := range listeners {
		l(a)
	}
}

// delayedSchedule implements gron.Schedule: the first activation is Delay
// from the start and later ones are Period apart.
type delayedSchedule struct {
	timing Timing
	mu     sync.Mutex
	next   time.Time
	primed bool
}

func (d *delayedSchedule) Next(t time.Time) time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.primed {
		d.primed = true
		d.next = t.Add(d.timing.Delay)
		return d.next
	}
	d.next = t.Add(d.timing.Period)
	return d.next
}

// scheduledTime is the activation the current job was scheduled for. The
// cron advances Next before running the job, so step back one period.
func (d *delayedSchedule) scheduledTime() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next.Add(-d.timing.Period)
}
