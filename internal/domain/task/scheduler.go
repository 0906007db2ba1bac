// Package task schedules one-shot spoken alarms.
package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"voicelock-go/internal/domain/eventbus"
	"voicelock-go/internal/platform/logging"
)

// Speaker is the subset of the playback queue an alarm needs.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Alarm is one pending ring.
type Alarm struct {
	ID      string    `json:"id"`
	Owner   string    `json:"owner"`
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// Scheduler holds pending alarms and rings them through the speaker. Alarms
// are in-memory only; they do not survive a restart.
type Scheduler struct {
	mu      sync.Mutex
	pending map[string]*pendingAlarm
	speaker Speaker
	bus     *eventbus.Bus
	logger  *logging.Logger
	wg      sync.WaitGroup
	closed  bool
}

type pendingAlarm struct {
	alarm Alarm
	timer *time.Timer
}

func NewScheduler(speaker Speaker, bus *eventbus.Bus, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		pending: make(map[string]*pendingAlarm),
		speaker: speaker,
		bus:     bus,
		logger:  logger,
	}
}

// Schedule registers an alarm that speaks message at the given time. Returns
// the alarm handle; the delay until it rings is time.Until(at).
func (s *Scheduler) Schedule(owner string, at time.Time, message string) Alarm {
	alarm := Alarm{
		ID:      uuid.NewString(),
		Owner:   owner,
		At:      at,
		Message: message,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return alarm
	}

	s.wg.Add(1)
	timer := time.AfterFunc(time.Until(at), func() {
		defer s.wg.Done()
		s.ring(alarm)
	})
	s.pending[alarm.ID] = &pendingAlarm{alarm: alarm, timer: timer}

	s.logger.InfoTag("CMD", "alarm %s set for %s", alarm.ID, at.Format("15:04"))
	return alarm
}

func (s *Scheduler) ring(alarm Alarm) {
	s.mu.Lock()
	delete(s.pending, alarm.ID)
	s.mu.Unlock()

	if err := s.speaker.Say(context.Background(), alarm.Message); err != nil {
		s.logger.ErrorTag("CMD", "alarm %s failed to ring: %v", alarm.ID, err)
	}
	s.bus.Publish(eventbus.TopicAlarmFired, eventbus.AuthEventData{
		AttemptID: alarm.ID,
		Username:  alarm.Owner,
	})
}

// Cancel drops a pending alarm. Returns false when it already rang or never
// existed.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return false
	}
	delete(s.pending, id)
	if p.timer.Stop() {
		s.wg.Done()
	}
	return true
}

// Pending lists alarms that have not rung yet.
func (s *Scheduler) Pending() []Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Alarm, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p.alarm)
	}
	return out
}

// Close cancels every pending alarm and waits for in-flight rings.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for id, p := range s.pending {
		delete(s.pending, id)
		if p.timer.Stop() {
			s.wg.Done()
		}
	}
	s.mu.Unlock()
	s.wg.Wait()
}
