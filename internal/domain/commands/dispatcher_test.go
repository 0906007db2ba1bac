package commands

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"voicelock-go/internal/domain/auth"
	"voicelock-go/internal/domain/eventbus"
	"voicelock-go/internal/domain/session"
	"voicelock-go/internal/domain/speech"
	"voicelock-go/internal/domain/task"
	"voicelock-go/internal/domain/voiceprint"
	"voicelock-go/internal/platform/config"
	"voicelock-go/internal/platform/logging"
	"voicelock-go/internal/platform/storage"
)

type scriptedListener struct {
	mu      sync.Mutex
	results []speech.CaptureResult
}

func (l *scriptedListener) Listen(ctx context.Context, language string) speech.CaptureResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.results) == 0 {
		return speech.CaptureResult{Outcome: speech.OutcomeTimeout}
	}
	r := l.results[0]
	l.results = l.results[1:]
	return r
}

type spySpeaker struct {
	mu   sync.Mutex
	said []string
}

func (s *spySpeaker) Say(ctx context.Context, text string) error {
	s.mu.Lock()
	s.said = append(s.said, text)
	s.mu.Unlock()
	return nil
}

func (s *spySpeaker) saidContaining(fragment string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range s.said {
		if strings.Contains(line, fragment) {
			return true
		}
	}
	return false
}

type spyOpener struct {
	urls []string
}

func (o *spyOpener) Open(url string) error {
	o.urls = append(o.urls, url)
	return nil
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	session    *session.AuthenticationSession
	listener   *scriptedListener
	speaker    *spySpeaker
	opener     *spyOpener
	alarms     *task.Scheduler
	notes      storage.NoteRepository
}

func newFixture(t *testing.T, unlocked bool) *dispatcherFixture {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	notes := storage.NewNoteRepository(db)

	prints, err := voiceprint.NewStore(voiceprint.Config{
		Dir:    t.TempDir(),
		Prefix: "reference_",
		Ext:    ".wav",
	}, logging.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	sess := session.New()
	if unlocked {
		if err := sess.BeginAttempt(); err != nil {
			t.Fatalf("BeginAttempt: %v", err)
		}
		if err := sess.BindProvisional("john"); err != nil {
			t.Fatalf("BindProvisional: %v", err)
		}
		if err := sess.Unlock(); err != nil {
			t.Fatalf("Unlock: %v", err)
		}
	}

	listener := &scriptedListener{}
	speaker := &spySpeaker{}
	opener := &spyOpener{}
	bus := eventbus.New()
	profile := config.Default().Profiles["en"]
	alarms := task.NewScheduler(speaker, bus, logging.Nop())
	t.Cleanup(alarms.Close)

	enroller := auth.NewEnroller(
		listener, speaker, prints,
		voiceprint.NewExtractor(voiceprint.DefaultExtractorConfig()),
		bus, profile, logging.Nop(),
	)

	d := NewDispatcher(sess, listener, speaker, notes, alarms, enroller, opener,
		bus, profile, logging.Nop())
	return &dispatcherFixture{
		dispatcher: d,
		session:    sess,
		listener:   listener,
		speaker:    speaker,
		opener:     opener,
		alarms:     alarms,
		notes:      notes,
	}
}

func TestDispatchLockedGate(t *testing.T) {
	f := newFixture(t, false)

	for _, text := range []string{"how are you", "shut down", "set alarm 15:30"} {
		if quit := f.dispatcher.Dispatch(context.Background(), text); quit {
			t.Fatalf("locked session dispatched %q as shutdown", text)
		}
	}
	if !f.speaker.saidContaining("authentication steps first") {
		t.Fatalf("locked prompt never spoken: %v", f.speaker.said)
	}
	if f.opener.urls != nil || len(f.alarms.Pending()) != 0 {
		t.Fatalf("locked session performed actions")
	}
}

func TestDispatchShutdown(t *testing.T) {
	f := newFixture(t, true)
	if quit := f.dispatcher.Dispatch(context.Background(), "Shut Down"); !quit {
		t.Fatalf("shutdown not recognized")
	}
	if !f.speaker.saidContaining("Shutting down") {
		t.Fatalf("shutdown prompt missing: %v", f.speaker.said)
	}
}

func TestDispatchStatusAndUnknown(t *testing.T) {
	f := newFixture(t, true)

	f.dispatcher.Dispatch(context.Background(), "how are you")
	if !f.speaker.saidContaining("I'm fine") {
		t.Fatalf("status reply missing: %v", f.speaker.said)
	}

	f.dispatcher.Dispatch(context.Background(), "frobnicate the widget")
	if !f.speaker.saidContaining("didn't understand") {
		t.Fatalf("unknown command reply missing: %v", f.speaker.said)
	}
}

func TestDispatchDate(t *testing.T) {
	f := newFixture(t, true)
	f.dispatcher.now = func() time.Time {
		return time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)
	}

	f.dispatcher.Dispatch(context.Background(), "date")
	if !f.speaker.saidContaining("14 March 2025") {
		t.Fatalf("date reply missing: %v", f.speaker.said)
	}
}

func TestDispatchAlarm(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		scheduled bool
		wantHour  int
		tomorrow  bool
	}{
		{name: "colon time", text: "set alarm 15:30", scheduled: true, wantHour: 15},
		{name: "dot time", text: "set alarm 15.30", scheduled: true, wantHour: 15},
		{name: "space time", text: "set alarm 15 30", scheduled: true, wantHour: 15},
		{name: "past time rolls over", text: "set alarm 08:00", scheduled: true, wantHour: 8, tomorrow: true},
		{name: "missing time", text: "set alarm", scheduled: false},
		{name: "nonsense time", text: "set alarm soonish", scheduled: false},
		{name: "out of range", text: "set alarm 29:99", scheduled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			now := time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)
			f.dispatcher.now = func() time.Time { return now }

			f.dispatcher.Dispatch(context.Background(), tt.text)

			pending := f.alarms.Pending()
			if !tt.scheduled {
				if len(pending) != 0 {
					t.Fatalf("alarm scheduled from %q", tt.text)
				}
				return
			}
			if len(pending) != 1 {
				t.Fatalf("pending = %d, want 1", len(pending))
			}
			alarm := pending[0]
			if alarm.At.Hour() != tt.wantHour {
				t.Fatalf("alarm hour = %d, want %d", alarm.At.Hour(), tt.wantHour)
			}
			if alarm.Owner != "john" {
				t.Fatalf("alarm owner = %q", alarm.Owner)
			}
			wantDay := now.Day()
			if tt.tomorrow {
				wantDay++
			}
			if alarm.At.Day() != wantDay {
				t.Fatalf("alarm day = %d, want %d", alarm.At.Day(), wantDay)
			}
		})
	}
}

func TestDispatchNotes(t *testing.T) {
	f := newFixture(t, true)
	f.listener.results = []speech.CaptureResult{
		{Text: "buy milk", Outcome: speech.OutcomeOK},
		{Outcome: speech.OutcomeFailed},
		{Text: "call the dentist", Outcome: speech.OutcomeOK},
		{Text: "done", Outcome: speech.OutcomeOK},
	}

	f.dispatcher.Dispatch(context.Background(), "take note")

	saved, err := f.notes.ListByUser(context.Background(), "john", 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("saved %d notes, want 2", len(saved))
	}
	if !f.speaker.saidContaining("notes have been saved") {
		t.Fatalf("note session never closed: %v", f.speaker.said)
	}
}

func TestDispatchSearch(t *testing.T) {
	f := newFixture(t, true)

	f.dispatcher.Dispatch(context.Background(), "search weather in london")
	if len(f.opener.urls) != 1 {
		t.Fatalf("opened %d urls, want 1", len(f.opener.urls))
	}
	if f.opener.urls[0] != "https://www.google.com/search?q=weather+in+london" {
		t.Fatalf("url = %q", f.opener.urls[0])
	}

	f.dispatcher.Dispatch(context.Background(), "search")
	if len(f.opener.urls) != 1 {
		t.Fatalf("empty query opened a url")
	}
	if !f.speaker.saidContaining("No search query") {
		t.Fatalf("empty query reply missing: %v", f.speaker.said)
	}
}

func TestRunLoopShutdown(t *testing.T) {
	f := newFixture(t, true)
	f.listener.results = []speech.CaptureResult{
		{Outcome: speech.OutcomeTimeout},
		{Text: "how are you", Outcome: speech.OutcomeOK},
		{Text: "shut down", Outcome: speech.OutcomeOK},
	}

	done := make(chan error, 1)
	go func() { done <- f.dispatcher.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run never returned after shutdown command")
	}
}
