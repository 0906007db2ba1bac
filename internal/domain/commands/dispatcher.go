// Package commands is the post-unlock voice command surface. The dispatcher
// routes transcribed utterances to handlers using the vocabulary of the
// active locale profile.
package commands

import (
	"context"
	"strings"
	"time"

	"voicelock-go/internal/domain/auth"
	"voicelock-go/internal/domain/eventbus"
	"voicelock-go/internal/domain/session"
	"voicelock-go/internal/domain/speech"
	"voicelock-go/internal/domain/task"
	"voicelock-go/internal/platform/config"
	"voicelock-go/internal/platform/logging"
	"voicelock-go/internal/platform/storage"
)

// Opener hands a URL to whatever shows web pages on this host.
type Opener interface {
	Open(url string) error
}

// Dispatcher owns the command loop. It only acts for an unlocked session;
// any utterance against a locked session gets the same fixed answer.
type Dispatcher struct {
	session  *session.AuthenticationSession
	listener auth.Listener
	speaker  auth.Speaker
	notes    storage.NoteRepository
	alarms   *task.Scheduler
	enroller *auth.Enroller
	opener   Opener
	bus      *eventbus.Bus
	profile  config.LocaleProfile
	logger   *logging.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewDispatcher(
	sess *session.AuthenticationSession,
	listener auth.Listener,
	speaker auth.Speaker,
	notes storage.NoteRepository,
	alarms *task.Scheduler,
	enroller *auth.Enroller,
	opener Opener,
	bus *eventbus.Bus,
	profile config.LocaleProfile,
	logger *logging.Logger,
) *Dispatcher {
	return &Dispatcher{
		session:  sess,
		listener: listener,
		speaker:  speaker,
		notes:    notes,
		alarms:   alarms,
		enroller: enroller,
		opener:   opener,
		bus:      bus,
		profile:  profile,
		logger:   logger,
		now:      time.Now,
	}
}

// Run captures and dispatches until the shutdown command or cancellation.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.speaker.Say(ctx, d.profile.Prompt("waiting_command"))

		result := d.listener.Listen(ctx, d.profile.STTLanguage)
		switch result.Outcome {
		case speech.OutcomeTimeout:
			d.speaker.Say(ctx, d.profile.Prompt("no_command"))
			continue
		case speech.OutcomeFailed:
			d.speaker.Say(ctx, d.profile.Prompt("not_understood"))
			continue
		}

		if quit := d.Dispatch(ctx, result.Text); quit {
			return nil
		}
	}
}

// Dispatch routes one utterance. Returns true when the shutdown command was
// recognized, the only way the loop ends normally.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) bool {
	cmd := strings.ToLower(strings.TrimSpace(text))
	if cmd == "" {
		d.speaker.Say(ctx, d.profile.Prompt("not_understood"))
		return false
	}

	user, unlocked := d.session.ActiveUser()
	if !unlocked {
		d.speaker.Say(ctx, d.profile.Prompt("locked"))
		return false
	}

	vocab := d.profile.Commands
	switch {
	case cmd == vocab.Shutdown:
		d.logger.InfoTag("CMD", "shutdown requested by %s", user)
		d.speaker.Say(ctx, d.profile.Prompt("shutdown"))
		return true
	case cmd == vocab.Status:
		d.speaker.Say(ctx, d.profile.Prompt("status_reply"))
	case cmd == vocab.Date:
		d.handleDate(ctx)
	case cmd == vocab.Enroll:
		if err := d.enroller.OnDemand(ctx); err != nil {
			d.logger.WarnTag("CMD", "registration failed: %v", err)
		}
	case strings.HasPrefix(cmd, vocab.AlarmPrefix):
		d.handleAlarm(ctx, user, strings.TrimSpace(strings.TrimPrefix(cmd, vocab.AlarmPrefix)))
	case strings.HasPrefix(cmd, vocab.NotePrefix):
		d.handleNotes(ctx, user)
	case strings.HasPrefix(cmd, vocab.SearchWord):
		d.handleSearch(ctx, strings.TrimSpace(strings.TrimPrefix(cmd, vocab.SearchWord)))
	default:
		d.speaker.Say(ctx, d.profile.Prompt("not_understood"))
	}
	return false
}
