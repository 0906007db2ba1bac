package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"voicelock-go/internal/domain/eventbus"
	"voicelock-go/internal/domain/speech"
	"voicelock-go/internal/domain/voiceprint"
	"voicelock-go/internal/platform/config"
	"voicelock-go/internal/platform/logging"
)

// Enroller registers new users: it captures a spoken name, then a reference
// sample, and stores the sample under the normalized name. The same flow
// serves first run (retry until someone is enrolled) and the post-unlock
// registration command (single attempt).
type Enroller struct {
	listener  Listener
	speaker   Speaker
	prints    *voiceprint.Store
	extractor *voiceprint.Extractor
	bus       *eventbus.Bus
	profile   config.LocaleProfile
	logger    *logging.Logger
}

func NewEnroller(
	listener Listener,
	speaker Speaker,
	prints *voiceprint.Store,
	extractor *voiceprint.Extractor,
	bus *eventbus.Bus,
	profile config.LocaleProfile,
	logger *logging.Logger,
) *Enroller {
	return &Enroller{
		listener:  listener,
		speaker:   speaker,
		prints:    prints,
		extractor: extractor,
		bus:       bus,
		profile:   profile,
		logger:    logger,
	}
}

// FirstRun enrolls the very first user. It retries until the store is no
// longer empty or the context is cancelled; an empty store leaves the system
// with nothing to authenticate against.
func (e *Enroller) FirstRun(ctx context.Context) error {
	for e.prints.IsEmpty() {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := e.enrollOnce(ctx, "firstrun_prompt")
		switch {
		case err == nil:
			e.speaker.Say(ctx, e.profile.Prompt("name_recorded"))
			return nil
		case errors.Is(err, ErrNameNotCaptured):
			e.speaker.Say(ctx, e.profile.Prompt("name_not_detected"))
		case errors.Is(err, ErrReferenceNotCaptured):
			e.speaker.Say(ctx, e.profile.Prompt("ref_not_captured"))
		case errors.Is(err, voiceprint.ErrAlreadyEnrolled):
			// Someone got enrolled between the check and the write; the
			// precondition is gone, so first run is done.
			return nil
		default:
			return err
		}
	}
	return nil
}

// OnDemand runs the registration command for an already unlocked session.
// One attempt; any failure is spoken and returned.
func (e *Enroller) OnDemand(ctx context.Context) error {
	e.speaker.Say(ctx, e.profile.Prompt("enroll_mode"))

	err := e.enrollOnce(ctx, "enroll_name_prompt")
	switch {
	case err == nil:
		e.speaker.Say(ctx, e.profile.Prompt("enroll_done"))
		return nil
	case errors.Is(err, ErrNameNotCaptured):
		e.speaker.Say(ctx, e.profile.Prompt("enroll_name_failed"))
	case errors.Is(err, ErrReferenceNotCaptured):
		e.speaker.Say(ctx, e.profile.Prompt("enroll_ref_missing"))
	case errors.Is(err, voiceprint.ErrAlreadyEnrolled):
		e.speaker.Say(ctx, e.profile.Prompt("already_enrolled"))
	}
	return err
}

// enrollOnce runs one name-then-reference cycle.
func (e *Enroller) enrollOnce(ctx context.Context, namePromptKey string) error {
	e.speaker.Say(ctx, e.profile.Prompt(namePromptKey))
	nameResult := e.listener.Listen(ctx, e.profile.STTLanguage)
	if nameResult.Outcome != speech.OutcomeOK {
		return ErrNameNotCaptured
	}
	name := voiceprint.Normalize(nameResult.Text)
	if name == "" {
		return ErrNameNotCaptured
	}

	if _, err := e.prints.Lookup(name); err == nil {
		return voiceprint.ErrAlreadyEnrolled
	}

	e.speaker.Say(ctx, fmt.Sprintf(e.profile.Prompt("enroll_record_ref"), name))
	refResult := e.listener.Listen(ctx, e.profile.STTLanguage)
	// The reference only needs audio; what the engine made of the words is
	// irrelevant here.
	if len(refResult.Audio) == 0 {
		return ErrReferenceNotCaptured
	}
	if _, err := e.extractor.Extract(refResult.Audio); err != nil {
		e.logger.WarnTag("ENROLL", "reference for %s not extractable: %v", name, err)
		return ErrReferenceNotCaptured
	}

	if err := e.prints.Enroll(name, refResult.Audio); err != nil {
		return err
	}

	e.logger.InfoTag("ENROLL", "user %s enrolled", name)
	e.bus.Publish(eventbus.TopicEnrollCompleted, eventbus.AuthEventData{
		AttemptID: uuid.NewString(),
		Username:  name,
	})
	return nil
}
