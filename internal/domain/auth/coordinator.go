package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"voicelock-go/internal/domain/eventbus"
	"voicelock-go/internal/domain/session"
	"voicelock-go/internal/domain/speech"
	"voicelock-go/internal/domain/token"
	"voicelock-go/internal/domain/voiceprint"
	"voicelock-go/internal/platform/config"
	"voicelock-go/internal/platform/logging"
)

// Coordinator runs the two-factor sequence against the session state
// machine. One call to Authenticate is one complete attempt; every failure
// path lands back in the locked state with the provisional user cleared.
type Coordinator struct {
	session   *session.AuthenticationSession
	verifier  TokenVerifier
	listener  Listener
	speaker   Speaker
	prints    *voiceprint.Store
	extractor *voiceprint.Extractor
	bus       *eventbus.Bus
	profile   config.LocaleProfile
	logger    *logging.Logger
}

func NewCoordinator(
	sess *session.AuthenticationSession,
	verifier TokenVerifier,
	listener Listener,
	speaker Speaker,
	prints *voiceprint.Store,
	extractor *voiceprint.Extractor,
	bus *eventbus.Bus,
	profile config.LocaleProfile,
	logger *logging.Logger,
) *Coordinator {
	return &Coordinator{
		session:   sess,
		verifier:  verifier,
		listener:  listener,
		speaker:   speaker,
		prints:    prints,
		extractor: extractor,
		bus:       bus,
		profile:   profile,
		logger:    logger,
	}
}

// Session exposes the state machine for read-only observers such as the web
// API and the command dispatcher.
func (c *Coordinator) Session() *session.AuthenticationSession {
	return c.session
}

// Authenticate runs one full attempt: token factor, then voice factor for
// the user the token named. Returns the unlocked username, or false when the
// attempt failed and the session is locked again.
func (c *Coordinator) Authenticate(ctx context.Context) (string, bool) {
	attemptID := uuid.NewString()

	if err := c.session.BeginAttempt(); err != nil {
		c.logger.ErrorTag("AUTH", "cannot begin attempt: %v", err)
		return "", false
	}

	username, ok := c.tokenFactor(ctx, attemptID)
	if !ok {
		c.fail(ctx, attemptID, username)
		return "", false
	}

	if err := c.session.BindProvisional(username); err != nil {
		c.logger.ErrorTag("AUTH", "cannot bind provisional user: %v", err)
		c.fail(ctx, attemptID, username)
		return "", false
	}

	if !c.voiceFactor(ctx, attemptID, username) {
		c.fail(ctx, attemptID, username)
		return "", false
	}

	if err := c.session.Unlock(); err != nil {
		c.logger.ErrorTag("AUTH", "cannot unlock: %v", err)
		c.fail(ctx, attemptID, username)
		return "", false
	}

	c.logger.InfoTag("AUTH", "session unlocked for %s", username)
	c.speaker.Say(ctx, c.profile.Prompt("auth_success"))
	c.bus.Publish(eventbus.TopicAuthUnlocked, eventbus.AuthEventData{
		AttemptID: attemptID,
		Username:  username,
	})
	return username, true
}

// tokenFactor reads the card and resolves it to a username.
func (c *Coordinator) tokenFactor(ctx context.Context, attemptID string) (string, bool) {
	c.speaker.Say(ctx, c.profile.Prompt("connect_board"))

	username, err := c.verifier.Verify(ctx)
	if err != nil {
		detail := map[string]any{"reason": err.Error()}
		switch {
		case errors.Is(err, token.ErrDeviceUnavailable):
			c.speaker.Say(ctx, c.profile.Prompt("board_unavailable"))
		case errors.Is(err, token.ErrInvalidToken):
			c.speaker.Say(ctx, c.profile.Prompt("invalid_card"))
		default:
			c.logger.ErrorTag("AUTH", "token factor error: %v", err)
			c.speaker.Say(ctx, c.profile.Prompt("board_unavailable"))
		}
		c.bus.Publish(eventbus.TopicTokenRejected, eventbus.AuthEventData{
			AttemptID: attemptID,
			Detail:    detail,
		})
		return "", false
	}

	c.bus.Publish(eventbus.TopicTokenAccepted, eventbus.AuthEventData{
		AttemptID: attemptID,
		Username:  username,
	})
	return username, true
}

// voiceFactor compares a fresh utterance against the reference enrolled for
// exactly the user the token named.
func (c *Coordinator) voiceFactor(ctx context.Context, attemptID, username string) bool {
	reference, err := c.prints.ReadSample(username)
	if err != nil {
		if errors.Is(err, voiceprint.ErrNotFound) {
			c.logger.WarnTag("AUTH", "no reference enrolled for %s", username)
			c.speaker.Say(ctx, c.profile.Prompt("reference_missing"))
		} else {
			c.logger.ErrorTag("AUTH", "reading reference for %s: %v", username, err)
			c.speaker.Say(ctx, c.profile.Prompt("voice_failed"))
		}
		c.rejectVoice(attemptID, username, map[string]any{"reason": err.Error()})
		return false
	}

	c.speaker.Say(ctx, c.profile.Prompt("repeat_username"))
	result := c.listener.Listen(ctx, c.profile.STTLanguage)
	// Only the audio matters for matching, so a failed transcription with
	// captured audio still counts.
	if result.Outcome == speech.OutcomeTimeout || len(result.Audio) == 0 {
		c.speaker.Say(ctx, c.profile.Prompt("no_voice_input"))
		c.rejectVoice(attemptID, username, map[string]any{"reason": "no input"})
		return false
	}

	refPrint, err := c.extractor.Extract(reference)
	if err != nil {
		c.logger.ErrorTag("AUTH", "reference for %s not extractable: %v", username, err)
		c.speaker.Say(ctx, c.profile.Prompt("voice_failed"))
		c.rejectVoice(attemptID, username, map[string]any{"reason": err.Error()})
		return false
	}
	livePrint, err := c.extractor.Extract(result.Audio)
	if err != nil {
		c.speaker.Say(ctx, c.profile.Prompt("voice_failed"))
		c.rejectVoice(attemptID, username, map[string]any{"reason": err.Error()})
		return false
	}

	distance := voiceprint.Distance(refPrint, livePrint)
	c.logger.InfoTag("AUTH", "voice distance for %s: %.2f (threshold %.2f)",
		username, distance, c.profile.MatchThreshold)

	if distance >= c.profile.MatchThreshold {
		c.speaker.Say(ctx, c.profile.Prompt("voice_failed"))
		c.rejectVoice(attemptID, username, map[string]any{"distance": distance})
		return false
	}

	c.bus.Publish(eventbus.TopicVoiceMatched, eventbus.AuthEventData{
		AttemptID: attemptID,
		Username:  username,
		Detail:    map[string]any{"distance": distance},
	})
	return true
}

func (c *Coordinator) rejectVoice(attemptID, username string, detail map[string]any) {
	c.bus.Publish(eventbus.TopicVoiceRejected, eventbus.AuthEventData{
		AttemptID: attemptID,
		Username:  username,
		Detail:    detail,
	})
}

// fail returns the session to locked and announces the failed attempt.
func (c *Coordinator) fail(ctx context.Context, attemptID, username string) {
	c.session.Fail()
	c.speaker.Say(ctx, c.profile.Prompt("auth_failed"))
	c.bus.Publish(eventbus.TopicAuthFailed, eventbus.AuthEventData{
		AttemptID: attemptID,
		Username:  username,
	})
}
