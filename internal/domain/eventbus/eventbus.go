// Package eventbus decouples the authentication flows from their observers.
// Flows publish what happened; the audit trail and the web API subscribe.
package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
)

// Topics published by the authentication and command flows.
const (
	TopicTokenAccepted   = "token:accepted"
	TopicTokenRejected   = "token:rejected"
	TopicVoiceMatched    = "voice:matched"
	TopicVoiceRejected   = "voice:rejected"
	TopicAuthUnlocked    = "auth:unlocked"
	TopicAuthFailed      = "auth:failed"
	TopicEnrollCompleted = "enroll:completed"
	TopicAlarmFired      = "alarm:fired"
	TopicNoteSaved       = "note:saved"
)

// AuthEventData travels with every auth topic. Detail carries stage specific
// context such as the measured biometric distance.
type AuthEventData struct {
	AttemptID string         `json:"attempt_id"`
	Username  string         `json:"username,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
}

// Bus wraps the underlying event bus so subscribers are detached cleanly on
// shutdown.
type Bus struct {
	bus evbus.Bus
}

func New() *Bus {
	return &Bus{bus: evbus.New()}
}

func (b *Bus) Publish(topic string, args ...interface{}) {
	b.bus.Publish(topic, args...)
}

func (b *Bus) Subscribe(topic string, fn interface{}) error {
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAsync registers a handler that runs outside the publisher's
// goroutine. Transactional handlers keep ordering per topic.
func (b *Bus) SubscribeAsync(topic string, fn interface{}) error {
	return b.bus.SubscribeAsync(topic, fn, true)
}

func (b *Bus) Unsubscribe(topic string, fn interface{}) error {
	return b.bus.Unsubscribe(topic, fn)
}

// WaitAsync blocks until all async handlers have drained.
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}
