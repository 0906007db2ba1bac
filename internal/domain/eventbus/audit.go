package eventbus

import (
	"context"

	"voicelock-go/internal/platform/logging"
	"voicelock-go/internal/platform/storage"
)

// auditTopics are the topics persisted to the auth_events table.
var auditTopics = []string{
	TopicTokenAccepted,
	TopicTokenRejected,
	TopicVoiceMatched,
	TopicVoiceRejected,
	TopicAuthUnlocked,
	TopicAuthFailed,
	TopicEnrollCompleted,
}

// AuditRecorder copies auth events into the database so attempts can be
// reviewed after the fact.
type AuditRecorder struct {
	bus      *Bus
	events   storage.AuthEventRepository
	logger   *logging.Logger
	handlers map[string]func(AuthEventData)
}

func NewAuditRecorder(bus *Bus, events storage.AuthEventRepository, logger *logging.Logger) (*AuditRecorder, error) {
	r := &AuditRecorder{
		bus:      bus,
		events:   events,
		logger:   logger,
		handlers: make(map[string]func(AuthEventData), len(auditTopics)),
	}
	for _, topic := range auditTopics {
		topic := topic
		handler := func(data AuthEventData) {
			r.record(topic, data)
		}
		if err := bus.SubscribeAsync(topic, handler); err != nil {
			return nil, err
		}
		r.handlers[topic] = handler
	}
	return r, nil
}

func (r *AuditRecorder) record(topic string, data AuthEventData) {
	err := r.events.Record(context.Background(), data.AttemptID, topic, data.Username, data.Detail)
	if err != nil {
		r.logger.WarnTag("STORE", "audit write failed for %s: %v", topic, err)
	}
}

// Close detaches all handlers and waits for in-flight writes.
func (r *AuditRecorder) Close() {
	for topic, handler := range r.handlers {
		_ = r.bus.Unsubscribe(topic, handler)
	}
	r.bus.WaitAsync()
}
