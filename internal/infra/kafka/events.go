package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Rista10/event-planner-application/internal/core/domain"
	"github.com/Rista10/event-planner-application/internal/core/port"
	"github.com/Rista10/event-planner-application/internal/infra/config"
)

const schemaVersion = "1.0"

// Event types, also used as topic suffixes.
const (
	EventUserRegistered         = "user.registered"
	EventEmailVerified          = "user.email_verified"
	EventPasswordResetRequested = "user.password_reset_requested"
	EventPasswordChanged        = "user.password_changed"
	EventTwoFactorToggled       = "user.two_factor_toggled"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		metadata["trace_id"] = sc.TraceID().String()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(userID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string    `json:"user_id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		UserID:       event.UserID,
		Name:         event.Name,
		Email:        event.Email,
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, EventUserRegistered, event.UserID, event.RegisteredAt, payload)
}

// PublishEmailVerified publishes user.email_verified events.
func (p *EventPublisher) PublishEmailVerified(ctx context.Context, event domain.EmailVerifiedEvent) error {
	payload := struct {
		UserID     string    `json:"user_id"`
		VerifiedAt time.Time `json:"verified_at"`
	}{
		UserID:     event.UserID,
		VerifiedAt: event.VerifiedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, EventEmailVerified, event.UserID, event.VerifiedAt, payload)
}

// PublishPasswordResetRequested publishes user.password_reset_requested events.
// Only the masked address leaves the service.
func (p *EventPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := struct {
		UserID            string    `json:"user_id"`
		MaskedDestination string    `json:"masked_destination,omitempty"`
		RequestedAt       time.Time `json:"requested_at"`
		ExpiresAt         time.Time `json:"expires_at"`
	}{
		UserID:            event.UserID,
		MaskedDestination: event.MaskedDestination,
		RequestedAt:       event.RequestedAt.UTC(),
		ExpiresAt:         event.ExpiresAt.UTC(),
	}

	timestamp := event.RequestedAt
	if timestamp.IsZero() {
		timestamp = event.ExpiresAt
	}

	return p.publish(ctx, event.EventID, EventPasswordResetRequested, event.UserID, timestamp, payload)
}

// PublishPasswordChanged publishes user.password_changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		ChangedAt time.Time `json:"changed_at"`
	}{
		UserID:    event.UserID,
		ChangedAt: event.ChangedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, EventPasswordChanged, event.UserID, event.ChangedAt, payload)
}

// PublishTwoFactorToggled publishes user.two_factor_toggled events.
func (p *EventPublisher) PublishTwoFactorToggled(ctx context.Context, event domain.TwoFactorToggledEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		Enabled   bool      `json:"enabled"`
		ToggledAt time.Time `json:"toggled_at"`
	}{
		UserID:    event.UserID,
		Enabled:   event.Enabled,
		ToggledAt: event.ToggledAt.UTC(),
	}

	return p.publish(ctx, event.EventID, EventTwoFactorToggled, event.UserID, event.ToggledAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
