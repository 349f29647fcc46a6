package events

import (
	"context"
	"time"
	"tourbook/pkg/config"
	"tourbook/pkg/kafka"
	kafka_config "tourbook/pkg/kafka/config"
	"tourbook/pkg/logger"
	"tourbook/pkg/model"
)

const (
	TopicReservations = "reservations.events"
	TopicDLQ          = "reservations.events.dlq"

	EventReservationCreated       = "reservation.created"
	EventReservationStatusChanged = "reservation.status_changed"
	EventReservationCancelled     = "reservation.cancelled"

	source = "reservations-service"
)

// ReservationEvent is the payload shared by all reservation lifecycle events.
type ReservationEvent struct {
	ReservationID     string        `json:"reservation_id"`
	TourID            string        `json:"tour_id"`
	Status            string        `json:"status"`
	PreviousStatus    string        `json:"previous_status,omitempty"`
	TotalParticipants int           `json:"total_participants"`
	Pricing           model.Pricing `json:"pricing"`
	CancelReason      string        `json:"cancel_reason,omitempty"`
	OccurredAt        time.Time     `json:"occurred_at"`
}

// Publisher emits reservation lifecycle events. Publishing is best effort:
// the reservation flow never fails because the broker is down.
type Publisher interface {
	ReservationCreated(ctx context.Context, reservation *model.Reservation)
	StatusChanged(ctx context.Context, reservation *model.Reservation, previousStatus string)
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewPublisher returns a Kafka-backed publisher, or a no-op one when Kafka
// is disabled by configuration.
func NewPublisher(cfg *kafka_config.Config, log *logger.Logger) (Publisher, error) {
	if !cfg.Enabled {
		log.Info("Kafka disabled, reservation events will not be published")
		return noopPublisher{}, nil
	}

	producer, err := kafka.NewProducer(cfg, TopicReservations, TopicDLQ)
	if err != nil {
		return nil, err
	}

	log.Info("Reservation event publisher initialized", "topic", TopicReservations)
	return &kafkaPublisher{producer: producer, log: log}, nil
}

func (p *kafkaPublisher) ReservationCreated(ctx context.Context, reservation *model.Reservation) {
	p.publish(ctx, EventReservationCreated, reservation, "")
}

func (p *kafkaPublisher) StatusChanged(ctx context.Context, reservation *model.Reservation, previousStatus string) {
	eventType := EventReservationStatusChanged
	if reservation.Status == config.StatusCancelled {
		eventType = EventReservationCancelled
	}
	p.publish(ctx, eventType, reservation, previousStatus)
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, reservation *model.Reservation, previousStatus string) {
	event := ReservationEvent{
		ReservationID:     reservation.ID,
		TourID:            reservation.TourID,
		Status:            reservation.Status,
		PreviousStatus:    previousStatus,
		TotalParticipants: reservation.TotalParticipants,
		Pricing:           reservation.Pricing,
		CancelReason:      reservation.CancelReason,
		OccurredAt:        time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(reservation.ID).
		WithValue(event).
		WithEventType(eventType).
		WithSource(source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish reservation event",
			"event_type", eventType,
			"reservation_id", reservation.ID,
			"error", err,
		)
		return
	}

	p.log.Debug("Reservation event published",
		"event_type", eventType,
		"reservation_id", reservation.ID,
		"event_id", msg.GetEventID(),
	)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

func (noopPublisher) ReservationCreated(context.Context, *model.Reservation)    {}
func (noopPublisher) StatusChanged(context.Context, *model.Reservation, string) {}
func (noopPublisher) Close() error                                              { return nil }
