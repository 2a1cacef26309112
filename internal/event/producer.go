package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/EVCatalog/internal/domain"
	pkgkafka "github.com/utafrali/EVCatalog/pkg/kafka"
	"github.com/utafrali/EVCatalog/pkg/logger"
)

// Kafka topics for catalog events.
const (
	TopicEVCreated     = "evcatalog.ev.created"
	TopicEVUpdated     = "evcatalog.ev.updated"
	TopicEVDeleted     = "evcatalog.ev.deleted"
	TopicReviewCreated = "evcatalog.review.created"
)

// Aggregate types.
const (
	AggregateTypeEV     = "ev"
	AggregateTypeReview = "review"
)

// SourceCatalog identifies events emitted by this application.
const SourceCatalog = "ev-catalog"

// EVData is the payload of ev.created and ev.updated.
type EVData struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Manufacturer string  `json:"manufacturer"`
	Year         int     `json:"year"`
	BatterySize  float64 `json:"battery_size"`
	RangeWLTP    float64 `json:"range_wltp"`
	Cost         float64 `json:"cost"`
	Power        float64 `json:"power"`
}

// EVDeletedData is the payload of ev.deleted.
type EVDeletedData struct {
	ID string `json:"id"`
}

// ReviewCreatedData is the payload of review.created.
type ReviewCreatedData struct {
	ID        string    `json:"id"`
	EVID      string    `json:"ev_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// publisher is satisfied by *pkgkafka.Producer.
type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes catalog events to Kafka.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func evData(ev *domain.EV) EVData {
	return EVData{
		ID:           ev.ID,
		Name:         ev.Name,
		Manufacturer: ev.Manufacturer,
		Year:         ev.Year,
		BatterySize:  ev.BatterySize,
		RangeWLTP:    ev.RangeWLTP,
		Cost:         ev.Cost,
		Power:        ev.Power,
	}
}

// PublishEVCreated publishes an ev.created event.
func (p *Producer) PublishEVCreated(ctx context.Context, ev *domain.EV) error {
	return p.publish(ctx, TopicEVCreated, ev.ID, AggregateTypeEV, evData(ev))
}

// PublishEVUpdated publishes an ev.updated event.
func (p *Producer) PublishEVUpdated(ctx context.Context, ev *domain.EV) error {
	return p.publish(ctx, TopicEVUpdated, ev.ID, AggregateTypeEV, evData(ev))
}

// PublishEVDeleted publishes an ev.deleted event.
func (p *Producer) PublishEVDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicEVDeleted, id, AggregateTypeEV, EVDeletedData{ID: id})
}

// PublishReviewCreated publishes a review.created event keyed by the EV so
// an EV's reviews land on one partition.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ID:        review.ID,
		EVID:      review.EVID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		CreatedAt: review.CreatedAt,
	}
	return p.publish(ctx, TopicReviewCreated, review.EVID, AggregateTypeReview, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceCatalog, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
