// Package ticketing hands support tickets for unresolved TRNs to the
// support queue.
package ticketing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel/trace"

	"teacherid/internal/signin/models"
	"teacherid/pkg/requestcontext"
)

const (
	EventType   = "teacherid.signin.support_ticket.raised"
	SpecVersion = "1.0"
	Source      = "/teacherid/sign-in"
)

// Event is the CloudEvents envelope published for each ticket.
type Event struct {
	SpecVersion     string        `json:"specversion"`
	Type            string        `json:"type"`
	Source          string        `json:"source"`
	Subject         string        `json:"subject"`
	ID              string        `json:"id"`
	Time            time.Time     `json:"time"`
	DataContentType string        `json:"datacontenttype"`
	TraceID         string        `json:"traceid,omitempty"`
	RequestID       string        `json:"requestid,omitempty"`
	Data            TicketPayload `json:"data"`
}

type TicketPayload struct {
	TicketID     string `json:"ticket_id"`
	JourneyID    string `json:"journey_id"`
	UserID       string `json:"user_id,omitempty"`
	ClientID     string `json:"client_id"`
	Reason       string `json:"reason"`
	EmailAddress string `json:"email_address"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	DateOfBirth  string `json:"date_of_birth,omitempty"`
	StatedTrn    string `json:"stated_trn,omitempty"`
	NINumber     string `json:"ni_number,omitempty"`
	IttProvider  string `json:"itt_provider,omitempty"`
	Raised       string `json:"raised"`
}

// NewEvent wraps ticket in an envelope, tagging it with the request and
// trace in ctx.
func NewEvent(ctx context.Context, ticket models.SupportTicket) Event {
	ev := Event{
		SpecVersion:     SpecVersion,
		Type:            EventType,
		Source:          Source,
		Subject:         ticket.JourneyID.String(),
		ID:              uuid.NewString(),
		Time:            requestcontext.Now(ctx).UTC(),
		DataContentType: "application/json",
		RequestID:       requestcontext.RequestID(ctx),
		Data: TicketPayload{
			TicketID:     ticket.ID.String(),
			JourneyID:    ticket.JourneyID.String(),
			ClientID:     ticket.ClientID,
			Reason:       ticket.Reason,
			EmailAddress: ticket.EmailAddress,
			FirstName:    ticket.FirstName,
			LastName:     ticket.LastName,
			StatedTrn:    ticket.StatedTrn,
			NINumber:     ticket.NINumber,
			IttProvider:  ticket.IttProvider,
			Raised:       ticket.Raised.UTC().Format(time.RFC3339Nano),
		},
	}
	if !ticket.UserID.IsNil() {
		ev.Data.UserID = ticket.UserID.String()
	}
	if ticket.DateOfBirth != nil {
		ev.Data.DateOfBirth = ticket.DateOfBirth.Format(time.DateOnly)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		ev.TraceID = sc.TraceID().String()
	}
	return ev
}

// Producer is the part of *kgo.Client the raiser uses.
type Producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
}

// KafkaRaiser publishes tickets keyed by journey id so retries of one
// journey land on one partition. Delivery is asynchronous: a broker failure
// is logged by the promise, never returned.
type KafkaRaiser struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

type Option func(*KafkaRaiser)

func WithLogger(logger *slog.Logger) Option {
	return func(k *KafkaRaiser) {
		k.logger = logger
	}
}

func NewKafka(producer Producer, topic string, opts ...Option) *KafkaRaiser {
	k := &KafkaRaiser{producer: producer, topic: topic, logger: slog.Default()}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func (k *KafkaRaiser) RaiseSupportTicket(ctx context.Context, ticket models.SupportTicket) error {
	ev := NewEvent(ctx, ticket)
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal support ticket: %w", err)
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(ticket.JourneyID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "ce_type", Value: []byte(EventType)},
			{Key: "ce_id", Value: []byte(ev.ID)},
		},
	}
	ticketID, journeyID, reason := ticket.ID.String(), ticket.JourneyID.String(), ticket.Reason
	// The request context is cancelled when the response is written.
	k.producer.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			k.logger.Error("failed to publish support ticket",
				"ticket_id", ticketID,
				"journey_id", journeyID,
				"reason", reason,
				"error", err,
			)
			return
		}
		k.logger.Debug("support ticket published",
			"ticket_id", ticketID,
			"topic", r.Topic,
			"partition", r.Partition,
			"offset", r.Offset,
		)
	})
	return nil
}

// LogRaiser writes tickets to the log for environments without a broker.
type LogRaiser struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *LogRaiser {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogRaiser{logger: logger}
}

func (l *LogRaiser) RaiseSupportTicket(ctx context.Context, ticket models.SupportTicket) error {
	l.logger.InfoContext(ctx, "support ticket raised",
		"log_type", "support_ticket",
		"ticket_id", ticket.ID.String(),
		"journey_id", ticket.JourneyID.String(),
		"client_id", ticket.ClientID,
		"reason", ticket.Reason,
	)
	return nil
}
