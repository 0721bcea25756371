//go:build integration

package ticketing_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"teacherid/internal/signin/models"
	"teacherid/internal/signin/ticketing"
	id "teacherid/pkg/domain"
	"teacherid/pkg/testutil/containers"
)

const topic = "signin.support-tickets.test"

type KafkaRaiserSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	producer *kgo.Client
}

func TestKafkaRaiserSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaRaiserSuite))
}

func (s *KafkaRaiserSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
	s.redpanda.CreateTopic(context.Background(), s.T(), topic)

	cl, err := kgo.NewClient(kgo.SeedBrokers(s.redpanda.Brokers...))
	s.Require().NoError(err)
	s.producer = cl
}

func (s *KafkaRaiserSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *KafkaRaiserSuite) TestPublishedTicketIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ticket := models.SupportTicket{
		ID:        id.NewTicketID(),
		JourneyID: id.NewJourneyID(),
		ClientID:  "client",
		Reason:    models.TicketReasonTrnPending,
		Raised:    time.Now(),
	}
	s.Require().NoError(ticketing.NewKafka(s.producer, topic).RaiseSupportTicket(ctx, ticket))
	s.Require().NoError(s.producer.Flush(ctx))

	consumer := s.redpanda.Consumer(s.T(), topic)
	for {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(ctx.Err(), "ticket was not consumed in time")
		var found *ticketing.Event
		fetches.EachRecord(func(r *kgo.Record) {
			if string(r.Key) != ticket.JourneyID.String() {
				return
			}
			var ev ticketing.Event
			s.Require().NoError(json.Unmarshal(r.Value, &ev))
			found = &ev
		})
		if found != nil {
			s.Equal(ticket.ID.String(), found.Data.TicketID)
			s.Equal(ticketing.EventType, found.Type)
			return
		}
	}
}
