package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"arenaapp/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	PublishedEvents []events.Event
	PublishError    error
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

// recordingClient captures raw NATS publishes
type recordingClient struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (c *recordingClient) Publish(ctx context.Context, subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return nil
}

func TestNATSTransactionalPublisher_FlushAfterCommit(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	first := events.WagerPlacedEvent{ContestID: 1, Bettor: "carol", Side: "a", Amount: 100}
	second := events.VoteCastEvent{ContestID: 1, Bettor: "carol", Side: "a", Weight: 100}
	require.NoError(t, transPublisher.Publish(first))
	require.NoError(t, transPublisher.Publish(second))

	assert.Empty(t, mockPublisher.PublishedEvents, "nothing leaves before flush")
	assert.Equal(t, 2, transPublisher.Pending())

	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Equal(t, []events.Event{first, second}, mockPublisher.PublishedEvents)
	assert.Equal(t, 0, transPublisher.Pending())
}

func TestNATSTransactionalPublisher_Discard(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(events.ContestCancelledEvent{ContestID: 4, Refunded: 500}))
	transPublisher.Discard()
	require.NoError(t, transPublisher.Flush(context.Background()))

	assert.Empty(t, mockPublisher.PublishedEvents)
}

func TestNATSTransactionalPublisher_FlushSurvivesPublishErrors(t *testing.T) {
	mockPublisher := &MockEventPublisher{PublishError: errors.New("nats down")}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(events.ContestSettledEvent{ContestID: 1}))
	assert.NoError(t, transPublisher.Flush(context.Background()))
	assert.Equal(t, 0, transPublisher.Pending())
}

func TestNATSEventPublisher_LocalHandlersAndEnvelope(t *testing.T) {
	client := &recordingClient{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())

	var settled []events.Event
	publisher.RegisterLocalHandler(events.EventTypeContestSettled, func(ctx context.Context, event events.Event) error {
		settled = append(settled, event)
		return nil
	})
	publisher.RegisterLocalHandler(events.EventTypeContestSettled, func(ctx context.Context, event events.Event) error {
		return errors.New("discord unavailable")
	})

	event := events.ContestSettledEvent{ContestID: 9, Winner: "bob", TotalPool: 2300, Fee: 115, PrizePool: 2185}
	require.NoError(t, publisher.Publish(event))
	require.NoError(t, publisher.Drain(context.Background()))

	require.Len(t, settled, 1)
	assert.Equal(t, event, settled[0])

	require.Len(t, client.subjects, 1)
	assert.Equal(t, "arena.contests.settled", client.subjects[0])

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(client.payloads[0], &envelope))
	assert.Equal(t, string(events.EventTypeContestSettled), envelope.EventType)
	assert.Equal(t, "arena", envelope.SourceService)
	assert.NotEmpty(t, envelope.EventID)

	var payload events.ContestSettledEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event, payload)
}

func TestNATSEventPublisher_Errors(t *testing.T) {
	t.Run("publish failure is returned", func(t *testing.T) {
		publisher := NewNATSEventPublisher(&recordingClient{err: errors.New("connection refused")}, NewEventSubjectMapper())
		assert.Error(t, publisher.Publish(events.VoteCastEvent{ContestID: 1}))
	})

	t.Run("missing stream is tolerated", func(t *testing.T) {
		publisher := NewNATSEventPublisher(&recordingClient{err: errors.New("nats: no response from stream")}, NewEventSubjectMapper())
		assert.NoError(t, publisher.Publish(events.VoteCastEvent{ContestID: 1}))
	})

	t.Run("local only without a client", func(t *testing.T) {
		publisher := NewNATSEventPublisher(nil, NewEventSubjectMapper())
		called := false
		publisher.RegisterLocalHandler(events.EventTypeVoteCast, func(ctx context.Context, event events.Event) error {
			called = true
			return nil
		})
		assert.NoError(t, publisher.Publish(events.VoteCastEvent{ContestID: 1}))
		require.NoError(t, publisher.Drain(context.Background()))
		assert.True(t, called)
	})
}

func TestNATSEventPublisher_LocalHandlersDoNotBlockPublish(t *testing.T) {
	client := &recordingClient{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())

	release := make(chan struct{})
	var order []int64
	publisher.RegisterLocalHandler(events.EventTypeContestAccepted, func(ctx context.Context, event events.Event) error {
		<-release
		order = append(order, event.(events.ContestAcceptedEvent).ContestID)
		return nil
	})

	published := make(chan error, 1)
	go func() {
		published <- publisher.Publish(events.ContestAcceptedEvent{ContestID: 5})
	}()

	select {
	case err := <-published:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Publish waited on a blocked local handler")
	}
	assert.Len(t, client.subjects, 1, "NATS publish is not held back by local handlers")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, publisher.Drain(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, publisher.Drain(context.Background()))
	assert.Equal(t, []int64{5}, order)
}

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.ParticipantRegisteredEvent{}, "arena.participants.registered"},
		{events.ContestCreatedEvent{}, "arena.contests.created"},
		{events.ContestAcceptedEvent{}, "arena.contests.accepted"},
		{events.ContestCancelledEvent{}, "arena.contests.cancelled"},
		{events.ContestSettledEvent{}, "arena.contests.settled"},
		{events.WagerPlacedEvent{}, "arena.wagers.placed"},
		{events.VoteCastEvent{}, "arena.wagers.voted"},
		{events.WinningsClaimedEvent{}, "arena.wagers.claimed"},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.subject, mapper.MapEventToSubject(tt.event))
			assert.Equal(t, tt.event.Type(), mapper.MapSubjectToEventType(tt.subject))
		})
	}

	assert.Equal(t, events.EventType("arena.other"), mapper.MapSubjectToEventType("arena.other"))
}
