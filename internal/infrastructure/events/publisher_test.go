package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fsic-portal/internal/application/ports"
	"github.com/jhoicas/fsic-portal/pkg/config"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "fsic.registrations", log: zerolog.Nop()}
	ev := ports.RegistrationEvent{
		Type:           ports.EventRegistrationApproved,
		RegistrationID: "p1",
		UserID:         "u1",
		Email:          "a@b.com",
		Businesses:     1,
		OccurredAt:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("p1"), w.msgs[0].Key)
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, []byte(ports.EventRegistrationApproved), w.msgs[0].Headers[0].Value)

	var got ports.RegistrationEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, ev, got)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_Error(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("leader not available")}, log: zerolog.Nop()}
	assert.Error(t, p.Publish(context.Background(), ports.RegistrationEvent{RegistrationID: "p1"}))
}

func TestNew_SinBrokersEsNop(t *testing.T) {
	p := New(config.EventsConfig{}, zerolog.Nop())
	assert.IsType(t, &NopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), ports.RegistrationEvent{}))
	assert.NoError(t, p.Close())
}
