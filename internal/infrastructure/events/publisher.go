// Package events publica los cambios de estado de las solicitudes en Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/fsic-portal/internal/application/ports"
	"github.com/jhoicas/fsic-portal/pkg/config"
)

var (
	_ ports.EventPublisher = (*KafkaPublisher)(nil)
	_ ports.EventPublisher = (*NopPublisher)(nil)
)

// messageWriter es la parte de *kafka.Writer que usa el publicador.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher escribe cada evento como JSON con la solicitud como key,
// así todos los eventos de una solicitud caen en la misma partición.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    zerolog.Logger
}

// NewKafkaPublisher construye el publicador con un kafka.Writer sobre los brokers configurados.
func NewKafkaPublisher(cfg config.EventsConfig, log zerolog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		WriteTimeout:           5 * time.Second,
		BatchTimeout:           50 * time.Millisecond,
	}
	log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("publicador kafka listo")
	return &KafkaPublisher{writer: w, topic: cfg.Topic, log: log}
}

// Publish serializa y escribe el evento.
func (p *KafkaPublisher) Publish(ctx context.Context, ev ports.RegistrationEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: serializar evento: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.RegistrationID),
		Value: data,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publicar %s en %s: %w", ev.Type, p.topic, err)
	}
	p.log.Debug().Str("event", ev.Type).Str("registration_id", ev.RegistrationID).Msg("evento publicado")
	return nil
}

// Close vacía y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher descarta los eventos; se usa cuando no hay brokers configurados.
type NopPublisher struct {
	log zerolog.Logger
}

// NewNopPublisher construye el publicador no-op.
func NewNopPublisher(log zerolog.Logger) *NopPublisher {
	return &NopPublisher{log: log}
}

// Publish solo deja constancia en el log.
func (p *NopPublisher) Publish(_ context.Context, ev ports.RegistrationEvent) error {
	p.log.Debug().Str("event", ev.Type).Str("registration_id", ev.RegistrationID).Msg("evento descartado (sin brokers)")
	return nil
}

// Close no hace nada.
func (p *NopPublisher) Close() error { return nil }

// Publisher es un EventPublisher que se cierra al apagar el servidor.
type Publisher interface {
	ports.EventPublisher
	Close() error
}

// New elige KafkaPublisher si hay brokers; si no, NopPublisher.
func New(cfg config.EventsConfig, log zerolog.Logger) Publisher {
	if cfg.Enabled() {
		return NewKafkaPublisher(cfg, log)
	}
	return NewNopPublisher(log)
}
