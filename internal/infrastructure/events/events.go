// Package events publica los eventos de dominio en Kafka (o los descarta con noop).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/pkg/config"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

var (
	_ ports.EventPublisher = Noop{}
	_ ports.EventPublisher = (*Kafka)(nil)
)

// New construye el publicador configurado (kafka o noop).
func New(cfg config.EventsConfig, log *logger.Logger) (ports.EventPublisher, error) {
	switch cfg.Driver {
	case "noop", "":
		log.Info().Msg("eventos deshabilitados; usando noop")
		return Noop{}, nil
	case "kafka":
		log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("publicador kafka listo")
		return NewKafka(cfg.Brokers, cfg.Topic, log), nil
	default:
		return nil, fmt.Errorf("driver de eventos no soportado: %s", cfg.Driver)
	}
}

// Noop descarta los eventos.
type Noop struct{}

func (Noop) Publish(context.Context, ...ports.Event) error { return nil }

func (Noop) Close() error { return nil }

// writer es la parte de *kafka.Writer que usa Kafka (sustituible en tests).
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publica cada evento como JSON con la empresa como clave (orden por tenant).
type Kafka struct {
	w     writer
	topic string
}

// NewKafka crea un writer síncrono con acks de todas las réplicas.
func NewKafka(brokers []string, topic string, log *logger.Logger) *Kafka {
	zl := log.Component("kafka")
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			zl.Warn().Msgf(msg, args...)
		}),
	}
	return &Kafka{w: w, topic: topic}
}

func newKafkaWithWriter(w writer, topic string) *Kafka {
	return &Kafka{w: w, topic: topic}
}

// Publish serializa y escribe los eventos en un solo lote.
func (k *Kafka) Publish(ctx context.Context, evs ...ports.Event) error {
	if len(evs) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(evs))
	for _, ev := range evs {
		value, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event %s: %w", ev.Type, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(ev.CompanyID),
			Value: value,
			Time:  ev.At,
			Headers: []kafka.Header{
				{Key: "type", Value: []byte(ev.Type)},
			},
		})
	}
	if err := k.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.w.Close()
}

// Counter recibe un conteo por evento publicado (lo implementa metrics.Metrics).
type Counter interface {
	EventPublished(eventType string, failed bool)
}

// Counting decora un publicador contando eventos publicados y fallidos.
type Counting struct {
	next    ports.EventPublisher
	counter Counter
}

// WithCounter envuelve next; con counter nil devuelve next sin cambios.
func WithCounter(next ports.EventPublisher, counter Counter) ports.EventPublisher {
	if counter == nil {
		return next
	}
	return &Counting{next: next, counter: counter}
}

func (c *Counting) Publish(ctx context.Context, evs ...ports.Event) error {
	err := c.next.Publish(ctx, evs...)
	for _, ev := range evs {
		c.counter.EventPublished(ev.Type, err != nil)
	}
	return err
}

func (c *Counting) Close() error {
	return c.next.Close()
}
