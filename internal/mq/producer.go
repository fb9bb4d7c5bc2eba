package mq

import (
	"fmt"
	"sync"
	"time"

	"tagarena/pkg/config"

	jsoniter "github.com/json-iterator/go"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	EventSessionStart = "session_start"
	EventSessionEnd   = "session_end"
	EventTag          = "tag"

	pendingEvents = 256
)

// Event is one analytics record published as a JSON message.
type Event struct {
	Type       string `json:"type"`
	PlayerID   string `json:"player_id,omitempty"`
	ProfileKey string `json:"profile_key,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// Publisher accepts events without blocking the caller. Delivery is best effort.
type Publisher interface {
	Publish(evt Event)
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
func (NopPublisher) Close() error  { return nil }

// New returns an AMQP publisher, or a NopPublisher when mq.url is empty.
func New(cfg config.MQConfig, log *zap.SugaredLogger) (Publisher, error) {
	if cfg.Url == "" {
		return NopPublisher{}, nil
	}
	p, err := Dial(cfg, log)
	if err != nil {
		return nil, err
	}
	return p, nil
}

type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *zap.SugaredLogger

	events chan Event
	done   chan struct{}
	once   sync.Once
}

func Dial(cfg config.MQConfig, log *zap.SugaredLogger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(cfg.Url)
	if err != nil {
		return nil, fmt.Errorf("mq connect: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("mq channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		cfg.QueueName,
		true, false, false, false, nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("mq queue declare: %w", err)
	}

	p := &AMQPPublisher{
		conn:    conn,
		channel: ch,
		queue:   cfg.QueueName,
		log:     log,
		events:  make(chan Event, pendingEvents),
		done:    make(chan struct{}),
	}
	go p.run()
	return p, nil
}

// Publish queues evt; it is dropped when the queue is full.
func (p *AMQPPublisher) Publish(evt Event) {
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().UnixMilli()
	}
	select {
	case p.events <- evt:
	default:
		p.log.Warnw("analytics queue full, dropping event", "type", evt.Type)
	}
}

func (p *AMQPPublisher) run() {
	defer close(p.done)
	for evt := range p.events {
		body, err := jsoniter.Marshal(evt)
		if err != nil {
			continue
		}
		err = p.channel.Publish(
			"",
			p.queue,
			false, false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        body,
			},
		)
		if err != nil {
			p.log.Warnw("publish analytics event failed", "type", evt.Type, "error", err)
		}
	}
}

// Close drains queued events and closes the connection.
func (p *AMQPPublisher) Close() error {
	var err error
	p.once.Do(func() {
		close(p.events)
		<-p.done
		p.channel.Close()
		err = p.conn.Close()
	})
	return err
}
