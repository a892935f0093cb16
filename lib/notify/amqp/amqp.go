// Package amqp implements the notify sink for AMQP compliant brokers (ie RabbitMQ). Operational alerts are
// published to a topic exchange so any number of back-office consumers can fan them out.
package amqp

import (
	"context"
	"log"

	"github.com/streadway/amqp"
)

// Exchange and routing key used for wallet alerts.
const (
	exchange   = "alerts"
	routingKey = "wallet.alert"
)

// Amqp implements a connection to a broker and a channel for reuse.
type Amqp struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// New instantiates a new amqp sink and declares the "alerts" exchange.
func New(uri string) (*Amqp, error) {
	r := &Amqp{}

	var err error
	if r.conn, err = amqp.Dial(uri); err != nil {
		return nil, err
	}

	log.Printf("Connected to %s", uri)

	// declare the exchange on a one-use channel
	channel, err := r.conn.Channel()
	if err != nil {
		return nil, err
	}
	defer channel.Close()

	if err = channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, err
	}

	return r, nil
}

// Notify publishes the alert text to the "alerts" exchange.
func (r *Amqp) Notify(ctx context.Context, text string) (err error) {
	// obtain channel if not present
	if r.ch == nil {
		if r.ch, err = r.conn.Channel(); err != nil {
			return err
		}
	}

	msg := amqp.Publishing{
		Body:        []byte(text),
		ContentType: "text/plain",
	}

	return r.ch.Publish(exchange, routingKey, false, false, msg)
}

// Close terminates gracefully the connection to the AMQP message broker.
func (r *Amqp) Close() error {
	if r.ch != nil {
		if err := r.ch.Close(); err != nil {
			log.Printf("Error closing amqp.Channel:%e", err)
		}
		r.ch = nil
	}

	return r.conn.Close()
}
