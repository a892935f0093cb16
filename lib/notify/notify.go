// Package notify defines the interface for outbound operational alerts and the asynchronous dispatcher that keeps
// them off the request path.
package notify

import (
	"context"
	"log"
	"time"
)

// Sink is a best-effort outbound alert channel.
type Sink interface {
	Notify(ctx context.Context, text string) error
	Close() error
}

// Dispatcher hands alert texts to a bounded queue consumed by a single worker goroutine. Enqueue never blocks and
// sink failures are logged, never surfaced, so notification delivery cannot fail or delay an API call.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	q       chan string
	done    chan struct{}
}

// NewDispatcher starts the worker for the given sink. backlog bounds the queue; timeout bounds each delivery.
func NewDispatcher(sink Sink, backlog int, timeout time.Duration) *Dispatcher {
	d := &Dispatcher{
		sink:    sink,
		timeout: timeout,
		q:       make(chan string, backlog),
		done:    make(chan struct{}),
	}

	go d.run()

	return d
}

// Enqueue queues text for delivery. When the queue is full the alert is dropped and logged.
func (d *Dispatcher) Enqueue(text string) {
	select {
	case d.q <- text:
	default:
		log.Printf("[notify] queue full, dropping alert: %.60s", text)
	}
}

// Close stops the worker after draining the queue and closes the sink.
func (d *Dispatcher) Close() error {
	close(d.q)
	<-d.done

	return d.sink.Close()
}

func (d *Dispatcher) run() {
	for text := range d.q {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)

		if err := d.sink.Notify(ctx, text); err != nil {
			log.Printf("[notify] delivery failed: %v", err)
		}

		cancel()
	}
	close(d.done)
}

// Nop is a Sink that discards all alerts.
type Nop struct{}

func (Nop) Notify(ctx context.Context, text string) error { return nil }

func (Nop) Close() error { return nil }
