// Package events publishes the terminal outcome of poll sessions.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/csapi/internal/constants"
)

// JobEvent describes how a poll session ended.
type JobEvent struct {
	JobID      string    `json:"job_id"`
	Outcome    string    `json:"outcome"`
	ResultCode int       `json:"result_code,omitempty"`
	Command    string    `json:"command,omitempty"`
	Queries    int       `json:"queries"`
	Elapsed    string    `json:"elapsed"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Outcomes of a poll session.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeTimeout = "timeout"
)

// Publisher receives exactly one event per poll session.
type Publisher interface {
	PublishJob(ctx context.Context, event *JobEvent) error
	Close()
}

// Nop discards events.
type Nop struct{}

// PublishJob implements Publisher.
func (Nop) PublishJob(context.Context, *JobEvent) error { return nil }

// Close implements Publisher.
func (Nop) Close() {}

// conn is the subset of *nats.Conn used by NATSPublisher.
type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATSPublisher publishes events as JSON on "<prefix>.<outcome>".
type NATSPublisher struct {
	conn   conn
	prefix string
}

// NewNATSPublisher connects to url. An empty prefix uses "csapi.jobs".
func NewNATSPublisher(url, prefix string, opts ...nats.Option) (*NATSPublisher, error) {
	opts = append([]nats.Option{nats.Name("csapi")}, opts...)

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	return newNATSPublisher(nc, prefix), nil
}

func newNATSPublisher(c conn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = constants.DefaultEventSubject
	}

	return &NATSPublisher{conn: c, prefix: prefix}
}

// Subject returns the subject an outcome is published on.
func (p *NATSPublisher) Subject(outcome string) string {
	return p.prefix + "." + strings.ToLower(outcome)
}

// PublishJob implements Publisher.
func (p *NATSPublisher) PublishJob(ctx context.Context, event *JobEvent) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding job event: %w", err)
	}

	err = p.conn.Publish(p.Subject(event.Outcome), data)
	if err != nil {
		return fmt.Errorf("publishing job event: %w", err)
	}

	return nil
}

// Close implements Publisher.
func (p *NATSPublisher) Close() {
	p.conn.Close()
}
