package contact

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/DukeRupert/contactform/internal/email"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSender records every Send and fails per message kind on demand.
type fakeSender struct {
	mu    sync.Mutex
	calls []email.Message
	errs  map[email.Kind]error

	// When set, Send for that kind blocks until the channel is closed.
	block map[email.Kind]chan struct{}
	// Receives the kind of every Send as it starts, if non-nil.
	started chan email.Kind
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		errs:  make(map[email.Kind]error),
		block: make(map[email.Kind]chan struct{}),
	}
}

func (s *fakeSender) Send(ctx context.Context, msg email.Message) error {
	s.mu.Lock()
	s.calls = append(s.calls, msg)
	err := s.errs[msg.Kind]
	wait := s.block[msg.Kind]
	started := s.started
	s.mu.Unlock()

	if started != nil {
		started <- msg.Kind
	}
	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (s *fakeSender) kinds() []email.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]email.Kind, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.Kind)
	}
	return out
}

func (s *fakeSender) messages() []email.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]email.Message(nil), s.calls...)
}

func testDeliveryConfig() *DeliveryConfig {
	cfg, err := NewDeliveryConfig("service_abc", "template_admin", "template_reply", "pk_123")
	if err != nil {
		panic(err)
	}
	return cfg
}

func annPayload() FormPayload {
	return NewFormPayload("Ann", "ann@x.com", "Hi")
}
