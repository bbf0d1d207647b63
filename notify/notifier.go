// Package notify delivers alerts to chat channels. Notifications fan out
// to every registered Sender and can be filtered by event type.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Event types accepted by Notifier.Notify.
const (
	EventInfo    = "info"
	EventTrade   = "trade"
	EventRisk    = "risk"
	EventError   = "error"
	EventSummary = "summary"
)

// Sender is one notification channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier dispatches to its senders. A failing sender does not stop
// delivery to the rest.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	log     zerolog.Logger
}

// NewNotifier forwards only the listed event types; an empty list allows all.
func NewNotifier(senders []Sender, events []string, log zerolog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		if e = strings.TrimSpace(strings.ToLower(e)); e != "" {
			allowed[e] = true
		}
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		log:     log.With().Str("component", "notifier").Logger(),
	}
}

func (n *Notifier) Enabled() bool { return len(n.senders) > 0 }

func (n *Notifier) Allows(event string) bool {
	return len(n.events) == 0 || n.events[event]
}

func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if !n.Allows(event) {
		n.log.Debug().Str("event", event).Msg("event filtered out")
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// NotifyAll bypasses the event filter.
func (n *Notifier) NotifyAll(ctx context.Context, title, message string) error {
	return n.dispatch(ctx, title, message)
}

func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	var errs []error
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.log.Error().Err(err).Str("sender", s.Name()).Msg("sender failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		n.log.Debug().Str("sender", s.Name()).Str("title", title).Msg("notification sent")
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %w", len(errs), errors.Join(errs...))
	}
	return nil
}
