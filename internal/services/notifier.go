package services

import (
	"context"

	"github.com/panelmurah/ptero-store/internal/views"
)

// Notifier delivers lifecycle events. Implementations must be fire-and-forget:
// a failed delivery is logged and dropped, never returned to the caller.
type Notifier interface {
	Notify(ctx context.Context, event views.Event)
	Close()
}

// NoopNotifier discards all events. Used when no channel is configured and in tests.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, views.Event) {}
func (NoopNotifier) Close()                              {}

// FanoutNotifier delivers each event to every configured channel.
type FanoutNotifier struct {
	targets []Notifier
}

func NewFanoutNotifier(targets ...Notifier) *FanoutNotifier {
	return &FanoutNotifier{targets: targets}
}

func (f *FanoutNotifier) Notify(ctx context.Context, event views.Event) {
	for _, t := range f.targets {
		t.Notify(ctx, event)
	}
}

func (f *FanoutNotifier) Close() {
	for _, t := range f.targets {
		t.Close()
	}
}
