package publishers

import (
	"context"
	"errors"
	"fmt"
)

// Fanout delivers a like-count event to every configured sink. Sinks fail
// independently: a broken sink is reported but never stops delivery to the
// rest, so a flaky webhook cannot starve the queue publishers.
type Fanout struct {
	sinks []Publisher
}

// NewFanout builds a fanout over the given sinks, dropping nil entries.
func NewFanout(sinks []Publisher) *Fanout {
	out := make([]Publisher, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		out = append(out, s)
	}
	return &Fanout{sinks: out}
}

// Publish forwards the event to each sink in order. It returns how many
// sinks accepted the event and the joined errors from those that did not.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.sinks) == 0 {
		return 0, nil
	}

	delivered := 0
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s sink[%s]: %w", sink.Type(), sink.ID(), err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Size reports the number of wired sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}
