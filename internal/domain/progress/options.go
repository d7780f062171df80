package progress

import (
	"time"

	"github.com/rpggio/stepwise/internal/events"
)

// ListOptions filters a user's activities.
type ListOptions struct {
	Status *Status
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source. Calendar days for streaks are
// computed in the location of the returned times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithJournal records each transition in the user's journal.
func WithJournal(j JournalLogger) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// WithPublisher publishes each transition as a lifecycle event.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}
