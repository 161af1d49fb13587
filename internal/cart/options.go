package cart

import "log/slog"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and persist problems.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObservers subscribes observers at construction time.
func WithObservers(obs ...Observer) Option {
	return func(s *Store) {
		for _, o := range obs {
			if o != nil {
				s.subscribe(o)
			}
		}
	}
}
