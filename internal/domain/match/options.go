package match

// Option configures a BatchResolver.
type Option func(*BatchResolver)

// WithMatcher swaps the matching predicate.
func WithMatcher(m Matcher) Option {
	return func(r *BatchResolver) {
		if m != nil {
			r.matcher = m
		}
	}
}

// WithLookback sets how many weeks before the target are searched.
func WithLookback(weeks int) Option {
	return func(r *BatchResolver) {
		if weeks >= 0 {
			r.lookback = weeks
		}
	}
}
