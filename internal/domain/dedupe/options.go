package dedupe

// Option configures the digest cache.
type Option func(*digestCache)

// WithMaxSize bounds the cache; zero or negative means unbounded.
func WithMaxSize(n int) Option {
	return func(c *digestCache) {
		c.maxSize = n
	}
}
