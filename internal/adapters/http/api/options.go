package api

// Option configures the API server.
type Option func(*Server)

// WithMaxUploadBytes bounds a multipart replay upload.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.replaysHandler.maxUploadBytes = n
		}
	}
}
