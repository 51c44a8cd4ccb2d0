package api

import "github.com/okian/gradematch/pkg/logger"

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS origins allowed to call the API.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithMaxUploadMB caps the multipart body accepted by the match endpoint.
func WithMaxUploadMB(mb int) Option {
	return func(s *Server) {
		if mb > 0 {
			s.maxUpload = int64(mb) << 20
		}
	}
}

// WithOutputName sets the attachment file name of result workbooks.
func WithOutputName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.outputName = name
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
