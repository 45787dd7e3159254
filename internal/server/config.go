package server

import "github.com/nodepress/designer/internal/logging"

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// Logger overrides the default stdout logger.
	Logger logging.Logger
}
