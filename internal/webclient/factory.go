package webclient

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nodepress/designer/internal/logging"
)

// Config selects and tunes a backend.
type Config struct {
	Backend   string
	Timeout   time.Duration
	IdleAfter time.Duration
	Headless  bool
}

// DefaultConfig returns the nethttp backend with conservative timeouts.
func DefaultConfig() *Config {
	return &Config{
		Backend:   "nethttp",
		Timeout:   30 * time.Second,
		IdleAfter: 2 * time.Second,
		Headless:  true,
	}
}

// BackendConstructor constructs a WebClient given the config and logger.
type BackendConstructor func(cfg *Config, logger logging.Logger) (WebClient, error)

var (
	mu       sync.RWMutex
	backends = map[string]BackendConstructor{}
)

// RegisterBackend registers a named backend constructor. Name is lower-cased
// internally; re-registering a name overwrites the previous constructor.
func RegisterBackend(name string, ctor BackendConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	backends[strings.ToLower(name)] = ctor
}

// New constructs the configured backend. It returns an error if the named
// backend has not been registered.
func New(cfg *Config, logger logging.Logger) (WebClient, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = "nethttp"
	}

	mu.RLock()
	ctor, ok := backends[backend]
	mu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("webclient backend %q not registered: available backends=%v", backend, ListBackends())
	}

	wc, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to construct webclient backend %q: %w", backend, err)
	}
	if wc == nil {
		return nil, errors.New("webclient constructor returned nil")
	}
	return wc, nil
}

// ListBackends returns the registered backend names.
func ListBackends() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(backends))
	for k := range backends {
		out = append(out, k)
	}
	return out
}

// RegisterDefaultBackends registers the nethttp and chromedp backends. Call
// early in main() to make them available to New.
func RegisterDefaultBackends() {
	RegisterBackend("nethttp", func(cfg *Config, logger logging.Logger) (WebClient, error) {
		return NewNetHTTPClient(cfg, logger, nil)
	})
	RegisterBackend("chromedp", func(cfg *Config, logger logging.Logger) (WebClient, error) {
		return NewChromeDPClient(cfg, logger)
	})
}
