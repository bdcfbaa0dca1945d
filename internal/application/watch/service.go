// Package watch coordinates file watching with command re-runs.
package watch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jbctechsolutions/cmdrunner/internal/infrastructure/logging"
	infraWatch "github.com/jbctechsolutions/cmdrunner/internal/infrastructure/watch"
)

// ChangeEvent describes a debounced file change seen by the service.
type ChangeEvent struct {
	Path      string
	Type      string // "create", "write", "remove", "rename"
	Timestamp time.Time
}

// ServiceConfig holds configuration for the watch Service.
type ServiceConfig struct {
	// Paths are the directories to watch. At least one is required.
	Paths []string
	// DebounceDuration is the debounce window for file changes.
	DebounceDuration time.Duration
	// Extensions restricts events to the given file extensions
	// (including the dot). Empty means all files.
	Extensions []string
	// OnChange is called for each debounced change. Callbacks run
	// sequentially on the event goroutine, so a slow callback delays
	// later changes instead of overlapping them.
	OnChange func(event ChangeEvent)
}

// Service watches project paths and invokes a callback on changes.
// The watch command uses it to re-run a manifest command whenever
// watched files change.
type Service struct {
	watcher *infraWatch.Watcher
	logger  *logging.Logger
	config  ServiceConfig

	// State
	running bool
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService creates a new watch Service.
func NewService(cfg ServiceConfig, logger *logging.Logger) (*Service, error) {
	if len(cfg.Paths) == 0 {
		return nil, fmt.Errorf("at least one path to watch is required")
	}

	// Set defaults
	if cfg.DebounceDuration <= 0 {
		cfg.DebounceDuration = 100 * time.Millisecond
	}

	watcher, err := infraWatch.NewWatcher(infraWatch.Config{
		DebounceDuration: cfg.DebounceDuration,
		BufferSize:       100,
		Extensions:       cfg.Extensions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Use default logger if none provided
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}

	return &Service{
		watcher: watcher,
		logger:  logger,
		config:  cfg,
	}, nil
}

// Start begins watching the configured paths.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil // Already running
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	// Keep only paths that exist
	var paths []string
	for _, path := range s.config.Paths {
		if _, err := os.Stat(path); err == nil {
			paths = append(paths, path)
		}
	}

	if len(paths) == 0 {
		return fmt.Errorf("no watchable paths among %v", s.config.Paths)
	}

	// Start the watcher
	if err := s.watcher.Watch(s.ctx, paths...); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	// Start event processing goroutine
	s.wg.Add(1)
	go s.processEvents()

	s.running = true
	s.logger.Info("watch service started", "paths", paths)

	return nil
}

// Stop stops watching for file changes.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil // Not running
	}

	s.cancel()
	if err := s.watcher.Close(); err != nil {
		s.logger.Warn("error closing watcher", "error", err)
	}
	s.wg.Wait()

	s.running = false
	s.logger.Info("watch service stopped")

	return nil
}

// IsRunning returns true if the service is currently running.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// processEvents handles watch events from the watcher.
func (s *Service) processEvents() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return

		case event, ok := <-s.watcher.Events():
			if !ok {
				return
			}
			s.handleEvent(event)

		case err, ok := <-s.watcher.Errors():
			if !ok {
				return
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// handleEvent forwards a single file system event to the change callback.
func (s *Service) handleEvent(event infraWatch.Event) {
	s.logger.Debug("file change detected",
		"path", event.Path,
		"type", string(event.Type),
	)

	if s.config.OnChange == nil {
		return
	}

	s.config.OnChange(ChangeEvent{
		Path:      event.Path,
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
	})
}
