package health

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Checker defines the interface for health checking components
type Checker interface {
	HealthCheck(ctx context.Context) error
	IsCritical() bool // Critical services block startup if unhealthy
	Name() string
}

// Manager aggregates health checkers
type Manager struct {
	checkers []Checker
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewManager creates a new health manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		checkers: make([]Checker, 0),
		logger:   logger,
	}
}

// AddChecker adds a health checker to the manager
func (h *Manager) AddChecker(checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, checker)
}

// StartupHealthCheck performs critical health checks that must pass for startup
func (h *Manager) StartupHealthCheck(ctx context.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var criticalFailures []error

	for _, checker := range h.checkers {
		err := checker.HealthCheck(ctx)
		if err == nil {
			h.logger.Info("Service health check passed",
				zap.String("service", checker.Name()),
				zap.Bool("critical", checker.IsCritical()))
			continue
		}

		if checker.IsCritical() {
			criticalFailures = append(criticalFailures, fmt.Errorf("%s: %w", checker.Name(), err))
			h.logger.Error("Critical service health check failed",
				zap.String("service", checker.Name()),
				zap.Error(err))
		} else {
			h.logger.Warn("Non-critical service health check failed",
				zap.String("service", checker.Name()),
				zap.Error(err))
		}
	}

	if len(criticalFailures) > 0 {
		return fmt.Errorf("critical services failed health check: %v", criticalFailures)
	}

	h.logger.Info("All critical services healthy", zap.Int("total_checks", len(h.checkers)))
	return nil
}

// RuntimeHealthCheck runs every checker and returns the result per checker name
func (h *Manager) RuntimeHealthCheck(ctx context.Context) map[string]error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	results := make(map[string]error, len(h.checkers))
	for _, checker := range h.checkers {
		results[checker.Name()] = checker.HealthCheck(ctx)
	}

	return results
}

// Healthy reports whether no critical checker failed in results
func (h *Manager) Healthy(results map[string]error) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, checker := range h.checkers {
		if checker.IsCritical() && results[checker.Name()] != nil {
			return false
		}
	}
	return true
}

// StorageHealthChecker checks that the collection can be read
type StorageHealthChecker struct {
	load func(ctx context.Context) error
}

// NewStorageHealthChecker creates a storage health checker around a load function
func NewStorageHealthChecker(load func(ctx context.Context) error) *StorageHealthChecker {
	return &StorageHealthChecker{load: load}
}

func (s *StorageHealthChecker) HealthCheck(ctx context.Context) error {
	if s.load == nil {
		return fmt.Errorf("storage loader is nil")
	}
	return s.load(ctx)
}

func (s *StorageHealthChecker) IsCritical() bool {
	return true
}

func (s *StorageHealthChecker) Name() string {
	return "storage"
}

// Pinger is anything that can check its connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseHealthChecker checks database connectivity. It is not critical:
// the storage checker already fails when the collection cannot be read.
type DatabaseHealthChecker struct {
	db Pinger
}

// NewDatabaseHealthChecker creates a database health checker
func NewDatabaseHealthChecker(db Pinger) *DatabaseHealthChecker {
	return &DatabaseHealthChecker{db: db}
}

func (d *DatabaseHealthChecker) HealthCheck(ctx context.Context) error {
	if d.db == nil {
		return fmt.Errorf("database is nil")
	}
	return d.db.Ping(ctx)
}

func (d *DatabaseHealthChecker) IsCritical() bool {
	return false
}

func (d *DatabaseHealthChecker) Name() string {
	return "database"
}
