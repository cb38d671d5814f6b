package services

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/tablepick/reco/internal/snapshot"
)

type HealthService struct {
	logger   *logrus.Logger
	snapshot *snapshot.Snapshot
	cache    *ResultCache

	healthCheckStatus *prometheus.GaugeVec
	lastHealthCheck   *prometheus.GaugeVec
	systemMetrics     *prometheus.GaugeVec
}

type HealthStatus struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	SnapshotID  string            `json:"snapshot_id"`
	Restaurants int               `json:"restaurants"`
	Users       int               `json:"users"`
	Visits      int               `json:"visits"`
	Services    map[string]string `json:"services"`
	NonCritical []string          `json:"non_critical_failures,omitempty"`
}

func NewHealthService(logger *logrus.Logger, snap *snapshot.Snapshot, cache *ResultCache) *HealthService {
	hs := &HealthService{
		logger:   logger,
		snapshot: snap,
		cache:    cache,
	}

	hs.healthCheckStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "health_check_status",
		Help: "Health check status (1 = healthy, 0 = unhealthy)",
	}, []string{"service"})

	hs.lastHealthCheck = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "health_check_timestamp",
		Help: "Timestamp of last health check",
	}, []string{"service"})

	hs.systemMetrics = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "system_info",
		Help: "System information metrics",
	}, []string{"metric_type"})

	// Ignore duplicate registration so repeated wiring in tests stays quiet.
	if err := prometheus.Register(hs.healthCheckStatus); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			logger.WithError(err).Warn("Failed to register health_check_status metric")
		}
	}
	if err := prometheus.Register(hs.lastHealthCheck); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			logger.WithError(err).Warn("Failed to register health_check_timestamp metric")
		}
	}
	if err := prometheus.Register(hs.systemMetrics); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			logger.WithError(err).Warn("Failed to register system_info metric")
		}
	}

	go hs.collectSystemMetrics()

	return hs
}

// CheckHealth reports the snapshot state and dependency reachability.
// The snapshot lives in memory, so only the optional result cache can
// actually fail, and losing it degrades rather than breaks the service.
func (s *HealthService) CheckHealth() *HealthStatus {
	status := &HealthStatus{
		Timestamp:   time.Now(),
		SnapshotID:  s.snapshot.ID.String(),
		Restaurants: len(s.snapshot.Restaurants),
		Users:       len(s.snapshot.Users),
		Visits:      len(s.snapshot.Visits),
		Services:    make(map[string]string),
	}

	status.Services["snapshot"] = "healthy"
	s.updateHealthMetrics("snapshot", true)

	if s.cache.Enabled() {
		if err := s.checkRedis(); err != nil {
			status.Services["redis"] = "unhealthy"
			status.NonCritical = append(status.NonCritical, "redis")
			s.logger.WithError(err).Warn("Non-critical service redis is unhealthy")
			s.updateHealthMetrics("redis", false)
		} else {
			status.Services["redis"] = "healthy"
			s.updateHealthMetrics("redis", true)
		}
	}

	if len(status.NonCritical) == 0 {
		status.Status = "healthy"
	} else {
		status.Status = "degraded"
	}
	return status
}

func (s *HealthService) checkRedis() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.cache.Ping(ctx)
}

func (s *HealthService) collectSystemMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	var memStats runtime.MemStats

	for range ticker.C {
		runtime.ReadMemStats(&memStats)

		s.systemMetrics.WithLabelValues("memory_alloc_bytes").Set(float64(memStats.Alloc))
		s.systemMetrics.WithLabelValues("memory_sys_bytes").Set(float64(memStats.Sys))
		s.systemMetrics.WithLabelValues("goroutines_count").Set(float64(runtime.NumGoroutine()))
		s.systemMetrics.WithLabelValues("gc_runs_total").Set(float64(memStats.NumGC))
	}
}

func (s *HealthService) updateHealthMetrics(serviceName string, healthy bool) {
	if healthy {
		s.healthCheckStatus.WithLabelValues(serviceName).Set(1)
	} else {
		s.healthCheckStatus.WithLabelValues(serviceName).Set(0)
	}
	s.lastHealthCheck.WithLabelValues(serviceName).Set(float64(time.Now().Unix()))
}
