package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/ignite/enquiry-crm/internal/pkg/httputil"
	"github.com/redis/go-redis/v9"
)

// HealthStatus represents the overall health of the system.
type HealthStatus struct {
	Status  string                    `json:"status"` // "healthy", "degraded", "unhealthy"
	Version string                    `json:"version"`
	Uptime  string                    `json:"uptime"`
	Checks  map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck represents the health of a single component.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down", "degraded"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// ArchiveChecker is implemented by the snapshot archive sinks.
type ArchiveChecker interface {
	Check(ctx context.Context) error
	Name() string
}

// SnapshotClock reports when the newest snapshot was taken.
type SnapshotClock interface {
	LastCreatedAt(ctx context.Context) (time.Time, bool, error)
}

// HealthChecker checks the system dependencies (DB, Redis, archive) and
// snapshot freshness.
type HealthChecker struct {
	db          *sql.DB
	redisClient *redis.Client
	archive     ArchiveChecker
	snapshots   SnapshotClock
	maxAge      time.Duration
	startTime   time.Time
	now         func() time.Time
}

// NewHealthChecker creates a new HealthChecker.
// Any dependency can be nil; the check will report "not configured" for nil deps.
// Snapshots older than maxAge are reported as degraded.
func NewHealthChecker(db *sql.DB, redisClient *redis.Client, archive ArchiveChecker, snapshots SnapshotClock, maxAge time.Duration) *HealthChecker {
	return &HealthChecker{
		db:          db,
		redisClient: redisClient,
		archive:     archive,
		snapshots:   snapshots,
		maxAge:      maxAge,
		startTime:   time.Now(),
		now:         time.Now,
	}
}

const healthVersion = "1.0.0"

// HandleHealth returns the status of all components. Always 200; the
// status field carries the verdict.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())

	httputil.OK(w, HealthStatus{
		Status:  determineOverallStatus(checks),
		Version: healthVersion,
		Uptime:  formatUptime(time.Since(hc.startTime)),
		Checks:  checks,
	})
}

// HandleLiveness always returns 200 while the process is up.
//
//	GET /health/live
func (hc *HealthChecker) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status": "alive",
		"uptime": formatUptime(time.Since(hc.startTime)),
	})
}

// HandleReadiness returns 503 when the service is unhealthy.
//
//	GET /health/ready
func (hc *HealthChecker) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())
	overall := determineOverallStatus(checks)

	ready := overall != "unhealthy"
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	httputil.JSON(w, status, map[string]any{
		"ready":  ready,
		"status": overall,
		"checks": checks,
	})
}

// ---------------------------------------------------------------------------
// Individual component checks
// ---------------------------------------------------------------------------

func (hc *HealthChecker) runAllChecks(ctx context.Context) map[string]ComponentCheck {
	type result struct {
		name  string
		check ComponentCheck
	}
	ch := make(chan result, 4)

	go func() { ch <- result{"database", hc.checkDatabase(ctx)} }()
	go func() { ch <- result{"redis", hc.checkRedis(ctx)} }()
	go func() { ch <- result{"archive", hc.checkArchive(ctx)} }()
	go func() { ch <- result{"snapshots", hc.checkSnapshots(ctx)} }()

	checks := make(map[string]ComponentCheck, 4)
	for i := 0; i < 4; i++ {
		r := <-ch
		checks[r.name] = r.check
	}
	return checks
}

// checkDatabase pings PostgreSQL with a 3-second timeout.
func (hc *HealthChecker) checkDatabase(ctx context.Context) ComponentCheck {
	if hc.db == nil {
		return ComponentCheck{Status: "down", Message: "not configured"}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	err := hc.db.PingContext(pingCtx)
	latency := time.Since(start)
	if err != nil {
		return ComponentCheck{Status: "down", Latency: latency.String(), Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return latencyCheck(latency, time.Second)
}

// checkRedis pings Redis with a 2-second timeout.
func (hc *HealthChecker) checkRedis(ctx context.Context) ComponentCheck {
	if hc.redisClient == nil {
		return ComponentCheck{Status: "down", Message: "not configured"}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := hc.redisClient.Ping(pingCtx).Err()
	latency := time.Since(start)
	if err != nil {
		return ComponentCheck{Status: "down", Latency: latency.String(), Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return latencyCheck(latency, 500*time.Millisecond)
}

func (hc *HealthChecker) checkArchive(ctx context.Context) ComponentCheck {
	if hc.archive == nil {
		return ComponentCheck{Status: "down", Message: "not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	err := hc.archive.Check(checkCtx)
	latency := time.Since(start)
	if err != nil {
		return ComponentCheck{Status: "down", Latency: latency.String(), Message: err.Error()}
	}
	return ComponentCheck{Status: "up", Latency: latency.String(), Message: hc.archive.Name() + " archive writable"}
}

// checkSnapshots reports degraded when the newest snapshot is older than
// maxAge, which usually means the scheduled worker has stopped.
func (hc *HealthChecker) checkSnapshots(ctx context.Context) ComponentCheck {
	if hc.snapshots == nil {
		return ComponentCheck{Status: "down", Message: "not configured"}
	}

	queryCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	last, ok, err := hc.snapshots.LastCreatedAt(queryCtx)
	if err != nil {
		return ComponentCheck{Status: "degraded", Message: fmt.Sprintf("snapshot lookup failed: %v", err)}
	}
	if !ok {
		return ComponentCheck{Status: "degraded", Message: "no snapshots yet"}
	}

	age := hc.now().Sub(last)
	if hc.maxAge > 0 && age > hc.maxAge {
		return ComponentCheck{Status: "degraded", Message: fmt.Sprintf("last snapshot %s ago", formatUptime(age))}
	}
	return ComponentCheck{Status: "up", Message: fmt.Sprintf("last snapshot %s ago", formatUptime(age))}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func latencyCheck(latency, slow time.Duration) ComponentCheck {
	if latency > slow {
		return ComponentCheck{Status: "degraded", Latency: latency.String(), Message: fmt.Sprintf("slow response (%s)", latency)}
	}
	return ComponentCheck{Status: "up", Latency: latency.String(), Message: "connected"}
}

// determineOverallStatus derives the aggregate status from individual checks.
//
// Rules:
//   - "unhealthy" if database is down (critical dependency)
//   - "degraded"  if any check is degraded or a non-critical check is down
//   - "healthy"   otherwise
func determineOverallStatus(checks map[string]ComponentCheck) string {
	if db, ok := checks["database"]; ok && db.Status == "down" && db.Message != "not configured" {
		return "unhealthy"
	}
	for _, c := range checks {
		if c.Status == "degraded" {
			return "degraded"
		}
		if c.Status == "down" && c.Message != "not configured" {
			return "degraded"
		}
	}
	return "healthy"
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
