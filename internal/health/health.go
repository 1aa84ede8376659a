// Package health reports process and dependency status for uptime probes.
package health

import (
	"context"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional for the health check. If nil, the database is
// reported as disconnected.
type DBPinger interface {
	Ping() error
}

type Result struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	Memory    MemoryInfo `json:"memory"`
	Platform  string     `json:"platform"`
	GoVersion string     `json:"goVersion"`
}

type MemoryInfo struct {
	AllocMB    int `json:"allocMB"`
	HeapUsedMB int `json:"heapUsedMB"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// Collect pings the database and Redis and gathers runtime stats.
// Status is "ok" only when both dependencies answer.
func Collect(ctx context.Context, rdb *redis.Client, db DBPinger) Result {
	result := Result{Dependencies: make(map[string]DepStatus)}

	dbStatus := "disconnected"
	var dbPingMs *int64
	if db != nil {
		start := time.Now()
		if err := db.Ping(); err == nil {
			ms := time.Since(start).Milliseconds()
			dbPingMs = &ms
			dbStatus = "connected"
		} else {
			dbStatus = "error"
		}
	}
	result.Dependencies["database"] = DepStatus{Status: dbStatus, PingMs: dbPingMs}

	redisStatus := "disconnected"
	var redisPingMs *int64
	if rdb != nil {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisPingMs = &ms
			redisStatus = "connected"
		} else {
			redisStatus = "error"
		}
	}
	result.Dependencies["redis"] = DepStatus{Status: redisStatus, PingMs: redisPingMs}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	result.Runtime = RuntimeInfo{
		Memory:    MemoryInfo{AllocMB: int(m.Alloc / 1024 / 1024), HeapUsedMB: int(m.HeapInuse / 1024 / 1024)},
		Platform:  runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion: runtime.Version(),
	}

	if dbStatus == "connected" && redisStatus == "connected" {
		result.Status = "ok"
	} else {
		result.Status = "issue"
	}
	return result
}
