package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/fintrack/internal/database"
)

// SystemStatusResponse is the payload of GET /api/system/status
type SystemStatusResponse struct {
	Status        string          `json:"status"`
	UptimeSeconds float64         `json:"uptime_seconds"`
	CPUPercent    float64         `json:"cpu_percent"`
	MemoryPercent float64         `json:"memory_percent"`
	Goroutines    int             `json:"goroutines"`
	GoVersion     string          `json:"go_version"`
	CacheBackend  string          `json:"cache_backend"`
	CacheDB       *database.Stats `json:"cache_db,omitempty"`
	CacheDBError  string          `json:"cache_db_error,omitempty"`
	LastChecked   string          `json:"last_checked"`
}

// SystemHandlers serves process and host status
type SystemHandlers struct {
	cacheDB      *database.DB
	cacheBackend string
	startupTime  time.Time
	systemStats  func() (float64, float64)
	log          zerolog.Logger
}

// NewSystemHandlers creates the system handlers. cacheDB may be nil when the
// in-memory cache backend is used.
func NewSystemHandlers(cacheDB *database.DB, cacheBackend string, log zerolog.Logger) *SystemHandlers {
	h := &SystemHandlers{
		cacheDB:      cacheDB,
		cacheBackend: cacheBackend,
		startupTime:  time.Now(),
		log:          log.With().Str("handler", "system").Logger(),
	}
	h.systemStats = h.getSystemStats
	return h
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.systemStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: time.Since(h.startupTime).Seconds(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
		GoVersion:     runtime.Version(),
		CacheBackend:  h.cacheBackend,
		LastChecked:   time.Now().Format(time.RFC3339),
	}

	if h.cacheDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.cacheDB.HealthCheck(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Cache database health check failed")
			response.Status = "degraded"
			response.CacheDBError = err.Error()
		} else if stats, err := h.cacheDB.GetStats(); err != nil {
			h.log.Warn().Err(err).Msg("Failed to get cache database stats")
			response.CacheDBError = err.Error()
		} else {
			response.CacheDB = stats
		}
	}

	writeJSON(w, h.log, http.StatusOK, response)
}

// getSystemStats samples CPU over 100ms and reads memory usage instantly
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
