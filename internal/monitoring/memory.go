package monitoring

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// MemoryMonitor samples runtime memory statistics into Metrics
type MemoryMonitor struct {
	metrics   *Metrics
	logger    *Logger
	interval  time.Duration
	threshold float64
}

// NewMemoryMonitor creates a monitor sampling every interval. A heap
// utilization above threshold (0-1) is logged.
func NewMemoryMonitor(metrics *Metrics, logger *Logger, interval time.Duration, threshold float64) *MemoryMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if threshold <= 0 || threshold > 1 {
		threshold = 0.9
	}
	return &MemoryMonitor{
		metrics:   metrics,
		logger:    logger,
		interval:  interval,
		threshold: threshold,
	}
}

// Run samples until ctx is cancelled
func (mm *MemoryMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(mm.interval)
	defer ticker.Stop()

	mm.Sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mm.Sample()
		}
	}
}

// Sample reads the runtime statistics once
func (mm *MemoryMonitor) Sample() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	mm.metrics.RecordGCMetrics(
		int64(memStats.NumGC),
		int64(memStats.PauseTotalNs),
		int64(memStats.HeapAlloc),
		int64(memStats.HeapSys),
	)

	if memStats.HeapSys == 0 {
		return
	}
	utilization := float64(memStats.HeapInuse) / float64(memStats.HeapSys)
	if utilization > mm.threshold {
		mm.logger.SystemLogger("memory_pressure", fmt.Sprintf(
			"utilization:%.2f inuse:%dMB sys:%dMB goroutines:%d",
			utilization,
			memStats.HeapInuse/(1024*1024),
			memStats.HeapSys/(1024*1024),
			runtime.NumGoroutine(),
		))
	}
}
