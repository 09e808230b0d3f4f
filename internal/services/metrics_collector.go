package services

import (
	"log"
	"sync"
	"time"

	"rental-backend/internal/metrics"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// MetricsCollector samples host CPU, memory and disk usage on a fixed
// interval and exports them as Prometheus gauges.
type MetricsCollector struct {
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewMetricsCollector(interval time.Duration) *MetricsCollector {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &MetricsCollector{
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (c *MetricsCollector) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.sample()
		for {
			select {
			case <-ticker.C:
				c.sample()
			case <-c.stopChan:
				return
			}
		}
	}()
	log.Printf("[Metrics] Collector started, sampling every %s", c.interval)
}

func (c *MetricsCollector) Stop() {
	close(c.stopChan)
	c.wg.Wait()
}

func (c *MetricsCollector) sample() {
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		metrics.SystemCPUPercent.Set(percents[0])
	}

	if memStats, err := mem.VirtualMemory(); err == nil {
		metrics.SystemMemoryPercent.Set(memStats.UsedPercent)
	}

	if diskStats, err := disk.Usage("/"); err == nil {
		metrics.SystemDiskPercent.Set(diskStats.UsedPercent)
	}
}
