package stats

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/alexivanou/geoweather-api/internal/config"
	"github.com/jmoiron/sqlx"
)

type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Memory    MemoryStats   `json:"memory"`
	Storage   StorageStats  `json:"storage"`
	Resources ResourceStats `json:"resources"`
	Runtime   RuntimeStats  `json:"runtime"`
}

type MemoryStats struct {
	Alloc        uint64 `json:"alloc"`
	TotalAlloc   uint64 `json:"total_alloc"`
	Sys          uint64 `json:"sys"`
	NumGC        uint32 `json:"num_gc"`
	HeapAlloc    uint64 `json:"heap_alloc"`
	HeapSys      uint64 `json:"heap_sys"`
	HeapInuse    uint64 `json:"heap_inuse"`
	HeapReleased uint64 `json:"heap_released"`
}

// StorageStats describes where recent places live
type StorageStats struct {
	Backend   string `json:"backend"`
	DBType    string `json:"db_type,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	Slots     int    `json:"slots"`
}

// ResourceStats lists the bundles loaded so far per domain
type ResourceStats struct {
	Languages int                 `json:"languages"`
	Loaded    map[string][]string `json:"loaded"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// SlotCounter reports the number of stored recent-place slots
type SlotCounter interface {
	Count(ctx context.Context) (int, error)
}

// BundleLister reports which languages of a bundle domain are cached
type BundleLister interface {
	Loaded() []string
}

// Options configures a Collector. DB and Slots are optional.
type Options struct {
	Backend   config.RecentBackend
	DB        *sqlx.DB
	DBConfig  config.DBConfig
	Slots     SlotCounter
	Bundles   map[string]BundleLister
	Languages int
}

type Collector struct {
	opts       Options
	startTime  time.Time
	cachedMem  *MemoryStats
	cacheTime  time.Time
	cacheMutex sync.RWMutex
}

var (
	memStatsCacheDuration = 5 * time.Second
)

func NewCollector(opts Options) *Collector {
	return &Collector{
		opts:      opts,
		startTime: time.Now(),
	}
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Timestamp: time.Now(),
	}

	stats.Memory = c.collectMemoryStats()

	storage, err := c.collectStorageStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.Storage = *storage
	stats.Resources = c.collectResourceStats()
	stats.Runtime = c.collectRuntimeStats()

	return stats, nil
}

func (c *Collector) collectMemoryStats() MemoryStats {
	c.cacheMutex.RLock()
	if c.cachedMem != nil && time.Since(c.cacheTime) < memStatsCacheDuration {
		mem := *c.cachedMem
		c.cacheMutex.RUnlock()
		return mem
	}
	c.cacheMutex.RUnlock()

	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mem := MemoryStats{
		Alloc:        m.Alloc,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		HeapInuse:    m.HeapInuse,
		HeapReleased: m.HeapReleased,
	}

	c.cachedMem = &mem
	c.cacheTime = time.Now()

	return mem
}

func (c *Collector) collectStorageStats(ctx context.Context) (*StorageStats, error) {
	stats := &StorageStats{
		Backend: string(c.opts.Backend),
	}

	if c.opts.DB != nil {
		stats.DBType = string(c.opts.DBConfig.Type)
		if size, err := c.getDatabaseSize(ctx); err == nil {
			stats.SizeBytes = size
		}
	}

	if c.opts.Slots != nil {
		count, err := c.opts.Slots.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count recent slots: %w", err)
		}
		stats.Slots = count
	}

	return stats, nil
}

func (c *Collector) getDatabaseSize(ctx context.Context) (int64, error) {
	var size int64
	var err error

	if c.opts.DBConfig.Type == config.DBTypePostgreSQL {
		err = c.opts.DB.GetContext(ctx, &size, "SELECT pg_total_relation_size('recent_slots')")
	} else {
		err = c.opts.DB.GetContext(ctx, &size, "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	}

	if err != nil {
		return 0, err
	}
	return size, nil
}

func (c *Collector) collectResourceStats() ResourceStats {
	loaded := make(map[string][]string, len(c.opts.Bundles))
	for domain, lister := range c.opts.Bundles {
		loaded[domain] = lister.Loaded()
	}
	return ResourceStats{
		Languages: c.opts.Languages,
		Loaded:    loaded,
	}
}

func (c *Collector) collectRuntimeStats() RuntimeStats {
	uptime := time.Since(c.startTime).Seconds()
	return RuntimeStats{
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		UptimeSeconds: int64(uptime),
	}
}
