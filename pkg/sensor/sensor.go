package sensor

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Snapshot is a lightweight view of process and host resources, used
// by the admin stats endpoint. Fields are best-effort and may be zero
// on unsupported platforms.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	Goroutines int    `json:"goroutines"`
	HeapBytes  uint64 `json:"heap_bytes"`
	SysBytes   uint64 `json:"sys_bytes"`
	NumGC      uint32 `json:"num_gc"`

	// Disk usage for the filesystem holding the message store.
	DiskTotal uint64 `json:"disk_total"`
	DiskFree  uint64 `json:"disk_free"`
}

// Sensor polls process and disk stats on an interval and exposes the
// most recent snapshot.
type Sensor struct {
	mu       sync.RWMutex
	snap     Snapshot
	diskPath string
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSensor creates a sensor sampling every interval. diskPath is the
// directory whose filesystem usage is reported.
func NewSensor(diskPath string, interval time.Duration) *Sensor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	s := &Sensor{diskPath: diskPath, interval: interval}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Start begins background polling. Call Stop to terminate.
func (s *Sensor) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		s.sample()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.sample()
			}
		}
	}()
}

// Stop stops background polling and waits for the worker to exit.
func (s *Sensor) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Snapshot returns the most recent snapshot.
func (s *Sensor) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Sensor) sample() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	snap := Snapshot{
		Timestamp:  time.Now().UTC(),
		Goroutines: runtime.NumGoroutine(),
		HeapBytes:  ms.HeapAlloc,
		SysBytes:   ms.Sys,
		NumGC:      ms.NumGC,
	}
	if s.diskPath != "" {
		var st unix.Statfs_t
		if err := unix.Statfs(s.diskPath, &st); err == nil {
			snap.DiskTotal = uint64(st.Blocks) * uint64(st.Bsize)
			snap.DiskFree = uint64(st.Bavail) * uint64(st.Bsize)
		}
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}
