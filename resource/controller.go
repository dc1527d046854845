// Package resource provides global limits for engine work: a memory budget
// for decompressed tile data and an optional IO throughput cap.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes caps memory held for decompressed attribute data.
	// If 0, usage is tracked but not limited.
	MemoryLimitBytes int64

	// MaxConcurrentIO caps parallel blob fetches. If 0, defaults to 8.
	MaxConcurrentIO int64

	// IOLimitBytesPerSec caps blob read throughput. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller enforces the configured limits. A nil Controller is valid and
// enforces nothing.
type Controller struct {
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	ioSem *semaphore.Weighted

	ioLimiter *rate.Limiter
}

// NewController creates a controller for the given limits.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentIO <= 0 {
		cfg.MaxConcurrentIO = 8
	}

	c := &Controller{
		ioSem: semaphore.NewWeighted(cfg.MaxConcurrentIO),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// AcquireMemory reserves bytes against the memory budget, blocking until the
// reservation fits or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}
	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory returns a reservation made by AcquireMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsed returns the currently reserved byte count.
func (c *Controller) MemoryUsed() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireIO claims an IO slot and waits for throughput budget covering the
// given byte count. Release the slot with ReleaseIO when the read finishes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int64) error {
	if c == nil {
		return nil
	}
	if err := c.ioSem.Acquire(ctx, 1); err != nil {
		return err
	}
	if c.ioLimiter != nil && bytes > 0 {
		burst := int64(c.ioLimiter.Burst())
		for bytes > 0 {
			n := bytes
			if n > burst {
				n = burst
			}
			if err := c.ioLimiter.WaitN(ctx, int(n)); err != nil {
				c.ioSem.Release(1)
				return err
			}
			bytes -= n
		}
	}
	return nil
}

// ReleaseIO returns an IO slot claimed by AcquireIO.
func (c *Controller) ReleaseIO() {
	if c == nil {
		return
	}
	c.ioSem.Release(1)
}
