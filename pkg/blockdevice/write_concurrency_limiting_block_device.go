package blockdevice

import (
	"context"

	"golang.org/x/sync/semaphore"
)

type writeConcurrencyLimitingBlockDevice struct {
	BlockDevice
	semaphore *semaphore.Weighted
}

// NewWriteConcurrencyLimitingBlockDevice is a decorator for BlockDevice
// that limits the number of calls to WriteAt() that may run in
// parallel. USB mass storage bridges tend to serialize writes anyway,
// and bounding the concurrency prevents exhaustion of operating system
// level threads when a slow device causes writes to pile up.
func NewWriteConcurrencyLimitingBlockDevice(base BlockDevice, semaphore *semaphore.Weighted) BlockDevice {
	return &writeConcurrencyLimitingBlockDevice{
		BlockDevice: base,
		semaphore:   semaphore,
	}
}

func (bd *writeConcurrencyLimitingBlockDevice) WriteAt(p []byte, off int64) (int, error) {
	if err := bd.semaphore.Acquire(context.Background(), 1); err != nil {
		panic("acquiring semaphore with background context should never fail")
	}
	defer bd.semaphore.Release(1)

	return bd.BlockDevice.WriteAt(p, off)
}
