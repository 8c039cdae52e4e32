package partialfile

import (
	"math/bits"
	"sync"
	"time"

	"github.com/buildbarn/bb-transfer/pkg/blockdevice"
	"github.com/buildbarn/bb-transfer/pkg/clock"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sectorPoolPrometheusMetrics sync.Once

	sectorPoolBuffersAcquired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "partialfile",
			Name:      "sector_pool_buffers_acquired_total",
			Help:      "Number of sector buffers handed out by the pool",
		})
	sectorPoolAcquireTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "partialfile",
			Name:      "sector_pool_acquire_timeouts_total",
			Help:      "Number of times acquiring a sector buffer timed out because all buffers remained in flight",
		})
)

const (
	// SectorPoolSize is the number of sector buffers that may be
	// lent out or in flight at any point in time. The slot mask
	// requires it to fit the width of a uint32.
	SectorPoolSize     = 32
	sectorPoolFullMask = 1<<SectorPoolSize - 1
)

// sectorPool is a fixed capacity pool of single sector write requests.
// Bit i of slotMask is set while slot i is lent out to the writer or in
// flight towards the device. The signal channel carries a binary wakeup
// that is posted on every release.
type sectorPool struct {
	clock       clock.Clock
	waitTimeout time.Duration
	signal      chan struct{}

	lock     sync.Mutex
	slotMask uint32

	requests [SectorPoolSize]blockdevice.SectorRequest
}

func newSectorPool(lunNbr uint8, callback blockdevice.RequestCallback, callbackArg any, clk clock.Clock, waitTimeout time.Duration) *sectorPool {
	sectorPoolPrometheusMetrics.Do(func() {
		prometheus.MustRegister(sectorPoolBuffersAcquired)
		prometheus.MustRegister(sectorPoolAcquireTimeouts)
	})

	sp := &sectorPool{
		clock:       clk,
		waitTimeout: waitTimeout,
		signal:      make(chan struct{}, 1),
	}
	for i := range sp.requests {
		sp.requests[i] = blockdevice.SectorRequest{
			LunNbr:      lunNbr,
			SectorCount: 1,
			Data:        make([]byte, blockdevice.SectorSizeBytes),
			Callback:    callback,
			CallbackArg: callbackArg,
			Slot:        uint32(i),
		}
	}
	return sp
}

// acquire hands out the lowest numbered free slot, blocking while every
// slot is lent out or in flight. It returns nil when no slot frees up
// within the pool's wait timeout. The slot's buffer is zeroed, so that
// a partially filled sector never carries stale contents to the device.
func (sp *sectorPool) acquire() *blockdevice.SectorRequest {
	sp.lock.Lock()
	for sp.slotMask == sectorPoolFullMask {
		sp.lock.Unlock()
		if !sp.waitForRelease() {
			sectorPoolAcquireTimeouts.Inc()
			return nil
		}
		sp.lock.Lock()
	}
	slot := uint32(bits.TrailingZeros32(^sp.slotMask))
	sp.slotMask |= 1 << slot
	if sp.slotMask != sectorPoolFullMask {
		// The wakeup is binary. Pass it along while capacity
		// remains, as other waiters may have lost the race for
		// this one.
		sp.post()
	}
	sp.lock.Unlock()

	r := &sp.requests[slot]
	clear(r.Data)
	sectorPoolBuffersAcquired.Inc()
	return r
}

// release returns a slot to the pool. It is called by the writer for
// slots it abandons and by the completion callback for slots that went
// through the device.
func (sp *sectorPool) release(slot uint32) {
	sp.lock.Lock()
	sp.slotMask &^= 1 << slot
	sp.post()
	sp.lock.Unlock()
}

// sync blocks until no more than inFlightAllowed slots remain lent out
// or in flight. It returns false when that point is not reached within
// the pool's wait timeout.
func (sp *sectorPool) sync(inFlightAllowed int) bool {
	sp.lock.Lock()
	for bits.OnesCount32(sp.slotMask) > inFlightAllowed {
		sp.lock.Unlock()
		if !sp.waitForRelease() {
			return false
		}
		sp.lock.Lock()
	}
	sp.lock.Unlock()
	return true
}

func (sp *sectorPool) waitForRelease() bool {
	// A wakeup that was posted before this wait began is consumed
	// without arming a timer. The caller rechecks the mask anyway.
	select {
	case <-sp.signal:
		return true
	default:
	}
	timer, timeout := sp.clock.NewTimer(sp.waitTimeout)
	select {
	case <-sp.signal:
		timer.Stop()
		return true
	case <-timeout:
		return false
	}
}

func (sp *sectorPool) post() {
	select {
	case sp.signal <- struct{}{}:
	default:
	}
}
