package partialfile

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/buildbarn/bb-transfer/pkg/blockdevice"
	"github.com/buildbarn/bb-transfer/pkg/clock"
	"github.com/buildbarn/bb-transfer/pkg/fat"
	"github.com/buildbarn/bb-transfer/pkg/util"
	"github.com/prometheus/client_golang/prometheus"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	partialFilePrometheusMetrics sync.Once

	partialFileSectorsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "partialfile",
			Name:      "sectors_submitted_total",
			Help:      "Number of sector writes submitted to the storage device",
		})
	partialFileSectorWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "partialfile",
			Name:      "sector_write_failures_total",
			Help:      "Number of sector writes that completed with a failure",
		})
)

// DefaultAcquireTimeout is the default bound on how long acquiring a
// sector buffer or draining in-flight writes may block. It corresponds
// to the read/write timeout commonly applied to USB mass storage
// transfers.
const DefaultAcquireTimeout = 10 * time.Second

const progressBarWidth = 40

// PartialFile accepts an unordered, possibly sparse stream of byte
// ranges destined for a single file and commits them to the underlying
// storage device, keeping a record of which byte ranges have been made
// durable. It exists to make downloads resumable: a transfer can be
// interrupted at any point and continued later from the persisted
// State, without retransmitting ranges that already reached the device.
//
// The data path bypasses the file system. The file is created as one
// contiguous extent, after which all writes are issued against raw
// sector numbers through a RequestQueue. A read-only lock descriptor on
// the file is held open for the lifetime of the PartialFile, so that
// the file system cannot reallocate the extent's sectors to another
// file while they are being written.
//
// A PartialFile is owned by a single producer goroutine, which is the
// only permitted caller of Seek(), Write(), Sync() and Close().
// Completion callbacks arrive on arbitrary goroutines, but only touch
// the sector pool and an atomic error flag.
type PartialFile struct {
	requestQueue   blockdevice.RequestQueue
	errorLogger    util.ErrorLogger
	pool           *sectorPool
	fileLock       fat.FileLock
	firstSectorNbr int64

	// Set by completion callbacks on failure. Sticky: once a write
	// has failed, the State no longer describes what is on the
	// device and the caller must discard it.
	writeError atomic.Bool

	currentSector       *blockdevice.SectorRequest
	currentOffset       int64
	state               State
	lastProgressPercent int
}

// Create opens a partial file at the provided path, eagerly allocating
// a contiguous extent of the requested size. The returned PartialFile
// starts out with an empty progress record. If the file cannot be
// created or its extent cannot be allocated, the path is removed.
// Failures while binding the allocated file leave the file in place.
func Create(volume fat.Volume, requestQueue blockdevice.RequestQueue, path string, sizeBytes int64, clk clock.Clock, acquireTimeout time.Duration, errorLogger util.ErrorLogger) (*PartialFile, error) {
	f, err := volume.CreateFile(path)
	if err != nil {
		volume.RemoveFile(path)
		return nil, util.StatusWrap(err, "Failed to write to location")
	}
	if err := f.Expand(sizeBytes); err != nil {
		f.Close()
		volume.RemoveFile(path)
		return nil, util.StatusWrapWithCode(err, codes.ResourceExhausted, "USB drive full")
	}
	return bind(volume, requestQueue, path, f, State{TotalSizeBytes: sizeBytes}, clk, acquireTimeout, errorLogger)
}

// Open reopens an existing partial file, resuming from a previously
// persisted State. No allocation is performed; the file's size on disk
// overrides the size recorded in the State.
func Open(volume fat.Volume, requestQueue blockdevice.RequestQueue, path string, state State, clk clock.Clock, acquireTimeout time.Duration, errorLogger util.ErrorLogger) (*PartialFile, error) {
	f, err := volume.OpenFile(path)
	if err != nil {
		return nil, util.StatusWrap(err, "Failed to open file")
	}
	return bind(volume, requestQueue, path, f, state, clk, acquireTimeout, errorLogger)
}

// bind converts an open file into a PartialFile: it verifies that the
// file occupies a contiguous extent, derives the extent's first sector
// number and swaps the writable handle for a read-only lock descriptor.
func bind(volume fat.Volume, requestQueue blockdevice.RequestQueue, path string, f fat.ExtentFile, state State, clk clock.Clock, acquireTimeout time.Duration, errorLogger util.ErrorLogger) (*PartialFile, error) {
	partialFilePrometheusMetrics.Do(func() {
		prometheus.MustRegister(partialFileSectorsSubmitted)
		prometheus.MustRegister(partialFileSectorWriteFailures)
	})

	geometry := volume.GetGeometry()
	if geometry.MinSectorSizeBytes != blockdevice.SectorSizeBytes || geometry.MaxSectorSizeBytes != blockdevice.SectorSizeBytes {
		f.Close()
		return nil, status.Errorf(codes.FailedPrecondition, "Volume sector size differs from %d bytes", blockdevice.SectorSizeBytes)
	}

	contiguous, err := f.IsContiguous()
	if err != nil {
		f.Close()
		return nil, util.StatusWrap(err, "Failed to check file contiguity")
	}
	if !contiguous {
		f.Close()
		return nil, status.Error(codes.FailedPrecondition, "File is not contiguous")
	}

	// The size on disk is authoritative.
	sizeBytes, err := f.SizeBytes()
	if err != nil {
		f.Close()
		return nil, util.StatusWrap(err, "Failed to obtain file size")
	}
	state.TotalSizeBytes = sizeBytes

	firstCluster, err := f.FirstCluster()
	if err != nil {
		f.Close()
		return nil, util.StatusWrap(err, "Failed to obtain first cluster")
	}
	firstSectorNbr := geometry.FirstLBA(firstCluster)

	// Swap the writable handle for a read-only one that stays open
	// for the lifetime of the PartialFile, preventing the file
	// system from handing the extent's sectors to another file.
	// Between the close and the open another actor can remove the
	// file and create a different one under the same path. The file
	// system offers no way to reopen an open file atomically, so
	// the lock is best effort.
	f.Close()
	fileLock, err := volume.OpenFileLock(path)
	if err != nil {
		return nil, util.StatusWrapWithCode(err, codes.FailedPrecondition, "Can't lock file in place")
	}

	pf := &PartialFile{
		requestQueue:        requestQueue,
		errorLogger:         errorLogger,
		fileLock:            fileLock,
		firstSectorNbr:      firstSectorNbr,
		state:               state,
		lastProgressPercent: -1,
	}
	pf.pool = newSectorPool(geometry.LunNbr, pf.onSectorWritten, pf, clk, acquireTimeout)
	return pf, nil
}

// onSectorWritten is invoked by the request queue when a sector write
// completes, potentially on an arbitrary goroutine. It only latches the
// error flag and returns the slot to the pool; none of the writer's
// other state is synchronized with completions.
func (pf *PartialFile) onSectorWritten(err error, callbackArg any, slot uint32) {
	if err != nil {
		pf.errorLogger.Log(util.StatusWrap(err, "Failed to write sector"))
		partialFileSectorWriteFailures.Inc()
		pf.writeError.Store(true)
	}
	pf.pool.release(slot)
}

func (pf *PartialFile) getSectorNbr(offsetBytes int64) int64 {
	sectorNbr := pf.firstSectorNbr + offsetBytes/blockdevice.SectorSizeBytes
	if offsetBytes >= pf.state.TotalSizeBytes {
		// Keep "positioned at the end of the file" distinct
		// from the start of the last sector.
		sectorNbr++
	}
	return sectorNbr
}

func (pf *PartialFile) getOffset(sectorNbr int64) int64 {
	return (sectorNbr - pf.firstSectorNbr) * blockdevice.SectorSizeBytes
}

// Seek repositions the writer. Seeking within the sector that is
// currently being filled preserves its partial contents; any other
// seek discards them, as they represent uncommitted writes the caller
// chose to abandon. Offsets outside [0, total size] violate the
// caller's contract.
func (pf *PartialFile) Seek(offsetBytes int64) bool {
	newSectorNbr := pf.getSectorNbr(offsetBytes)
	if pf.currentSector != nil && pf.currentSector.SectorNbr == newSectorNbr {
		pf.currentOffset = offsetBytes
		return true
	}
	if pf.currentSector != nil {
		log.Printf("Discarding buffered data for sector %d", pf.currentSector.SectorNbr)
	}
	pf.currentOffset = offsetBytes
	pf.discardCurrentSector()
	return true
}

func (pf *PartialFile) discardCurrentSector() {
	if pf.currentSector != nil {
		pf.pool.release(pf.currentSector.Slot)
		pf.currentSector = nil
	}
}

// Write appends the provided bytes at the current offset, advancing it
// by len(p). A nil return means every byte has been copied into a
// sector buffer or submitted to the device; durability additionally
// requires Sync(). Writing past the end of the file panics, as it
// indicates the caller's size accounting is broken and there is no
// safe continuation.
func (pf *PartialFile) Write(p []byte) error {
	if pf.writeError.Load() {
		return status.Error(codes.DataLoss, "A previous sector write has failed")
	}
	for len(p) > 0 {
		// Open a new sector buffer if needed.
		if pf.currentSector == nil {
			if pf.currentOffset >= pf.state.TotalSizeBytes {
				panic("attempted to write past the end of a partial file")
			}
			sectorNbr := pf.getSectorNbr(pf.currentOffset)
			if pf.currentSector = pf.pool.acquire(); pf.currentSector == nil {
				return status.Error(codes.DeadlineExceeded, "Failed to acquire a sector buffer")
			}
			pf.currentSector.SectorNbr = sectorNbr
		}

		// Copy data into the sector buffer.
		sectorOffset := pf.currentOffset % blockdevice.SectorSizeBytes
		writeSizeBytes := int64(len(p))
		if remaining := int64(blockdevice.SectorSizeBytes) - sectorOffset; writeSizeBytes > remaining {
			writeSizeBytes = remaining
		}
		copy(pf.currentSector.Data[sectorOffset:], p[:writeSizeBytes])

		nextOffset := pf.currentOffset + writeSizeBytes
		if nextOffset > pf.state.TotalSizeBytes {
			panic("attempted to write past the end of a partial file")
		}

		// Submit the buffer once it is full. Ownership of the
		// slot moves to the completion callback. A buffer that
		// failed to reach the queue is still ours and goes back
		// to the pool.
		if pf.getSectorNbr(nextOffset) != pf.currentSector.SectorNbr {
			if err := pf.writeCurrentSector(); err != nil {
				pf.discardCurrentSector()
				return err
			}
			pf.currentSector = nil
		}

		pf.currentOffset = nextOffset
		p = p[writeSizeBytes:]
	}
	return nil
}

// writeCurrentSector submits the current buffer to the device. The
// file lock is poked first: if the descriptor no longer refers to a
// live file, the medium has changed underneath the writer and no
// sector must reach it. On successful submission the valid range is
// extended immediately; the range then describes intent, which a later
// Sync() reconciles with durability.
func (pf *PartialFile) writeCurrentSector() error {
	if err := pf.fileLock.Poke(); err != nil {
		return util.StatusWrap(err, "File lock is no longer valid")
	}
	sectorNbr := pf.currentSector.SectorNbr
	if err := pf.requestQueue.Submit(pf.currentSector); err != nil {
		return util.StatusWrapf(err, "Failed to submit write for sector %d", sectorNbr)
	}
	partialFileSectorsSubmitted.Inc()
	start := pf.getOffset(sectorNbr)
	end := min(start+blockdevice.SectorSizeBytes, pf.state.TotalSizeBytes)
	pf.extendValidPart(ValidPart{Start: start, End: end})
	return nil
}

// Sync blocks until every byte written so far is durable on the
// device. The writer remains usable afterwards, continuing from the
// same offset with the same partial sector contents.
//
// A partially filled sector cannot be handed to the device and then be
// appended to again, so its contents are copied into a freshly
// acquired buffer first; the original is submitted and the copy stays
// behind as the current sector. The unfilled remainder of the
// submitted sector is zero, courtesy of the pool's zero-on-acquire.
func (pf *PartialFile) Sync() error {
	inFlightAllowed := 0
	if pf.currentSector != nil {
		inFlightAllowed = 1
		copiedSector := pf.pool.acquire()
		if copiedSector == nil {
			return status.Error(codes.DeadlineExceeded, "Failed to acquire a sector buffer")
		}
		copy(copiedSector.Data, pf.currentSector.Data)
		copiedSector.SectorNbr = pf.currentSector.SectorNbr
		if err := pf.writeCurrentSector(); err != nil {
			pf.discardCurrentSector()
			pf.currentSector = copiedSector
			return err
		}
		pf.currentSector = copiedSector
	}
	if !pf.pool.sync(inFlightAllowed) {
		return status.Error(codes.DeadlineExceeded, "Timed out waiting for in-flight sector writes to complete")
	}
	if pf.writeError.Load() {
		return status.Error(codes.DataLoss, "A previous sector write has failed")
	}
	return nil
}

// Close discards any partially filled sector, drains all in-flight
// writes and releases the file lock, in that order. Draining before
// the lock is released ensures no in-flight write can race against a
// reallocation of the extent. The partial sector is dropped rather
// than flushed: its unfilled remainder would overwrite bytes on the
// device that may already be valid.
func (pf *PartialFile) Close() error {
	pf.discardCurrentSector()
	var err error
	if !pf.pool.sync(0) {
		err = status.Error(codes.DeadlineExceeded, "Timed out waiting for in-flight sector writes to complete")
	}
	if closeErr := pf.fileLock.Close(); closeErr != nil && err == nil {
		err = util.StatusWrap(closeErr, "Failed to close file lock")
	}
	return err
}

func (pf *PartialFile) extendValidPart(newPart ValidPart) {
	pf.state.extendValidPart(newPart)
	if percent := pf.state.GetPercentValid(); percent != pf.lastProgressPercent {
		pf.printProgress(percent)
		pf.lastProgressPercent = percent
	}
}

func (pf *PartialFile) printProgress(percent int) {
	bar := make([]byte, progressBarWidth)
	for i := range bar {
		bar[i] = '-'
	}
	if totalSizeBytes := pf.state.TotalSizeBytes; totalSizeBytes > 0 {
		headEnd := int64(0)
		if pf.state.ValidHead != nil {
			headEnd = pf.state.ValidHead.End
		}
		tailStart := totalSizeBytes
		if pf.state.ValidTail != nil {
			tailStart = pf.state.ValidTail.Start
		}
		headCells := int((headEnd*progressBarWidth + totalSizeBytes - 1) / totalSizeBytes)
		for i := 0; i < headCells; i++ {
			bar[i] = '#'
		}
		tailCells := int(((totalSizeBytes-tailStart)*progressBarWidth + totalSizeBytes - 1) / totalSizeBytes)
		for i := 0; i < tailCells; i++ {
			bar[progressBarWidth-1-i] = '#'
		}
	}
	log.Printf("Progress: %s %d%%", bar, percent)
}

// HasValidHead returns whether the first sizeBytes bytes of the file
// have been submitted to the device.
func (pf *PartialFile) HasValidHead(sizeBytes int64) bool {
	return pf.state.HasValidHead(sizeBytes)
}

// HasValidTail returns whether the last sizeBytes bytes of the file
// have been submitted to the device.
func (pf *PartialFile) HasValidTail(sizeBytes int64) bool {
	return pf.state.HasValidTail(sizeBytes)
}

// GetState returns a copy of the progress record, suitable for
// persisting. After a failed Write() or Sync() the record no longer
// matches the device contents and must not be persisted.
func (pf *PartialFile) GetState() State {
	state := pf.state
	if state.ValidHead != nil {
		head := *state.ValidHead
		state.ValidHead = &head
	}
	if state.ValidTail != nil {
		tail := *state.ValidTail
		state.ValidTail = &tail
	}
	return state
}

// GetPercentValid returns how much of the file is valid, as an integer
// percentage.
func (pf *PartialFile) GetPercentValid() int {
	return pf.state.GetPercentValid()
}
