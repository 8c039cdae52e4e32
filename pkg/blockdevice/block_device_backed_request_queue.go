package blockdevice

import (
	"github.com/buildbarn/bb-transfer/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type blockDeviceBackedRequestQueue struct {
	requests chan *SectorRequest
}

// NewBlockDeviceBackedRequestQueue creates a RequestQueue that issues
// submitted sector writes against a BlockDevice. This is used to drive
// the asynchronous submission protocol against any random access
// storage backend, such as a USB mass storage device node or a plain
// file (os.File implements BlockDevice).
//
// A single background goroutine issues the writes, so requests are
// guaranteed to reach the device in submission order. Completions are
// reported through each request's callback.
func NewBlockDeviceBackedRequestQueue(blockDevice BlockDevice, queueLength int) RequestQueue {
	rq := &blockDeviceBackedRequestQueue{
		requests: make(chan *SectorRequest, queueLength),
	}
	go func() {
		for r := range rq.requests {
			var err error
			if r.SectorCount != 1 || len(r.Data) != SectorSizeBytes {
				err = status.Errorf(codes.InvalidArgument, "Request for sector %d does not span exactly one sector", r.SectorNbr)
			} else if _, writeErr := blockDevice.WriteAt(r.Data, r.SectorNbr*SectorSizeBytes); writeErr != nil {
				err = util.StatusWrapf(writeErr, "Failed to write sector %d", r.SectorNbr)
			}
			r.Callback(err, r.CallbackArg, r.Slot)
		}
	}()
	return rq
}

func (rq *blockDeviceBackedRequestQueue) Submit(r *SectorRequest) error {
	select {
	case rq.requests <- r:
		return nil
	default:
		return status.Error(codes.ResourceExhausted, "Request queue is full")
	}
}
