package blockdevice

// SectorSizeBytes is the unit of I/O against removable mass storage
// devices. USB mass storage bridges and the FAT file systems placed on
// top of them both operate on 512 byte sectors, so this value is fixed.
// Code binding a file system to a RequestQueue must verify that the
// file system's sector size matches this constant.
const SectorSizeBytes = 512

// RequestCallback is invoked by a RequestQueue once a previously
// submitted SectorRequest has completed. A nil error indicates that the
// sector has been written to the device.
//
// The callback may be invoked from an arbitrary goroutine, potentially
// while the submitter is still running. It must not block, and it must
// not submit new requests.
type RequestCallback func(err error, callbackArg any, slot uint32)

// SectorRequest is a single sector write against a logical unit of a
// storage device. The CallbackArg and Slot fields are opaque to the
// RequestQueue; they are passed to the Callback verbatim, allowing the
// submitter to locate its own bookkeeping for the completed request.
type SectorRequest struct {
	LunNbr      uint8
	SectorNbr   int64
	SectorCount int
	Data        []byte
	Callback    RequestCallback
	CallbackArg any
	Slot        uint32
}

// RequestQueue enqueues sector writes against a storage device.
//
// Submit() returns as soon as the request has been enqueued. Requests
// are issued against the device in submission order, but may complete
// in any order. Ownership of the request and its data buffer transfers
// to the queue upon submission and returns to the submitter when the
// callback fires.
type RequestQueue interface {
	Submit(r *SectorRequest) error
}
