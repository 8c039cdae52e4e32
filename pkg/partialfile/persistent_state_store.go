package partialfile

import (
	"io"
	"log"
	"math"
	"os"

	"github.com/buildbarn/bb-transfer/pkg/filesystem"
	"github.com/buildbarn/bb-transfer/pkg/util"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"google.golang.org/grpc/codes"
)

const stateFileName = "state"

// PersistentStateStore keeps the progress record of a partial file on
// durable storage, so that an interrupted transfer can be resumed. The
// core treats the stored bytes as opaque; this store encodes them as a
// single CBOR map.
type PersistentStateStore interface {
	// ReadState returns the previously persisted State, or nil when
	// no usable State is present.
	ReadState() (*State, error)
	// WriteState persists the State durably.
	WriteState(state *State) error
	// RemoveState discards the persisted State. It must be called
	// when a write failure has made the State untrustworthy.
	RemoveState() error
}

type directoryBackedPersistentStateStore struct {
	directory filesystem.Directory
}

// NewDirectoryBackedPersistentStateStore creates a PersistentStateStore
// that writes the State to a file named "state" inside a
// filesystem.Directory. Updates are written to a randomly named
// temporary file that is renamed over the previous copy, so a crashed
// writer can neither corrupt the State nor block a successor.
func NewDirectoryBackedPersistentStateStore(directory filesystem.Directory) PersistentStateStore {
	return directoryBackedPersistentStateStore{
		directory: directory,
	}
}

func (pss directoryBackedPersistentStateStore) ReadState() (*State, error) {
	f, err := pss.directory.OpenRead(stateFileName)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, util.StatusWrapWithCode(err, codes.Internal, "Failed to open state file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.NewSectionReader(f, 0, math.MaxInt64))
	if err != nil {
		return nil, util.StatusWrapWithCode(err, codes.Internal, "Failed to read state file")
	}
	var state State
	if err := cbor.Unmarshal(data, &state); err != nil {
		// The file was read successfully but holds no usable
		// record. Restarting the transfer from scratch beats
		// remaining wedged on it.
		log.Print("Discarding corrupted transfer state")
		return nil, nil
	}
	return &state, nil
}

func (pss directoryBackedPersistentStateStore) WriteState(state *State) error {
	data, err := cbor.Marshal(state)
	if err != nil {
		return util.StatusWrapWithCode(err, codes.Internal, "Failed to marshal state")
	}

	temporaryName := stateFileName + "." + uuid.Must(uuid.NewRandom()).String()
	f, err := pss.directory.OpenAppend(temporaryName, filesystem.CreateExcl(0o666))
	if err != nil {
		return util.StatusWrapWithCode(err, codes.Internal, "Failed to create temporary file")
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return util.StatusWrapWithCode(err, codes.Internal, "Failed to write to temporary file")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return util.StatusWrapWithCode(err, codes.Internal, "Failed to synchronize temporary file")
	}
	if err := f.Close(); err != nil {
		return util.StatusWrapWithCode(err, codes.Internal, "Failed to close temporary file")
	}

	// Move the new state over the old copy.
	if err := pss.directory.Rename(temporaryName, pss.directory, stateFileName); err != nil {
		return util.StatusWrapWithCode(err, codes.Internal, "Failed to rename temporary file")
	}
	if err := pss.directory.Sync(); err != nil {
		return util.StatusWrapWithCode(err, codes.Internal, "Failed to synchronize directory")
	}
	return nil
}

func (pss directoryBackedPersistentStateStore) RemoveState() error {
	if err := pss.directory.Remove(stateFileName); err != nil && !os.IsNotExist(err) {
		return util.StatusWrapWithCode(err, codes.Internal, "Failed to remove state file")
	}
	return nil
}
