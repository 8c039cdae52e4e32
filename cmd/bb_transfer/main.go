package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/buildbarn/bb-transfer/pkg/blockdevice"
	"github.com/buildbarn/bb-transfer/pkg/clock"
	"github.com/buildbarn/bb-transfer/pkg/fat"
	"github.com/buildbarn/bb-transfer/pkg/filesystem"
	"github.com/buildbarn/bb-transfer/pkg/partialfile"
	"github.com/buildbarn/bb-transfer/pkg/util"
	"github.com/spf13/pflag"

	"golang.org/x/sync/semaphore"
)

// bb_transfer streams data from standard input into a file on a
// volume, writing at the sector level through a partial file writer.
// Progress is checkpointed to a state directory, so that an
// interrupted invocation can be rerun to resume the transfer where the
// durable data ends, feeding it the same input once more.

func main() {
	var (
		volumeRootPath          = pflag.String("volume-root-path", "", "Directory in which the transferred file is placed")
		fileName                = pflag.String("file-name", "", "Name of the transferred file")
		sizeBytes               = pflag.Int64("size-bytes", 0, "Total size of the transferred file")
		stateDirectoryPath      = pflag.String("state-directory-path", "", "Directory holding the transfer progress record")
		clusterSizeSectors      = pflag.Int64("cluster-size-sectors", 8, "Cluster size reported by the emulated volume")
		writeConcurrency        = pflag.Int64("write-concurrency", 4, "Maximum number of concurrent writes against the storage backend")
		checkpointIntervalBytes = pflag.Int64("checkpoint-interval-bytes", 4*1024*1024, "How much data to transfer between progress checkpoints")
	)
	pflag.Parse()
	if *volumeRootPath == "" || *fileName == "" || *stateDirectoryPath == "" || *sizeBytes <= 0 {
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(*volumeRootPath, *fileName, *sizeBytes, *stateDirectoryPath, *clusterSizeSectors, *writeConcurrency, *checkpointIntervalBytes); err != nil {
		log.Fatal("Fatal error: ", err)
	}
}

func run(volumeRootPath, fileName string, sizeBytes int64, stateDirectoryPath string, clusterSizeSectors, writeConcurrency, checkpointIntervalBytes int64) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stateDirectory, err := filesystem.NewLocalDirectory(stateDirectoryPath)
	if err != nil {
		return util.StatusWrap(err, "Failed to open state directory")
	}
	defer stateDirectory.Close()
	stateStore := partialfile.NewDirectoryBackedPersistentStateStore(stateDirectory)

	state, err := stateStore.ReadState()
	if err != nil {
		return util.StatusWrap(err, "Failed to read transfer state")
	}

	volume := fat.NewLocalVolume(volumeRootPath, clusterSizeSectors)
	device, err := volume.OpenBlockDevice(fileName)
	if err != nil {
		return util.StatusWrap(err, "Failed to open storage backend")
	}
	requestQueue := blockdevice.NewBlockDeviceBackedRequestQueue(
		blockdevice.NewWriteConcurrencyLimitingBlockDevice(
			device,
			semaphore.NewWeighted(writeConcurrency)),
		2*partialfile.SectorPoolSize)

	var pf *partialfile.PartialFile
	resumeOffsetBytes := int64(0)
	if state == nil {
		pf, err = partialfile.Create(volume, requestQueue, fileName, sizeBytes, clock.SystemClock, partialfile.DefaultAcquireTimeout, util.DefaultErrorLogger)
		if err != nil {
			return util.StatusWrap(err, "Failed to create partial file")
		}
	} else {
		pf, err = partialfile.Open(volume, requestQueue, fileName, *state, clock.SystemClock, partialfile.DefaultAcquireTimeout, util.DefaultErrorLogger)
		if err != nil {
			return util.StatusWrap(err, "Failed to open partial file")
		}
		if state.ValidHead != nil {
			resumeOffsetBytes = state.ValidHead.End
		}
		pf.Seek(resumeOffsetBytes)
		log.Printf("Resuming transfer at offset %d", resumeOffsetBytes)
	}
	defer pf.Close()

	// The input stream always starts at the beginning of the file.
	if _, err := io.CopyN(io.Discard, os.Stdin, resumeOffsetBytes); err != nil {
		return util.StatusWrap(err, "Failed to skip already transferred input")
	}

	checkpoint := func() error {
		if err := pf.Sync(); err != nil {
			// The progress record no longer matches what is
			// on the device. A stale record must not be
			// offered to a future resume.
			stateStore.RemoveState()
			return util.StatusWrap(err, "Failed to synchronize partial file")
		}
		s := pf.GetState()
		if err := stateStore.WriteState(&s); err != nil {
			return util.StatusWrap(err, "Failed to persist transfer state")
		}
		return nil
	}

	buffer := make([]byte, 64*1024)
	uncheckpointedBytes := int64(0)
	for {
		if err := ctx.Err(); err != nil {
			if err := checkpoint(); err != nil {
				return err
			}
			log.Print("Transfer interrupted; rerun to resume")
			return nil
		}
		n, readErr := os.Stdin.Read(buffer)
		if n > 0 {
			if err := pf.Write(buffer[:n]); err != nil {
				stateStore.RemoveState()
				return util.StatusWrap(err, "Failed to write to partial file")
			}
			uncheckpointedBytes += int64(n)
			if uncheckpointedBytes >= checkpointIntervalBytes {
				if err := checkpoint(); err != nil {
					return err
				}
				uncheckpointedBytes = 0
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			checkpoint()
			return util.StatusWrap(readErr, "Failed to read input")
		}
	}

	if err := checkpoint(); err != nil {
		return err
	}
	if pf.HasValidHead(sizeBytes) {
		// A completed transfer needs no resume record.
		if err := stateStore.RemoveState(); err != nil {
			return err
		}
		log.Print("Transfer complete")
	} else {
		log.Printf("Transfer incomplete: %d%% valid", pf.GetPercentValid())
	}
	return nil
}
