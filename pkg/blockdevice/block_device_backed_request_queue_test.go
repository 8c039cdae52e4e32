package blockdevice_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/buildbarn/bb-transfer/internal/mock"
	"github.com/buildbarn/bb-transfer/pkg/blockdevice"
	"github.com/buildbarn/bb-transfer/pkg/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type completion struct {
	err  error
	arg  any
	slot uint32
}

func awaitCompletion(t *testing.T, completions <-chan completion) completion {
	t.Helper()
	select {
	case c := <-completions:
		return c
	case <-time.After(10 * time.Second):
		t.Fatal("Timed out waiting for a completion callback")
		return completion{}
	}
}

func TestBlockDeviceBackedRequestQueue(t *testing.T) {
	ctrl := gomock.NewController(t)

	blockDevice := mock.NewMockBlockDevice(ctrl)
	requestQueue := blockdevice.NewBlockDeviceBackedRequestQueue(blockDevice, 16)
	completions := make(chan completion, 1)
	callback := func(err error, callbackArg any, slot uint32) {
		completions <- completion{err: err, arg: callbackArg, slot: slot}
	}

	t.Run("Success", func(t *testing.T) {
		// A submitted sector is written at the byte offset that
		// corresponds to its sector number, and completes with
		// the submitter's opaque parameters intact.
		data := bytes.Repeat([]byte{0x5A}, blockdevice.SectorSizeBytes)
		blockDevice.EXPECT().WriteAt(data, int64(42*blockdevice.SectorSizeBytes)).Return(blockdevice.SectorSizeBytes, nil)

		require.NoError(t, requestQueue.Submit(&blockdevice.SectorRequest{
			SectorNbr:   42,
			SectorCount: 1,
			Data:        data,
			Callback:    callback,
			CallbackArg: "my context",
			Slot:        7,
		}))
		c := awaitCompletion(t, completions)
		require.NoError(t, c.err)
		require.Equal(t, "my context", c.arg)
		require.Equal(t, uint32(7), c.slot)
	})

	t.Run("WriteFailure", func(t *testing.T) {
		data := make([]byte, blockdevice.SectorSizeBytes)
		blockDevice.EXPECT().WriteAt(data, int64(43*blockdevice.SectorSizeBytes)).Return(0, status.Error(codes.Internal, "Device disconnected"))

		require.NoError(t, requestQueue.Submit(&blockdevice.SectorRequest{
			SectorNbr:   43,
			SectorCount: 1,
			Data:        data,
			Callback:    callback,
			Slot:        3,
		}))
		c := awaitCompletion(t, completions)
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.Internal, "Failed to write sector 43: Device disconnected"),
			c.err)
		require.Equal(t, uint32(3), c.slot)
	})

	t.Run("InvalidSectorCount", func(t *testing.T) {
		// Multi-sector requests never reach the device.
		require.NoError(t, requestQueue.Submit(&blockdevice.SectorRequest{
			SectorNbr:   44,
			SectorCount: 2,
			Data:        make([]byte, 2*blockdevice.SectorSizeBytes),
			Callback:    callback,
			Slot:        4,
		}))
		c := awaitCompletion(t, completions)
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.InvalidArgument, "Request for sector 44 does not span exactly one sector"),
			c.err)
	})
}
