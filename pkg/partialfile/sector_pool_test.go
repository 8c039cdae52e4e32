package partialfile

import (
	"testing"
	"time"

	"github.com/buildbarn/bb-transfer/internal/mock"
	"github.com/buildbarn/bb-transfer/pkg/blockdevice"
	"github.com/buildbarn/bb-transfer/pkg/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func discardCompletion(err error, callbackArg any, slot uint32) {}

func TestSectorPoolAcquire(t *testing.T) {
	sp := newSectorPool(5, discardCompletion, nil, clock.SystemClock, time.Minute)

	// The lowest numbered free slot is handed out first. All
	// buffers must come back zeroed and sized to one sector.
	for i := 0; i < SectorPoolSize; i++ {
		r := sp.acquire()
		require.NotNil(t, r)
		require.Equal(t, uint32(i), r.Slot)
		require.Equal(t, uint8(5), r.LunNbr)
		require.Equal(t, 1, r.SectorCount)
		require.Equal(t, make([]byte, blockdevice.SectorSizeBytes), r.Data)
	}

	// Freeing a slot in the middle makes it the next one handed
	// out, with its previous contents wiped.
	sp.requests[7].Data[123] = 0xFF
	sp.release(7)
	r := sp.acquire()
	require.NotNil(t, r)
	require.Equal(t, uint32(7), r.Slot)
	require.Equal(t, byte(0), r.Data[123])
}

func TestSectorPoolAcquireTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockClock := mock.NewMockClock(ctrl)
	sp := newSectorPool(0, discardCompletion, nil, mockClock, time.Minute)
	for i := 0; i < SectorPoolSize; i++ {
		require.NotNil(t, sp.acquire())
	}

	// With every slot in flight and no releases arriving, the
	// acquisition must give up once the wait timer fires.
	timer := mock.NewMockTimer(ctrl)
	expiration := make(chan time.Time, 1)
	expiration <- time.Unix(1000, 0)
	mockClock.EXPECT().NewTimer(time.Minute).Return(timer, expiration)
	require.Nil(t, sp.acquire())
}

func TestSectorPoolSync(t *testing.T) {
	sp := newSectorPool(0, discardCompletion, nil, clock.SystemClock, time.Minute)

	// An idle pool is already synchronized.
	require.True(t, sp.sync(0))

	r1 := sp.acquire()
	r2 := sp.acquire()
	require.NotNil(t, r1)
	require.NotNil(t, r2)

	// Two slots outstanding is within a tolerance of two.
	require.True(t, sp.sync(2))

	// Full synchronization completes once the outstanding slots
	// are released, as a completion callback would do.
	go func() {
		time.Sleep(10 * time.Millisecond)
		sp.release(r1.Slot)
		sp.release(r2.Slot)
	}()
	require.True(t, sp.sync(0))
}

func TestSectorPoolSyncTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockClock := mock.NewMockClock(ctrl)
	sp := newSectorPool(0, discardCompletion, nil, mockClock, time.Minute)
	require.NotNil(t, sp.acquire())

	timer := mock.NewMockTimer(ctrl)
	expiration := make(chan time.Time, 1)
	expiration <- time.Unix(1000, 0)
	mockClock.EXPECT().NewTimer(time.Minute).Return(timer, expiration)
	require.False(t, sp.sync(0))
}
