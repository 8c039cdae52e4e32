package fat_test

import (
	"bytes"
	"testing"

	"github.com/buildbarn/bb-transfer/pkg/blockdevice"
	"github.com/buildbarn/bb-transfer/pkg/fat"
	"github.com/buildbarn/bb-transfer/pkg/testutil"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGeometryFirstLBA(t *testing.T) {
	g := fat.Geometry{
		DataAreaBaseLBA:    2048,
		ClusterSizeSectors: 8,
	}

	// The first two FAT entries are reserved: cluster 2 maps to the
	// start of the data area.
	require.Equal(t, int64(2048), g.FirstLBA(2))
	require.Equal(t, int64(2048+8*8), g.FirstLBA(10))
}

func TestLocalVolume(t *testing.T) {
	volume := fat.NewLocalVolume(t.TempDir(), 8)

	geometry := volume.GetGeometry()
	require.Equal(t, blockdevice.SectorSizeBytes, geometry.MinSectorSizeBytes)
	require.Equal(t, blockdevice.SectorSizeBytes, geometry.MaxSectorSizeBytes)

	// Create a file and allocate space for it eagerly.
	f, err := volume.CreateFile("job.bin")
	require.NoError(t, err)
	require.NoError(t, f.Expand(4096))

	sizeBytes, err := f.SizeBytes()
	require.NoError(t, err)
	require.Equal(t, int64(4096), sizeBytes)

	contiguous, err := f.IsContiguous()
	require.NoError(t, err)
	require.True(t, contiguous)

	firstCluster, err := f.FirstCluster()
	require.NoError(t, err)
	// The start of the file maps to logical block address zero of
	// the per file block device.
	require.Equal(t, int64(0), geometry.FirstLBA(firstCluster))
	require.NoError(t, f.Close())

	// Sector level writes through the block device must land at the
	// matching byte offsets within the file.
	device, err := volume.OpenBlockDevice("job.bin")
	require.NoError(t, err)
	data := bytes.Repeat([]byte{0xAB}, blockdevice.SectorSizeBytes)
	_, err = device.WriteAt(data, 2*blockdevice.SectorSizeBytes)
	require.NoError(t, err)
	readBack := make([]byte, blockdevice.SectorSizeBytes)
	_, err = device.ReadAt(readBack, 2*blockdevice.SectorSizeBytes)
	require.NoError(t, err)
	require.Equal(t, data, readBack)
}

func TestLocalVolumeFileLock(t *testing.T) {
	volume := fat.NewLocalVolume(t.TempDir(), 8)

	f, err := volume.CreateFile("job.bin")
	require.NoError(t, err)
	require.NoError(t, f.Expand(512))
	require.NoError(t, f.Close())

	fileLock, err := volume.OpenFileLock("job.bin")
	require.NoError(t, err)
	require.NoError(t, fileLock.Poke())

	// Removing the file revokes the lock: its clusters may be
	// handed out again at any moment.
	require.NoError(t, volume.RemoveFile("job.bin"))
	testutil.RequireEqualStatus(
		t,
		status.Error(codes.FailedPrecondition, "File has been removed"),
		fileLock.Poke())

	require.NoError(t, fileLock.Close())
}
