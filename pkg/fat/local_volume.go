package fat

import (
	"os"
	"path/filepath"

	"github.com/buildbarn/bb-transfer/pkg/blockdevice"
	"github.com/buildbarn/bb-transfer/pkg/util"
	fallocate "github.com/detailyang/go-fallocate"

	"golang.org/x/sys/unix"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LocalVolume is a Volume backed by a directory on the local file
// system. In addition to the file system operations, it can open the
// storage backing an individual file as a BlockDevice.
type LocalVolume interface {
	Volume

	OpenBlockDevice(path string) (blockdevice.BlockDevice, error)
}

type localVolume struct {
	rootPath           string
	clusterSizeSectors int64
}

// NewLocalVolume creates a Volume that is backed by a directory on the
// local file system. Every file is reported as a contiguous extent
// starting at the first data cluster, so that sector numbers computed
// by Geometry.FirstLBA() can be applied directly against a per file
// block device (see OpenBlockDevice).
//
// This emulation is used by bb_transfer and by integration tests. On an
// actual FAT volume the same interfaces are backed by the file system
// driver.
func NewLocalVolume(rootPath string, clusterSizeSectors int64) LocalVolume {
	return &localVolume{
		rootPath:           rootPath,
		clusterSizeSectors: clusterSizeSectors,
	}
}

func (v *localVolume) openFile(path string, flags int) (ExtentFile, error) {
	f, err := os.OpenFile(filepath.Join(v.rootPath, path), flags, 0o666)
	if err != nil {
		return nil, err
	}
	return &localExtentFile{file: f}, nil
}

func (v *localVolume) CreateFile(path string) (ExtentFile, error) {
	return v.openFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC)
}

func (v *localVolume) OpenFile(path string) (ExtentFile, error) {
	return v.openFile(path, os.O_RDWR)
}

func (v *localVolume) RemoveFile(path string) error {
	return os.Remove(filepath.Join(v.rootPath, path))
}

func (v *localVolume) OpenFileLock(path string) (FileLock, error) {
	f, err := os.Open(filepath.Join(v.rootPath, path))
	if err != nil {
		return nil, err
	}
	return &localFileLock{file: f}, nil
}

func (v *localVolume) GetGeometry() Geometry {
	return Geometry{
		LunNbr:             0,
		DataAreaBaseLBA:    0,
		ClusterSizeSectors: v.clusterSizeSectors,
		MinSectorSizeBytes: blockdevice.SectorSizeBytes,
		MaxSectorSizeBytes: blockdevice.SectorSizeBytes,
	}
}

// OpenBlockDevice opens the storage that backs a file on a local
// volume, addressed by the same sector numbers that Geometry.FirstLBA()
// yields for that file. The backing file is created if it does not
// exist yet. Sector level writes issued through the returned
// BlockDevice bypass the file's regular write path, just like raw
// sector writes on a FAT volume bypass the file system.
func (v *localVolume) OpenBlockDevice(path string) (blockdevice.BlockDevice, error) {
	return os.OpenFile(filepath.Join(v.rootPath, path), os.O_RDWR|os.O_CREATE, 0o666)
}

type localExtentFile struct {
	file *os.File
}

func (f *localExtentFile) SizeBytes() (int64, error) {
	info, err := f.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (f *localExtentFile) Expand(sizeBytes int64) error {
	// Allocation must be eager. Truncation alone would leave a
	// sparse file, whose blocks only materialize on first write.
	if err := fallocate.Fallocate(f.file, 0, sizeBytes); err != nil {
		return util.StatusWrapWithCode(err, codes.ResourceExhausted, "Failed to allocate file contents")
	}
	return f.file.Truncate(sizeBytes)
}

func (f *localExtentFile) IsContiguous() (bool, error) {
	// Local files are always addressed from offset zero.
	return true, nil
}

func (f *localExtentFile) FirstCluster() (int64, error) {
	// Cluster numbering starts at two, mapping the start of the
	// file to logical block address zero.
	return 2, nil
}

func (f *localExtentFile) Close() error {
	return f.file.Close()
}

type localFileLock struct {
	file *os.File
}

func (l *localFileLock) Poke() error {
	if _, err := l.file.Seek(0, 0); err != nil {
		return err
	}
	// Seeking alone does not detect removal on POSIX systems. An
	// unlinked file keeps its data alive through the descriptor,
	// while its clusters may already have been handed to another
	// file. Treat a zero link count as a revoked lock.
	var stat unix.Stat_t
	if err := unix.Fstat(int(l.file.Fd()), &stat); err != nil {
		return err
	}
	if stat.Nlink == 0 {
		return status.Error(codes.FailedPrecondition, "File has been removed")
	}
	return nil
}

func (l *localFileLock) Close() error {
	return l.file.Close()
}
