package fat

import (
	"io"
)

// Geometry describes the on-disk layout of a mounted FAT volume, as
// reported by the file system driver. It contains exactly the values
// needed to translate a file's first cluster into an absolute sector
// number on the storage device.
type Geometry struct {
	// Logical unit number of the storage device holding the volume.
	LunNbr uint8
	// Logical block address of the first sector of the data area.
	DataAreaBaseLBA int64
	// Size of an allocation cluster, in sectors.
	ClusterSizeSectors int64
	// Smallest and largest sector size the file system driver was
	// compiled to support.
	MinSectorSizeBytes int
	MaxSectorSizeBytes int
}

// FirstLBA returns the logical block address of the first sector of a
// file whose extent starts at the provided cluster. The first two FAT
// entries are reserved, so cluster numbering starts at two.
func (g *Geometry) FirstLBA(firstCluster int64) int64 {
	return g.DataAreaBaseLBA + g.ClusterSizeSectors*(firstCluster-2)
}

// ExtentFile is an open file on a FAT volume, exposing the cluster
// level operations needed to bind the file's contents to a run of raw
// sectors.
type ExtentFile interface {
	io.Closer

	// SizeBytes returns the current size of the file.
	SizeBytes() (int64, error)
	// Expand grows the file to the provided size by eagerly
	// allocating a contiguous run of clusters. The new clusters are
	// committed to the file immediately, not on first write.
	Expand(sizeBytes int64) error
	// IsContiguous returns whether the file occupies a single
	// contiguous run of clusters.
	IsContiguous() (bool, error)
	// FirstCluster returns the number of the first cluster
	// allocated to the file.
	FirstCluster() (int64, error)
}

// FileLock is a read-only descriptor of a file that is held open to
// prevent the file system from releasing the file's clusters while
// sector level writes against them are still taking place.
type FileLock interface {
	io.Closer

	// Poke forces the file system driver to revalidate that the
	// descriptor still refers to an existing file on a mounted
	// volume. It fails when the file has been removed or the medium
	// has been replaced.
	Poke() error
}

// Volume provides access to the files on a single mounted FAT volume.
// It is the narrow interface between the partial file writer and the
// file system driver; the writer only uses it to create, size and
// probe files, never to transfer data.
type Volume interface {
	// CreateFile opens a file for writing, truncating it if it
	// already exists.
	CreateFile(path string) (ExtentFile, error)
	// OpenFile opens an existing file for reading and writing,
	// without truncation.
	OpenFile(path string) (ExtentFile, error)
	// RemoveFile unlinks a file.
	RemoveFile(path string) error
	// OpenFileLock opens a read-only lock descriptor for a file.
	OpenFileLock(path string) (FileLock, error)
	// GetGeometry returns the layout of the volume.
	GetGeometry() Geometry
}
