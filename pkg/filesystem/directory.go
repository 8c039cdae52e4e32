package filesystem

import (
	"io"
	"os"
)

// CreationMode specifies whether and how Directory.OpenAppend() should
// create new files.
type CreationMode struct {
	flags       int
	permissions os.FileMode
}

// DontCreate indicates that opening should fail in case the target
// file does not exist.
var DontCreate = CreationMode{}

// CreateReuse indicates that a new file should be created if it doesn't
// already exist. If the target file already exists, that file will be
// opened instead.
func CreateReuse(perm os.FileMode) CreationMode {
	return CreationMode{flags: os.O_CREATE, permissions: perm}
}

// CreateExcl indicates that a new file should be created. If the target
// file already exists, opening shall fail.
func CreateExcl(perm os.FileMode) CreationMode {
	return CreationMode{flags: os.O_CREATE | os.O_EXCL, permissions: perm}
}

// FileReader is a handle for a file that permits data to be read from
// arbitrary locations.
type FileReader interface {
	io.Closer
	io.ReaderAt
}

// FileAppender is a handle for a file that only permits new data to be
// written to the end.
type FileAppender interface {
	io.Closer
	io.Writer

	Sync() error
}

// Directory is an abstraction for accessing a single directory on the
// file system. By placing this in a separate interface, it's easier to
// stub out file system handling as part of unit tests entirely.
type Directory interface {
	// Open a file contained within the directory for reading.
	OpenRead(name string) (FileReader, error)
	// Open a file contained within the directory for writing, only
	// allowing data to be appended to the end of the file.
	OpenAppend(name string, creationMode CreationMode) (FileAppender, error)
	// Remove is the equivalent of os.Remove().
	Remove(name string) error
	// Rename moves a file to a (potentially different) directory.
	Rename(oldName string, newDirectory Directory, newName string) error
	// Sync the contents of the directory to disk, making renames
	// and removals durable.
	Sync() error
}

// DirectoryCloser is a Directory handle that can be released.
type DirectoryCloser interface {
	Directory
	io.Closer
}
