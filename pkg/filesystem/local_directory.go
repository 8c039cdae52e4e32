//go:build darwin || freebsd || linux
// +build darwin freebsd linux

package filesystem

import (
	"os"
	"runtime"

	"github.com/buildbarn/bb-transfer/pkg/util"

	"golang.org/x/sys/unix"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type localDirectory struct {
	fd int
}

// NewLocalDirectory creates a Directory that corresponds to a directory
// on the local file system. All operations are performed relative to an
// open directory descriptor, so that renaming the directory itself does
// not invalidate the handle.
func NewLocalDirectory(path string) (DirectoryCloser, error) {
	fd, err := unix.Openat(unix.AT_FDCWD, path, unix.O_DIRECTORY|unix.O_RDONLY, 0)
	if err != nil {
		return nil, util.StatusWrapf(err, "Failed to open directory %#v", path)
	}
	return &localDirectory{fd: fd}, nil
}

func (d *localDirectory) openat(name string, flags int, perm os.FileMode) (*os.File, error) {
	fd, err := unix.Openat(d.fd, name, flags|unix.O_NOFOLLOW, uint32(perm))
	if err != nil {
		return nil, err
	}
	runtime.KeepAlive(d)
	return os.NewFile(uintptr(fd), name), nil
}

func (d *localDirectory) OpenRead(name string) (FileReader, error) {
	return d.openat(name, unix.O_RDONLY, 0)
}

func (d *localDirectory) OpenAppend(name string, creationMode CreationMode) (FileAppender, error) {
	return d.openat(name, creationMode.flags|unix.O_APPEND|unix.O_WRONLY, creationMode.permissions)
}

func (d *localDirectory) Remove(name string) error {
	return unix.Unlinkat(d.fd, name, 0)
}

func (d *localDirectory) Rename(oldName string, newDirectory Directory, newName string) error {
	d2, ok := newDirectory.(*localDirectory)
	if !ok {
		return status.Error(codes.InvalidArgument, "Cannot rename across directory types")
	}
	return unix.Renameat(d.fd, oldName, d2.fd, newName)
}

func (d *localDirectory) Sync() error {
	return unix.Fsync(d.fd)
}

func (d *localDirectory) Close() error {
	fd := d.fd
	d.fd = -1
	return unix.Close(fd)
}
