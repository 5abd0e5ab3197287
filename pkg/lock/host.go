package lock

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/hildist/hildist/pkg/utils"
)

// Host is the storage where the lock artifact lives. CreateExclusive
// must be atomic: when several clients race for the same path exactly
// one of them may succeed.
type Host interface {
	// CreateExclusive writes content to path, failing with ErrLockHeld
	// if the path already exists.
	CreateExclusive(path string, content []byte) error

	// ReadFile returns the content of path.
	ReadFile(path string) ([]byte, error)

	// Remove deletes path.
	Remove(path string) error
}

// FsHost keeps the lock artifact on a local filesystem. Used when the
// rig controller is the machine we are running on.
type FsHost struct {
	fs utils.Fs
}

func NewFsHost(fs utils.Fs) *FsHost {
	return &FsHost{fs: fs}
}

func (h *FsHost) CreateExclusive(path string, content []byte) error {
	file, err := h.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return utils.ErrLockHeld
		}
		return fmt.Errorf("failed to create lock artifact: %w", err)
	}

	_, err = file.Write(content)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (h *FsHost) ReadFile(path string) ([]byte, error) {
	content, err := afero.ReadFile(h.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", utils.ErrNotFound, path)
		}
		return nil, err
	}
	return content, nil
}

func (h *FsHost) Remove(path string) error {
	return h.fs.Remove(path)
}
