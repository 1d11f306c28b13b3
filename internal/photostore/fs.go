package photostore

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
)

// FSStore writes photos under a single server-local root directory.
type FSStore struct {
	root string
}

// NewFSStore returns a filesystem store. The root is created lazily.
func NewFSStore(root string) *FSStore {
	if root == "" {
		root = "wwwroot/images"
	}
	return &FSStore{root: root}
}

func (s *FSStore) Driver() Driver { return DriverFilesystem }

// Root returns the directory photos are written under.
func (s *FSStore) Root() string { return s.root }

func (s *FSStore) EnsureDirectory(_ context.Context) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return domain.NewStorageWriteError("cannot create photo directory", err)
	}
	return nil
}

// Save streams into a temp file in the root and renames it into place, so a
// reader never observes a partially written photo.
func (s *FSStore) Save(ctx context.Context, fileName string, r io.Reader) error {
	name, err := checkName(fileName)
	if err != nil {
		return domain.NewStorageWriteError("cannot store photo", err)
	}
	if err := s.EnsureDirectory(ctx); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return domain.NewStorageWriteError("cannot store photo", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return domain.NewStorageWriteError("cannot store photo", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return domain.NewStorageWriteError("cannot store photo", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.NewStorageWriteError("cannot store photo", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.root, name)); err != nil {
		return domain.NewStorageWriteError("cannot store photo", err)
	}
	return nil
}

func (s *FSStore) Delete(_ context.Context, fileName string) error {
	name, err := checkName(fileName)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FSStore) Exists(_ context.Context, fileName string) (bool, error) {
	name, err := checkName(fileName)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(filepath.Join(s.root, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
