// Package photostore persists photo bytes under generated file names,
// independently of the database rows that reference them.
package photostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/animal"
)

// Driver names a Store backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// ErrInvalidName is returned for names that are empty, escape the root,
// or equal the sentinel photo name.
var ErrInvalidName = errors.New("invalid photo file name")

// Store persists and removes photo bytes keyed by file name.
type Store interface {
	Driver() Driver
	// EnsureDirectory prepares the storage root. Safe to call concurrently.
	EnsureDirectory(ctx context.Context) error
	// Save writes the bytes durably; failures are StorageWriteFailure errors.
	Save(ctx context.Context, fileName string, r io.Reader) error
	// Delete removes the file. Deleting a missing file succeeds.
	Delete(ctx context.Context, fileName string) error
	Exists(ctx context.Context, fileName string) (bool, error)
}

func checkName(fileName string) (string, error) {
	name := strings.TrimSpace(fileName)
	switch {
	case name == "", name == animal.SentinelFileName:
		return "", fmt.Errorf("%w: %q", ErrInvalidName, fileName)
	case strings.Contains(name, ".."), strings.ContainsAny(name, `/\`), filepath.IsAbs(name):
		return "", fmt.Errorf("%w: %q", ErrInvalidName, fileName)
	}
	return name, nil
}
