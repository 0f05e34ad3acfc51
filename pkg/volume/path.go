package volume

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cuemby/vmmv/pkg/types"
)

const (
	// DumpDir holds backup archives below a path-based backend
	DumpDir = "dump"

	// ImagesDir holds per-unit disk image directories below a path-based backend
	ImagesDir = "images"
)

// PathRenamer moves files on dir, nfs and cifs backends
type PathRenamer struct {
	opts Options
}

// NewPathRenamer creates a filesystem renamer
func NewPathRenamer(opts Options) *PathRenamer {
	return &PathRenamer{opts: opts}
}

// Rename moves a backup archive or disk file below the backend path.
// Archives and bare disk names live in {path}/dump; owner-qualified images
// ("100/vm-100-disk-0.qcow2") move from {path}/images/100 to
// {path}/images/{newID}.
func (r *PathRenamer) Rename(ctx context.Context, backend *types.StorageBackend, oldName string, newID types.UnitID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	root := backend.Path()
	if root == "" {
		return "", fmt.Errorf("backend %s declares no path: %w", backend.Name, types.ErrNotFound)
	}

	if img, ok := types.ParseImageName(oldName); ok {
		moved := img.WithUnit(newID)
		src := filepath.Join(root, ImagesDir, string(img.Owner), img.Disk.String())
		dst := filepath.Join(root, ImagesDir, string(newID), moved.Disk.String())
		if err := r.move(src, dst); err != nil {
			return "", err
		}
		if !r.opts.DryRun {
			// Drop the old owner directory once it is empty
			_ = os.Remove(filepath.Dir(src))
		}
		return moved.String(), nil
	}

	var newName string
	if archive, ok := types.ParseArchiveName(oldName); ok {
		newName = archive.WithUnit(newID).String()
	} else if disk, ok := types.ParseDiskName(oldName); ok {
		newName = disk.WithUnit(newID).String()
	} else {
		return "", fmt.Errorf("%w: %s", types.ErrMalformedName, oldName)
	}

	src := filepath.Join(root, DumpDir, oldName)
	dst := filepath.Join(root, DumpDir, newName)
	if err := r.move(src, dst); err != nil {
		return "", err
	}
	return newName, nil
}

func (r *PathRenamer) move(src, dst string) error {
	if _, err := os.Lstat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file %s: %w", src, types.ErrNotFound)
		}
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("file %s: %w", dst, types.ErrAlreadyExists)
	}

	if r.opts.DryRun {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}
	return nil
}
