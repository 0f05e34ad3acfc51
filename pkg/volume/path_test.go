package volume

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cuemby/vmmv/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dirBackend(path string) *types.StorageBackend {
	return &types.StorageBackend{
		Name:       "local",
		Kind:       types.StorageKindDir,
		Attributes: map[string]string{"path": path, "content": "backup,images"},
		Flags:      map[string]bool{},
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
}

func TestPathRenamer_Archive(t *testing.T) {
	root := t.TempDir()
	old := "vzdump-qemu-100-2023_01_01-00_00_00.vma.zst"
	writeFile(t, filepath.Join(root, "dump", old))

	r := NewPathRenamer(Options{})
	got, err := r.Rename(context.Background(), dirBackend(root), old, "200")
	require.NoError(t, err)

	assert.Equal(t, "vzdump-qemu-200-2023_01_01-00_00_00.vma.zst", got)
	assert.FileExists(t, filepath.Join(root, "dump", got))
	assert.NoFileExists(t, filepath.Join(root, "dump", old))
}

func TestPathRenamer_DiskInDump(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dump", "vm-100-disk-0"))

	r := NewPathRenamer(Options{})
	got, err := r.Rename(context.Background(), dirBackend(root), "vm-100-disk-0", "200")
	require.NoError(t, err)
	assert.Equal(t, "vm-200-disk-0", got)
	assert.FileExists(t, filepath.Join(root, "dump", "vm-200-disk-0"))
}

func TestPathRenamer_Image(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "images", "100", "vm-100-disk-0.qcow2"))

	r := NewPathRenamer(Options{})
	got, err := r.Rename(context.Background(), dirBackend(root), "100/vm-100-disk-0.qcow2", "200")
	require.NoError(t, err)

	assert.Equal(t, "200/vm-200-disk-0.qcow2", got)
	assert.FileExists(t, filepath.Join(root, "images", "200", "vm-200-disk-0.qcow2"))
	assert.NoDirExists(t, filepath.Join(root, "images", "100"))
}

func TestPathRenamer_ImageKeepsNonEmptyOwnerDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "images", "100", "vm-100-disk-0.qcow2"))
	writeFile(t, filepath.Join(root, "images", "100", "vm-100-disk-1.raw"))

	r := NewPathRenamer(Options{})
	_, err := r.Rename(context.Background(), dirBackend(root), "100/vm-100-disk-0.qcow2", "200")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "images", "100", "vm-100-disk-1.raw"))
}

func TestPathRenamer_Errors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dump", "vzdump-lxc-100-2023_01_01-00_00_00.tar"))
	writeFile(t, filepath.Join(root, "dump", "vzdump-lxc-200-2023_01_01-00_00_00.tar"))

	r := NewPathRenamer(Options{})
	tests := []struct {
		name    string
		backend *types.StorageBackend
		old     string
		wantErr error
	}{
		{"missing file", dirBackend(root), "vzdump-qemu-100-2023_01_01-00_00_00.vma", types.ErrNotFound},
		{"target exists", dirBackend(root), "vzdump-lxc-100-2023_01_01-00_00_00.tar", types.ErrAlreadyExists},
		{"malformed", dirBackend(root), "notes.txt", types.ErrMalformedName},
		{"no path", &types.StorageBackend{Name: "x", Kind: types.StorageKindNFS}, "vm-100-disk-0", types.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Rename(context.Background(), tt.backend, tt.old, "200")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPathRenamer_DryRun(t *testing.T) {
	root := t.TempDir()
	old := "vzdump-qemu-100-2023_01_01-00_00_00.vma"
	writeFile(t, filepath.Join(root, "dump", old))

	r := NewPathRenamer(Options{DryRun: true})
	got, err := r.Rename(context.Background(), dirBackend(root), old, "200")
	require.NoError(t, err)
	assert.Equal(t, "vzdump-qemu-200-2023_01_01-00_00_00.vma", got)
	assert.FileExists(t, filepath.Join(root, "dump", old))
	assert.NoFileExists(t, filepath.Join(root, "dump", got))
}
