package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cuemby/vmmv/pkg/catalog"
	"github.com/cuemby/vmmv/pkg/types"
	"github.com/cuemby/vmmv/pkg/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("archive"), 0644))
}

func loadCatalog(t *testing.T, text string) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse(strings.NewReader(text))
	require.NoError(t, err)
	return cat
}

func TestMigrate_RelocatesArchives(t *testing.T) {
	root := t.TempDir()
	dump := filepath.Join(root, "dump")
	for _, name := range []string{
		"vzdump-qemu-100-2023_01_01-00_00_00.vma.zst",
		"vzdump-qemu-100-2023_01_01-00_00_00.log",
		"vzdump-qemu-1000-2023_01_01-00_00_00.vma.zst",
		"vzdump-qemu-10-2023_01_01-00_00_00.vma.zst",
		"vzdump-qemu-100-notes.txt",
		"readme",
	} {
		touch(t, filepath.Join(dump, name))
	}

	cat := loadCatalog(t, fmt.Sprintf("dir: backup\n\tpath %s\n\tcontent backup\n", root))
	m := NewMigrator(cat, volume.NewPathRenamer(volume.Options{}), false)

	items, err := m.Migrate(context.Background(), "100", "200")
	require.NoError(t, err)
	require.Len(t, items, 2)

	for _, item := range items {
		assert.Equal(t, types.OutcomeRenamed, item.Outcome)
		assert.Equal(t, "backup", item.Backend)
	}

	assert.FileExists(t, filepath.Join(dump, "vzdump-qemu-200-2023_01_01-00_00_00.vma.zst"))
	assert.FileExists(t, filepath.Join(dump, "vzdump-qemu-200-2023_01_01-00_00_00.log"))
	assert.NoFileExists(t, filepath.Join(dump, "vzdump-qemu-100-2023_01_01-00_00_00.vma.zst"))
	assert.FileExists(t, filepath.Join(dump, "vzdump-qemu-1000-2023_01_01-00_00_00.vma.zst"))
	assert.FileExists(t, filepath.Join(dump, "vzdump-qemu-10-2023_01_01-00_00_00.vma.zst"))
	assert.FileExists(t, filepath.Join(dump, "vzdump-qemu-100-notes.txt"))
	assert.FileExists(t, filepath.Join(dump, "readme"))
}

func TestMigrate_SkipsIneligibleBackends(t *testing.T) {
	enabled := t.TempDir()
	disabled := t.TempDir()
	images := t.TempDir()
	archive := "vzdump-lxc-100-2024_02_03-04_05_06.tar.zst"
	for _, root := range []string{enabled, disabled, images} {
		touch(t, filepath.Join(root, "dump", archive))
	}

	cat := loadCatalog(t, fmt.Sprintf(`dir: a
	path %s
	content backup
dir: b
	path %s
	content backup
	disable
dir: c
	path %s
	content images
nfs: d
	path %s
	content backup
`, enabled, disabled, images, filepath.Join(t.TempDir(), "missing")))

	items, err := NewMigrator(cat, volume.NewPathRenamer(volume.Options{}), false).Migrate(context.Background(), "100", "200")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Backend)

	assert.FileExists(t, filepath.Join(disabled, "dump", archive))
	assert.FileExists(t, filepath.Join(images, "dump", archive))
}

func TestMigrate_TargetExistsDoesNotAbort(t *testing.T) {
	root := t.TempDir()
	dump := filepath.Join(root, "dump")
	touch(t, filepath.Join(dump, "vzdump-qemu-100-2023_01_01-00_00_00.vma.zst"))
	touch(t, filepath.Join(dump, "vzdump-qemu-200-2023_01_01-00_00_00.vma.zst"))
	touch(t, filepath.Join(dump, "vzdump-qemu-100-2023_02_01-00_00_00.vma.zst"))

	cat := loadCatalog(t, fmt.Sprintf("dir: backup\n\tpath %s\n\tcontent backup\n", root))
	items, err := NewMigrator(cat, volume.NewPathRenamer(volume.Options{}), false).Migrate(context.Background(), "100", "200")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, types.OutcomeFailed, items[0].Outcome)
	assert.Contains(t, items[0].Reason, "already exists")
	assert.Equal(t, types.OutcomeRenamed, items[1].Outcome)
	assert.FileExists(t, filepath.Join(dump, "vzdump-qemu-100-2023_01_01-00_00_00.vma.zst"))
	assert.FileExists(t, filepath.Join(dump, "vzdump-qemu-200-2023_02_01-00_00_00.vma.zst"))
}

func TestMigrate_DryRun(t *testing.T) {
	root := t.TempDir()
	old := filepath.Join(root, "dump", "vzdump-qemu-100-2023_01_01-00_00_00.vma.zst")
	touch(t, old)

	cat := loadCatalog(t, fmt.Sprintf("dir: backup\n\tpath %s\n\tcontent backup\n", root))
	items, err := NewMigrator(cat, volume.NewPathRenamer(volume.Options{DryRun: true}), true).Migrate(context.Background(), "100", "200")
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, types.OutcomePlanned, items[0].Outcome)
	assert.Equal(t, "vzdump-qemu-200-2023_01_01-00_00_00.vma.zst", items[0].New)
	assert.FileExists(t, old)
}

func TestArchives(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "vzdump-qemu-100-2023_01_02-00_00_00.vma"))
	touch(t, filepath.Join(dir, "vzdump-lxc-100-2023_01_01-00_00_00.tar.gz"))
	touch(t, filepath.Join(dir, "vzdump-qemu-101-2023_01_01-00_00_00.vma"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "vzdump-qemu-100-2023_01_03-00_00_00.tmp"), 0755))

	names, err := Archives(dir, "100")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"vzdump-lxc-100-2023_01_01-00_00_00.tar.gz",
		"vzdump-qemu-100-2023_01_02-00_00_00.vma",
	}, names)
}
