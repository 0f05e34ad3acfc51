package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cuemby/vmmv/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `dir: local
	path /var/lib/vz
	content iso,vztmpl,backup

lvmthin: local-lvm
	thinpool data
	vgname pve
	content rootdir,images

zfspool: tank
	pool tank
	content images,rootdir
	sparse

nfs: nas
	export /export/backup
	path /mnt/pve/nas
	server 10.0.0.5
	content backup
	disable

cifs: share
	path /mnt/pve/share
	content images

this line is garbage
	and so is: this one
`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	assert.Len(t, c.Names(), 5)
	assert.Equal(t, []string{"local", "local-lvm", "tank", "nas", "share"}, c.Names())

	lvm, ok := c.Get("local-lvm")
	require.True(t, ok)
	assert.Equal(t, types.StorageKindLVMThin, lvm.Kind)
	vg, _ := lvm.Attribute("vgname")
	assert.Equal(t, "pve", vg)

	tank, ok := c.Get("tank")
	require.True(t, ok)
	assert.True(t, tank.Flags["sparse"])

	nas, ok := c.Get("nas")
	require.True(t, ok)
	assert.True(t, nas.Disabled())
	assert.Equal(t, "/mnt/pve/nas", nas.Path())

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestParse_TrailingGarbageAttachesToLastBackend(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	share, ok := c.Get("share")
	require.True(t, ok)
	// the indented garbage line parses as key "and" with a value
	assert.Equal(t, "so is: this one", share.Attributes["and"])
	assert.Equal(t, "/mnt/pve/share", share.Path())
}

func TestParse_IgnoresLinesBeforeFirstHeader(t *testing.T) {
	c, err := Parse(strings.NewReader("\tpath /nowhere\n# comment\ndir: local\n\tpath /var/lib/vz\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"local"}, c.Names())
}

func TestBackendsWithBackupContent(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	got := c.BackendsWithBackupContent()
	require.Len(t, got, 1)
	assert.Equal(t, "local", got[0].Name)
}

func TestLoad_MissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "storage.cfg"))
	require.NoError(t, err)
	assert.Empty(t, c.Names())
	assert.Empty(t, c.BackendsWithBackupContent())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.cfg")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Names(), 5)
}
