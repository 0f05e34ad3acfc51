package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewrite_Pool(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		changed int
	}{
		{
			name:    "member in the middle",
			input:   "pool:web:Web servers:99,100,101::\n",
			want:    "pool:web:Web servers:99,200,101::\n",
			changed: 1,
		},
		{
			name:    "first member after colon",
			input:   "pool:web::100,101:local-lvm:\n",
			want:    "pool:web::200,101:local-lvm:\n",
			changed: 1,
		},
		{
			name:    "only member",
			input:   "pool:db::100::\n",
			want:    "pool:db::200::\n",
			changed: 1,
		},
		{
			name:    "substring of longer id untouched",
			input:   "pool:web::1000,2100::\n",
			want:    "pool:web::1000,2100::\n",
			changed: 0,
		},
		{
			name:    "non pool lines untouched",
			input:   "user:root@pam:1:0:::admin@example.com:\nacl:1:/vms/100:root@pam:Admin:\n",
			want:    "user:root@pam:1:0:::admin@example.com:\nacl:1:/vms/100:root@pam:Admin:\n",
			changed: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := Rewrite(tt.input, PoolVariant, "100", "200")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, n)
		})
	}
}

func TestRewrite_Job(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		changed int
	}{
		{
			name:    "first in list",
			input:   "vzdump: backup-1\n\tschedule daily\n\tvmid 100,101,102\n",
			want:    "vzdump: backup-1\n\tschedule daily\n\tvmid 200,101,102\n",
			changed: 1,
		},
		{
			name:    "last in list",
			input:   "\tvmid 101,100\n",
			want:    "\tvmid 101,200\n",
			changed: 1,
		},
		{
			name:    "last line without newline",
			input:   "vzdump: backup-1\n\tvmid 100",
			want:    "vzdump: backup-1\n\tvmid 200",
			changed: 1,
		},
		{
			name:    "shorter id not matched",
			input:   "\tvmid 10,101\n",
			want:    "\tvmid 10,101\n",
			changed: 0,
		},
		{
			name:    "other fields untouched",
			input:   "\tcomment keep 100 copies\n\tvmid 100\n",
			want:    "\tcomment keep 100 copies\n\tvmid 200\n",
			changed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := Rewrite(tt.input, JobVariant, "100", "200")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, n)
		})
	}
}

func TestRewrite_JobDoesNotTouchLongerIDs(t *testing.T) {
	got, n := Rewrite("\tvmid 10,101\n", JobVariant, "10", "20")
	assert.Equal(t, "\tvmid 20,101\n", got)
	assert.Equal(t, 1, n)
}

func TestUpdater_Update(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.cfg")
	require.NoError(t, os.WriteFile(path, []byte("vzdump: nightly\n\tvmid 100,101\n"), 0640))

	u := &Updater{}
	res, err := u.Update(path, JobVariant, "100", "200")
	require.NoError(t, err)
	assert.True(t, res.Changed())
	assert.Equal(t, "vzdump: nightly\n\tvmid 100,101\n", string(res.Original))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "vzdump: nightly\n\tvmid 200,101\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestUpdater_Missing(t *testing.T) {
	u := &Updater{}
	res, err := u.Update(filepath.Join(t.TempDir(), "user.cfg"), PoolVariant, "100", "200")
	require.NoError(t, err)
	assert.True(t, res.Missing)
	assert.False(t, res.Changed())
}

func TestUpdater_DryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.cfg")
	original := "pool:web::100::\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0640))

	u := &Updater{DryRun: true}
	res, err := u.Update(path, PoolVariant, "100", "200")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Lines)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}
