package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/cuemby/vmmv/pkg/subst"
	"github.com/cuemby/vmmv/pkg/types"
)

const (
	// DefaultPoolPath lists resource pools and their member units
	DefaultPoolPath = "/etc/pve/user.cfg"

	// DefaultJobPath lists scheduled jobs and the units they target
	DefaultJobPath = "/etc/pve/jobs.cfg"
)

// Variant describes which lines of a registry list unit ids and how ids
// are delimited on those lines
type Variant struct {
	Name     string
	Matches  func(line string) bool
	Boundary subst.Boundary
}

// PoolVariant matches "pool:" lines where ids sit between commas or colons,
// e.g. "pool:web:Web servers:100,101,102::"
var PoolVariant = Variant{
	Name:    "pool",
	Matches: func(line string) bool { return strings.HasPrefix(line, "pool:") },
	Boundary: subst.Boundary{
		Before: subst.AnyOf(",:", false),
		After:  subst.AnyOf(",:", false),
	},
}

// JobVariant matches "vmid" fields of job sections, e.g. "\tvmid 100,101",
// where ids follow a comma or space and precede a comma or line end
var JobVariant = Variant{
	Name: "job",
	Matches: func(line string) bool {
		fields := strings.Fields(line)
		return len(fields) > 0 && fields[0] == "vmid"
	},
	Boundary: subst.Boundary{
		Before: subst.AnyOf(", ", false),
		After:  subst.AnyOf(",\n", true),
	},
}

// Result describes the effect of one registry update
type Result struct {
	Path     string
	Missing  bool
	Lines    int
	Original []byte
}

// Changed reports whether any line was rewritten
func (r *Result) Changed() bool {
	return r.Lines > 0
}

// Updater rewrites unit ids in line-oriented registries
type Updater struct {
	DryRun bool
}

// Update replaces oldID with newID on every line of path selected by the
// variant. A missing registry is not an error. The file is rewritten in
// place only when a line changed.
func (u *Updater) Update(path string, v Variant, oldID, newID types.UnitID) (*Result, error) {
	res := &Result{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Missing = true
			return res, nil
		}
		return nil, fmt.Errorf("failed to read %s registry: %w", v.Name, err)
	}
	res.Original = data

	rewritten, n := Rewrite(string(data), v, oldID, newID)
	res.Lines = n
	if n == 0 || u.DryRun {
		return res, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s registry: %w", v.Name, err)
	}
	if err := os.WriteFile(path, []byte(rewritten), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("failed to write %s registry: %w", v.Name, err)
	}
	return res, nil
}

// Rewrite applies the variant to text and returns it with the number of
// changed lines. Line terminators are preserved.
func Rewrite(text string, v Variant, oldID, newID types.UnitID) (string, int) {
	lines := strings.SplitAfter(text, "\n")
	changed := 0
	for i, line := range lines {
		if line == "" || !v.Matches(line) {
			continue
		}
		if out, n := subst.Replace(line, string(oldID), string(newID), v.Boundary); n > 0 {
			lines[i] = out
			changed++
		}
	}
	return strings.Join(lines, ""), changed
}
