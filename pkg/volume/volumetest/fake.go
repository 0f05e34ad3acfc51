// Package volumetest provides an in-memory stand-in for the LVM and ZFS
// command line tools.
package volumetest

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cuemby/vmmv/pkg/types"
)

// FakeRunner emulates lvs, lvrename and zfs against an in-memory namespace
// for unit tests.
type FakeRunner struct {
	mu       sync.Mutex
	lvs      map[string]bool // "vg/lv"
	datasets map[string]bool // "pool/name"
	calls    []string

	// FailRenames makes rename commands exit non-zero
	FailRenames bool

	// IgnoreRenames makes rename commands exit zero without renaming
	IgnoreRenames bool

	// FailListing makes listing commands exit non-zero
	FailListing bool

	// FailListingAfter makes listing commands exit non-zero once this many
	// listings have succeeded; zero disables it
	FailListingAfter int

	// OnRun is called after each command with its command line
	OnRun func(call string)

	listings int
}

// NewFakeRunner creates an empty fake namespace
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		lvs:      make(map[string]bool),
		datasets: make(map[string]bool),
	}
}

// AddLV adds a logical volume
func (f *FakeRunner) AddLV(vg, lv string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lvs[vg+"/"+lv] = true
}

// HasLV reports whether a logical volume exists
func (f *FakeRunner) HasLV(vg, lv string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lvs[vg+"/"+lv]
}

// AddDataset adds a dataset by full name
func (f *FakeRunner) AddDataset(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.datasets[name] = true
}

// HasDataset reports whether a dataset exists
func (f *FakeRunner) HasDataset(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.datasets[name]
}

// Calls returns the command lines run so far
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times a command was run
func (f *FakeRunner) CallCount(command string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == command || strings.HasPrefix(c, command+" ") {
			n++
		}
	}
	return n
}

// Run dispatches on the command's base name
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	base := filepath.Base(name)
	call := strings.TrimSpace(base + " " + strings.Join(args, " "))
	f.calls = append(f.calls, call)
	out, err := f.run(base, args)
	hook := f.OnRun
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	return out, err
}

func (f *FakeRunner) listingFails() bool {
	if f.FailListing {
		return true
	}
	if f.FailListingAfter > 0 && f.listings >= f.FailListingAfter {
		return true
	}
	f.listings++
	return false
}

func (f *FakeRunner) run(base string, args []string) ([]byte, error) {
	switch base {
	case "lvs":
		if f.listingFails() {
			return nil, fmt.Errorf("%w: lvs: exit status 5", types.ErrToolFailure)
		}
		var b strings.Builder
		for _, key := range sortedKeys(f.lvs) {
			vg, lv, _ := strings.Cut(key, "/")
			fmt.Fprintf(&b, "  %s %s\n", lv, vg)
		}
		return []byte(b.String()), nil
	case "lvrename":
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: lvrename: bad arguments", types.ErrToolFailure)
		}
		return nil, f.rename(f.lvs, "lvrename", args[0], args[1])
	case "zfs":
		if len(args) == 0 {
			return nil, fmt.Errorf("%w: zfs: missing subcommand", types.ErrToolFailure)
		}
		switch args[0] {
		case "list":
			if f.listingFails() {
				return nil, fmt.Errorf("%w: zfs list: exit status 1", types.ErrToolFailure)
			}
			return []byte(strings.Join(sortedKeys(f.datasets), "\n") + "\n"), nil
		case "rename":
			if len(args) != 3 {
				return nil, fmt.Errorf("%w: zfs rename: bad arguments", types.ErrToolFailure)
			}
			return nil, f.rename(f.datasets, "zfs rename", args[1], args[2])
		}
	}
	return nil, fmt.Errorf("%w: %s: command not found", types.ErrToolFailure, base)
}

func (f *FakeRunner) rename(names map[string]bool, command, src, dst string) error {
	if f.FailRenames {
		return fmt.Errorf("%w: %s: exit status 5", types.ErrToolFailure, command)
	}
	if f.IgnoreRenames {
		return nil
	}
	if !names[src] {
		return fmt.Errorf("%w: %s: %s not found", types.ErrToolFailure, command, src)
	}
	if names[dst] {
		return fmt.Errorf("%w: %s: %s already exists", types.ErrToolFailure, command, dst)
	}
	delete(names, src)
	names[dst] = true
	return nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
