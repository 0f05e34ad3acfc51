package volume

import (
	"context"
	"fmt"

	"github.com/cuemby/vmmv/pkg/types"
)

// entry is one object of a live enumeration and the group or pool holding it
type entry struct {
	container string
	name      string
}

// listing memoizes a live enumeration for the lifetime of a migration
type listing struct {
	load    func(ctx context.Context) ([]entry, error)
	entries []entry
	loaded  bool
}

func (l *listing) get(ctx context.Context) ([]entry, error) {
	if l.loaded {
		return l.entries, nil
	}
	entries, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	l.entries = entries
	l.loaded = true
	return entries, nil
}

// lookup returns the container holding name among entries accepted by scope
func (l *listing) lookup(ctx context.Context, name string, scope func(container string) bool) (string, bool, error) {
	entries, err := l.get(ctx)
	if err != nil {
		return "", false, err
	}
	for _, e := range entries {
		if e.name == name && scope(e.container) {
			return e.container, true, nil
		}
	}
	return "", false, nil
}

func (l *listing) moved(container, oldName, newName string) {
	for i := range l.entries {
		if l.entries[i].container == container && l.entries[i].name == oldName {
			l.entries[i].name = newName
		}
	}
}

func (l *listing) reset() {
	l.entries = nil
	l.loaded = false
}

// nativeRename renames oldName to newName inside container
type nativeRename func(ctx context.Context, container, oldName, newName string) error

// renameListed is the rename flow shared by volume-group and pool backends:
// resolve the container from the live listing, derive the new disk name and
// invoke the native primitive. A verification that cannot list the storage
// returns the new name together with types.ErrUnverified.
func renameListed(ctx context.Context, l *listing, scope func(string) bool, oldName string, newID types.UnitID, opts Options, rename nativeRename) (string, error) {
	disk, ok := types.ParseDiskName(oldName)
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrMalformedName, oldName)
	}

	container, ok, err := l.lookup(ctx, oldName, scope)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("volume %s: %w", oldName, types.ErrNotFound)
	}

	newName := disk.WithUnit(newID).String()
	if _, taken, err := l.lookup(ctx, newName, func(c string) bool { return c == container }); err != nil {
		return "", err
	} else if taken {
		return "", fmt.Errorf("volume %s/%s: %w", container, newName, types.ErrAlreadyExists)
	}

	if opts.DryRun {
		return newName, nil
	}

	if err := rename(ctx, container, oldName, newName); err != nil {
		return "", err
	}

	if !opts.Verify {
		l.moved(container, oldName, newName)
		return newName, nil
	}

	// The native rename exited zero, so from here on newName is returned
	// even when the listing cannot be read back.
	l.reset()
	_, present, err := l.lookup(ctx, newName, func(c string) bool { return c == container })
	if err != nil {
		return newName, fmt.Errorf("%w: %s/%s -> %s: %v", types.ErrUnverified, container, oldName, newName, err)
	}
	_, stale, err := l.lookup(ctx, oldName, func(c string) bool { return c == container })
	if err != nil {
		return newName, fmt.Errorf("%w: %s/%s -> %s: %v", types.ErrUnverified, container, oldName, newName, err)
	}
	if !present || stale {
		return "", fmt.Errorf("%w: %s/%s was not renamed to %s", types.ErrToolFailure, container, oldName, newName)
	}
	return newName, nil
}
