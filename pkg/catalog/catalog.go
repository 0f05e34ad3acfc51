package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/cuemby/vmmv/pkg/types"
)

const (
	// DefaultPath is the node-wide storage catalog
	DefaultPath = "/etc/pve/storage.cfg"
)

var (
	headerRegexp    = regexp.MustCompile(`^([A-Za-z0-9_]+):\s*(\S+)\s*$`)
	attributeRegexp = regexp.MustCompile(`^\s+([A-Za-z0-9_\-]+)(?:\s+(.*\S))?\s*$`)
)

// Catalog holds the storage backends of one node keyed by name
type Catalog struct {
	backends map[string]*types.StorageBackend
	order    []string
}

// Load reads the catalog at path. A missing file yields an empty catalog.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to open storage catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage catalog %s: %w", path, err)
	}
	return c, nil
}

// New returns an empty catalog
func New() *Catalog {
	return &Catalog{backends: make(map[string]*types.StorageBackend)}
}

// Parse reads catalog text. A "kind: name" line opens a backend, indented
// "key value" lines set attributes and indented bare keys set flags.
// Lines that fit none of these forms are ignored.
func Parse(r io.Reader) (*Catalog, error) {
	c := New()
	var current *types.StorageBackend

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		if m := headerRegexp.FindStringSubmatch(line); m != nil {
			current = &types.StorageBackend{
				Name:       m[2],
				Kind:       types.StorageKind(m[1]),
				Attributes: make(map[string]string),
				Flags:      make(map[string]bool),
			}
			c.add(current)
			continue
		}

		if current == nil {
			continue
		}
		m := attributeRegexp.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if m[2] == "" {
			current.Flags[m[1]] = true
		} else {
			current.Attributes[m[1]] = m[2]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) add(b *types.StorageBackend) {
	if _, ok := c.backends[b.Name]; !ok {
		c.order = append(c.order, b.Name)
	}
	c.backends[b.Name] = b
}

// Get returns the backend with the given name
func (c *Catalog) Get(name string) (*types.StorageBackend, bool) {
	b, ok := c.backends[name]
	return b, ok
}

// Names returns backend names in catalog order
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// BackendsWithBackupContent returns enabled backends that store backups and
// declare a path, in catalog order.
func (c *Catalog) BackendsWithBackupContent() []*types.StorageBackend {
	var out []*types.StorageBackend
	for _, name := range c.order {
		b := c.backends[name]
		if !b.HasContent("backup") || b.Path() == "" || b.Disabled() {
			continue
		}
		out = append(out, b)
	}
	return out
}
