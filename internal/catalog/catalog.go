package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
	"github.com/ironsheep/fitcheck-mcp/internal/imaging"
)

//go:embed presets.yaml
var presetsYAML []byte

// ErrUnknownItem is returned when an ID matches no catalog item.
var ErrUnknownItem = errors.New("unknown item")

// Item is one piece of furniture.
type Item struct {
	ID          string              `yaml:"id" json:"id"`
	Name        string              `yaml:"name" json:"name"`
	Category    string              `yaml:"category" json:"category"`
	Dimensions  geometry.Dimensions `yaml:"dimensions" json:"dimensions"`
	Color       string              `yaml:"color" json:"color"`
	SourceImage string              `yaml:"source_image,omitempty" json:"source_image,omitempty"`
}

// Validate checks dimensions and color, and normalizes the color in place.
func (it *Item) Validate() error {
	if it.ID == "" {
		it.ID = slugify(it.Name)
	}
	if it.ID == "" {
		return fmt.Errorf("item has neither id nor name")
	}
	if err := it.Dimensions.Validate(); err != nil {
		return fmt.Errorf("item %s: %w", it.ID, err)
	}
	if it.Color == "" {
		it.Color = defaultColor
		return nil
	}
	c, err := imaging.NormalizeHex(it.Color)
	if err != nil {
		return fmt.Errorf("item %s: %w", it.ID, err)
	}
	it.Color = c
	return nil
}

type file struct {
	Items []Item `yaml:"items"`
}

// Catalog is an ID-indexed item list. It is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	items []Item
	index map[string]int
}

// New returns a catalog holding the built-in presets.
func New() (*Catalog, error) {
	items, err := decode(bytes.NewReader(presetsYAML))
	if err != nil {
		return nil, fmt.Errorf("built-in presets: %w", err)
	}
	c := &Catalog{index: make(map[string]int)}
	c.merge(items)
	return c, nil
}

// LoadFile merges the items in a YAML override file into the catalog.
// Items whose ID already exists replace the existing entry; the rest are
// appended. Returns the number of items read.
func (c *Catalog) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return c.Load(f)
}

// Load merges items read from r. Nothing is merged if any item is invalid.
func (c *Catalog) Load(r io.Reader) (int, error) {
	items, err := decode(r)
	if err != nil {
		return 0, err
	}
	c.merge(items)
	return len(items), nil
}

func decode(r io.Reader) ([]Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid catalog YAML: %w", err)
	}

	for i := range f.Items {
		if err := f.Items[i].Validate(); err != nil {
			return nil, err
		}
	}
	return f.Items, nil
}

func (c *Catalog) merge(items []Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range items {
		if i, ok := c.index[it.ID]; ok {
			c.items[i] = it
			continue
		}
		c.index[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
}

// List returns all items in catalog order. A non-empty category filters
// the list (case-insensitive).
func (c *Catalog) List(category string) []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		if category != "" && !strings.EqualFold(it.Category, category) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, it := range c.items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Find looks an item up by ID, falling back to a case-insensitive name match
// so "Dining Table" finds "dining-table".
func (c *Catalog) Find(id string) (Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i, ok := c.index[id]; ok {
		return c.items[i], nil
	}
	if i, ok := c.index[slugify(id)]; ok {
		return c.items[i], nil
	}
	for _, it := range c.items {
		if strings.EqualFold(it.Name, id) {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("%w: %q", ErrUnknownItem, id)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
