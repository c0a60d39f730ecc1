package tool

import (
	"strings"
	"sync"

	"github.com/leofalp/parliament/providers/ai"
)

// Catalog manages a collection of tools with thread-safe operations,
// keyed case-insensitively by tool name.
type Catalog struct {
	mu    sync.RWMutex
	tools map[string]GenericTool
	order []string
}

// NewCatalog creates a new empty tool catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		tools: make(map[string]GenericTool),
	}
}

// NewCatalogWithTools creates a catalog pre-populated with the given tools.
func NewCatalogWithTools(tools ...GenericTool) *Catalog {
	catalog := NewCatalog()
	catalog.AddTools(tools...)
	return catalog
}

// AddTools adds tools to the catalog. Names are taken from each tool's
// ToolInfo().Name and stored lowercase; a tool with an existing name replaces
// the previous registration.
func (c *Catalog) AddTools(tools ...GenericTool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tools {
		name := strings.ToLower(t.ToolInfo().Name)
		if _, exists := c.tools[name]; !exists {
			c.order = append(c.order, name)
		}
		c.tools[name] = t
	}
}

// Get retrieves a tool by name (case-insensitive).
func (c *Catalog) Get(name string) (GenericTool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, exists := c.tools[strings.ToLower(name)]
	return t, exists
}

// Has reports whether a tool with the given name exists (case-insensitive).
func (c *Catalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.tools[strings.ToLower(name)]
	return exists
}

// Size returns the number of tools in the catalog.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}

// Descriptions returns the tool descriptions in registration order, ready to
// be attached to an [ai.ChatRequest].
func (c *Catalog) Descriptions() []ai.ToolDescription {
	c.mu.RLock()
	defer c.mu.RUnlock()

	descriptions := make([]ai.ToolDescription, 0, len(c.tools))
	for _, name := range c.order {
		descriptions = append(descriptions, c.tools[name].ToolInfo())
	}
	return descriptions
}
