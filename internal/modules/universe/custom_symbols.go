package universe

import (
	"sort"
	"strings"
	"sync"
)

// CustomSymbols is the user-managed extension of the default universe. It is
// plain configuration: symbols added here are included in the next Load.
type CustomSymbols struct {
	mu      sync.RWMutex
	symbols map[string]struct{}
}

// NewCustomSymbols creates an empty custom symbol set.
func NewCustomSymbols() *CustomSymbols {
	return &CustomSymbols{symbols: make(map[string]struct{})}
}

// Add inserts a symbol, normalized to upper case. Returns false if it was
// already present.
func (c *CustomSymbols) Add(symbol string) bool {
	symbol = Normalize(symbol)
	if symbol == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.symbols[symbol]; exists {
		return false
	}
	c.symbols[symbol] = struct{}{}
	return true
}

// Remove deletes a symbol. Returns false if it was not present.
func (c *CustomSymbols) Remove(symbol string) bool {
	symbol = Normalize(symbol)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.symbols[symbol]; !exists {
		return false
	}
	delete(c.symbols, symbol)
	return true
}

// List returns the custom symbols, sorted.
func (c *CustomSymbols) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.symbols))
	for s := range c.symbols {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Clear removes all custom symbols and returns how many were removed.
func (c *CustomSymbols) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.symbols)
	c.symbols = make(map[string]struct{})
	return n
}

// Len returns the number of custom symbols.
func (c *CustomSymbols) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.symbols)
}

// Normalize trims whitespace and upper-cases a ticker symbol.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Combined returns the default universe plus the custom symbols, deduplicated
// and in stable order (defaults first, then sorted custom additions).
func (c *CustomSymbols) Combined() []string {
	seen := make(map[string]struct{}, len(DefaultUniverse))
	out := make([]string, 0, len(DefaultUniverse)+c.Len())
	for _, s := range DefaultUniverse {
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range c.List() {
		if _, dup := seen[s]; !dup {
			out = append(out, s)
		}
	}
	return out
}
