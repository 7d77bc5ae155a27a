// Package catalog resolves free-text installation content against the
// product table and expands composite kits into their component
// materials.
package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// Entry is one product in the catalog. Key is the stable lookup token;
// Code is the CRM material code and may be empty for composite kits.
// CycleMonths is the replacement cycle, 0 when the material is not a
// consumable. Children lists the component keys of a composite kit;
// kits are never emitted themselves.
type Entry struct {
	Key         string
	Code        string
	Name        string
	CycleMonths int
	Children    []string
}

// IsKit reports whether the entry expands into component materials.
func (e Entry) IsKit() bool {
	return len(e.Children) > 0
}

// Item is one resolved line of installation content.
type Item struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	CycleMonths int    `json:"cycle"`
	Qty         int    `json:"qty"`
}

// Catalog is an ordered product table. Resolution order follows entry
// declaration order so repeated lookups are deterministic.
type Catalog struct {
	entries []Entry
	byKey   map[string]int
}

// New builds a catalog from the given entries. Later duplicates of a
// key are ignored.
func New(entries []Entry) *Catalog {
	c := &Catalog{byKey: make(map[string]int, len(entries))}
	for _, entry := range entries {
		if _, dup := c.byKey[entry.Key]; dup {
			continue
		}
		c.byKey[entry.Key] = len(c.entries)
		c.entries = append(c.entries, entry)
	}
	return c
}

// Default returns the production product table.
func Default() *Catalog {
	return New(defaultEntries)
}

// Get returns the entry for an exact key.
func (c *Catalog) Get(key string) (Entry, bool) {
	idx, ok := c.byKey[key]
	if !ok {
		return Entry{}, false
	}
	return c.entries[idx], true
}

// Lookup resolves free text to concrete materials in three tiers:
// exact key containment with kit expansion, the 龍頭 keyword, then
// space/hyphen-insensitive name containment over non-kit entries.
func (c *Catalog) Lookup(planType string) []Entry {
	lookup := strings.ToUpper(strings.TrimSpace(planType))
	if lookup == "" {
		return nil
	}

	var results []Entry
	appendUnique := func(entry Entry) {
		for _, existing := range results {
			if existing.Code == entry.Code && existing.Name == entry.Name &&
				existing.CycleMonths == entry.CycleMonths {
				return
			}
		}
		results = append(results, entry)
	}

	for _, entry := range c.entries {
		if !strings.Contains(lookup, strings.ToUpper(entry.Key)) {
			continue
		}
		if entry.IsKit() {
			for _, childKey := range entry.Children {
				if child, ok := c.Get(childKey); ok {
					appendUnique(child)
				}
			}
		} else {
			appendUnique(entry)
		}
	}
	if len(results) > 0 {
		return results
	}

	if strings.Contains(lookup, "龍頭") {
		if tap, ok := c.Get("龍頭"); ok {
			return []Entry{tap}
		}
	}

	normalizedLookup := normalizeName(lookup)
	if normalizedLookup == "" {
		return nil
	}
	for _, entry := range c.entries {
		if entry.IsKit() {
			continue
		}
		name := normalizeName(strings.ToUpper(entry.Name))
		if strings.Contains(name, normalizedLookup) || strings.Contains(normalizedLookup, name) {
			appendUnique(entry)
		}
	}
	return results
}

var (
	tokenSplitRe = regexp.MustCompile(`[+,，；;]`)
	qtySuffixRe  = regexp.MustCompile(`\*(\d+)`)
)

// ParseInstallItems splits installation content into product tokens,
// resolves each against the catalog and dedupes the resulting lines by
// (code, name, cycle, qty) preserving first-seen order. Tokens that hit
// nothing are dropped so no blank lines reach the CRM.
func (c *Catalog) ParseInstallItems(text string) []Item {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var items []Item
	for _, token := range tokenSplitRe.Split(text, -1) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		qty := 1
		if m := qtySuffixRe.FindStringSubmatch(token); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				qty = n
			}
		}
		name := strings.TrimSpace(qtySuffixRe.ReplaceAllString(token, ""))
		for _, entry := range c.Lookup(name) {
			itemName := entry.Name
			if itemName == "" {
				itemName = name
			}
			items = append(items, Item{
				Name:        itemName,
				Code:        entry.Code,
				CycleMonths: entry.CycleMonths,
				Qty:         qty,
			})
		}
	}

	type dedupeKey struct {
		code  string
		name  string
		cycle int
		qty   int
	}
	seen := make(map[dedupeKey]struct{}, len(items))
	deduped := items[:0]
	for _, item := range items {
		key := dedupeKey{item.Code, item.Name, item.CycleMonths, item.Qty}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, item)
	}
	return deduped
}

func normalizeName(value string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(value)
}
