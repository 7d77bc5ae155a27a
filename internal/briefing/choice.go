package briefing

import (
	"regexp"
	"sort"
	"strings"
)

// Option is one entry in a categorical option set. Key is the canonical
// name; aliases registered against it resolve to the same option.
type Option struct {
	Key   string
	Label string
	ID    string
}

// Resolver maps messy categorical input onto a closed option set. The
// alias table is explicit: every alias names its canonical key at
// construction time.
type Resolver struct {
	keys      []string
	byKey     map[string]Option
	byID      map[string]string
	aliases   map[string]string
	aliasKeys []string
}

var (
	twoDigitRe    = regexp.MustCompile(`^\d{2}$`)
	parenGroupRe  = regexp.MustCompile(`[（(]([^（）()]+)[）)]`)
	hedgingWordRe = regexp.MustCompile(`這次試試|本次|試試`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// NewResolver builds a resolver for the given options. aliases maps
// alternative spellings to canonical keys; entries pointing at unknown
// keys are ignored.
func NewResolver(options []Option, aliases map[string]string) *Resolver {
	r := &Resolver{
		byKey:   make(map[string]Option, len(options)),
		byID:    make(map[string]string, len(options)),
		aliases: make(map[string]string, len(aliases)),
	}
	for _, opt := range options {
		r.keys = append(r.keys, opt.Key)
		r.byKey[opt.Key] = opt
		if opt.ID != "" {
			r.byID[opt.ID] = opt.Key
		}
	}
	for alias, key := range aliases {
		if _, ok := r.byKey[key]; ok {
			clean := stripSpaces(alias)
			r.aliases[clean] = key
			r.aliasKeys = append(r.aliasKeys, clean)
		}
	}
	// Longest aliases first so the most specific spelling wins, with a
	// lexicographic tiebreak to keep resolution deterministic.
	sort.Slice(r.aliasKeys, func(i, j int) bool {
		if len(r.aliasKeys[i]) != len(r.aliasKeys[j]) {
			return len(r.aliasKeys[i]) > len(r.aliasKeys[j])
		}
		return r.aliasKeys[i] < r.aliasKeys[j]
	})
	return r
}

// Option returns the option for a canonical key.
func (r *Resolver) Option(key string) (Option, bool) {
	opt, ok := r.byKey[key]
	return opt, ok
}

// Keys returns the canonical keys in registration order.
func (r *Resolver) Keys() []string {
	return r.keys
}

// Resolve maps value onto a canonical key. Precedence: two-digit id,
// last parenthetical group (hedging words stripped), exact alias or key
// match ignoring whitespace, then substring containment in either
// direction. Returns false when nothing matches; the caller applies its
// default.
func (r *Resolver) Resolve(value string) (string, bool) {
	cleaned := stripSpaces(value)
	if cleaned == "" {
		return "", false
	}

	if twoDigitRe.MatchString(cleaned) {
		if key, ok := r.byID[cleaned]; ok {
			return key, true
		}
		return "", false
	}

	if groups := parenGroupRe.FindAllStringSubmatch(cleaned, -1); len(groups) > 0 {
		candidate := strings.TrimSpace(hedgingWordRe.ReplaceAllString(groups[len(groups)-1][1], ""))
		if candidate != "" {
			for _, key := range r.keys {
				if strings.Contains(candidate, key) {
					return key, true
				}
			}
		}
	}

	if key, ok := r.aliases[cleaned]; ok {
		return key, true
	}
	for _, key := range r.keys {
		if stripSpaces(key) == cleaned {
			return key, true
		}
	}

	for _, key := range r.keys {
		stripped := stripSpaces(key)
		if strings.Contains(cleaned, stripped) || strings.Contains(stripped, cleaned) {
			return key, true
		}
	}
	for _, alias := range r.aliasKeys {
		if strings.Contains(cleaned, alias) {
			return r.aliases[alias], true
		}
	}
	return "", false
}

func stripSpaces(value string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(value), "")
}
