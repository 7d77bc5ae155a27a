// Package payload builds the nested CRM request bodies. Field paths use
// two notations: dotted paths create nested objects, and a
// prefix__suffix path routes the value into a named character entity
// while keeping the flat key.
package payload

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tree is a CRM payload under construction.
type Tree = map[string]interface{}

// Assign writes value into data at fieldCode. Empty values and empty
// field codes are a no-op. A dotted path builds the nested objects and
// removes the flat duplicate. A prefix__suffix path mirrors the value
// into the matching character entity and keeps the flat key:
// merchantCharacter__X lands in both
// "merchantCharacterEntity!merchantCharacter" and "merchantCharacter",
// customerAddApplyCharacter__X lands in "customerAddApplyCharacter".
func Assign(data Tree, fieldCode string, value interface{}) {
	if fieldCode == "" || isEmptyValue(value) {
		return
	}
	data[fieldCode] = value

	if strings.Contains(fieldCode, ".") && !strings.Contains(fieldCode, "__") {
		segments := splitNonEmpty(fieldCode, ".")
		if len(segments) < 2 {
			return
		}
		target := data
		for _, segment := range segments[:len(segments)-1] {
			next, exists := target[segment]
			if !exists {
				child := make(Tree)
				target[segment] = child
				target = child
				continue
			}
			child, ok := next.(Tree)
			if !ok {
				return
			}
			target = child
		}
		target[segments[len(segments)-1]] = value
		delete(data, fieldCode)
		return
	}

	if !strings.Contains(fieldCode, "__") {
		return
	}
	parts := strings.SplitN(fieldCode, "__", 2)
	prefix, nestedKey := parts[0], parts[1]
	if nestedKey == "" {
		return
	}
	switch prefix {
	case "merchantCharacter":
		setEntityField(data, "merchantCharacterEntity!merchantCharacter", nestedKey, value)
		setEntityField(data, "merchantCharacter", nestedKey, value)
	case "customerAddApplyCharacter":
		setEntityField(data, "customerAddApplyCharacter", nestedKey, value)
	}
}

// Cleanup removes nil, empty-string, empty-slice and empty-map values
// recursively, bottom-up: a container that becomes empty after its
// children are cleaned is removed too.
func Cleanup(value interface{}) interface{} {
	switch v := value.(type) {
	case Tree:
		cleaned := make(Tree, len(v))
		for key, child := range v {
			result := Cleanup(child)
			if !isEmptyValue(result) {
				cleaned[key] = result
			}
		}
		return cleaned
	case []interface{}:
		cleaned := make([]interface{}, 0, len(v))
		for _, child := range v {
			result := Cleanup(child)
			if !isEmptyValue(result) {
				cleaned = append(cleaned, result)
			}
		}
		return cleaned
	default:
		return value
	}
}

// TextMap wraps a value into the bilingual text shape the CRM expects.
func TextMap(value string) Tree {
	return Tree{"zh_TW": value, "zh_CN": value}
}

// FormatAmount renders a number the way the CRM accepts amounts: whole
// numbers without a fraction, otherwise at most two decimals with
// trailing zeros trimmed.
func FormatAmount(value float64) string {
	if value == math.Trunc(value) {
		return strconv.FormatInt(int64(value), 10)
	}
	text := fmt.Sprintf("%.2f", value)
	text = strings.TrimRight(text, "0")
	return strings.TrimRight(text, ".")
}

// FormatAmountPtr is FormatAmount for optional values; nil renders "".
func FormatAmountPtr(value *float64) string {
	if value == nil {
		return ""
	}
	return FormatAmount(*value)
}

// SanitizePaymentCode keeps digit-only codes (two-digit codes are
// zero-padded, longer dictionary ids pass through) and replaces
// anything else with the fallback.
func SanitizePaymentCode(value, fallback string) string {
	clean := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	if clean == "" {
		return fallback
	}
	if isDigits(clean) {
		if len(clean) == 1 {
			return "0" + clean
		}
		return clean
	}
	return fallback
}

func setEntityField(data Tree, entityKey, nestedKey string, value interface{}) {
	entity, exists := data[entityKey]
	if !exists {
		data[entityKey] = Tree{nestedKey: value}
		return
	}
	if m, ok := entity.(Tree); ok {
		m[nestedKey] = value
	}
}

func isEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case Tree:
		return len(v) == 0
	case map[string]string:
		return len(v) == 0
	default:
		return false
	}
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
