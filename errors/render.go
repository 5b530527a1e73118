package errors

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
)

// UndefinedContextVariable replaces placeholders whose context value is missing or falsy.
const UndefinedContextVariable = "UNDEFINED"

var placeholderPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// RenderMessage expands every {{name}} placeholder in template with ctx[name].
// Values that are absent or falsy (nil, false, zero numbers, empty strings)
// render as UndefinedContextVariable. Expansion is a single pass: substituted
// values are never re-scanned.
func RenderMessage(template string, ctx map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := token[2 : len(token)-2]
		v, ok := ctx[name]
		if !ok || !truthy(v) {
			return UndefinedContextVariable
		}
		return stringify(v)
	})
}

// Placeholders returns the distinct placeholder names used by template in
// order of first appearance.
func Placeholders(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0 && !math.IsNaN(float64(x))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	case []any:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = stringify(p)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}
