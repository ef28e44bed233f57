// Package renderer implements the Template Renderer component: strict,
// non-silent substitution of named placeholders in a Template's content
// against a recipient's attribute map.
package renderer

import (
	"fmt"
	"regexp"

	"github.com/Notifuse/notifuse/internal/domain"
)

// placeholderPattern matches {name} placeholders. Only word characters are
// permitted in a placeholder name, mirroring the Python reference's
// \{(\w+)\} grammar; this keeps the renderer from ever needing a real
// expression parser (rich templating is out of scope).
var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Render substitutes every {placeholder} in content with the matching
// string attribute from attrs. It returns a *domain.MissingAttributeError
// naming every placeholder that has no corresponding (or empty) attribute;
// the caller counts this as a missing_template_data skip rather than a
// dispatch failure (spec §4.10).
func Render(content string, attrs domain.MapOfAny) (string, error) {
	names := placeholderPattern.FindAllStringSubmatch(content, -1)

	var missing []string
	seen := make(map[string]bool)
	for _, m := range names {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		if !hasNonEmptyAttribute(attrs, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &domain.MissingAttributeError{Names: missing}
	}

	rendered := placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		v, _ := attrs[name]
		return toRenderedString(v)
	})
	return rendered, nil
}

func hasNonEmptyAttribute(attrs domain.MapOfAny, name string) bool {
	if attrs == nil {
		return false
	}
	v, ok := attrs[name]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}

func toRenderedString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
