package linkcache

import (
	"fmt"
	"net/url"
	"strings"
)

// ExpandTemplate replaces every {name} in template with the query-escaped
// value of params[name]. A placeholder without a value becomes empty. A '}'
// outside a placeholder is copied as is, as is an unterminated '{...' tail.
func ExpandTemplate(template string, params map[string]any) string {
	var (
		out         strings.Builder
		placeholder strings.Builder
		inside      bool
	)
	out.Grow(len(template))

	for _, r := range template {
		switch {
		case !inside && r == '{':
			inside = true
			placeholder.Reset()
		case !inside:
			out.WriteRune(r)
		case r == '}':
			inside = false
			if v, ok := params[placeholder.String()]; ok && v != nil {
				out.WriteString(url.QueryEscape(templateValue(v)))
			}
		default:
			placeholder.WriteRune(r)
		}
	}
	if inside {
		out.WriteByte('{')
		out.WriteString(placeholder.String())
	}
	return out.String()
}

func templateValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
