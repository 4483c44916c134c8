package linkcache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cmisgo/cmis.go/pkg/linkcache"
)

func TestExpandTemplate(t *testing.T) {
	cases := []struct {
		name     string
		template string
		params   map[string]any
		want     string
	}{
		{
			name:     "single placeholder",
			template: "/repo/{id}/children",
			params:   map[string]any{"id": "42"},
			want:     "/repo/42/children",
		},
		{
			name:     "missing value is empty",
			template: "/x{a}{b}y",
			params:   map[string]any{"a": "1"},
			want:     "/x1y",
		},
		{
			name:     "nil value is empty",
			template: "/x{a}y",
			params:   map[string]any{"a": nil},
			want:     "/xy",
		},
		{
			name:     "values are escaped",
			template: "/obj?path={path}",
			params:   map[string]any{"path": "/a b/ü&c"},
			want:     "/obj?path=%2Fa+b%2F%C3%BC%26c",
		},
		{
			name:     "non-string values",
			template: "/q?max={maxItems}&all={searchAllVersions}",
			params:   map[string]any{"maxItems": 10, "searchAllVersions": true},
			want:     "/q?max=10&all=true",
		},
		{
			name:     "closing brace outside placeholder",
			template: "/a}b/{id}",
			params:   map[string]any{"id": "1"},
			want:     "/a}b/1",
		},
		{
			name:     "unterminated placeholder",
			template: "/a/{id",
			params:   map[string]any{"id": "1"},
			want:     "/a/{id",
		},
		{
			name:     "no placeholders",
			template: "http://x/cmis/atom",
			want:     "http://x/cmis/atom",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, linkcache.ExpandTemplate(tc.template, tc.params))
		})
	}
}
