package cmis

import (
	"fmt"
	"math/big"
	"net/url"
	"strconv"
)

func parseServiceURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AtomPub URL %q: %w", ErrInvalidArgument, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: AtomPub URL %q is not absolute", ErrInvalidArgument, raw)
	}
	return u, nil
}

// urlBuilder adds query parameters to a link href. Parameters already in the
// href are replaced.
type urlBuilder struct {
	base   string
	params url.Values
}

func newURLBuilder(href string) *urlBuilder {
	return &urlBuilder{base: href, params: url.Values{}}
}

// param adds name unless value is nil or empty. Booleans are only added when
// true, numbers only when positive.
func (b *urlBuilder) param(name string, value any) *urlBuilder {
	var s string
	switch v := value.(type) {
	case nil:
		return b
	case string:
		s = v
	case bool:
		if !v {
			return b
		}
		s = "true"
	case int:
		if v <= 0 {
			return b
		}
		s = strconv.Itoa(v)
	case *big.Int:
		if v == nil {
			return b
		}
		s = v.String()
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	if s == "" {
		return b
	}
	b.params.Set(name, s)
	return b
}

// flag adds a boolean parameter whatever its value.
func (b *urlBuilder) flag(name string, value bool) *urlBuilder {
	b.params.Set(name, strconv.FormatBool(value))
	return b
}

func (b *urlBuilder) build() (string, error) {
	u, err := url.Parse(b.base)
	if err != nil {
		return "", fmt.Errorf("%w: invalid link %q: %w", ErrRuntime, b.base, err)
	}
	if len(b.params) == 0 {
		return u.String(), nil
	}
	q := u.Query()
	for name, values := range b.params {
		q[name] = values
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
