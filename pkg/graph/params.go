package graph

import (
	"net/url"
	"strings"
)

// Param is a single query parameter. Parameters are kept as an ordered
// list rather than a map: order is preserved on the wire and duplicate
// keys are passed through as-is (the remote API decides what they mean).
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters.
type Params []Param

// NewParams builds a parameter list from alternating key/value strings.
func NewParams(kv ...string) Params {
	if len(kv)%2 != 0 {
		kv = kv[:len(kv)-1]
	}
	p := make(Params, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		p = append(p, Param{Key: kv[i], Value: kv[i+1]})
	}
	return p
}

// With returns a new list with the given pair appended. The receiver is
// never mutated, so lists can be shared across calls safely.
func (p Params) With(key, value string) Params {
	out := make(Params, len(p), len(p)+1)
	copy(out, p)
	return append(out, Param{Key: key, Value: value})
}

// Fields builds a parameter list carrying a comma-joined fields selector.
// An empty list of names yields no fields parameter at all.
func Fields(names ...string) Params {
	joined := joinFields(names)
	if joined == "" {
		return nil
	}
	return Params{{Key: "fields", Value: joined}}
}

// WithProof appends an appsecret_proof computed from token and secret.
// When secret is empty the list is returned unchanged.
func WithProof(p Params, token, secret string) Params {
	if secret == "" {
		return p
	}
	return p.With("appsecret_proof", Sign(token, secret))
}

// Values converts the ordered list into url.Values for the transport.
// Duplicate keys accumulate in order.
func (p Params) Values() url.Values {
	out := make(url.Values, len(p))
	for _, kv := range p {
		out[kv.Key] = append(out[kv.Key], kv.Value)
	}
	return out
}

// Encode renders the list as a query string preserving insertion order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

func joinFields(names []string) string {
	trimmed := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			trimmed = append(trimmed, n)
		}
	}
	return strings.Join(trimmed, ",")
}
