package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Response is a decoded Graph API body. Callers pick out the keys they
// need; no schema is enforced. Numbers decode as json.Number so large ids
// survive the round trip.
type Response map[string]any

// String returns the string value under key, or "" when absent or not a
// string.
func (r Response) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Int64 returns the numeric value under key. A missing key or a value
// that is not a number yields a MissingFieldError.
func (r Response) Int64(key string) (int64, error) {
	v, ok := r[key]
	if !ok {
		return 0, &MissingFieldError{Field: key}
	}
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("field %q is not an integer: %w", key, err)
		}
		return i, nil
	case float64:
		return int64(n), nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("field %q is not an integer: %w", key, err)
		}
		return i, nil
	default:
		return 0, &MissingFieldError{Field: key}
	}
}

// decodeResponse decodes a Graph API body. JSON objects are the norm; the
// legacy oauth endpoint may answer with a bare query string
// (access_token=...&expires=...), which is folded into the same map shape.
func decodeResponse(body []byte) (Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Response{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var out Response
	if err := dec.Decode(&out); err == nil {
		return out, nil
	}

	if qs, ok := decodeQueryBody(trimmed); ok {
		return qs, nil
	}
	return nil, fmt.Errorf("decode graph response: %s", bodySnippet(body))
}

// decodeQueryBody parses k=v&k=v bodies returned by the legacy token
// exchange endpoint.
func decodeQueryBody(body []byte) (Response, bool) {
	if bytes.ContainsAny(body, "{}[]\"\n") || !bytes.Contains(body, []byte("=")) {
		return nil, false
	}

	out := Response{}
	for _, pair := range bytes.Split(body, []byte("&")) {
		kv := bytes.SplitN(pair, []byte("="), 2)
		if len(kv) != 2 || len(kv[0]) == 0 {
			return nil, false
		}
		out[string(kv[0])] = string(kv[1])
	}
	return out, len(out) > 0
}
