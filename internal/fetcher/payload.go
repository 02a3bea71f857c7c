package fetcher

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Payload is a response body that is always a valid JSON document. Bodies
// that are empty or fail to parse become the empty object.
type Payload []byte

var emptyObject = Payload(`{}`)

// ParsePayload converts raw body text to a Payload.
func ParsePayload(body []byte) Payload {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return append(Payload(nil), emptyObject...)
	}
	return append(Payload(nil), trimmed...)
}

// Result exposes the payload for order-preserving inspection.
func (p Payload) Result() gjson.Result {
	if len(p) == 0 {
		return gjson.Parse(string(emptyObject))
	}
	return gjson.ParseBytes(p)
}

// Get is shorthand for Result().Get(path).
func (p Payload) Get(path string) gjson.Result {
	return p.Result().Get(path)
}

// IsEmptyObject reports whether the payload is {}.
func (p Payload) IsEmptyObject() bool {
	r := p.Result()
	if !r.IsObject() {
		return false
	}
	empty := true
	r.ForEach(func(_, _ gjson.Result) bool {
		empty = false
		return false
	})
	return empty
}

// MarshalJSON emits the payload verbatim.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return emptyObject, nil
	}
	return p, nil
}

// String returns the JSON text.
func (p Payload) String() string {
	if len(p) == 0 {
		return string(emptyObject)
	}
	return string(p)
}
