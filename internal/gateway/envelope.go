package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Envelope is a parsed JSON response body. The backend wraps writes in
// {"success": bool, ...} and list reads in {"<collection>": [...]}.
type Envelope struct {
	status int
	raw    []byte
}

// NewEnvelope validates raw as JSON. An empty body is read as {}.
func NewEnvelope(status int, raw []byte) (*Envelope, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	return &Envelope{status: status, raw: raw}, nil
}

// Status is the HTTP status code the envelope arrived with.
func (e *Envelope) Status() int { return e.status }

// OK reports a 2xx status.
func (e *Envelope) OK() bool { return e.status >= 200 && e.status < 300 }

// Success reads the envelope's success flag; absent means false.
func (e *Envelope) Success() bool {
	return gjson.GetBytes(e.raw, "success").Bool()
}

// Has reports whether the top-level field is present and not null.
func (e *Envelope) Has(field string) bool {
	r := gjson.GetBytes(e.raw, field)
	return r.Exists() && r.Type != gjson.Null
}

// Decode unmarshals field into dst. A missing or null field leaves dst untouched.
func (e *Envelope) Decode(field string, dst any) error {
	r := gjson.GetBytes(e.raw, field)
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	if err := json.Unmarshal([]byte(r.Raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", field, err)
	}
	return nil
}

// ErrorMessage returns the backend's "error" field, if any.
func (e *Envelope) ErrorMessage() string {
	return gjson.GetBytes(e.raw, "error").String()
}

// Raw returns the undecoded body.
func (e *Envelope) Raw() []byte { return e.raw }
