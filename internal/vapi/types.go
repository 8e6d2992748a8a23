package vapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Call statuses reported by the platform. Only StatusEnded is terminal in a
// useful sense; everything else means the call is still in flight or never
// connected.
const (
	StatusQueued     = "queued"
	StatusRinging    = "ringing"
	StatusInProgress = "in-progress"
	StatusForwarding = "forwarding"
	StatusEnded      = "ended"
)

// Customer describes the callee of an outbound call.
type Customer struct {
	Number string `json:"number"`
}

// CallSummary is the lightweight record returned by the call listing.
// Timestamps stay as raw strings; the platform is not consistent about
// emitting them and parsing is the matcher's concern.
type CallSummary struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	AssistantID string    `json:"assistantId"`
	Customer    *Customer `json:"customer,omitempty"`
	StartedAt   string    `json:"startedAt,omitempty"`
	EndedAt     string    `json:"endedAt,omitempty"`
}

// Call is the fully fetched record, which may carry an artifact with
// structured outputs once the platform has processed the call.
type Call struct {
	CallSummary
	Artifact *Artifact `json:"artifact,omitempty"`
}

// Artifact holds post-call analysis attached by the platform.
type Artifact struct {
	StructuredOutputs Outputs `json:"structuredOutputs"`
}

// HasStructuredOutput reports whether the call carries a non-empty
// structured-output payload.
func (c *Call) HasStructuredOutput() bool {
	return c != nil && c.Artifact != nil && !c.Artifact.StructuredOutputs.Empty()
}

// Kind discriminates the Value union.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindMapping
	KindSequence
)

// Value is one structured-output node. The platform does not commit to a
// schema: a value may be a bare string, a mapping with loosely recognized
// fields, or a sequence of either. Mappings keep their key order because
// downstream extraction scans in payload order.
type Value struct {
	Kind    Kind
	Str     string
	Num     float64
	Bool    bool
	Entries []Entry
	Items   []Value
}

// Entry is a single key/value pair of a mapping Value.
type Entry struct {
	Key   string
	Value Value
}

// Outputs is the top-level structured-output mapping, key order preserved.
type Outputs struct {
	Entries []Entry
}

func (o Outputs) Empty() bool { return len(o.Entries) == 0 }

// Lookup returns the first entry with the given key.
func (v Value) Lookup(key string) (Value, bool) {
	for _, e := range v.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Text renders a scalar value as a string. Mappings and sequences report
// false; callers walk those instead.
func (v Value) Text() (string, bool) {
	switch v.Kind {
	case KindString:
		return v.Str, true
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.Bool), true
	default:
		return "", false
	}
}

// Truthy mirrors the loose upstream convention for flags like "completed":
// true booleans, non-zero numbers, and non-empty strings all count.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num != 0
	case KindString:
		return v.Str != ""
	case KindMapping:
		return len(v.Entries) > 0
	case KindSequence:
		return len(v.Items) > 0
	default:
		return false
	}
}

// UnmarshalJSON decodes any JSON value via the token stream so mapping key
// order survives.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// UnmarshalJSON accepts an object or null; anything else is a malformed
// artifact and decodes as empty rather than failing the whole call fetch.
func (o *Outputs) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	if v.Kind == KindMapping {
		o.Entries = v.Entries
	} else {
		o.Entries = nil
	}
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Value{Kind: KindNull}, nil
	case string:
		return Value{Kind: KindString, Str: t}, nil
	case bool:
		return Value{Kind: KindBool, Bool: t}, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindNumber, Num: f}, nil
	case json.Delim:
		switch t {
		case '{':
			v := Value{Kind: KindMapping}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("vapi: object key is %T", keyTok)
				}
				child, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				v.Entries = append(v.Entries, Entry{Key: key, Value: child})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return v, nil
		case '[':
			v := Value{Kind: KindSequence}
			for dec.More() {
				child, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				v.Items = append(v.Items, child)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return v, nil
		}
	}
	return Value{}, fmt.Errorf("vapi: unexpected token %v", tok)
}
