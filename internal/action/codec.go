package action

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrUnknownType is returned when an envelope names no known variant.
var ErrUnknownType = errors.New("unknown action type")

// Envelope is the field-tagged wire form of an Action:
//
//	{"type": "MouseMove", "params": {"x": 10, "y": 20}}
//
// It marshals to and from both JSON and YAML.
type Envelope struct {
	Action Action
}

type wireEnvelope struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
}

var decoders = map[string]func(json.RawMessage) (Action, error){
	"MouseMove":        decodeParams[MouseMove],
	"MouseClick":       decodeParams[MouseClick],
	"MouseDoubleClick": decodeParams[MouseDoubleClick],
	"MousePress":       decodeParams[MousePress],
	"MouseDrag":        decodeParams[MouseDrag],
	"MouseScroll":      decodeParams[MouseScroll],
	"KeyPress":         decodeParams[KeyPress],
	"KeyDown":          decodeParams[KeyDown],
	"KeyUp":            decodeParams[KeyUp],
	"KeySequence":      decodeParams[KeySequence],
	"TypeText":         decodeParams[TypeText],
	"Hotkey":           decodeParams[Hotkey],
	"Delay":            decodeParams[Delay],
	"Sequence":         decodeParams[Sequence],
	"Parallel":         decodeParams[Parallel],
}

func decodeParams[T Action](raw json.RawMessage) (Action, error) {
	var v T
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := decodeStrict(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Each action level adds three JSON levels (envelope, params, actions)
// and leaf params can add a few more. Validate applies the exact limit.
const maxWireDepth = 3*(MaxDepth+1) + 4

// checkDepth rejects over-nested documents in one pass over the tokens,
// before the recursive decode rescans each level.
func checkDepth(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			// io.EOF, or a syntax error the real decode reports
			return nil
		}
		d, ok := tok.(json.Delim)
		if !ok {
			continue
		}
		switch d {
		case '{', '[':
			depth++
			if depth > maxWireDepth {
				return ErrTooDeep
			}
		default:
			depth--
		}
	}
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Action == nil {
		return []byte("null"), nil
	}
	params, err := json.Marshal(e.Action)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEnvelope{Type: e.Action.Type(), Params: params})
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		e.Action = nil
		return nil
	}
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	decode, ok := decoders[w.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}
	a, err := decode(w.Params)
	if err != nil {
		return fmt.Errorf("%s params: %w", w.Type, err)
	}
	e.Action = a
	return nil
}

// UnmarshalYAML decodes the same shape as the JSON form. The node is
// converted to generic values and re-read as JSON so both encodings share
// one set of variant rules.
func (e *Envelope) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("action is not representable as JSON: %w", err)
	}
	if err := checkDepth(data); err != nil {
		return err
	}
	return e.UnmarshalJSON(data)
}

func (e Envelope) MarshalYAML() (any, error) {
	data, err := e.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

type compositeJSON struct {
	Actions []Envelope `json:"actions"`
}

func wrap(actions []Action) []Envelope {
	if actions == nil {
		return nil
	}
	out := make([]Envelope, len(actions))
	for i, a := range actions {
		out[i] = Envelope{Action: a}
	}
	return out
}

func unwrap(envs []Envelope) []Action {
	if envs == nil {
		return nil
	}
	out := make([]Action, len(envs))
	for i, e := range envs {
		out[i] = e.Action
	}
	return out
}

func (s Sequence) MarshalJSON() ([]byte, error) {
	return json.Marshal(compositeJSON{Actions: wrap(s.Actions)})
}

func (s *Sequence) UnmarshalJSON(data []byte) error {
	var c compositeJSON
	if err := decodeStrict(data, &c); err != nil {
		return err
	}
	s.Actions = unwrap(c.Actions)
	return nil
}

func (p Parallel) MarshalJSON() ([]byte, error) {
	return json.Marshal(compositeJSON{Actions: wrap(p.Actions)})
}

func (p *Parallel) UnmarshalJSON(data []byte) error {
	var c compositeJSON
	if err := decodeStrict(data, &c); err != nil {
		return err
	}
	p.Actions = unwrap(c.Actions)
	return nil
}

// Marshal encodes a as a JSON envelope.
func Marshal(a Action) ([]byte, error) {
	return json.Marshal(Envelope{Action: a})
}

// Unmarshal decodes a JSON envelope and validates the resulting tree.
func Unmarshal(data []byte) (Action, error) {
	if err := checkDepth(data); err != nil {
		return nil, err
	}
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Action == nil {
		return nil, errors.New("empty action")
	}
	if err := Validate(e.Action); err != nil {
		return nil, err
	}
	return e.Action, nil
}

// Decode reads a document that is either a JSON or a YAML envelope.
func Decode(data []byte) (Action, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return Unmarshal(trimmed)
	}
	var e Envelope
	if err := yaml.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Action == nil {
		return nil, errors.New("empty action")
	}
	if err := Validate(e.Action); err != nil {
		return nil, err
	}
	return e.Action, nil
}
