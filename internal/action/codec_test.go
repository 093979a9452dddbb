package action

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func everyVariant() []Action {
	return []Action{
		MouseMove{X: 10, Y: -20},
		MouseClick{Button: ButtonLeft, X: 1, Y: 2},
		MouseDoubleClick{Button: ButtonRight, X: 3, Y: 4},
		MousePress{Button: ButtonMiddle, X: 5, Y: 6, DurationMs: 250},
		MouseDrag{Button: ButtonBack, StartX: 0, StartY: 0, EndX: 100, EndY: 50, DurationMs: 1000},
		MouseClick{Button: OtherButton(7), X: 0, Y: 0},
		MouseScroll{DeltaX: -3, DeltaY: 5},
		KeyPress{Key: KeyA},
		KeyPress{Key: KeyShift, Location: At(LocationRight)},
		KeyDown{Key: KeyCtrl, Location: At(LocationLeft)},
		KeyUp{Key: OtherKey(0xE0)},
		KeySequence{Keys: []Key{KeyH, KeyI}, KeyDelayMs: Millis(15)},
		KeySequence{Keys: []Key{KeyEnter}},
		TypeText{Text: "héllo wörld"},
		TypeText{Text: "paced", CharDelayMs: Millis(5)},
		Hotkey{Modifiers: []Key{KeyCtrl, KeyShift}, Key: KeyEscape},
		Hotkey{Modifiers: []Key{}, Key: KeyNumpad5, Location: At(LocationNumpad)},
		Delay{Milliseconds: 10},
		Sequence{Actions: []Action{Delay{Milliseconds: 1}, MouseMove{X: 5, Y: 5}}},
		Parallel{Actions: []Action{
			KeyPress{Key: KeyF5},
			Sequence{Actions: []Action{TypeText{Text: "nested"}}},
		}},
		Sequence{Actions: []Action{}},
	}
}

func TestRoundTripJSON(t *testing.T) {
	for _, a := range everyVariant() {
		t.Run(a.Type(), func(t *testing.T) {
			data, err := Marshal(a)
			require.NoError(t, err)

			got, err := Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, a, got, "wire form: %s", data)
		})
	}
}

func TestRoundTripYAML(t *testing.T) {
	for _, a := range everyVariant() {
		t.Run(a.Type(), func(t *testing.T) {
			data, err := yaml.Marshal(Envelope{Action: a})
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, a, got, "wire form:\n%s", data)
		})
	}
}

func TestWireFormat(t *testing.T) {
	data, err := Marshal(KeyPress{Key: KeyShift, Location: At(LocationLeft)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"KeyPress","params":{"key":"Shift","location":"Left"}}`, string(data))

	data, err = Marshal(MouseClick{Button: OtherButton(9), X: 1, Y: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"MouseClick","params":{"button":{"Other":9},"x":1,"y":2}}`, string(data))

	data, err = Marshal(Sequence{Actions: []Action{Delay{Milliseconds: 3}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Sequence","params":{"actions":[{"type":"Delay","params":{"milliseconds":3}}]}}`, string(data))
}

func TestDecodeRequestBody(t *testing.T) {
	body := `{
		"type": "Sequence",
		"params": {"actions": [
			{"type": "Hotkey", "params": {"modifiers": ["Ctrl"], "key": "C", "location": null}},
			{"type": "TypeText", "params": {"text": "hi", "char_delay_ms": null}},
			{"type": "KeyPress", "params": {"key": {"Other": 300}}}
		]}
	}`

	got, err := Decode([]byte(body))
	require.NoError(t, err)

	want := Sequence{Actions: []Action{
		Hotkey{Modifiers: []Key{KeyCtrl}, Key: KeyC},
		TypeText{Text: "hi"},
		KeyPress{Key: OtherKey(300)},
	}}
	assert.Equal(t, want, got)
}

func TestDecodeYAMLDocument(t *testing.T) {
	doc := `
type: MouseDrag
params:
  button: Left
  start_x: 10
  start_y: 20
  end_x: 110
  end_y: 220
  duration_ms: 400
`
	got, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, MouseDrag{Button: ButtonLeft, StartX: 10, StartY: 20, EndX: 110, EndY: 220, DurationMs: 400}, got)
}

func TestUnknownNamesAreKept(t *testing.T) {
	got, err := Unmarshal([]byte(`{"type":"MouseClick","params":{"button":"Thumb","x":0,"y":0}}`))
	require.NoError(t, err)

	click, ok := got.(MouseClick)
	require.True(t, ok)
	assert.Equal(t, "Thumb", click.Button.Name())
	assert.False(t, click.Button.Known())

	got, err = Unmarshal([]byte(`{"type":"KeyPress","params":{"key":"F24"}}`))
	require.NoError(t, err)
	assert.False(t, got.(KeyPress).Key.Known())
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown type", `{"type":"Teleport","params":{}}`},
		{"unknown field", `{"type":"MouseMove","params":{"x":1,"y":2,"z":3}}`},
		{"negative duration", `{"type":"Delay","params":{"milliseconds":-5}}`},
		{"missing key", `{"type":"KeyPress","params":{}}`},
		{"missing button", `{"type":"MouseClick","params":{"x":1,"y":1}}`},
		{"bad location", `{"type":"KeyDown","params":{"key":"A","location":"Top"}}`},
		{"bad child", `{"type":"Sequence","params":{"actions":[{"type":"KeyUp","params":{}}]}}`},
		{"unknown sequence field", `{"type":"Sequence","params":{"actions":[],"repeat":2}}`},
		{"unknown parallel field", `{"type":"Parallel","params":{"actions":[],"ordered":true}}`},
		{"null child", `{"type":"Sequence","params":{"actions":[null]}}`},
		{"null", `null`},
		{"not an object", `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestUnknownTypeIsDistinguishable(t *testing.T) {
	_, err := Unmarshal([]byte(`{"type":"Teleport","params":{}}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestKeyJSON(t *testing.T) {
	var k Key
	require.NoError(t, json.Unmarshal([]byte(`"Numpad7"`), &k))
	assert.Equal(t, KeyNumpad7, k)

	require.NoError(t, json.Unmarshal([]byte(`{"Other": 42}`), &k))
	code, ok := k.Other()
	assert.True(t, ok)
	assert.Equal(t, uint32(42), code)
	assert.Equal(t, "Other(42)", k.String())

	assert.Error(t, json.Unmarshal([]byte(`{"Other": 1, "Extra": 2}`), &k))
	assert.Error(t, json.Unmarshal([]byte(`""`), &k))
	assert.Error(t, json.Unmarshal([]byte(`12`), &k))
}

func nestedJSON(depth int, leaf string) string {
	doc := leaf
	for i := 0; i < depth; i++ {
		doc = `{"type":"Sequence","params":{"actions":[` + doc + `]}}`
	}
	return doc
}

func TestDecodeNestingLimit(t *testing.T) {
	leaf := `{"type":"Hotkey","params":{"modifiers":["Ctrl",{"Other":42}],"key":"S"}}`

	a, err := Decode([]byte(nestedJSON(MaxDepth, leaf)))
	require.NoError(t, err)
	assert.IsType(t, Sequence{}, a)

	_, err = Decode([]byte(nestedJSON(MaxDepth+1, leaf)))
	assert.ErrorIs(t, err, ErrTooDeep)
}

func TestDecodeRejectsDeepDocumentQuickly(t *testing.T) {
	doc := nestedJSON(2000, `{"type":"Delay","params":{"milliseconds":1}}`)

	start := time.Now()
	_, err := Decode([]byte(doc))
	assert.ErrorIs(t, err, ErrTooDeep)
	assert.Less(t, time.Since(start), time.Second)
}
