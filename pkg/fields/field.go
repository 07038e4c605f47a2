package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/multierr"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// RequiredState is the "required" policy of a field as sent by the server. Only
// RequiredAlways and RequiredClose carry a flag; a null key is the empty state.
type RequiredState string

const (
	RequiredNever  RequiredState = "never"
	RequiredAlways RequiredState = "always"
	RequiredClose  RequiredState = "close"
)

func (r RequiredState) String() string {
	return string(r)
}

// ParseRequiredState keeps the wire value as is, unknown values included.
func ParseRequiredState(s string) RequiredState {
	return RequiredState(s)
}

// FieldDefinition describes one configurable field of an object type.
type FieldDefinition struct {
	Name        string
	Prefix      string
	Text        Optional[string]
	InputType   Optional[string]
	Required    Optional[RequiredState]
	Tooltip     Optional[string]
	Placeholder Optional[string]
	Values      []ValueDefinition

	raw       json.RawMessage
	valuesErr error
}

// ValueDefinition is one choice of an enumerable field.
type ValueDefinition struct {
	Value   ValueID
	Label   string
	Default bool
	Enabled bool
}

// ValueID is the identifier of a ValueDefinition, kept in its textual form.
// Integer ids order numerically, anything else orders naturally.
type ValueID string

func (v ValueID) String() string {
	return string(v)
}

// Raw returns the JSON object the definition was decoded from, or nil when the
// definition was built in code.
func (f FieldDefinition) Raw() json.RawMessage {
	return f.raw
}

// UnmarshalJSON keeps the original bytes so the definition can be printed back
// verbatim, and records which optional keys were present.
func (f *FieldDefinition) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := jsonAPI.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("field definition is not an object: %w", err)
	}
	if obj == nil {
		return fmt.Errorf("field definition is null")
	}

	*f = FieldDefinition{
		raw: append(json.RawMessage(nil), data...),
	}

	f.Name = stringKey(obj, "name").OrZero()
	f.Prefix = stringKey(obj, "prefix").OrZero()
	f.Text = stringKey(obj, "text")
	f.InputType = stringKey(obj, "input_type")
	f.Tooltip = stringKey(obj, "tooltip")
	f.Placeholder = stringKey(obj, "placeholder")

	if _, ok := obj["required"]; ok {
		// null is a present key with the empty state
		f.Required = Some(ParseRequiredState(stringKey(obj, "required").OrZero()))
	}

	if raw, ok := obj["values"]; ok && !isNull(raw) {
		f.Values, f.valuesErr = decodeValues(f.Name, raw)
	}

	return nil
}

// decodeValues keeps every value that decodes. The returned error describes what was
// dropped; it never causes the field itself to be dropped.
func decodeValues(name string, raw json.RawMessage) ([]ValueDefinition, error) {
	var elems []json.RawMessage
	if err := jsonAPI.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("field %q: values is not a list: %w", name, err)
	}

	var errs []error
	values := make([]ValueDefinition, 0, len(elems))
	for i, elem := range elems {
		var v ValueDefinition
		if err := v.UnmarshalJSON(elem); err != nil {
			errs = append(errs, fmt.Errorf("field %q: skipping value %d: %w", name, i, err))
			continue
		}
		values = append(values, v)
	}

	return values, multierr.Combine(errs...)
}

// ValuesError reports the values that could not be decoded, if any.
func (f FieldDefinition) ValuesError() error {
	return f.valuesErr
}

// MarshalJSON returns the original object when there is one.
func (f FieldDefinition) MarshalJSON() ([]byte, error) {
	if len(f.raw) > 0 {
		return f.raw, nil
	}

	type value struct {
		Value   json.RawMessage `json:"value"`
		Label   string          `json:"label"`
		Default bool            `json:"default"`
		Enabled bool            `json:"enabled"`
	}
	out := struct {
		Name        string  `json:"name"`
		Prefix      *string `json:"prefix"`
		Text        *string `json:"text,omitempty"`
		InputType   *string `json:"input_type,omitempty"`
		Required    *string `json:"required,omitempty"`
		Tooltip     *string `json:"tooltip,omitempty"`
		Placeholder *string `json:"placeholder,omitempty"`
		Values      []value `json:"values,omitempty"`
	}{
		Name:        f.Name,
		Text:        ptr(f.Text),
		InputType:   ptr(f.InputType),
		Tooltip:     ptr(f.Tooltip),
		Placeholder: ptr(f.Placeholder),
	}
	if f.Prefix != "" {
		out.Prefix = &f.Prefix
	}
	if r, ok := f.Required.Get(); ok && r != "" {
		s := r.String()
		out.Required = &s
	}
	for _, v := range f.Values {
		out.Values = append(out.Values, value{
			Value:   v.Value.marshal(),
			Label:   v.Label,
			Default: v.Default,
			Enabled: v.Enabled,
		})
	}

	return jsonAPI.Marshal(out)
}

func (v *ValueDefinition) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := jsonAPI.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("value definition is not an object: %w", err)
	}

	*v = ValueDefinition{
		Label:   stringKey(obj, "label").OrZero(),
		Default: boolKey(obj, "default").Or(false),
		Enabled: boolKey(obj, "enabled").Or(true),
	}

	if raw, ok := obj["value"]; ok && !isNull(raw) {
		var s string
		if err := jsonAPI.Unmarshal(raw, &s); err == nil {
			v.Value = ValueID(s)
		} else {
			v.Value = ValueID(bytes.TrimSpace(raw))
		}
	}

	return nil
}

func (v ValueID) marshal() json.RawMessage {
	if _, err := strconv.ParseFloat(string(v), 64); err == nil {
		return json.RawMessage(v)
	}
	b, _ := jsonAPI.Marshal(string(v))
	return b
}

// DecodeFields decodes the array returned by the fields endpoint. Elements that are not
// objects are skipped; fields with undecodable values are kept without those values.
// Both are reported through onMalformed, which may be nil.
func DecodeFields(data []byte, onMalformed func(index int, err error)) ([]FieldDefinition, error) {
	var elems []json.RawMessage
	if err := jsonAPI.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("error decoding field list: %w", err)
	}

	fields := make([]FieldDefinition, 0, len(elems))
	for i, elem := range elems {
		var f FieldDefinition
		if err := f.UnmarshalJSON(elem); err != nil {
			if onMalformed != nil {
				onMalformed(i, err)
			}
			continue
		}
		if f.valuesErr != nil && onMalformed != nil {
			onMalformed(i, f.valuesErr)
		}
		fields = append(fields, f)
	}

	return fields, nil
}

func stringKey(obj map[string]json.RawMessage, key string) Optional[string] {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return None[string]()
	}

	var s string
	if err := jsonAPI.Unmarshal(raw, &s); err != nil {
		// numbers and booleans are shown as written
		return Some(string(bytes.TrimSpace(raw)))
	}
	return Some(s)
}

func boolKey(obj map[string]json.RawMessage, key string) Optional[bool] {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return None[bool]()
	}

	var b bool
	if err := jsonAPI.Unmarshal(raw, &b); err != nil {
		return None[bool]()
	}
	return Some(b)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func ptr(o Optional[string]) *string {
	if v, ok := o.Get(); ok {
		return &v
	}
	return nil
}
