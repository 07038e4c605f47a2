package fields

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fieldsFixture = `[
  {
    "id": 38,
    "name": "severity_code",
    "text": "Severity",
    "prefix": null,
    "input_type": "select",
    "required": "always",
    "values": [
      {"value": 7, "label": "High", "default": true, "enabled": true},
      {"value": 5, "label": "Low", "default": false, "enabled": true}
    ]
  },
  {
    "name": "custom_field",
    "prefix": "properties",
    "text": "Custom Field",
    "input_type": "text",
    "tooltip": "",
    "placeholder": "type here",
    "required": null
  },
  "not an object",
  {
    "name": "bare"
  }
]`

func TestDecodeFields(t *testing.T) {
	var malformed []int
	fields, err := DecodeFields([]byte(fieldsFixture), func(index int, _ error) {
		malformed = append(malformed, index)
	})
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, []int{2}, malformed)

	sev := fields[0]
	assert.Equal(t, "severity_code", sev.Name)
	assert.Equal(t, "", sev.Prefix)
	assert.Equal(t, Some("Severity"), sev.Text)
	assert.Equal(t, Some("select"), sev.InputType)
	assert.Equal(t, Some(RequiredAlways), sev.Required)
	assert.False(t, sev.Tooltip.IsSet())

	expectedValues := []ValueDefinition{
		{Value: "7", Label: "High", Default: true, Enabled: true},
		{Value: "5", Label: "Low", Default: false, Enabled: true},
	}
	if diff := cmp.Diff(expectedValues, sev.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	custom := fields[1]
	assert.Equal(t, "properties", custom.Prefix)
	assert.Equal(t, Some(""), custom.Tooltip)
	assert.Equal(t, Some("type here"), custom.Placeholder)
	// a null "required" is still a present key
	assert.Equal(t, Some(RequiredState("")), custom.Required)

	bare := fields[2]
	assert.False(t, bare.Text.IsSet())
	assert.False(t, bare.InputType.IsSet())
	assert.False(t, bare.Required.IsSet())
	assert.Nil(t, bare.Values)
}

func TestDecodeFieldsMalformedValues(t *testing.T) {
	const data = `[
		{"name": "good"},
		{"name": "bad_values", "text": "Bad", "required": "always", "values": "oops"},
		{"name": "bad_elem", "values": [3, {"value": 1, "label": "x"}, "y"]}
	]`

	var malformed []int
	fs, err := DecodeFields([]byte(data), func(index int, _ error) {
		malformed = append(malformed, index)
	})
	require.NoError(t, err)
	require.Len(t, fs, 3)
	assert.Equal(t, []int{1, 2}, malformed)

	badValues, ok := FindField(fs, "bad_values")
	require.True(t, ok)
	assert.Equal(t, Some("Bad"), badValues.Text)
	assert.Equal(t, Some(RequiredAlways), badValues.Required)
	assert.Nil(t, badValues.Values)
	assert.ErrorContains(t, badValues.ValuesError(), "values is not a list")

	badElem, ok := FindField(fs, "bad_elem")
	require.True(t, ok)
	assert.Equal(t, []ValueDefinition{{Value: "1", Label: "x", Enabled: true}}, badElem.Values)
	assert.ErrorContains(t, badElem.ValuesError(), "skipping value 0")
	assert.ErrorContains(t, badElem.ValuesError(), "skipping value 2")

	good, ok := FindField(fs, "good")
	require.True(t, ok)
	assert.NoError(t, good.ValuesError())
}

func TestDecodeFieldsNotAnArray(t *testing.T) {
	_, err := DecodeFields([]byte(`{"name": "x"}`), nil)
	assert.Error(t, err)
}

func TestFieldDefinitionRawIsVerbatim(t *testing.T) {
	in := `{"z": 1, "name": "x", "a": [1, 2]}`

	var f FieldDefinition
	require.NoError(t, json.Unmarshal([]byte(in), &f))
	assert.Equal(t, in, string(f.Raw()))

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestFieldDefinitionMarshalWithoutRaw(t *testing.T) {
	f := FieldDefinition{
		Name:      "severity_code",
		Text:      Some("Severity"),
		InputType: Some("select"),
		Required:  Some(RequiredClose),
		Values: []ValueDefinition{
			{Value: "5", Label: "Low", Enabled: true},
			{Value: "abc", Label: "Text id"},
		},
	}

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "severity_code",
		"prefix": null,
		"text": "Severity",
		"input_type": "select",
		"required": "close",
		"values": [
			{"value": 5, "label": "Low", "default": false, "enabled": true},
			{"value": "abc", "label": "Text id", "default": false, "enabled": false}
		]
	}`, string(out))
}

func TestValueDefinitionDefaults(t *testing.T) {
	var v ValueDefinition
	require.NoError(t, json.Unmarshal([]byte(`{"value": "abc", "label": "A"}`), &v))
	assert.Equal(t, ValueDefinition{Value: "abc", Label: "A", Default: false, Enabled: true}, v)
}

func TestParseRequiredState(t *testing.T) {
	assert.Equal(t, RequiredAlways, ParseRequiredState("always"))
	assert.Equal(t, RequiredClose, ParseRequiredState("close"))
	assert.Equal(t, RequiredNever, ParseRequiredState("never"))
	assert.Equal(t, RequiredState(""), ParseRequiredState(""))
	assert.Equal(t, "sometimes", ParseRequiredState("sometimes").String())
	assert.Equal(t, "never", RequiredNever.String())
}
