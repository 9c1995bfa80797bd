package record

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, s string) *Raw {
	t.Helper()
	raw, err := Decode([]byte(s))
	require.NoError(t, err)
	return raw
}

func names(c *Collection) []string {
	var out []string
	for _, f := range c.Fields() {
		out = append(out, f.Name)
	}
	return out
}

func TestDecode(t *testing.T) {
	raw := mustDecode(t, `{
		"description": "test",
		"specialTags": [{"due": "2000-01-01"}, {"!lunar-calendar": "#due"}],
		"optional": [{"created": "2000-01-01"}]
	}`)

	assert.Equal(t, "test", raw.Description)
	require.Len(t, raw.SpecialTags, 2)
	assert.Equal(t, "due", raw.SpecialTags[0][0].Name)
	assert.Equal(t, json.RawMessage(`"2000-01-01"`), raw.SpecialTags[0][0].Value)
	assert.True(t, raw.HasOptional)
	assert.True(t, raw.HasField("!lunar-calendar"))
	assert.False(t, raw.HasField("created"))
}

func TestDecode_OptionalAbsentOrNull(t *testing.T) {
	raw := mustDecode(t, `{"description":"x","specialTags":[]}`)
	assert.False(t, raw.HasOptional)

	raw = mustDecode(t, `{"description":"x","specialTags":[],"optional":null}`)
	assert.False(t, raw.HasOptional)

	out, err := raw.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":"x","specialTags":[],"optional":null}`, string(out))
}

func TestDecode_Malformed(t *testing.T) {
	tests := map[string]string{
		"not json":               `{"description":`,
		"array":                  `[]`,
		"missing description":    `{"specialTags":[]}`,
		"description not string": `{"description":1,"specialTags":[]}`,
		"description null":       `{"description":null,"specialTags":[]}`,
		"missing specialTags":    `{"description":"x"}`,
		"specialTags null":       `{"description":"x","specialTags":null}`,
		"specialTags object":     `{"description":"x","specialTags":{"due":"1"}}`,
		"group not object":       `{"description":"x","specialTags":["due"]}`,
		"optional string":        `{"description":"x","specialTags":[],"optional":"x"}`,
		"trailing data":          `{"description":"x","specialTags":[]} {}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestEncode_PreservesOrderAndUnknownMembers(t *testing.T) {
	input := `{"specialTags":[{"due":"2000-01-01"},{"x":"<&>"}],"extra":{"a": [1, 2]},"description":"café <b>"}`
	raw := mustDecode(t, input)

	out, err := raw.Encode()
	require.NoError(t, err)
	assert.Equal(t, `{"specialTags":[{"due":"2000-01-01"},{"x":"<&>"}],"extra":{"a":[1,2]},"description":"café <b>"}`, string(out))
}

func TestEncode_ChangedDescription(t *testing.T) {
	raw := mustDecode(t, `{"description":"a <b>","specialTags":[]}`)
	raw.Description = "[x] " + raw.Description

	out, err := raw.Encode()
	require.NoError(t, err)
	assert.Equal(t, `{"description":"[x] a <b>","specialTags":[]}`, string(out))
}

func TestNormalize(t *testing.T) {
	raw := mustDecode(t, `{
		"description": "test",
		"specialTags": [{"due": "2000-01-01"}, {"tag": "2000-01-02"}],
		"optional": [{"created": "2000-01-03"}, {"due": "other"}]
	}`)

	rec, err := Normalize(raw)
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"due", "tag"}, names(rec.SpecialTags)); diff != "" {
		t.Errorf("special tags mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"created", "due"}, names(rec.Optional)); diff != "" {
		t.Errorf("optional mismatch (-want +got):\n%s", diff)
	}

	// Same name in both collections is two unrelated fields.
	special, _ := rec.SpecialTags.Get("due")
	optional, _ := rec.Optional.Get("due")
	v1, _ := special.Text()
	v2, _ := optional.Text()
	assert.Equal(t, "2000-01-01", v1)
	assert.Equal(t, "other", v2)
}

func TestNormalize_NoOptional(t *testing.T) {
	rec, err := Normalize(mustDecode(t, `{"description":"x","specialTags":[{"due":"1"}]}`))
	require.NoError(t, err)
	assert.Nil(t, rec.Optional)
	assert.Equal(t, 0, rec.Optional.Len())
	assert.False(t, rec.Optional.Has("due"))
}

func TestNormalize_DuplicateField(t *testing.T) {
	tests := map[string]string{
		"special tags":   `{"description":"x","specialTags":[{"due":"1"},{"due":"2"}]}`,
		"same group":     `{"description":"x","specialTags":[{"due":"1","due":"2"}]}`,
		"optional field": `{"description":"x","specialTags":[],"optional":[{"created":"1"},{"created":"2"}]}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(mustDecode(t, input))
			var dup *DuplicateFieldError
			require.True(t, errors.As(err, &dup), "got %v", err)
			assert.Contains(t, []string{"due", "created"}, dup.Name)
			assert.Equal(t, `duplicated field "`+dup.Name+`"`, err.Error())
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		`{"description":"test","specialTags":[{"due":"2000-01-01"},{"tag":"2000-01-01"}]}`,
		`{"description":"test","specialTags":[{"a":"1"},{"b":"2"},{"c":"3"}],"optional":[{"created":"2000-01-01"},{"finished":"2000-01-01"}]}`,
		`{"description":"","specialTags":[],"optional":[]}`,
		`{"description":"multi","specialTags":[{"a":"1","b":"2"},{"c":"3"}]}`,
		`{"description":"typed","specialTags":[{"flag":true},{"n":1.50}]}`,
		`{"description":"gaps","specialTags":[{},{"a":"1"},{},{},{"b":"2"},{}],"optional":[{}]}`,
	}
	for _, input := range inputs {
		rec, err := Normalize(mustDecode(t, input))
		require.NoError(t, err)

		out, err := Denormalize(rec).Encode()
		require.NoError(t, err)
		assert.Equal(t, input, string(out))
	}
}

func TestCollection_SetStringAndRemove(t *testing.T) {
	rec, err := Normalize(mustDecode(t, `{"description":"x","specialTags":[{"a":"1"},{"b":"2"},{"c":"3"}]}`))
	require.NoError(t, err)

	assert.True(t, rec.SpecialTags.SetString("b", "two"))
	assert.False(t, rec.SpecialTags.SetString("missing", "v"))
	assert.True(t, rec.SpecialTags.Remove("a"))
	assert.False(t, rec.SpecialTags.Remove("a"))

	out, err := Denormalize(rec).Encode()
	require.NoError(t, err)
	assert.Equal(t, `{"description":"x","specialTags":[{"b":"two"},{"c":"3"}]}`, string(out))
}

func TestDenormalize_EmptyGroups(t *testing.T) {
	rec, err := Normalize(mustDecode(t, `{"description":"x","specialTags":[{"due":"1"},{},{"!lunar-calendar":"#due"},{}]}`))
	require.NoError(t, err)

	// Input gaps survive edits; a group emptied by Remove does not.
	clone := rec.Clone()
	assert.True(t, clone.SpecialTags.SetString("due", "2"))
	assert.True(t, clone.SpecialTags.Remove("!lunar-calendar"))

	out, err := Denormalize(clone).Encode()
	require.NoError(t, err)
	assert.Equal(t, `{"description":"x","specialTags":[{"due":"2"},{},{}]}`, string(out))
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	rec, err := Normalize(mustDecode(t, `{"description":"x","specialTags":[{"a":"1"}],"optional":[{"b":"2"}]}`))
	require.NoError(t, err)

	clone := rec.Clone()
	clone.SpecialTags.SetString("a", "changed")
	clone.Optional.Remove("b")
	clone.Description = "[note] " + clone.Description

	a, _ := rec.SpecialTags.Get("a")
	v, _ := a.Text()
	assert.Equal(t, "1", v)
	assert.True(t, rec.Optional.Has("b"))
	assert.Equal(t, "x", rec.Description)
	assert.Equal(t, "[note] x", clone.Description)
}

func TestField_Text(t *testing.T) {
	s, ok := Field{Value: json.RawMessage(`"a\"b"`)}.Text()
	assert.True(t, ok)
	assert.Equal(t, `a"b`, s)

	_, ok = Field{Value: json.RawMessage(`true`)}.Text()
	assert.False(t, ok)
}
