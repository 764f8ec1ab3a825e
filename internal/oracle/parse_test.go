package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                 `{"a":1}`,
		"  {\"a\":1}\n":           `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```\n":   `{"a":1}`,
		"```json {\"a\":1}```":    `{"a":1}`,
		"```json\n[1,2]":          `[1,2]`,
	}
	for in, want := range cases {
		assert.Equal(t, want, stripFences(in), in)
	}
}

func TestParseClassification(t *testing.T) {
	c, err := parseClassification("```json\n{\"issue_type\":\"Pothole\",\"severity\":\"High\",\"department\":\"PWD\",\"description\":\"Large pothole\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Pothole", c.IssueType)
	assert.Equal(t, "High", c.Severity)
	assert.Equal(t, "PWD", c.Department)
	assert.Equal(t, "Large pothole", c.Description)

	_, err = parseClassification("")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = parseClassification("I think this is a pothole.")
	assert.Error(t, err)

	_, err = parseClassification("{}")
	assert.Error(t, err)
}

func TestParseSuggestions(t *testing.T) {
	s, err := parseSuggestions(`{"suggestions":[{"title":"Deep Pothole","issue_type":"Pothole","department":"PWD","severity":"High","confidence":"High"},{"title":"Garbage Dump","issue_type":"Garbage Overflow","department":"Nagar Nigam","severity":"Medium","confidence":"Low"}]}`)
	require.NoError(t, err)
	require.Len(t, s, 2)
	assert.Equal(t, "Deep Pothole", s[0].Title)
	assert.Equal(t, "Nagar Nigam", s[1].Department)

	_, err = parseSuggestions("not json")
	assert.Error(t, err)
}

func TestParseVerdict(t *testing.T) {
	v, err := parseVerdict(`{"resolved":true,"confidence":0.92,"explanation":"Pothole filled"}`)
	require.NoError(t, err)
	assert.True(t, v.Resolved)
	assert.InDelta(t, 0.92, v.Confidence, 1e-9)

	v, err = parseVerdict("```json\n{\"resolved\":false,\"explanation\":\"Still there\"}\n```")
	require.NoError(t, err)
	assert.False(t, v.Resolved)
	assert.Equal(t, "Still there", v.Explanation)

	_, err = parseVerdict(`{"explanation":"unsure"}`)
	assert.Error(t, err)
}
