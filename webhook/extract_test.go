package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"two double-quoted spans", `He said "hi" and "we are done"`, "we are done"},
		{"three spans returns second", `"a" "b" "c"`, "b"},
		{"single quotes", `'first' then 'second'`, "second"},
		{"curly quotes", "“one” and “two”", "two"},
		{"mixed marks", `"one" and 'two'`, "two"},
		{"single span falls back", `only "one" here`, `only "one" here`},
		{"no quotes falls back", "plain reply", "plain reply"},
		{"empty input", "", ""},
		{"unbalanced mark does not match", `broken "quote and nothing else`, `broken "quote and nothing else`},
		{"empty spans count", `"" ""`, ""},
		{"apostrophe consumes a mark", `it's the 'end'`, `it's the 'end'`},
		{"multi-line span", "\"x\"\n\"line one\nline two\"", "line one\nline two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field then extract", `{"message": "\"x\" \"final answer\""}`, "final answer"},
		{"message field without quotes", `{"message": "hello there"}`, "hello there"},
		{"response field", `{"response": "from response"}`, "from response"},
		{"message wins over response", `{"message": "m", "response": "r"}`, "m"},
		{"empty message falls to response", `{"message": "", "response": "r"}`, "r"},
		{"no known field extracts from pretty print", `{"output":"a","n":1}`, "a"},
		{"pretty printed without quotes stays whole", `{"n":1}`, "{\n  \"n\": 1\n}"},
		{"plain text", `He said "hi" and "we are done"`, "we are done"},
		{"invalid json is treated as text", `{"message": `, `{"message": `},
		{"json array", `[1,2]`, "[\n  1,\n  2\n]"},
		{"non-string message keeps json text", `{"message": {"text": "hi"}}`, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize([]byte(tt.body)))
		})
	}
}
