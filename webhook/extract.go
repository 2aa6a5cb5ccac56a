package webhook

import (
	"bytes"
	"encoding/json"
	"regexp"

	"github.com/buger/jsonparser"
)

// quotedSpan matches one span opened and closed by any of the recognised
// quotation marks. The body cannot contain a quotation mark, so spans never
// overlap or nest and an unbalanced mark simply does not match.
var quotedSpan = regexp.MustCompile(`["'“”]([^"'“”]*)["'“”]`)

// Extract returns the second quoted span of raw, or raw unchanged when fewer
// than two spans are present. Workflows reply with the human-facing text in
// the second quoted span; this is their convention, not a general parser.
func Extract(raw string) string {
	matches := quotedSpan.FindAllStringSubmatch(raw, 2)
	if len(matches) < 2 {
		return raw
	}
	return matches[1][1]
}

// Normalize turns a webhook reply body into display text.
// JSON bodies prefer a "message" field, then "response", then the whole
// document pretty-printed; the result then goes through Extract.
func Normalize(body []byte) string {
	if !json.Valid(body) {
		return Extract(string(body))
	}

	for _, field := range []string{"message", "response"} {
		if v, ok := truthyField(body, field); ok {
			return Extract(v)
		}
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, bytes.TrimSpace(body), "", "  "); err != nil {
		return Extract(string(body))
	}
	return Extract(pretty.String())
}

// truthyField returns the value of key when it is present and truthy.
// Strings are returned unquoted; other values keep their JSON text.
func truthyField(body []byte, key string) (string, bool) {
	value, dataType, _, err := jsonparser.Get(body, key)
	if err != nil {
		return "", false
	}

	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil || s == "" {
			return "", false
		}
		return s, true
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil || !b {
			return "", false
		}
		return string(value), true
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(value)
		if err != nil || f == 0 {
			return "", false
		}
		return string(value), true
	case jsonparser.Object, jsonparser.Array:
		return string(value), true
	default:
		return "", false
	}
}
