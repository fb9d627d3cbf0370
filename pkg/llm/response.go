package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

//nolint:gochecknoglobals // compiled once
var fencedBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// extractJSON pulls the JSON object out of a model reply: the first fenced
// block, else the whole text if it is a bare object, else the span between
// the first '{' and the last '}'.
func extractJSON(text string) (raw string) {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		raw = strings.TrimSpace(m[1])
		return raw
	}

	raw = strings.TrimSpace(text)
	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		return raw
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		raw = raw[start : end+1]
	}

	return raw
}

// validJSON extracts the JSON object from text and checks that it parses.
func validJSON(text string) (raw string, err error) {
	raw = extractJSON(text)
	if !gjson.Valid(raw) {
		err = errors.Errorf("response is not valid JSON: %s", preview(raw))
		return raw, err
	}
	return raw, err
}

// decodeJSON extracts and decodes a JSON object from text into v.
func decodeJSON(text string, v interface{}) (err error) {
	var raw string
	raw, err = validJSON(text)
	if err != nil {
		return err
	}

	err = json.Unmarshal([]byte(raw), v)
	if err != nil {
		err = errors.Wrap(err, "response does not match the expected shape")
		return err
	}

	return err
}

// stripMarkdownFence removes an outer ```markdown (or bare ```) fence.
func stripMarkdownFence(text string) (cleaned string) {
	cleaned = strings.TrimSpace(text)

	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	// Drop the opening fence line, including any language tag
	newline := strings.IndexByte(cleaned, '\n')
	if newline == -1 {
		cleaned = ""
		return cleaned
	}
	cleaned = cleaned[newline+1:]

	cleaned = strings.TrimRight(cleaned, " \r\n")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimRight(cleaned, " \r\n")

	return cleaned
}

func preview(s string) (short string) {
	const limit = 120
	short = s
	if len(short) > limit {
		short = short[:limit] + "..."
	}
	return short
}
