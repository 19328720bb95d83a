package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TextContent is OpenAI message content. It accepts a string, null, or an array of content parts
// (text parts are joined with newlines) and is emitted as a string, or null when Null is set.
type TextContent struct {
	Text string
	Null bool
}

// Text returns non-null content holding s.
func Text(s string) TextContent {
	return TextContent{Text: s}
}

func (c TextContent) MarshalJSON() ([]byte, error) {
	if c.Null {
		return []byte("null"), nil
	}
	return json.Marshal(c.Text)
}

func (c *TextContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = TextContent{Null: true}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = TextContent{Text: s}
		return nil
	case len(data) > 0 && data[0] == '[':
		var parts []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		texts := make([]string, 0, len(parts))
		for _, p := range parts {
			if p.Type == "text" {
				texts = append(texts, p.Text)
			}
		}
		*c = TextContent{Text: strings.Join(texts, "\n")}
		return nil
	default:
		return fmt.Errorf("content must be a string, null or an array of parts")
	}
}

// splitExtra decodes data into a field map and removes the known keys, returning the rest.
func splitExtra(data []byte, known ...string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// chunkText splits s into pieces of at most size runes.
func chunkText(s string, size int) []string {
	if s == "" {
		return nil
	}
	runes := []rune(s)
	chunks := make([]string, 0, len(runes)/size+1)
	for len(runes) > 0 {
		n := min(size, len(runes))
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}
	return chunks
}
