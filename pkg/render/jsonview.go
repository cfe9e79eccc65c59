package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// PrettyJSON serialises v with two-space indentation, one member or element
// per line. Empty objects and arrays stay on one line, map keys are sorted
// and <, > and & are written literally.
func PrettyJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// ReparseJSON decodes pretty-printed JSON back into a plain value, keeping
// numbers in their original lexical form
func ReparseJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return v, nil
}

// Class is the highlight category of a JSON token
type Class string

const (
	ClassNone    Class = ""
	ClassKey     Class = "key"
	ClassString  Class = "string"
	ClassNumber  Class = "number"
	ClassBoolean Class = "boolean"
	ClassNull    Class = "null"
	ClassPunct   Class = "punct"
)

// Segment is a run of source text with one highlight class. Concatenating
// the Text of all segments returned by Highlight gives back its input.
type Segment struct {
	Class Class
	Text  string
}

// Highlight splits JSON text into classified segments. String literals are
// scanned as a unit, so punctuation, keywords and escaped quotes inside them
// are never classified separately.
func Highlight(src string) []Segment {
	var segs []Segment
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '"':
			j := scanString(src, i)
			class := ClassString
			if nextNonSpace(src, j) == ':' {
				class = ClassKey
			}
			segs = append(segs, Segment{class, src[i:j]})
			i = j

		case strings.IndexByte("{}[],:", c) >= 0:
			segs = append(segs, Segment{ClassPunct, src[i : i+1]})
			i++

		case isSpace(c):
			j := i
			for j < len(src) && isSpace(src[j]) {
				j++
			}
			segs = append(segs, Segment{ClassNone, src[i:j]})
			i = j

		case c == '-' || (c >= '0' && c <= '9'):
			j := i
			for j < len(src) && strings.IndexByte("0123456789+-.eE", src[j]) >= 0 {
				j++
			}
			segs = append(segs, Segment{ClassNumber, src[i:j]})
			i = j

		case strings.HasPrefix(src[i:], "true"):
			segs = append(segs, Segment{ClassBoolean, "true"})
			i += 4

		case strings.HasPrefix(src[i:], "false"):
			segs = append(segs, Segment{ClassBoolean, "false"})
			i += 5

		case strings.HasPrefix(src[i:], "null"):
			segs = append(segs, Segment{ClassNull, "null"})
			i += 4

		default:
			j := i + 1
			for j < len(src) && !isSpace(src[j]) && src[j] != '"' && strings.IndexByte("{}[],:", src[j]) < 0 {
				j++
			}
			segs = append(segs, Segment{ClassNone, src[i:j]})
			i = j
		}
	}
	return segs
}

// scanString returns the index just past the string literal starting at i
func scanString(src string, i int) int {
	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			j += 2
			continue
		case '"':
			return j + 1
		}
		j++
	}
	return len(src)
}

func nextNonSpace(src string, i int) byte {
	for i < len(src) {
		if !isSpace(src[i]) {
			return src[i]
		}
		i++
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}

// HighlightHTML wraps every classified segment of src in a
// <span class="json-CLASS"> element; all text is HTML-escaped
func HighlightHTML(src string) string {
	var b strings.Builder
	for _, seg := range Highlight(src) {
		text := html.EscapeString(seg.Text)
		if seg.Class == ClassNone {
			b.WriteString(text)
			continue
		}
		b.WriteString(`<span class="json-`)
		b.WriteString(string(seg.Class))
		b.WriteString(`">`)
		b.WriteString(text)
		b.WriteString(`</span>`)
	}
	return b.String()
}

// StripTags removes markup from s and unescapes entities. For any src,
// StripTags(HighlightHTML(src)) == src.
func StripTags(s string) string {
	var b strings.Builder
	inTag := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '<':
			inTag = true
		case s[i] == '>' && inTag:
			inTag = false
		case !inTag:
			b.WriteByte(s[i])
		}
	}
	return html.UnescapeString(b.String())
}

// Join concatenates the text of segs
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}
