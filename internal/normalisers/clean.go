package normalisers

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// Clean applies the normalisation shared by every format:
// NUL bytes become spaces, runs of spaces and tabs collapse to one space,
// three or more newlines collapse to two, and the result is trimmed.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\x00", " ")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Decode converts raw bytes to UTF-8 text. A leading byte order mark is
// dropped, invalid sequences become U+FFFD and CRLF line endings become LF.
// Characters are otherwise kept as uploaded. Decode never fails.
func Decode(raw []byte) string {
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), raw)
	if err != nil {
		// The UTF-8 decoder replaces rather than rejects; fall back to a lossy copy.
		out = bytes.ToValidUTF8(raw, []byte("�"))
	}
	out = bytes.ReplaceAll(out, []byte("\r\n"), []byte("\n"))
	return string(out)
}
