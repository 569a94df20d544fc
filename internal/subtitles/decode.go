package subtitles

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Decode converts raw sidecar bytes to NFC-normalized text. A byte order mark
// selects UTF-16 LE/BE or UTF-8; without one the input is treated as UTF-8
// and invalid sequences are replaced.
func Decode(raw []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", fmt.Errorf("decode subtitle text: %w", err)
	}
	text := strings.ToValidUTF8(string(decoded), "\uFFFD")
	return norm.NFC.String(text), nil
}
