package export

import (
	"bytes"

	"golang.org/x/text/encoding/japanese"
)

// substitutionByte replaces runes that have no Shift_JIS mapping. A plain
// question mark keeps the payload readable in the regional spreadsheet
// tools the file is produced for.
const substitutionByte = '?'

// EncodeShiftJIS transcodes UTF-8 text to Shift_JIS. Unmappable runes are
// replaced with '?' deterministically, one byte per rune. The function is
// pure: no I/O, same input always yields the same bytes.
func EncodeShiftJIS(text string) []byte {
	enc := japanese.ShiftJIS.NewEncoder()
	if out, err := enc.Bytes([]byte(text)); err == nil {
		return out
	}

	// Slow path: at least one rune has no mapping. Encode rune by rune so
	// only the offending runes degrade.
	var buf bytes.Buffer
	for _, r := range text {
		encoded, err := enc.Bytes([]byte(string(r)))
		if err != nil {
			buf.WriteByte(substitutionByte)
			continue
		}
		buf.Write(encoded)
	}
	return buf.Bytes()
}
