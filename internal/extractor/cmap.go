package extractor

import (
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

// toUnicode maps character codes of a PDF font to text, as declared by the
// font's ToUnicode CMap. Keys are upper-case hex codes.
type toUnicode struct {
	width int // code length in bytes
	chars map[string]string
}

var (
	bfCharBlock  = regexp.MustCompile(`(?s)beginbfchar\s*(.*?)\s*endbfchar`)
	bfRangeBlock = regexp.MustCompile(`(?s)beginbfrange\s*(.*?)\s*endbfrange`)
	bfRangeLine  = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]+)>\s*(<[0-9A-Fa-f]+>|\[[^\]]*\])`)
	hexToken     = regexp.MustCompile(`<([0-9A-Fa-f]+)>`)
)

func newToUnicode() *toUnicode {
	return &toUnicode{chars: make(map[string]string)}
}

// parseToUnicode reads the bfchar and bfrange sections of a CMap stream.
func parseToUnicode(content string) *toUnicode {
	cm := newToUnicode()

	for _, block := range bfCharBlock.FindAllStringSubmatch(content, -1) {
		tokens := hexToken.FindAllStringSubmatch(block[1], -1)
		for i := 0; i+1 < len(tokens); i += 2 {
			cm.set(tokens[i][1], utf16Text(tokens[i+1][1]))
		}
	}

	for _, block := range bfRangeBlock.FindAllStringSubmatch(content, -1) {
		for _, m := range bfRangeLine.FindAllStringSubmatch(block[1], -1) {
			lo, err1 := strconv.ParseUint(m[1], 16, 32)
			hi, err2 := strconv.ParseUint(m[2], 16, 32)
			if err1 != nil || err2 != nil || hi < lo || hi-lo > 0xFFFF {
				continue
			}

			// <lo> <hi> [<dst1> <dst2> ...]
			if strings.HasPrefix(m[3], "[") {
				for i, dst := range hexToken.FindAllStringSubmatch(m[3], -1) {
					if lo+uint64(i) > hi {
						break
					}
					cm.set(codeHex(lo+uint64(i), len(m[1])), utf16Text(dst[1]))
				}
				continue
			}

			// <lo> <hi> <dst>: consecutive codes map to consecutive values.
			dstHex := strings.Trim(m[3], "<>")
			dst, err := strconv.ParseUint(dstHex, 16, 32)
			if err != nil {
				continue
			}
			for code := lo; code <= hi; code++ {
				cm.set(codeHex(code, len(m[1])), utf16Text(codeHex(dst+code-lo, len(dstHex))))
			}
		}
	}
	return cm
}

func (cm *toUnicode) set(code, text string) {
	if text == "" {
		return
	}
	if cm.width == 0 {
		cm.width = max(len(code)/2, 1)
	}
	cm.chars[strings.ToUpper(code)] = text
}

func (cm *toUnicode) merge(other *toUnicode) {
	if cm.width == 0 {
		cm.width = other.width
	}
	for k, v := range other.chars {
		cm.chars[k] = v
	}
}

// decode maps raw string bytes through the CMap. Unmapped single-byte codes
// in the printable ASCII range pass through.
func (cm *toUnicode) decode(raw []byte) string {
	if cm == nil || len(cm.chars) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(raw); {
		if i+cm.width <= len(raw) {
			if text, ok := cm.chars[strings.ToUpper(hex.EncodeToString(raw[i:i+cm.width]))]; ok {
				b.WriteString(text)
				i += cm.width
				continue
			}
		}
		if text, ok := cm.chars[strings.ToUpper(hex.EncodeToString(raw[i:i+1]))]; ok {
			b.WriteString(text)
		} else if raw[i] >= 32 && raw[i] < 127 {
			b.WriteByte(raw[i])
		}
		i++
	}
	return b.String()
}

// codeHex formats code as upper-case hex padded to n digits.
func codeHex(code uint64, n int) string {
	h := strings.ToUpper(strconv.FormatUint(code, 16))
	if len(h) < n {
		h = strings.Repeat("0", n-len(h)) + h
	}
	return h
}

// utf16Text decodes a hex string of UTF-16BE code units, surrogate pairs
// included.
func utf16Text(h string) string {
	if len(h)%2 != 0 {
		h = "0" + h
	}
	data, err := hex.DecodeString(h)
	if err != nil || len(data) == 0 {
		return ""
	}
	if len(data) == 1 {
		return string(rune(data[0]))
	}
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])<<8|uint16(data[i+1]))
	}
	return string(utf16.Decode(units))
}
