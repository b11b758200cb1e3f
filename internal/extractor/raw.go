package extractor

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// extractRaw reads text operators straight out of the PDF's content
// streams, decoding custom font encodings through their ToUnicode CMaps.
// It needs no valid cross-reference table, so it still works on files the
// PDF library rejects. Each content stream with text becomes one page.
func extractRaw(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var streams []string
	cm := newToUnicode()
	for _, s := range rawStreams(data) {
		content := string(inflate(s))
		if strings.Contains(content, "beginbfchar") || strings.Contains(content, "beginbfrange") {
			cm.merge(parseToUnicode(content))
			continue
		}
		streams = append(streams, content)
	}

	var pages []string
	for _, content := range streams {
		if text := streamText(content, cm); text != "" {
			pages = append(pages, text)
		}
	}
	return pages, nil
}

var (
	streamKeyword    = []byte("stream")
	endstreamKeyword = []byte("endstream")
)

// rawStreams returns the bodies of all stream ... endstream objects.
func rawStreams(data []byte) [][]byte {
	var streams [][]byte
	for offset := 0; offset < len(data); {
		idx := bytes.Index(data[offset:], streamKeyword)
		if idx < 0 {
			break
		}
		start := offset + idx + len(streamKeyword)
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}

		end := bytes.Index(data[start:], endstreamKeyword)
		if end < 0 {
			break
		}
		if end > 0 {
			streams = append(streams, data[start:start+end])
		}
		offset = start + end + len(endstreamKeyword)
	}
	return streams
}

// inflate returns the zlib-decompressed stream, or s itself when it is not
// compressed.
func inflate(s []byte) []byte {
	r, err := zlib.NewReader(bytes.NewReader(s))
	if err != nil {
		return s
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil && len(out) == 0 {
		return s
	}
	return out
}

// textOps matches, in stream order: TJ arrays (1), hex Tj strings (2),
// literal strings shown by Tj or ' (3, 4), Td/TD moves (5, 6), and the
// T* and ET operators.
var textOps = regexp.MustCompile(
	`\[((?:[^\]\\]|\\.)*)\]\s*TJ` +
		`|<([0-9A-Fa-f\s]*)>\s*Tj` +
		`|\(((?:[^()\\]|\\.)*)\)\s*(Tj|')` +
		`|(-?[\d.]+)\s+(-?[\d.]+)\s+T[dD]\b` +
		`|\bT\*|\bET\b`,
)

// arrayItems matches the elements of a TJ array: hex strings (1), literal
// strings (2) and kerning numbers (3).
var arrayItems = regexp.MustCompile(`<([0-9A-Fa-f\s]*)>|\(((?:[^()\\]|\\.)*)\)|(-?[\d.]+)`)

// wordGap is the TJ kerning, in thousandths of an em, read as a space.
const wordGap = -200

func streamText(content string, cm *toUnicode) string {
	if !strings.Contains(content, "BT") {
		return ""
	}

	var (
		lines []string
		line  strings.Builder
	)
	newline := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			lines = append(lines, s)
		}
		line.Reset()
	}

	for _, m := range textOps.FindAllStringSubmatch(content, -1) {
		switch {
		case strings.HasPrefix(m[0], "["):
			line.WriteString(arrayText(m[1], cm))
		case strings.HasPrefix(m[0], "<"):
			line.WriteString(hexText(m[2], cm))
		case strings.HasPrefix(m[0], "("):
			if m[4] == "'" {
				newline()
			}
			line.WriteString(literalText(m[3], cm))
		case m[5] != "":
			if y, err := strconv.ParseFloat(m[6], 64); err == nil && y != 0 {
				newline()
			} else if line.Len() > 0 {
				line.WriteByte(' ')
			}
		default: // T* or ET
			newline()
		}
	}
	newline()
	return strings.Join(lines, "\n")
}

func arrayText(items string, cm *toUnicode) string {
	var b strings.Builder
	for _, m := range arrayItems.FindAllStringSubmatch(items, -1) {
		switch {
		case strings.HasPrefix(m[0], "<"):
			b.WriteString(hexText(m[1], cm))
		case strings.HasPrefix(m[0], "("):
			b.WriteString(literalText(m[2], cm))
		default:
			if n, err := strconv.ParseFloat(m[3], 64); err == nil && n <= wordGap {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

func hexText(h string, cm *toUnicode) string {
	h = strings.Join(strings.Fields(h), "")
	if len(h)%2 != 0 {
		h += "0"
	}
	raw, err := hex.DecodeString(h)
	if err != nil {
		return ""
	}
	if text := cm.decode(raw); text != "" {
		return text
	}
	if isUTF16Latin(raw) {
		return printable(utf16Text(h))
	}
	return printable(string(raw))
}

// isUTF16Latin reports whether raw reads as UTF-16BE with every high byte
// zero, as Identity-H fonts without a CMap often emit.
func isUTF16Latin(raw []byte) bool {
	if len(raw) == 0 || len(raw)%2 != 0 {
		return false
	}
	for i := 0; i < len(raw); i += 2 {
		if raw[i] != 0 {
			return false
		}
	}
	return true
}

func literalText(s string, cm *toUnicode) string {
	raw := unescapeLiteral(s)
	if text := cm.decode(raw); text != "" {
		return text
	}
	return printable(string(raw))
}

// unescapeLiteral resolves the backslash escapes of a PDF literal string.
func unescapeLiteral(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			out = append(out, c)
			continue
		}
		i++
		switch c = s[i]; c {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v := int(c - '0')
			for j := 0; j < 2 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; j++ {
				i++
				v = v*8 + int(s[i]-'0')
			}
			out = append(out, byte(v))
		default:
			out = append(out, c)
		}
	}
	return out
}

func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
}
