package extractor

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfMethods are tried in order until one yields readable text. Row-based
// extraction keeps columns on one line, which the statement parsers rely on.
var pdfMethods = []struct {
	name    string
	extract func(r *pdf.Reader) []string
}{
	{"rows", pagesByRow},
	{"content", pagesByContent},
	{"page-text", pagesByPlainText},
	{"document-text", documentText},
}

// extractWithLibrary uses ledongthuc/pdf. The library panics on some
// malformed files; that is reported as an error.
func extractWithLibrary(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if r.NumPage() == 0 {
		return nil, errors.New("document has no pages")
	}

	for _, m := range pdfMethods {
		pages = m.extract(r)
		if isReadableText(pages) {
			return pages, nil
		}
	}
	return pages, nil
}

func eachPage(r *pdf.Reader, fn func(p pdf.Page) string) []string {
	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pages = append(pages, fn(p))
	}
	return pages
}

func pagesByRow(r *pdf.Reader) []string {
	return eachPage(r, func(p pdf.Page) string {
		rows, err := p.GetTextByRow()
		if err != nil {
			return ""
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, w := range row.Content {
				words = append(words, w.S)
			}
			if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	})
}

// columnGap is the horizontal distance, in points, treated as a column break.
const columnGap = 15

// pagesByContent rebuilds rows from positioned text: pieces are grouped by
// rounded Y (top of the page first) and ordered by X within a row.
func pagesByContent(r *pdf.Reader) []string {
	type piece struct {
		x float64
		s string
	}

	return eachPage(r, func(p pdf.Page) string {
		rows := map[int][]piece{}
		for _, t := range p.Content().Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rows[y] = append(rows[y], piece{x: t.X, s: t.S})
		}

		ys := make([]int, 0, len(rows))
		for y := range rows {
			ys = append(ys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		lines := make([]string, 0, len(ys))
		for _, y := range ys {
			row := rows[y]
			sort.Slice(row, func(a, b int) bool { return row[a].x < row[b].x })

			var sb strings.Builder
			for i, pc := range row {
				if i > 0 && pc.x-row[i-1].x > columnGap {
					sb.WriteString("  ")
				}
				sb.WriteString(pc.s)
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	})
}

func pagesByPlainText(r *pdf.Reader) []string {
	return eachPage(r, func(p pdf.Page) string {
		fonts := make(map[string]*pdf.Font)
		for _, name := range p.Fonts() {
			f := p.Font(name)
			fonts[name] = &f
		}
		text, err := p.GetPlainText(fonts)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(text)
	})
}

func documentText(r *pdf.Reader) []string {
	rd, err := r.GetPlainText()
	if err != nil {
		return nil
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil
	}
	return []string{strings.TrimSpace(string(data))}
}
