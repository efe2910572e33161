package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

var drawingMarkup = markup{
	namespace: "http://schemas.openxmlformats.org/drawingml/2006/main",
	text:      "t",
	paras:     []string{"p"},
	breaks:    []string{"br"},
}

// odfMarkup covers the text layer shared by ODT, ODP and ODS content.xml.
var odfMarkup = markup{
	namespace: "urn:oasis:names:tc:opendocument:xmlns:text:1.0",
	paras:     []string{"p", "h"},
	tab:       "tab",
	breaks:    []string{"line-break"},
	space:     "s",
}

// extractPPTX returns the text of every slide in slide order. Slides are separated
// by a blank line so each one starts a new paragraph.
func extractPPTX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PPTX: not a zip: %w", err)
	}
	type slide struct {
		n int
		f *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if m := slidePart.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{n: n, f: f})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	parts := make([]string, 0, len(slides))
	for _, s := range slides {
		text, err := zipPartText(s.f, drawingMarkup)
		if err != nil {
			return "", fmt.Errorf("PPTX: %w", err)
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// extractODF returns the paragraphs of an OpenDocument package's content.xml. For
// spreadsheets every non-empty cell becomes a line.
func extractODF(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open OpenDocument: not a zip: %w", err)
	}
	f := findZipFile(zr, "content.xml")
	if f == nil {
		return "", fmt.Errorf("open OpenDocument: content.xml not found")
	}
	text, err := zipPartText(f, odfMarkup)
	if err != nil {
		return "", fmt.Errorf("OpenDocument: %w", err)
	}
	return text, nil
}
