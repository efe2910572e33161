package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// markup describes where text lives in an XML document part. Elements outside
// namespace are ignored.
type markup struct {
	namespace string
	// text is the element holding character data; "" takes all character data
	// inside a paragraph.
	text   string
	paras  []string
	tab    string
	breaks []string
	// space is an element standing for one or more spaces (ODF <text:s/>).
	space string
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func zipPartText(f *zip.File, m markup) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	text, err := markupText(rc, m)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", f.Name, err)
	}
	return text, nil
}

// markupText walks the token stream of r and returns one line per non-blank paragraph.
func markupText(r io.Reader, m markup) (string, error) {
	dec := xml.NewDecoder(r)
	var out, para strings.Builder
	inText := false
	depth := 0
	flush := func() {
		if line := strings.TrimSpace(para.String()); line != "" {
			if out.Len() > 0 {
				out.WriteByte('\n')
			}
			out.WriteString(line)
		}
		para.Reset()
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != m.namespace {
				continue
			}
			local := t.Name.Local
			switch {
			case m.text != "" && local == m.text:
				inText = true
			case slices.Contains(m.paras, local):
				depth++
			case local == m.tab && m.tab != "":
				para.WriteByte('\t')
			case slices.Contains(m.breaks, local):
				para.WriteByte('\n')
			case local == m.space && m.space != "":
				para.WriteByte(' ')
			}
		case xml.EndElement:
			if t.Name.Space != m.namespace {
				continue
			}
			switch local := t.Name.Local; {
			case m.text != "" && local == m.text:
				inText = false
			case slices.Contains(m.paras, local):
				depth = max(depth-1, 0)
				flush()
			}
		case xml.CharData:
			if inText || (m.text == "" && depth > 0) {
				para.Write(t)
			}
		}
	}
	flush()
	return out.String(), nil
}
