package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	docxContentTypes = "[Content_Types].xml"
	docxDefaultBody  = "word/document.xml"
	docxMainType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

var wordMarkup = markup{
	namespace: "http://schemas.openxmlformats.org/wordprocessingml/2006/main",
	text:      "t",
	paras:     []string{"p"},
	tab:       "tab",
	breaks:    []string{"br", "cr"},
}

// extractDOCX returns the text of a .docx body, one line per paragraph.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open DOCX: not a zip: %w", err)
	}
	bodyPath := docxBodyPath(zr)
	f := findZipFile(zr, bodyPath)
	if f == nil {
		return "", fmt.Errorf("open DOCX: %s not found", bodyPath)
	}
	text, err := zipPartText(f, wordMarkup)
	if err != nil {
		return "", fmt.Errorf("DOCX: %w", err)
	}
	return text, nil
}

// docxBodyPath reads the main document part from [Content_Types].xml, falling back
// to word/document.xml.
func docxBodyPath(zr *zip.Reader) string {
	f := findZipFile(zr, docxContentTypes)
	if f == nil {
		return docxDefaultBody
	}
	rc, err := f.Open()
	if err != nil {
		return docxDefaultBody
	}
	defer rc.Close()
	var types struct {
		Overrides []struct {
			PartName    string `xml:"PartName,attr"`
			ContentType string `xml:"ContentType,attr"`
		} `xml:"Override"`
	}
	if err := xml.NewDecoder(rc).Decode(&types); err != nil {
		return docxDefaultBody
	}
	for _, o := range types.Overrides {
		if o.ContentType == docxMainType {
			return strings.TrimPrefix(o.PartName, "/")
		}
	}
	return docxDefaultBody
}
