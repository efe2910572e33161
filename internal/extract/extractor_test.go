package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/wali/internal/models"
)

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("Hello world\nLine 2"), ".txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Hello world\nLine 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("hello\x80world"), ".md")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "hello�world" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_unknownExtensionIsPlain(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("知识库"), ".csv")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "知识库" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Title")
	f.SetCellValue("Sheet1", "A2", "Value 1")
	f.SetCellValue("Sheet1", "B2", "Value 2")
	if _, err := f.NewSheet("Prices"); err != nil {
		t.Fatal(err)
	}
	f.SetCellValue("Prices", "A1", "Basic")
	f.SetCellValue("Prices", "B1", 10)
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := NewExtractor().ExtractBytes(buf.Bytes(), ".XLSX")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	want := "Title\nValue 1\tValue 2\n\nBasic\t10"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p w:rsidR="00A1"><w:r><w:t>Refund</w:t></w:r><w:r><w:t xml:space="preserve"> policy</w:t></w:r></w:p>
<w:p><w:r><w:t>Within</w:t><w:tab/><w:t>30 days</w:t></w:r></w:p>
<w:p></w:p>
</w:body>
</w:document>`

func TestExtractBytes_docx(t *testing.T) {
	content := zipBytes(t, map[string]string{"word/document.xml": docxBody})
	got, err := NewExtractor().ExtractBytes(content, ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Refund policy\nWithin\t30 days" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxMainPartFromContentTypes(t *testing.T) {
	types := `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml" PartName="/word/document2.xml"/>
</Types>`
	content := zipBytes(t, map[string]string{
		"[Content_Types].xml": types,
		"word/document2.xml":  docxBody,
	})
	got, err := NewExtractor().ExtractBytes(content, ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Refund policy\nWithin\t30 days" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxNotZip(t *testing.T) {
	if _, err := NewExtractor().ExtractBytes([]byte("plain"), ".docx"); err == nil {
		t.Error("expected error for non-zip docx")
	}
}

func TestExtractBytes_docxMissingBody(t *testing.T) {
	content := zipBytes(t, map[string]string{"other.xml": "<x/>"})
	if _, err := NewExtractor().ExtractBytes(content, ".docx"); err == nil {
		t.Error("expected error when the document body is missing")
	}
}

func pptxSlide(lines ...string) string {
	var b strings.Builder
	b.WriteString(`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><p:cSld><p:spTree><p:sp><p:txBody>`)
	for _, l := range lines {
		b.WriteString("<a:p><a:r><a:t>" + l + "</a:t></a:r></a:p>")
	}
	b.WriteString(`</p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)
	return b.String()
}

func TestExtractBytes_pptxSlideOrder(t *testing.T) {
	content := zipBytes(t, map[string]string{
		"ppt/slides/slide10.xml":            pptxSlide("Tenth"),
		"ppt/slides/slide2.xml":             pptxSlide("Second", "more"),
		"ppt/slides/slide1.xml":             pptxSlide("First"),
		"ppt/slides/_rels/slide1.xml.rels":  "<Relationships/>",
		"ppt/slideLayouts/slideLayout1.xml": pptxSlide("layout text"),
	})
	got, err := NewExtractor().ExtractBytes(content, ".pptx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if want := "First\n\nSecond\nmore\n\nTenth"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

const odfContent = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0">
<office:body><office:spreadsheet><table:table table:name="Prices">
<table:table-row><table:table-cell><text:p>Plan</text:p></table:table-cell><table:table-cell><text:p>Price</text:p></table:table-cell></table:table-row>
<table:table-row><table:table-cell><text:p>Basic<text:s/>tier</text:p></table:table-cell><table:table-cell/></table:table-row>
</table:table>
<text:h>Notes</text:h><text:p>Line one<text:line-break/>line<text:tab/>two</text:p><text:p>   </text:p>
</office:spreadsheet></office:body></office:document-content>`

func TestExtractBytes_openDocument(t *testing.T) {
	content := zipBytes(t, map[string]string{"content.xml": odfContent, "mimetype": "application/vnd.oasis.opendocument.spreadsheet"})
	for _, ext := range []string{".ods", ".odp"} {
		got, err := NewExtractor().ExtractBytes(content, ext)
		if err != nil {
			t.Fatalf("ExtractBytes(%s): %v", ext, err)
		}
		if want := "Plan\nPrice\nBasic tier\nNotes\nLine one\nline\ttwo"; got != want {
			t.Errorf("%s: got %q, want %q", ext, got, want)
		}
	}
}

func TestExtractBytes_openDocumentMissingContent(t *testing.T) {
	content := zipBytes(t, map[string]string{"meta.xml": "<x/>"})
	if _, err := NewExtractor().ExtractBytes(content, ".odp"); err == nil {
		t.Error("expected error when content.xml is missing")
	}
	if _, err := NewExtractor().ExtractBytes([]byte("nope"), ".pptx"); err == nil {
		t.Error("expected error for non-zip pptx")
	}
}

func TestExtractor_Register(t *testing.T) {
	e := NewExtractor()
	if e.Binary(".html") {
		t.Fatal(".html should not have a dedicated extractor")
	}
	e.Register("HTML", func(content []byte) (string, error) { return "stripped", nil })
	if !e.Binary(".html") {
		t.Fatal("registered extension should be reported")
	}
	got, err := e.ExtractBytes([]byte("<p>x</p>"), ".html")
	if err != nil || got != "stripped" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestExtractor_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Notes.MD")
	if err := os.WriteFile(path, []byte("first\n\nsecond"), 0600); err != nil {
		t.Fatal(err)
	}

	in, err := NewExtractor().Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if in.Name != "Notes.MD" || in.FileType != "md" || in.FileSize != 13 {
		t.Errorf("unexpected input: %+v", in)
	}
	if in.Content != "first\n\nsecond" || in.SourcePath != path {
		t.Errorf("unexpected content or path: %+v", in)
	}
}

func TestExtractor_LoadRejectsDirectory(t *testing.T) {
	_, err := NewExtractor().Load(t.TempDir())
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExtract_nonexistent(t *testing.T) {
	if _, err := NewExtractor().Extract(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileType(t *testing.T) {
	cases := map[string]string{
		"/a/b/report.PDF": "pdf",
		"notes.md":        "md",
		"Makefile":        UnknownFileType,
		"archive.tar.gz":  "gz",
	}
	for path, want := range cases {
		if got := FileType(path); got != want {
			t.Errorf("FileType(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestAllowed(t *testing.T) {
	exts := []string{".txt", "md", ".PDF"}
	for path, want := range map[string]bool{
		"a.txt":  true,
		"b.MD":   true,
		"c.pdf":  true,
		"d.xlsx": false,
		"e":      false,
	} {
		if got := Allowed(path, exts); got != want {
			t.Errorf("Allowed(%q) = %v, want %v", path, got, want)
		}
	}
	if !Allowed("anything.bin", nil) {
		t.Error("empty list should allow everything")
	}
}
