package indexer

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hyperjump/wali/internal/models"
)

func TestNewChunker_rejectsDegenerateOverlap(t *testing.T) {
	tests := []struct {
		name          string
		size, overlap int
	}{
		{"overlap equals size", 10, 10},
		{"overlap above size", 10, 12},
		{"zero size", 0, 0},
		{"negative overlap", 10, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.size, tt.overlap)
			if !errors.Is(err, models.ErrConfig) {
				t.Errorf("NewChunker(%d, %d) error = %v, want ConfigError", tt.size, tt.overlap, err)
			}
		})
	}
}

func TestChunker_SplitEmpty(t *testing.T) {
	c, err := NewChunker(5, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Split(""); len(got) != 0 {
		t.Errorf("empty text should return no passages, got %v", got)
	}
	if got := c.Split("   \n\n\t\n\n  "); len(got) != 0 {
		t.Errorf("blank paragraphs should be dropped, got %v", got)
	}
}

func TestChunker_SplitParagraphs(t *testing.T) {
	c, err := NewChunker(500, 50)
	if err != nil {
		t.Fatal(err)
	}
	got := c.Split("第一段内容。\n\n第二段内容。\n\n\n\n第三段内容。")
	want := []string{"第一段内容。", "第二段内容。", "第三段内容。"}
	if len(got) != len(want) {
		t.Fatalf("got %d passages %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("passage %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChunker_SplitChineseSlidingWindow(t *testing.T) {
	text := "这是一个测试文本用于验证分块功能是否正常工作"
	chunks, err := SplitSmart(text, 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if n := utf8.RuneCountInString(ch); n > 10 {
			t.Errorf("chunk %d has %d chars, want <= 10", i, n)
		}
		if !utf8.ValidString(ch) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
	}
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		tail := string(prev[len(prev)-2:])
		head := string(cur[:2])
		if tail != head {
			t.Errorf("chunks %d/%d overlap %q vs %q", i-1, i, tail, head)
		}
	}
	if got := reassemble(chunks, 2); got != text {
		t.Errorf("reassembled %q, want %q", got, text)
	}
}

func TestChunker_SplitSmartMixed(t *testing.T) {
	c, err := NewChunker(20, 5)
	if err != nil {
		t.Fatal(err)
	}
	long := strings.Repeat("非常", 20) + "长的段落需要分割。"
	chunks := c.Split("短段落。\n\n" + long)
	if len(chunks) < 3 {
		t.Fatalf("expected short paragraph plus at least 2 windows, got %d", len(chunks))
	}
	if chunks[0] != "短段落。" {
		t.Errorf("first passage = %q", chunks[0])
	}
	windows := chunks[1:]
	for i, w := range windows[:len(windows)-1] {
		if n := utf8.RuneCountInString(w); n != 20 {
			t.Errorf("window %d has %d chars, want exactly 20", i, n)
		}
	}
	if got := reassemble(windows, 5); got != long {
		t.Errorf("long paragraph not reconstructed")
	}
}

func TestChunker_Chunk(t *testing.T) {
	c, err := NewChunker(3, 1)
	if err != nil {
		t.Fatal(err)
	}
	chunks := c.Chunk("doc1", "abcdefg\n\nxy")
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.DocumentID != "doc1" {
			t.Errorf("chunk %d DocumentID=%s", i, ch.DocumentID)
		}
		if ch.ChunkIndex != i {
			t.Errorf("chunk %d ChunkIndex=%d", i, ch.ChunkIndex)
		}
		if ch.ID == "" {
			t.Error("chunk ID should be set")
		}
	}
	if chunks[3].Content != "xy" {
		t.Errorf("last chunk = %q", chunks[3].Content)
	}
	if c.Chunk("d", "  ") != nil {
		t.Error("blank text should return nil")
	}
}

func TestParagraphs_normalizesCRLF(t *testing.T) {
	got := Paragraphs("one\r\n\r\ntwo\r\nstill two")
	if len(got) != 2 || got[1] != "two\nstill two" {
		t.Errorf("Paragraphs() = %q", got)
	}
}

// reassemble joins sliding-window passages, dropping the overlapping prefix of each.
func reassemble(chunks []string, overlap int) string {
	var b strings.Builder
	for i, ch := range chunks {
		r := []rune(ch)
		if i > 0 {
			r = r[overlap:]
		}
		b.WriteString(string(r))
	}
	return b.String()
}
