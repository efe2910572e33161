package vector

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	src, _ := NewMemoryIndex(0)
	_ = src.InsertMany([]Record{
		{ID: "a", Content: "第一段", Embedding: []float32{0.1, 0.2}, Metadata: map[string]any{MetaDocumentID: "d1", MetaDocumentName: "a.txt", MetaChunkIndex: 0}},
		{ID: "b", Content: "second", Embedding: []float32{0.3, 0.4}, Metadata: map[string]any{MetaDocumentID: "d1", MetaDocumentName: "a.txt", MetaChunkIndex: 1}},
	})
	data, err := src.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	dst, _ := NewMemoryIndex(0)
	_ = dst.Insert(Record{ID: "old", Embedding: []float32{1, 2, 3}})
	if err := dst.Restore(data); err != nil {
		t.Fatal(err)
	}
	if dst.Len() != 2 {
		t.Fatalf("restore should replace contents, got %d records", dst.Len())
	}
	hits := dst.Search([]float32{0.1, 0.2}, 1)
	if hits[0].Record.ID != "a" || hits[0].Record.Content != "第一段" {
		t.Errorf("unexpected top hit %+v", hits[0].Record)
	}
	if name, ok := hits[0].Record.DocumentName(); !ok || name != "a.txt" {
		t.Errorf("document name lost: %q", name)
	}
	if n, ok := hits[0].Record.ChunkIndex(); !ok || n != 0 {
		t.Errorf("chunk index lost: %d", n)
	}
	if dst.RemoveByDocument("d1") != 2 {
		t.Error("restored records should be removable by document")
	}
}

func TestRestore_EmptySnapshotClears(t *testing.T) {
	empty, _ := NewMemoryIndex(0)
	data, err := empty.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	idx, _ := NewMemoryIndex(0)
	_ = idx.Insert(Record{ID: "x", Embedding: []float32{1}})
	if err := idx.Restore(data); err != nil {
		t.Fatal(err)
	}
	if !idx.IsEmpty() {
		t.Error("restoring an empty snapshot should clear the index")
	}
}

func TestRestore_CorruptLeavesIndexUnchanged(t *testing.T) {
	src, _ := NewMemoryIndex(0)
	_ = src.Insert(Record{ID: "a", Embedding: []float32{1, 0}})
	data, _ := src.Snapshot()

	idx, _ := NewMemoryIndex(0)
	_ = idx.Insert(Record{ID: "keep", Embedding: []float32{0, 1}})
	for name, bad := range map[string][]byte{
		"garbage":    []byte("not a snapshot"),
		"truncated":  data[:len(data)-3],
		"trailing":   append(append([]byte{}, data...), 0xff),
		"huge count": snapshotHeader(1, 0xFFFFFFFF),
		"huge dim":   snapshotHeader(0xFFFFFFFF, 1),
	} {
		err := idx.Restore(bad)
		if !errors.Is(err, ErrBadSnapshot) {
			t.Errorf("%s: expected ErrBadSnapshot, got %v", name, err)
		}
	}
	if idx.Len() != 1 {
		t.Errorf("corrupt restore changed index: Len=%d", idx.Len())
	}
}

// snapshotHeader returns a bare header claiming dim and n, followed by a few bytes.
func snapshotHeader(dim, n uint32) []byte {
	b := append([]byte{}, snapshotMagic[:]...)
	b = binary.LittleEndian.AppendUint16(b, snapshotVersion)
	b = binary.LittleEndian.AppendUint32(b, dim)
	b = binary.LittleEndian.AppendUint32(b, n)
	return append(b, 0, 0, 0, 0)
}

func TestRestore_EmptyFixedDimension(t *testing.T) {
	src, _ := NewMemoryIndex(4)
	data, err := src.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	idx, _ := NewMemoryIndex(4)
	if err := idx.Restore(data); err != nil {
		t.Fatalf("restore empty snapshot: %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("Len = %d, want 0", idx.Len())
	}
}

func TestRestore_FixedDimensionMismatch(t *testing.T) {
	src, _ := NewMemoryIndex(0)
	_ = src.Insert(Record{ID: "a", Embedding: []float32{1, 0, 0}})
	data, _ := src.Snapshot()
	idx, _ := NewMemoryIndex(2)
	if err := idx.Restore(data); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vectors.idx")
	src, _ := NewMemoryIndex(0)
	_ = src.Insert(Record{ID: "a", Content: "hello", Embedding: []float32{1, 0}})
	if err := SaveFile(src, path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after save")
	}

	dst, _ := NewMemoryIndex(0)
	if err := LoadFile(dst, path); err != nil {
		t.Fatal(err)
	}
	if dst.Len() != 1 {
		t.Errorf("loaded Len=%d, want 1", dst.Len())
	}
}

func TestLoadFile_MissingIsNoop(t *testing.T) {
	idx, _ := NewMemoryIndex(0)
	if err := LoadFile(idx, filepath.Join(t.TempDir(), "absent.idx")); err != nil {
		t.Errorf("missing file should not error: %v", err)
	}
	if err := LoadFile(idx, ""); err != nil {
		t.Errorf("empty path should not error: %v", err)
	}
}
