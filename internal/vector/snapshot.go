package vector

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

var snapshotMagic = [4]byte{'W', 'V', 'I', 'X'}

const snapshotVersion uint16 = 1

// ErrBadSnapshot is returned when snapshot bytes cannot be decoded.
var ErrBadSnapshot = errors.New("invalid vector snapshot")

// Format: magic (4), version (2), dimension (4), n (4), then per record:
// id, content and JSON metadata as length-prefixed strings, then dimension*4 bytes of vector.
func encodeSnapshot(dim int, recs []Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(snapshotMagic[:])
	_ = binary.Write(&buf, binary.LittleEndian, snapshotVersion)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dim))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(recs)))
	for _, rec := range recs {
		meta, err := json.Marshal(rec.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode metadata for %s: %w", rec.ID, err)
		}
		writeBytes(&buf, []byte(rec.ID))
		writeBytes(&buf, []byte(rec.Content))
		writeBytes(&buf, meta)
		buf.Write(float32SliceToBytes(rec.Embedding))
	}
	return buf.Bytes(), nil
}

func decodeSnapshot(data []byte) (int, []Record, error) {
	r := bytes.NewReader(data)
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || magic != snapshotMagic {
		return 0, nil, fmt.Errorf("%w: bad header", ErrBadSnapshot)
	}
	var version uint16
	var dim, n uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return 0, nil, fmt.Errorf("%w: read version: %v", ErrBadSnapshot, err)
	}
	if version != snapshotVersion {
		return 0, nil, fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, version)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return 0, nil, fmt.Errorf("%w: read dimensions: %v", ErrBadSnapshot, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, nil, fmt.Errorf("%w: read count: %v", ErrBadSnapshot, err)
	}
	if n > 0 && dim == 0 {
		return 0, nil, fmt.Errorf("%w: records without dimension", ErrBadSnapshot)
	}
	// Each record carries three length prefixes and its vector, so the header
	// cannot claim more than the remaining bytes could hold.
	vecSize := int64(dim) * 4
	if n > 0 && vecSize > int64(r.Len()) {
		return 0, nil, fmt.Errorf("%w: dimension %d exceeds data", ErrBadSnapshot, dim)
	}
	if int64(n) > int64(r.Len())/(12+vecSize) {
		return 0, nil, fmt.Errorf("%w: count %d exceeds data", ErrBadSnapshot, n)
	}
	var recs []Record
	buf := make([]byte, vecSize)
	for i := uint32(0); i < n; i++ {
		id, err := readBytes(r)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: record %d id: %v", ErrBadSnapshot, i, err)
		}
		content, err := readBytes(r)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: record %d content: %v", ErrBadSnapshot, i, err)
		}
		metaBytes, err := readBytes(r)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: record %d metadata: %v", ErrBadSnapshot, i, err)
		}
		var meta map[string]any
		if err := json.Unmarshal(metaBytes, &meta); err != nil {
			return 0, nil, fmt.Errorf("%w: record %d metadata: %v", ErrBadSnapshot, i, err)
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, nil, fmt.Errorf("%w: record %d vector: %v", ErrBadSnapshot, i, err)
		}
		recs = append(recs, Record{
			ID:        string(id),
			Content:   string(content),
			Embedding: bytesToFloat32Slice(buf),
			Metadata:  meta,
		})
	}
	if r.Len() != 0 {
		return 0, nil, fmt.Errorf("%w: %d trailing bytes", ErrBadSnapshot, r.Len())
	}
	return int(dim), recs, nil
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(b)))
	buf.Write(b)
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if int64(n) > int64(r.Len()) {
		return nil, io.ErrUnexpectedEOF
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}

// SaveFile writes a snapshot of idx to path through a temp file and rename.
// The directory is created if needed.
func SaveFile(idx Index, path string) error {
	if path == "" {
		return nil
	}
	data, err := idx.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

// LoadFile restores idx from path. A missing file leaves the index unchanged.
func LoadFile(idx Index, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	if err := idx.Restore(data); err != nil {
		return fmt.Errorf("restore index: %w", err)
	}
	return nil
}
