package index

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/viant/semindex/index/flat"
	"github.com/viant/semindex/index/ivf"
)

// The artifact is one gzip-compressed file carrying the header, the
// slot-to-row-id map and the serialized index payload together, so the index
// can never be loaded without its matching slot map.
//
// Inner layout (little-endian):
//
//	magic  [4]byte "SIDX"
//	version uint16
//	kindLen uint8, kind bytes
//	dim uint32
//	builtAtRowCount uint64
//	n uint64, rowIDs [n]int64
//	payloadLen uint64, payload
const (
	artifactMagic   = "SIDX"
	artifactVersion = 1
)

// WriteFile persists the snapshot atomically: the artifact is written to a
// temp file and renamed into place, so a crash mid-write never leaves a
// partial artifact at path.
func WriteFile(snap *Snapshot, path string) error {
	payload, err := snap.idx.MarshalBinary()
	if err != nil {
		return fmt.Errorf("index: marshal payload: %w", err)
	}

	inner := make([]byte, 0, 32+8*len(snap.rowIDs)+len(payload))
	inner = append(inner, artifactMagic...)
	inner = appendU16(inner, artifactVersion)
	kind := string(snap.kind)
	inner = append(inner, byte(len(kind)))
	inner = append(inner, kind...)
	inner = appendU32(inner, uint32(snap.dim))
	inner = appendU64(inner, uint64(snap.builtAtRowCount))
	inner = appendU64(inner, uint64(len(snap.rowIDs)))
	for _, id := range snap.rowIDs {
		inner = appendU64(inner, uint64(id))
	}
	inner = appendU64(inner, uint64(len(payload)))
	inner = append(inner, payload...)

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("index: create artifact: %w", err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write(inner); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("index: write artifact: %w", err)
	}
	if err := gz.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("index: finalize artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("index: close artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("index: install artifact: %w", err)
	}
	return nil
}

// ReadFile loads an artifact written by WriteFile. Any structural problem —
// wrong magic or version, truncation, a slot map that does not match the
// payload — fails with CorruptIndexError; the only recovery is a rebuild
// from the store.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("index: open artifact: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, &CorruptIndexError{Path: path, Reason: "not a gzip artifact"}
	}
	defer gz.Close()
	inner, err := io.ReadAll(gz)
	if err != nil {
		return nil, &CorruptIndexError{Path: path, Reason: "decompression failed: " + err.Error()}
	}

	r := &reader{data: inner, path: path}
	magic, err := r.bytes(4)
	if err != nil {
		return nil, err
	}
	if string(magic) != artifactMagic {
		return nil, &CorruptIndexError{Path: path, Reason: "bad magic"}
	}
	version, err := r.u16()
	if err != nil {
		return nil, err
	}
	if version != artifactVersion {
		return nil, &CorruptIndexError{Path: path, Reason: fmt.Sprintf("unsupported version %d", version)}
	}
	kindLen, err := r.bytes(1)
	if err != nil {
		return nil, err
	}
	kindBytes, err := r.bytes(int(kindLen[0]))
	if err != nil {
		return nil, err
	}
	kind, err := ParseKind(string(kindBytes))
	if err != nil {
		return nil, &CorruptIndexError{Path: path, Reason: "unknown index kind " + string(kindBytes)}
	}
	dim, err := r.u32()
	if err != nil {
		return nil, err
	}
	builtAt, err := r.u64()
	if err != nil {
		return nil, err
	}
	n, err := r.u64()
	if err != nil {
		return nil, err
	}
	if n > math.MaxInt32 {
		return nil, &CorruptIndexError{Path: path, Reason: fmt.Sprintf("implausible slot count %d", n)}
	}
	rowIDs := make([]int64, n)
	for i := range rowIDs {
		v, err := r.u64()
		if err != nil {
			return nil, err
		}
		rowIDs[i] = int64(v)
	}
	payloadLen, err := r.u64()
	if err != nil {
		return nil, err
	}
	payload, err := r.bytes(int(payloadLen))
	if err != nil {
		return nil, err
	}
	if r.off != len(inner) {
		return nil, &CorruptIndexError{Path: path, Reason: "trailing bytes after payload"}
	}

	var idx Index
	switch kind {
	case KindFlat:
		idx = flat.New()
	case KindIVF:
		idx = ivf.New()
	}
	if err := idx.UnmarshalBinary(payload); err != nil {
		return nil, &CorruptIndexError{Path: path, Reason: "payload: " + err.Error()}
	}
	if idx.Len() != len(rowIDs) {
		return nil, &CorruptIndexError{Path: path,
			Reason: fmt.Sprintf("slot map has %d entries but index holds %d vectors", len(rowIDs), idx.Len())}
	}
	if idx.Dim() != int(dim) {
		return nil, &CorruptIndexError{Path: path,
			Reason: fmt.Sprintf("header dim %d but index dim %d", dim, idx.Dim())}
	}

	return &Snapshot{
		kind:            kind,
		dim:             int(dim),
		rowIDs:          rowIDs,
		builtAtRowCount: int(builtAt),
		idx:             idx,
	}, nil
}

type reader struct {
	data []byte
	off  int
	path string
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.data) {
		return nil, &CorruptIndexError{Path: r.path, Reason: fmt.Sprintf("truncated at offset %d", r.off)}
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func appendU16(b []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(b, buf[:]...)
}

func appendU32(b []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(b, buf[:]...)
}

func appendU64(b []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(b, buf[:]...)
}
