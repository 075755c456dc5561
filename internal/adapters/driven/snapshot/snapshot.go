// Package snapshot persists the vector index and document metadata as
// one versioned, checksummed file.
//
// File layout, little-endian throughout:
//
//	magic "ARKV" | version uint16 | metric byte | reserved byte
//	dimension uint32 | vector count uint32
//	per vector: id length uint16, id bytes, dimension float32 values
//	metadata length uint32, metadata JSON (documents + chunks)
//	crc32 (IEEE) of everything above
//
// The id-with-vector records double as the chunk-id-to-position map;
// the JSON block is the document/chunk metadata sidecar. Saves write
// to a temporary file in the same directory and rename it over the
// published snapshot, so a crash mid-write never corrupts the previous
// valid snapshot.
package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"math"
	"os"
	"path/filepath"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SnapshotStore = (*Store)(nil)

// Format constants.
const (
	FormatVersion = 1

	fileName   = "vault.snapshot"
	headerSize = 4 + 2 + 1 + 1 + 4 + 4
)

var magic = [4]byte{'A', 'R', 'K', 'V'}

var metricCodes = map[domain.Metric]byte{
	domain.MetricCosine:    0,
	domain.MetricEuclidean: 1,
}

// snapshotMeta is the JSON metadata sidecar block.
type snapshotMeta struct {
	Documents []domain.Document `json:"documents"`
	Chunks    []domain.Chunk    `json:"chunks"`
}

// Store saves and loads snapshots under one data directory.
type Store struct {
	dir string
}

// New creates a snapshot store rooted at the given directory.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the location of the published snapshot.
func (s *Store) Path() string {
	return filepath.Join(s.dir, fileName)
}

// Save atomically persists the snapshot.
func (s *Store) Save(ctx context.Context, snap *driven.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save cancelled: %w", err)
	}

	data, err := encode(snap)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, fileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("publishing snapshot: %w", err)
	}
	return nil
}

// Load reads and validates the published snapshot. It returns
// domain.ErrNotFound when no snapshot exists and wraps
// domain.ErrIndexCorrupt on any structural or checksum failure.
func (s *Store) Load(ctx context.Context) (*driven.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load cancelled: %w", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no snapshot at %s", domain.ErrNotFound, s.Path())
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return decode(data)
}

func encode(snap *driven.Snapshot) ([]byte, error) {
	metricCode, ok := metricCodes[snap.Metric]
	if !ok {
		return nil, fmt.Errorf("%w: unknown metric %q", domain.ErrConfig, snap.Metric)
	}

	meta, err := json.Marshal(snapshotMeta{Documents: snap.Documents, Chunks: snap.Chunks})
	if err != nil {
		return nil, fmt.Errorf("marshal metadata sidecar: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(magic[:])
	writeUint16(&buf, FormatVersion)
	buf.WriteByte(metricCode)
	buf.WriteByte(0)
	writeUint32(&buf, uint32(snap.Dimension))
	writeUint32(&buf, uint32(len(snap.Entries)))

	for _, e := range snap.Entries {
		if len(e.Vector) != snap.Dimension {
			return nil, fmt.Errorf("snapshot entry %q: %w", e.ChunkID,
				&domain.DimensionMismatchError{Want: snap.Dimension, Got: len(e.Vector)})
		}
		if len(e.ChunkID) > math.MaxUint16 {
			return nil, fmt.Errorf("%w: chunk id too long (%d bytes)", domain.ErrConfig, len(e.ChunkID))
		}
		writeUint16(&buf, uint16(len(e.ChunkID)))
		buf.WriteString(e.ChunkID)
		for _, v := range e.Vector {
			writeUint32(&buf, math.Float32bits(v))
		}
	}

	writeUint32(&buf, uint32(len(meta)))
	buf.Write(meta)

	sum := crc32.ChecksumIEEE(buf.Bytes())
	writeUint32(&buf, sum)
	return buf.Bytes(), nil
}

func decode(data []byte) (*driven.Snapshot, error) {
	if len(data) < headerSize+4 {
		return nil, corrupt("file shorter than header")
	}

	body, trailer := data[:len(data)-4], data[len(data)-4:]
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(trailer) {
		return nil, corrupt("checksum mismatch")
	}

	r := &reader{data: body}
	var head [4]byte
	copy(head[:], r.take(4))
	if head != magic {
		return nil, corrupt("bad magic")
	}
	if version := r.uint16(); version != FormatVersion {
		return nil, corrupt(fmt.Sprintf("unrecognised format version %d", version))
	}

	metricCode := r.take(1)[0]
	r.take(1) // reserved

	var m domain.Metric
	switch metricCode {
	case 0:
		m = domain.MetricCosine
	case 1:
		m = domain.MetricEuclidean
	default:
		return nil, corrupt(fmt.Sprintf("unknown metric code %d", metricCode))
	}

	dimension := int(r.uint32())
	count := int(r.uint32())
	if dimension <= 0 {
		return nil, corrupt(fmt.Sprintf("invalid dimension %d", dimension))
	}

	entries := make([]driven.VectorEntry, 0, count)
	for n := 0; n < count; n++ {
		idLen := int(r.uint16())
		id := string(r.take(idLen))
		vec := make([]float32, dimension)
		for d := 0; d < dimension; d++ {
			vec[d] = math.Float32frombits(r.uint32())
		}
		if r.failed {
			return nil, corrupt("truncated vector block")
		}
		entries = append(entries, driven.VectorEntry{ChunkID: id, Vector: vec})
	}

	metaLen := int(r.uint32())
	metaBytes := r.take(metaLen)
	if r.failed {
		return nil, corrupt("truncated metadata sidecar")
	}
	if r.rest() != 0 {
		return nil, corrupt("trailing bytes after metadata sidecar")
	}

	var meta snapshotMeta
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, corrupt("metadata sidecar is not valid JSON")
	}

	return &driven.Snapshot{
		Dimension: dimension,
		Metric:    m,
		Entries:   entries,
		Documents: meta.Documents,
		Chunks:    meta.Chunks,
	}, nil
}

func corrupt(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrIndexCorrupt, reason)
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// reader is a bounds-checked cursor; any out-of-range read sets failed
// instead of panicking, so corrupt files degrade to a typed error.
type reader struct {
	data   []byte
	off    int
	failed bool
}

func (r *reader) take(n int) []byte {
	if r.failed || n < 0 || r.off+n > len(r.data) {
		r.failed = true
		return make([]byte, n)
	}
	out := r.data[r.off : r.off+n]
	r.off += n
	return out
}

func (r *reader) uint16() uint16 {
	return binary.LittleEndian.Uint16(r.take(2))
}

func (r *reader) uint32() uint32 {
	return binary.LittleEndian.Uint32(r.take(4))
}

func (r *reader) rest() int {
	return len(r.data) - r.off
}
