package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/san-kum/turb2d/internal/dynamo"
)

// Key layout:
//
//	snap/<name>/<iteration:%012d>  → frame (header + little-endian float64 values)
const snapPrefix = "snap/"

// ErrNoFrames is returned when a snapshot series has no stored frames.
var ErrNoFrames = errors.New("storage: no snapshot frames")

// Frame is one stored field snapshot.
type Frame struct {
	Name      string
	Time      float64
	Iteration int
	Size      int
	Values    []float64
}

// At returns the value at grid point (i, j).
func (f *Frame) At(i, j int) float64 { return f.Values[i*f.Size+j] }

// Snapshots is a LevelDB store of field snapshots.
type Snapshots struct {
	db *leveldb.DB
}

func OpenSnapshots(path string) (*Snapshots, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db %s: %w", path, err)
	}
	return &Snapshots{db: db}, nil
}

func (s *Snapshots) Close() error { return s.db.Close() }

func snapKey(name string, iteration int) []byte {
	return []byte(fmt.Sprintf("%s%s/%012d", snapPrefix, name, iteration))
}

// Put stores a field sample.
func (s *Snapshots) Put(smp dynamo.Sample) error {
	if !smp.IsField() || len(smp.Values) != smp.Size*smp.Size {
		return fmt.Errorf("%w: sample %s has %d values for size %d", dynamo.ErrDimensionMismatch, smp.Name, len(smp.Values), smp.Size)
	}

	buf := new(bytes.Buffer)
	buf.Grow(24 + 8*len(smp.Values))
	header := []any{smp.Time, int64(smp.Iteration), int64(smp.Size)}
	for _, v := range header {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(buf, binary.LittleEndian, smp.Values); err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	batch.Put(snapKey(smp.Name, smp.Iteration), buf.Bytes())
	return s.db.Write(batch, nil)
}

func decodeFrame(name string, data []byte) (*Frame, error) {
	r := bytes.NewReader(data)
	var (
		t        float64
		it, size int64
	)
	for _, v := range []any{&t, &it, &size} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("decode frame header: %w", err)
		}
	}
	if size < 0 || int64(r.Len()) != 8*size*size {
		return nil, fmt.Errorf("decode frame: %d bytes for size %d", r.Len(), size)
	}

	values := make([]float64, size*size)
	if err := binary.Read(r, binary.LittleEndian, values); err != nil {
		return nil, fmt.Errorf("decode frame values: %w", err)
	}
	return &Frame{Name: name, Time: t, Iteration: int(it), Size: int(size), Values: values}, nil
}

// Frames returns every frame of the named field in iteration order.
func (s *Snapshots) Frames(name string) ([]*Frame, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(snapPrefix+name+"/")), nil)
	defer iter.Release()

	var frames []*Frame
	for iter.Next() {
		f, err := decodeFrame(name, iter.Value())
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, iter.Error()
}

// Last returns the most recent frame of the named field.
func (s *Snapshots) Last(name string) (*Frame, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(snapPrefix+name+"/")), nil)
	defer iter.Release()

	if !iter.Last() {
		if err := iter.Error(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrNoFrames, name)
	}
	return decodeFrame(name, iter.Value())
}

// Names lists the stored field names.
func (s *Snapshots) Names() ([]string, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(snapPrefix)), nil)
	defer iter.Release()

	seen := make(map[string]bool)
	for iter.Next() {
		key := string(iter.Key()[len(snapPrefix):])
		if i := strings.LastIndexByte(key, '/'); i > 0 {
			seen[key[:i]] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, iter.Error()
}

// Range returns the smallest and largest value over all frames of a field.
func Range(frames []*Frame) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, f := range frames {
		for _, v := range f.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}
