// Package vector provides the flat inner-product index a bundle is
// searched with, plus similarity helpers for unit-normalized vectors.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"
)

// DimensionError reports an embedding whose length disagrees with the
// index dimension. It is request-fatal: a mismatched vector is never
// truncated or padded.
type DimensionError struct {
	Got  int
	Want int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: got %d, expected %d", e.Got, e.Want)
}

// parallelMinRows is the candidate count above which Scores splits the
// scan across goroutines. Scan order never affects result ordering; the
// output slice is positional.
const parallelMinRows = 4096

// FlatIndex is an exact inner-product index over a fixed set of rows.
// Row order is insertion order and corresponds one-to-one with a bundle's
// id list. Read-only after loading; safe for concurrent searches.
type FlatIndex struct {
	dim  int
	rows [][]float32
}

// NewFlatIndex creates an empty index with the given dimension.
func NewFlatIndex(dim int) (*FlatIndex, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimension must be positive")
	}
	return &FlatIndex{dim: dim}, nil
}

// Add appends rows in order. The first mismatched row fails the whole
// call with a DimensionError.
func (x *FlatIndex) Add(rows [][]float32) error {
	for _, row := range rows {
		if len(row) != x.dim {
			return &DimensionError{Got: len(row), Want: x.dim}
		}
	}
	for _, row := range rows {
		vec := make([]float32, x.dim)
		copy(vec, row)
		x.rows = append(x.rows, vec)
	}
	return nil
}

// Dim returns the index dimension.
func (x *FlatIndex) Dim() int { return x.dim }

// Len returns the number of rows.
func (x *FlatIndex) Len() int { return len(x.rows) }

// Row returns the vector at row i. The returned slice must not be modified.
func (x *FlatIndex) Row(i int) []float32 { return x.rows[i] }

// Scores returns the inner product between query and each candidate row,
// positionally aligned with candidates. For unit-normalized vectors this
// is cosine similarity. Large candidate sets are scanned in parallel.
func (x *FlatIndex) Scores(query []float32, candidates []int) ([]float64, error) {
	if len(query) != x.dim {
		return nil, &DimensionError{Got: len(query), Want: x.dim}
	}
	for _, c := range candidates {
		if c < 0 || c >= len(x.rows) {
			return nil, fmt.Errorf("candidate row %d out of range [0,%d)", c, len(x.rows))
		}
	}
	out := make([]float64, len(candidates))
	if len(candidates) < parallelMinRows {
		for i, c := range candidates {
			out[i] = InnerProduct(query, x.rows[c])
		}
		return out, nil
	}
	workers := 4
	chunk := (len(candidates) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(candidates); start += chunk {
		end := start + chunk
		if end > len(candidates) {
			end = len(candidates)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				out[i] = InnerProduct(query, x.rows[candidates[i]])
			}
		}(start, end)
	}
	wg.Wait()
	return out, nil
}

// Save writes the index to path. Format: dim (uint32), row count (uint32),
// then rows as little-endian float32, row-major. The payload after the
// header is byte-identical to the bundle's embedding matrix, so the index
// is rebuildable from it.
func (x *FlatIndex) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(x.dim)); err != nil {
		return fmt.Errorf("write dimension: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(x.rows))); err != nil {
		return fmt.Errorf("write row count: %w", err)
	}
	for _, row := range x.rows {
		if _, err := f.Write(Float32SliceToBytes(row)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}

// LoadFlatIndex reads an index written by Save.
func LoadFlatIndex(path string) (*FlatIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("read dimension: %w", err)
	}
	if dim == 0 {
		return nil, fmt.Errorf("index file has zero dimension")
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read row count: %w", err)
	}
	x := &FlatIndex{dim: int(dim), rows: make([][]float32, 0, n)}
	buf := make([]byte, int(dim)*4)
	for i := uint32(0); i < n; i++ {
		if _, err := readFull(f, buf); err != nil {
			return nil, fmt.Errorf("read row %d: %w", i, err)
		}
		x.rows = append(x.rows, BytesToFloat32Slice(buf))
	}
	return x, nil
}

func readFull(f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Float32SliceToBytes encodes a vector as little-endian float32 bytes.
func Float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

// BytesToFloat32Slice decodes little-endian float32 bytes into a vector.
func BytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
