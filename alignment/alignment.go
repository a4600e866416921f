// Package alignment holds the word-alignment primitives shared by the word
// graph and translation results.
package alignment

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Range is a half-open interval [Start, End) over token positions.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of positions covered.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether i lies in the range.
func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

func (r Range) String() string { return fmt.Sprintf("[%d, %d)", r.Start, r.End) }

// Matrix is a |source| x |target| boolean word alignment. Row i is source
// word i, column j is target word j.
type Matrix struct {
	rows, cols int
	cells      []bool
}

// NewMatrix returns an empty alignment of the given shape.
func NewMatrix(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("alignment: invalid shape %dx%d", rows, cols))
	}
	return &Matrix{rows: rows, cols: cols, cells: make([]bool, rows*cols)}
}

// FromPairs builds an alignment from (source, target) index pairs.
func FromPairs(rows, cols int, pairs [][2]int) (*Matrix, error) {
	m := NewMatrix(rows, cols)
	for _, p := range pairs {
		if p[0] < 0 || p[0] >= rows || p[1] < 0 || p[1] >= cols {
			return nil, fmt.Errorf("alignment: pair %v outside %dx%d", p, rows, cols)
		}
		m.Set(p[0], p[1], true)
	}
	return m, nil
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// Get reports whether source word i is aligned to target word j.
func (m *Matrix) Get(i, j int) bool { return m.cells[i*m.cols+j] }

// Set marks or clears the link between source word i and target word j.
func (m *Matrix) Set(i, j int, v bool) { m.cells[i*m.cols+j] = v }

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{rows: m.rows, cols: m.cols, cells: make([]bool, len(m.cells))}
	copy(c.cells, m.cells)
	return c
}

// IsColumnAligned reports whether target word j has any source link.
func (m *Matrix) IsColumnAligned(j int) bool {
	for i := 0; i < m.rows; i++ {
		if m.Get(i, j) {
			return true
		}
	}
	return false
}

// ColumnAlignedIndices returns the source words aligned to target word j.
func (m *Matrix) ColumnAlignedIndices(j int) []int {
	var out []int
	for i := 0; i < m.rows; i++ {
		if m.Get(i, j) {
			out = append(out, i)
		}
	}
	return out
}

// RowAlignedIndices returns the target words aligned to source word i.
func (m *Matrix) RowAlignedIndices(i int) []int {
	var out []int
	for j := 0; j < m.cols; j++ {
		if m.Get(i, j) {
			out = append(out, j)
		}
	}
	return out
}

// Pairs lists every link as a (source, target) pair in row-major order.
func (m *Matrix) Pairs() [][2]int {
	var out [][2]int
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if m.Get(i, j) {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

// Equal reports whether both matrices have the same shape and links.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for k := range m.cells {
		if m.cells[k] != o.cells[k] {
			return false
		}
	}
	return true
}

// Giza renders the alignment in GIZA++ format: the target sentence on the
// first line, then every source word (led by NULL for unaligned targets)
// followed by the 1-based target positions it links to.
func (m *Matrix) Giza(source, target []string) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(target, " "))
	sb.WriteByte('\n')

	group := func(word string, cols []int) {
		sb.WriteString(word)
		sb.WriteString(" ({ ")
		for _, j := range cols {
			sb.WriteString(strconv.Itoa(j + 1))
			sb.WriteByte(' ')
		}
		sb.WriteString("})")
	}

	var unaligned []int
	for j := 0; j < m.cols; j++ {
		if !m.IsColumnAligned(j) {
			unaligned = append(unaligned, j)
		}
	}
	group("NULL", unaligned)
	for i := 0; i < m.rows; i++ {
		word := ""
		if i < len(source) {
			word = source[i]
		}
		sb.WriteByte(' ')
		group(word, m.RowAlignedIndices(i))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func (m *Matrix) String() string {
	var sb strings.Builder
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if m.Get(i, j) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		if i < m.rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

type matrixJSON struct {
	Rows  int      `json:"rows"`
	Cols  int      `json:"cols"`
	Pairs [][2]int `json:"pairs"`
}

// MarshalJSON encodes the matrix as its shape plus the list of links.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	pairs := m.Pairs()
	if pairs == nil {
		pairs = [][2]int{}
	}
	return json.Marshal(matrixJSON{Rows: m.rows, Cols: m.cols, Pairs: pairs})
}

func (m *Matrix) UnmarshalJSON(data []byte) error {
	var raw matrixJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Rows < 0 || raw.Cols < 0 {
		return fmt.Errorf("alignment: invalid shape %dx%d", raw.Rows, raw.Cols)
	}
	dec, err := FromPairs(raw.Rows, raw.Cols, raw.Pairs)
	if err != nil {
		return err
	}
	*m = *dec
	return nil
}
