// Package editdistance implements a prefix-aware edit distance over generic
// sequences, with incremental row extension for interactive use.
package editdistance

import "fmt"

// Op is an edit operation recorded for a DP cell.
type Op uint8

const (
	None Op = iota
	Hit
	Insert
	Delete
	// PrefixDelete is a free deletion past the end of an incomplete prefix.
	// It never appears in operation sequences returned to callers.
	PrefixDelete
	Substitute
)

func (op Op) String() string {
	switch op {
	case None:
		return "none"
	case Hit:
		return "hit"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case PrefixDelete:
		return "prefix-delete"
	case Substitute:
		return "substitute"
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Costs scores single edit operations between a reference item x and a typed
// item y. isComplete is false only for the last typed item when it is still
// being typed.
type Costs[T any] interface {
	HitCost(x, y T, isComplete bool) float64
	SubstitutionCost(x, y T, isComplete bool) float64
	DeletionCost(x T) float64
	InsertionCost(y T) float64
	IsHit(x, y T, isComplete bool) bool
}

// Matrix holds the (|X|+1) x (|Y|+1) cost table of a computation.
type Matrix struct {
	rows, cols int
	data       []float64
}

func newMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// At returns cost[i][j].
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.cols+j] }

func (m *Matrix) set(i, j int, v float64) { m.data[i*m.cols+j] = v }

// Rows returns |X|+1.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns |Y|+1.
func (m *Matrix) Cols() int { return m.cols }

// Compute fills the cost table aligning reference x against typed y and
// returns cost[|X|][|Y|].
func Compute[T any, C Costs[T]](c C, x, y []T, isLastItemComplete, usePrefixDelOp bool) (float64, *Matrix) {
	m := newMatrix(len(x)+1, len(y)+1)
	for i := 0; i <= len(x); i++ {
		for j := 0; j <= len(y); j++ {
			cost, _ := cell(c, x, y, m, usePrefixDelOp, j != len(y) || isLastItemComplete, i, j)
			m.set(i, j, cost)
		}
	}
	return m.At(len(x), len(y)), m
}

// Operations backtraces a table produced by Compute with the same arguments.
// Free prefix deletions are skipped.
func Operations[T any, C Costs[T]](c C, x, y []T, m *Matrix, isLastItemComplete, usePrefixDelOp bool) []Op {
	var ops []Op
	i, j := len(x), len(y)
	for i > 0 || j > 0 {
		_, op := cell(c, x, y, m, usePrefixDelOp, j != len(y) || isLastItemComplete, i, j)
		if op != PrefixDelete {
			ops = append(ops, op)
		}
		switch op {
		case Hit, Substitute:
			i--
			j--
		case Insert:
			j--
		default:
			i--
		}
	}
	reverse(ops)
	return ops
}

// cell evaluates one DP cell. Candidates are tried in the order diagonal, up,
// left; a later candidate only wins when strictly cheaper.
func cell[T any, C Costs[T]](c C, x, y []T, m *Matrix, usePrefixDelOp, isComplete bool, i, j int) (float64, Op) {
	switch {
	case i == 0 && j == 0:
		return 0, None
	case i == 0:
		return m.At(0, j-1) + c.InsertionCost(y[j-1]), Insert
	case j == 0:
		return m.At(i-1, 0) + c.DeletionCost(x[i-1]), Delete
	}

	xi, yj := x[i-1], y[j-1]
	var cost float64
	var op Op
	if c.IsHit(xi, yj, isComplete) {
		cost, op = m.At(i-1, j-1)+c.HitCost(xi, yj, isComplete), Hit
	} else {
		cost, op = m.At(i-1, j-1)+c.SubstitutionCost(xi, yj, isComplete), Substitute
	}

	delCost, delOp := c.DeletionCost(xi), Delete
	if usePrefixDelOp && j == len(y) {
		delCost, delOp = 0, PrefixDelete
	}
	if v := m.At(i-1, j) + delCost; v < cost {
		cost, op = v, delOp
	}
	if v := m.At(i, j-1) + c.InsertionCost(yj); v < cost {
		cost, op = v, Insert
	}
	return cost, op
}

func reverse(ops []Op) {
	for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}
}
