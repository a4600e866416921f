package editdistance

import "fmt"

// ExtendFirstRow appends the cells of the virtual row that precedes every
// reference item: each newly typed item can only be inserted.
// cur must already hold cell 0.
func ExtendFirstRow[T any, C Costs[T]](c C, cur []float64, yIncr []T) ([]float64, []Op) {
	if len(cur) == 0 {
		panic("editdistance: first row has no origin cell")
	}
	ops := make([]Op, 0, len(yIncr))
	for _, y := range yIncr {
		cur = append(cur, cur[len(cur)-1]+c.InsertionCost(y))
		ops = append(ops, Insert)
	}
	return cur, ops
}

// ExtendRow appends the cells of the row for reference item x that cover the
// newly typed items yIncr. prev is the row above, already extended to the
// full prefix length, so len(prev) must equal len(cur)+len(yIncr). Cells
// already present in cur are left untouched.
func ExtendRow[T any, C Costs[T]](c C, cur, prev []float64, x T, yIncr []T, isLastItemComplete bool) ([]float64, []Op) {
	start := len(cur)
	if start == 0 {
		panic("editdistance: row has no origin cell")
	}
	if len(prev) != start+len(yIncr) {
		panic(fmt.Sprintf("editdistance: previous row has %d cells, want %d", len(prev), start+len(yIncr)))
	}
	last := len(prev) - 1
	ops := make([]Op, 0, len(yIncr))
	for k, y := range yIncr {
		j := start + k
		isComplete := j != last || isLastItemComplete

		var cost float64
		var op Op
		if c.IsHit(x, y, isComplete) {
			cost, op = prev[j-1]+c.HitCost(x, y, isComplete), Hit
		} else {
			cost, op = prev[j-1]+c.SubstitutionCost(x, y, isComplete), Substitute
		}
		if v := prev[j] + c.DeletionCost(x); v < cost {
			cost, op = v, Delete
		}
		if v := cur[j-1] + c.InsertionCost(y); v < cost {
			cost, op = v, Insert
		}
		cur = append(cur, cost)
		ops = append(ops, op)
	}
	return cur, ops
}
