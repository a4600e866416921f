package editdistance

// CharCosts are flat per-character costs with exact-match hits.
type CharCosts struct {
	Hit          float64
	Insertion    float64
	Substitution float64
	Deletion     float64
}

func (c CharCosts) HitCost(_, _ rune, _ bool) float64          { return c.Hit }
func (c CharCosts) SubstitutionCost(_, _ rune, _ bool) float64 { return c.Substitution }
func (c CharCosts) DeletionCost(_ rune) float64                { return c.Deletion }
func (c CharCosts) InsertionCost(_ rune) float64               { return c.Insertion }
func (c CharCosts) IsHit(x, y rune, _ bool) bool               { return x == y }

// ComputePrefix aligns the characters of reference word x against typed word
// y and returns the cost with its operation sequence.
func (c CharCosts) ComputePrefix(x, y string, isLastItemComplete, usePrefixDelOp bool) (float64, []Op) {
	xr, yr := []rune(x), []rune(y)
	dist, m := Compute(c, xr, yr, isLastItemComplete, usePrefixDelOp)
	return dist, Operations(c, xr, yr, m, isLastItemComplete, usePrefixDelOp)
}

// weigh converts an operation sequence into the weighted sum of its
// hit, insertion, substitution and deletion counts.
func (c CharCosts) weigh(ops []Op) float64 {
	var hits, ins, subs, dels int
	for _, op := range ops {
		switch op {
		case Hit:
			hits++
		case Insert:
			ins++
		case Substitute:
			subs++
		case Delete:
			dels++
		}
	}
	return c.Hit*float64(hits) + c.Insertion*float64(ins) + c.Substitution*float64(subs) + c.Deletion*float64(dels)
}
