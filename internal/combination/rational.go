package combination

import "math/big"

func ratAbsExceedsBound(r *big.Rat, bound int64) bool {
	num := new(big.Int).Abs(r.Num())
	den := new(big.Int).Abs(r.Denom())
	b := big.NewInt(bound)
	return num.Cmp(b) > 0 || den.Cmp(b) > 0
}

func ratFromInt(v *big.Int) *big.Rat { return new(big.Rat).SetInt(v) }

// solveRational2 solves a*slice1[i] + b*slice2[i] = target[i] exactly over
// Q, trying each consecutive pair of rows for an invertible 2x2 system,
// then verifying the solution against every position. When no row pair
// yields a verified solution (e.g. one column is all zeros), each column is
// tried alone with the other coefficient set to zero.
func solveRational2(slice1, slice2, target []*big.Int) (a, b *big.Rat, ok bool) {
	n := len(target)
	if n < 2 {
		return nil, nil, false
	}
	for i := 0; i+1 < n; i++ {
		a1, b1, y1 := slice1[i], slice2[i], target[i]
		a2, b2, y2 := slice1[i+1], slice2[i+1], target[i+1]

		det := new(big.Int).Sub(new(big.Int).Mul(a1, b2), new(big.Int).Mul(a2, b1))
		if det.Sign() == 0 {
			continue
		}

		numA := new(big.Int).Sub(new(big.Int).Mul(y1, b2), new(big.Int).Mul(y2, b1))
		numB := new(big.Int).Sub(new(big.Int).Mul(a1, y2), new(big.Int).Mul(a2, y1))

		ra := new(big.Rat).SetFrac(numA, det)
		rb := new(big.Rat).SetFrac(numB, det)
		if ratAbsExceedsBound(ra, CoeffBound) || ratAbsExceedsBound(rb, CoeffBound) {
			continue
		}

		if verifyCombo2(slice1, slice2, target, ra, rb) {
			return ra, rb, true
		}
	}
	for col, s := range [][]*big.Int{slice1, slice2} {
		for i := range target {
			if s[i].Sign() == 0 {
				continue
			}
			r := new(big.Rat).SetFrac(target[i], s[i])
			ra, rb := r, new(big.Rat)
			if col == 1 {
				ra, rb = rb, ra
			}
			if !ratAbsExceedsBound(r, CoeffBound) && verifyCombo2(slice1, slice2, target, ra, rb) {
				return ra, rb, true
			}
			break
		}
	}
	return nil, nil, false
}

func verifyCombo2(slice1, slice2, target []*big.Int, a, b *big.Rat) bool {
	lhs := new(big.Rat)
	for i := range target {
		lhs.Mul(a, ratFromInt(slice1[i]))
		tmp := new(big.Rat).Mul(b, ratFromInt(slice2[i]))
		lhs.Add(lhs, tmp)
		if lhs.Cmp(ratFromInt(target[i])) != 0 {
			return false
		}
	}
	return true
}

// solveRational3 solves a 3x3 exact linear system via Cramer's rule over
// the first three rows that yield a nonzero determinant, then verifies
// across every position.
func solveRational3(colA, colB, colC, target []*big.Int) (a, b, c *big.Rat, ok bool) {
	n := len(target)
	if n < 3 {
		return nil, nil, nil, false
	}
	det3 := func(a1, b1, c1, a2, b2, c2, a3, b3, c3 *big.Int) *big.Int {
		t1 := new(big.Int).Mul(a1, new(big.Int).Sub(new(big.Int).Mul(b2, c3), new(big.Int).Mul(b3, c2)))
		t2 := new(big.Int).Mul(b1, new(big.Int).Sub(new(big.Int).Mul(a2, c3), new(big.Int).Mul(a3, c2)))
		t3 := new(big.Int).Mul(c1, new(big.Int).Sub(new(big.Int).Mul(a2, b3), new(big.Int).Mul(a3, b2)))
		return new(big.Int).Add(new(big.Int).Sub(t1, t2), t3)
	}

	for i := 0; i+2 < n; i++ {
		a1, b1, c1, y1 := colA[i], colB[i], colC[i], target[i]
		a2, b2, c2, y2 := colA[i+1], colB[i+1], colC[i+1], target[i+1]
		a3, b3, c3, y3 := colA[i+2], colB[i+2], colC[i+2], target[i+2]

		det := det3(a1, b1, c1, a2, b2, c2, a3, b3, c3)
		if det.Sign() == 0 {
			continue
		}
		detA := det3(y1, b1, c1, y2, b2, c2, y3, b3, c3)
		detB := det3(a1, y1, c1, a2, y2, c2, a3, y3, c3)
		detC := det3(a1, b1, y1, a2, b2, y2, a3, b3, y3)

		ra := new(big.Rat).SetFrac(detA, det)
		rb := new(big.Rat).SetFrac(detB, det)
		rc := new(big.Rat).SetFrac(detC, det)
		if ratAbsExceedsBound(ra, CoeffBound) || ratAbsExceedsBound(rb, CoeffBound) || ratAbsExceedsBound(rc, CoeffBound) {
			continue
		}
		if verifyCombo3(colA, colB, colC, target, ra, rb, rc) {
			return ra, rb, rc, true
		}
	}
	return nil, nil, nil, false
}

func verifyCombo3(colA, colB, colC, target []*big.Int, a, b, c *big.Rat) bool {
	lhs := new(big.Rat)
	for i := range target {
		lhs.Mul(a, ratFromInt(colA[i]))
		tmp1 := new(big.Rat).Mul(b, ratFromInt(colB[i]))
		tmp2 := new(big.Rat).Mul(c, ratFromInt(colC[i]))
		lhs.Add(lhs, tmp1)
		lhs.Add(lhs, tmp2)
		if lhs.Cmp(ratFromInt(target[i])) != 0 {
			return false
		}
	}
	return true
}
