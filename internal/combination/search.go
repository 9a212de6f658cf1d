package combination

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/rahidz/oeismatcher/internal/store"
)

// SearchTwo brute-forces integer (or exact rational) linear combinations
// of two candidate sequences that reproduce the query prefix, under
// per-component transforms and shifts.
func SearchTwo(query []*big.Int, minMatchLength int, candidates []store.Record, opts Options) []Match {
	qlen := len(query)
	if qlen < minMatchLength || qlen == 0 {
		return nil
	}
	if !opts.UseRational && len(opts.Coeffs) == 0 {
		return nil
	}

	records := sortedByID(candidates)
	if opts.MaxCandidates > 0 && len(records) > opts.MaxCandidates {
		records = records[:opts.MaxCandidates]
	}

	transforms := opts.componentTransforms()
	shifts := opts.shiftValues()

	var results []Match
	seen := make(map[string]bool)
	checks := 0
	start := time.Now()

	tripped := func() bool {
		if opts.MaxTimeS > 0 && time.Since(start).Seconds() > opts.MaxTimeS {
			return true
		}
		return false
	}

	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			rec1, rec2 := records[i], records[j]
			for _, t1 := range transforms {
				seq1 := t1.Apply(rec1.Terms)
				for _, s1 := range shifts {
					for _, t2 := range transforms {
						seq2 := t2.Apply(rec2.Terms)
						for _, s2 := range shifts {
							align := alignedSlices(query, [][]*big.Int{seq1, seq2}, []int{s1, s2}, minMatchLength)
							if align == nil {
								continue
							}

							var coeffPairs [][2]*big.Rat
							if opts.UseRational {
								if a, b, ok := solveRational2(align.sequences[0], align.sequences[1], align.query); ok {
									coeffPairs = [][2]*big.Rat{{a, b}}
								}
							} else {
								for _, ca := range opts.Coeffs {
									for _, cb := range opts.Coeffs {
										coeffPairs = append(coeffPairs, [2]*big.Rat{big.NewRat(ca, 1), big.NewRat(cb, 1)})
									}
								}
							}

							for _, pair := range coeffPairs {
								if tripped() {
									return sortAndTrim(results, opts.Limit)
								}
								checks++
								if opts.MaxChecks > 0 && checks > opts.MaxChecks {
									return sortAndTrim(results, opts.Limit)
								}
								if opts.MaxCombinations > 0 && checks > opts.MaxCombinations {
									return sortAndTrim(results, opts.Limit)
								}
								a, b := pair[0], pair[1]
								if !opts.UseRational && a.Sign() == 0 && b.Sign() == 0 {
									continue
								}
								if !comboMatches2(align.sequences[0], align.sequences[1], align.query, a, b) {
									continue
								}
								key := comboKey([]string{rec1.ID, rec2.ID}, []string{t1.Name, t2.Name}, []*big.Rat{a, b}, []int{s1, s2})
								if seen[key] {
									continue
								}
								seen[key] = true

								weights := []float64{t1.Weight, t2.Weight}
								pop := popularityBonus([]store.Record{rec1, rec2})
								comp := complexity([]*big.Rat{a, b}, []int{s1, s2}, weights)
								if opts.HasMaxComplexity && comp > opts.MaxComplexity {
									continue
								}
								sc := score(align.length, []*big.Rat{a, b}, []int{s1, s2}, weights, pop)
								if opts.HasMinScore && sc < opts.MinScore {
									continue
								}

								ids := []string{rec1.ID, rec2.ID}
								names := []string{t1.Name, t2.Name}
								coeffs := []*big.Rat{a, b}
								sh := []int{s1, s2}
								m := Match{
									IDs:            ids,
									Names:          []string{rec1.Name, rec2.Name},
									Coeffs:         coeffs,
									Shifts:         sh,
									TransformNames: names,
									Length:         align.length,
									Score:          sc,
									Expression:     formatExpression(ids, coeffs, sh, names),
									Latex:          formatLatex(ids, coeffs, sh, names),
								}
								if opts.SnippetLen != 0 {
									snip := opts.SnippetLen
									if snip > align.length || snip < 0 {
										snip = align.length
									}
									m.ComponentTerms = [][]*big.Int{
										cloneSnippet(align.sequences[0], snip),
										cloneSnippet(align.sequences[1], snip),
									}
									m.CombinedTerms = cloneSnippet(align.query, snip)
								}
								results = append(results, m)
							}
						}
					}
				}
			}
		}
	}
	return sortAndTrim(results, opts.Limit)
}

// SearchThree is SearchTwo's 3-sequence counterpart.
func SearchThree(query []*big.Int, minMatchLength int, candidates []store.Record, opts Options) []Match {
	qlen := len(query)
	if qlen < minMatchLength || qlen == 0 {
		return nil
	}
	if !opts.UseRational && len(opts.Coeffs) == 0 {
		return nil
	}

	records := sortedByID(candidates)
	if opts.MaxCandidates > 0 && len(records) > opts.MaxCandidates {
		records = records[:opts.MaxCandidates]
	}

	transforms := opts.componentTransforms()
	shifts := opts.shiftValues()

	var results []Match
	seen := make(map[string]bool)
	checks := 0
	start := time.Now()

	tripped := func() bool {
		if opts.MaxTimeS > 0 && time.Since(start).Seconds() > opts.MaxTimeS {
			return true
		}
		return false
	}

	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			for k := j + 1; k < len(records); k++ {
				rec1, rec2, rec3 := records[i], records[j], records[k]
				for _, t1 := range transforms {
					seq1 := t1.Apply(rec1.Terms)
					for _, s1 := range shifts {
						for _, t2 := range transforms {
							seq2 := t2.Apply(rec2.Terms)
							for _, s2 := range shifts {
								for _, t3 := range transforms {
									seq3 := t3.Apply(rec3.Terms)
									for _, s3 := range shifts {
										align := alignedSlices(query, [][]*big.Int{seq1, seq2, seq3}, []int{s1, s2, s3}, minMatchLength)
										if align == nil {
											continue
										}

										var triples [][3]*big.Rat
										if opts.UseRational {
											if a, b, c, ok := solveRational3(align.sequences[0], align.sequences[1], align.sequences[2], align.query); ok {
												triples = [][3]*big.Rat{{a, b, c}}
											}
										} else {
											for _, ca := range opts.Coeffs {
												for _, cb := range opts.Coeffs {
													for _, cc := range opts.Coeffs {
														triples = append(triples, [3]*big.Rat{big.NewRat(ca, 1), big.NewRat(cb, 1), big.NewRat(cc, 1)})
													}
												}
											}
										}

										for _, triple := range triples {
											if tripped() {
												return sortAndTrim(results, opts.Limit)
											}
											checks++
											if opts.MaxChecks > 0 && checks > opts.MaxChecks {
												return sortAndTrim(results, opts.Limit)
											}
											if opts.MaxCombinations > 0 && checks > opts.MaxCombinations {
												return sortAndTrim(results, opts.Limit)
											}
											a, b, c := triple[0], triple[1], triple[2]
											if !opts.UseRational && a.Sign() == 0 && b.Sign() == 0 && c.Sign() == 0 {
												continue
											}
											if !comboMatches3(align.sequences[0], align.sequences[1], align.sequences[2], align.query, a, b, c) {
												continue
											}
											key := comboKey(
												[]string{rec1.ID, rec2.ID, rec3.ID},
												[]string{t1.Name, t2.Name, t3.Name},
												[]*big.Rat{a, b, c},
												[]int{s1, s2, s3},
											)
											if seen[key] {
												continue
											}
											seen[key] = true

											weights := []float64{t1.Weight, t2.Weight, t3.Weight}
											pop := popularityBonus([]store.Record{rec1, rec2, rec3})
											coeffs := []*big.Rat{a, b, c}
											sh := []int{s1, s2, s3}
											comp := complexity(coeffs, sh, weights)
											if opts.HasMaxComplexity && comp > opts.MaxComplexity {
												continue
											}
											sc := score(align.length, coeffs, sh, weights, pop)
											if opts.HasMinScore && sc < opts.MinScore {
												continue
											}

											ids := []string{rec1.ID, rec2.ID, rec3.ID}
											names := []string{t1.Name, t2.Name, t3.Name}
											m := Match{
												IDs:            ids,
												Names:          []string{rec1.Name, rec2.Name, rec3.Name},
												Coeffs:         coeffs,
												Shifts:         sh,
												TransformNames: names,
												Length:         align.length,
												Score:          sc,
												Expression:     formatExpression(ids, coeffs, sh, names),
												Latex:          formatLatex(ids, coeffs, sh, names),
											}
											if opts.SnippetLen != 0 {
												snip := opts.SnippetLen
												if snip > align.length || snip < 0 {
													snip = align.length
												}
												m.ComponentTerms = [][]*big.Int{
													cloneSnippet(align.sequences[0], snip),
													cloneSnippet(align.sequences[1], snip),
													cloneSnippet(align.sequences[2], snip),
												}
												m.CombinedTerms = cloneSnippet(align.query, snip)
											}
											results = append(results, m)
										}
									}
								}
							}
						}
					}
				}
			}
		}
	}
	return sortAndTrim(results, opts.Limit)
}

func sortedByID(records []store.Record) []store.Record {
	out := make([]store.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func comboMatches2(slice1, slice2, target []*big.Int, a, b *big.Rat) bool {
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

func comboMatches3(slice1, slice2, slice3, target []*big.Int, a, b, c *big.Rat) bool {
	lhs := new(big.Rat)
	for i := range target {
		lhs.Mul(a, ratFromInt(slice1[i]))
		tmp1 := new(big.Rat).Mul(b, ratFromInt(slice2[i]))
		tmp2 := new(big.Rat).Mul(c, ratFromInt(slice3[i]))
		lhs.Add(lhs, tmp1)
		lhs.Add(lhs, tmp2)
		if lhs.Cmp(ratFromInt(target[i])) != 0 {
			return false
		}
	}
	return true
}

func comboKey(ids, names []string, coeffs []*big.Rat, shifts []int) string {
	key := ""
	for _, id := range ids {
		key += id + "|"
	}
	for _, n := range names {
		key += n + "|"
	}
	for _, c := range coeffs {
		key += c.RatString() + "|"
	}
	for _, s := range shifts {
		key += fmt.Sprintf("%d", s) + "|"
	}
	return key
}

func cloneSnippet(seq []*big.Int, n int) []*big.Int {
	if n > len(seq) {
		n = len(seq)
	}
	out := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		out[i] = new(big.Int).Set(seq[i])
	}
	return out
}
