//go:build ignore

// Package main generates a synthetic OEIS-style corpus for benchmarking.
// It writes `stripped` and `names` files in the real dump format so
// `oeismatch build-index` and the search benchmarks can run without the
// 400k-sequence production dumps.
//
// Usage: go run scripts/generate-test-corpus.go -sequences 10000 -output testdata/bench
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/big"
	"math/rand"
	"os"
	"path/filepath"
)

var (
	numSequences = flag.Int("sequences", 10000, "Number of sequences to generate")
	outputDir    = flag.String("output", "testdata/bench", "Output directory")
	seed         = flag.Int64("seed", 42, "Random seed for reproducibility")
	maxTerms     = flag.Int("max-terms", 40, "Maximum terms per generated sequence (each gets at least half)")
)

// family generates the n-th term of one synthetic sequence family.
type family func(rng *rand.Rand, params []int64, n int) *big.Int

var families = []struct {
	name string
	gen  family
}{
	{"linear a(n) = %d*n + %d", func(_ *rand.Rand, p []int64, n int) *big.Int {
		return big.NewInt(p[0]*int64(n) + p[1])
	}},
	{"quadratic a(n) = %d*n^2 + %d", func(_ *rand.Rand, p []int64, n int) *big.Int {
		return big.NewInt(p[0]*int64(n)*int64(n) + p[1])
	}},
	{"geometric a(n) = %d * %d^n", func(_ *rand.Rand, p []int64, n int) *big.Int {
		base := big.NewInt(p[1])
		v := new(big.Int).Exp(base, big.NewInt(int64(n)), nil)
		return v.Mul(v, big.NewInt(p[0]))
	}},
	{"fibonacci-like seeded %d, %d", nil}, // handled specially, needs state
	{"alternating a(n) = (-1)^n * (%d*n + %d)", func(_ *rand.Rand, p []int64, n int) *big.Int {
		v := big.NewInt(p[0]*int64(n) + p[1])
		if n%2 == 1 {
			v.Neg(v)
		}
		return v
	}},
}

func generateTerms(rng *rand.Rand, famIdx int, params []int64, count int) []*big.Int {
	terms := make([]*big.Int, 0, count)

	if families[famIdx].gen == nil {
		// Fibonacci-like: a(n) = a(n-1) + a(n-2) from random seeds.
		a, b := big.NewInt(params[0]), big.NewInt(params[1])
		for i := 0; i < count; i++ {
			terms = append(terms, new(big.Int).Set(a))
			a, b = b, new(big.Int).Add(a, b)
		}
		return terms
	}

	for n := 0; n < count; n++ {
		terms = append(terms, families[famIdx].gen(rng, params, n))
	}
	return terms
}

func main() {
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}

	strippedPath := filepath.Join(*outputDir, "stripped")
	namesPath := filepath.Join(*outputDir, "names")

	stripped, err := os.Create(strippedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create: %v\n", err)
		os.Exit(1)
	}
	defer stripped.Close()
	names, err := os.Create(namesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create: %v\n", err)
		os.Exit(1)
	}
	defer names.Close()

	sw := bufio.NewWriter(stripped)
	nw := bufio.NewWriter(names)
	defer sw.Flush()
	defer nw.Flush()

	// Dump headers, as in the real files.
	fmt.Fprintln(sw, "# Synthetic OEIS-format corpus for benchmarks")
	fmt.Fprintln(nw, "# Synthetic OEIS-format corpus for benchmarks")

	for i := 0; i < *numSequences; i++ {
		id := fmt.Sprintf("A%06d", i+1)
		famIdx := rng.Intn(len(families))
		params := []int64{int64(rng.Intn(9) + 1), int64(rng.Intn(20) - 10)}
		count := *maxTerms/2 + rng.Intn(*maxTerms/2+1)

		terms := generateTerms(rng, famIdx, params, count)

		// stripped format: "A000045 ,0,1,1,2,3,5,"
		fmt.Fprintf(sw, "%s ,", id)
		for _, t := range terms {
			fmt.Fprintf(sw, "%s,", t.String())
		}
		fmt.Fprintln(sw)

		// names format: "A000045 Fibonacci numbers..."
		fmt.Fprintf(nw, "%s %s\n", id, fmt.Sprintf(families[famIdx].name, params[0], params[1]))
	}

	fmt.Printf("Generated %d sequences in %s\n", *numSequences, *outputDir)
	fmt.Printf("  %s\n  %s\n", strippedPath, namesPath)
	fmt.Println("Build an index with:")
	fmt.Printf("  OEISMATCH_DB_PATH=%s/oeis.db oeismatch build-index\n", *outputDir)
}
