package mcp

// AnalyzeInput defines the input schema for the analyze_sequence tool.
type AnalyzeInput struct {
	Query       string `json:"query" jsonschema:"the integer sequence to identify, comma- or space-separated; ? or * for a wildcard term"`
	Depth       int    `json:"depth,omitempty" jsonschema:"transform-chain search depth, default 1 (0 also means 1)"`
	Similarity  int    `json:"similarity,omitempty" jsonschema:"number of similarity-ranked near matches, 0 disables"`
	Combos      int    `json:"combos,omitempty" jsonschema:"maximum 2-sequence combinations, 0 disables"`
	Triples     int    `json:"triples,omitempty" jsonschema:"maximum 3-sequence combinations, 0 disables"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum exact matches and transform matches, 0 uses the configured limits.max_results (default 25)"`
	Subsequence bool   `json:"subsequence,omitempty" jsonschema:"also match the query inside sequences, not only as a prefix"`
}

// MatchExactInput defines the input schema for the match_exact tool.
type MatchExactInput struct {
	Query       string `json:"query" jsonschema:"the integer sequence to match exactly; ? or * for a wildcard term"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum number of matches, 0 uses the configured limits.max_results (default 25)"`
	Subsequence bool   `json:"subsequence,omitempty" jsonschema:"also match the query inside sequences, not only as a prefix"`
}

// SearchTransformsInput defines the input schema for the search_transforms tool.
type SearchTransformsInput struct {
	Query string `json:"query" jsonschema:"the integer sequence to transform and match (no wildcards)"`
	Depth int    `json:"depth,omitempty" jsonschema:"maximum transform-chain length, default 1, max 2"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of matches, 0 uses the configured limits.max_results (default 25)"`
}

// SearchCombinationsInput defines the input schema for the search_combinations tool.
type SearchCombinationsInput struct {
	Query   string `json:"query" jsonschema:"the integer sequence to decompose (no wildcards)"`
	Combos  int    `json:"combos,omitempty" jsonschema:"maximum 2-sequence combinations, default 5"`
	Triples int    `json:"triples,omitempty" jsonschema:"maximum 3-sequence combinations, 0 disables"`
}

// IndexStatusInput defines the input schema for the index_status tool (no parameters).
type IndexStatusInput struct{}

// AnalyzeOutput is the structured result of the four analysis tools: match
// counts plus a markdown summary of the pipeline result.
type AnalyzeOutput struct {
	Exact        int    `json:"exact_count" jsonschema:"number of exact matches"`
	Transform    int    `json:"transform_count" jsonschema:"number of transform-chain matches"`
	Combinations int    `json:"combination_count" jsonschema:"number of combination matches including triples"`
	Summary      string `json:"summary" jsonschema:"markdown rendering of all matches"`
}

// IndexStatusOutput is the structured result of index_status.
type IndexStatusOutput struct {
	Ready         bool   `json:"ready" jsonschema:"true when the index is built and readable"`
	IndexPath     string `json:"index_path,omitempty" jsonschema:"path of the SQLite index file"`
	SequenceCount int    `json:"sequence_count" jsonschema:"number of sequences in the index"`
	MinLength     int    `json:"min_length,omitempty" jsonschema:"shortest stored sequence"`
	MaxLength     int    `json:"max_length,omitempty" jsonschema:"longest stored sequence"`
	Summary       string `json:"summary" jsonschema:"one-line human-readable status"`
}
