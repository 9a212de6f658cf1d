package candidate

import (
	"sort"

	"github.com/rahidz/oeismatcher/internal/store"
)

// Bucket is the union of the invariant-filtered candidate pool and the
// similarity-ranked pool, deduplicated by id and trimmed to max_records —
// the pool every downstream search stage shares.
// Similarity ranking itself lives in internal/similarity; callers compute
// both pools first and pass them in here, keeping this package free of a
// dependency on the ranker.
type Bucket struct {
	ExactIDs   []string
	SimilarIDs []string
	Records    []store.Record
}

// BuildBucket unions base (the invariant/prefix candidate pool) with
// similar (the similarity-ranked pool, in rank order), prioritizing
// similarity-picked records, then sorts the remainder by
// |length-queryLen| ascending, and truncates to maxRecords (0 = no cap).
func BuildBucket(base []store.Record, similar []store.Record, queryLen int, maxRecords int) Bucket {
	var allRecords []store.Record
	seen := make(map[string]bool, len(base)+len(similar))
	addUnique := func(r store.Record) {
		if !seen[r.ID] {
			seen[r.ID] = true
			allRecords = append(allRecords, r)
		}
	}

	exactIDs := make([]string, len(base))
	for i, r := range base {
		exactIDs[i] = r.ID
		addUnique(r)
	}
	simIDs := make([]string, len(similar))
	simOrder := make(map[string]int, len(similar))
	for i, r := range similar {
		simIDs[i] = r.ID
		if _, ok := simOrder[r.ID]; !ok {
			simOrder[r.ID] = i
		}
		addUnique(r)
	}

	var priorityRecs, otherRecs []store.Record
	for _, r := range allRecords {
		if _, ok := simOrder[r.ID]; ok {
			priorityRecs = append(priorityRecs, r)
		} else {
			otherRecs = append(otherRecs, r)
		}
	}
	sortBySimOrder(priorityRecs, simOrder)
	sortByLengthDistance(otherRecs, queryLen)

	records := append(priorityRecs, otherRecs...)
	if maxRecords > 0 && len(records) > maxRecords {
		records = records[:maxRecords]
	}

	chosen := make(map[string]bool, len(records))
	for _, r := range records {
		chosen[r.ID] = true
	}
	return Bucket{
		ExactIDs:   filterChosen(exactIDs, chosen),
		SimilarIDs: filterChosen(simIDs, chosen),
		Records:    records,
	}
}

// Fill tops up the bucket from a full scan until it reaches maxRecords,
// skipping anything already present and anything shorter than
// minMatchLength.
func (b *Bucket) Fill(st store.IndexStore, minMatchLength, maxRecords int) error {
	if maxRecords <= 0 || len(b.Records) >= maxRecords {
		return nil
	}
	it, err := st.IterAll()
	if err != nil {
		return err
	}
	defer it.Close()

	seen := make(map[string]bool, len(b.Records))
	for _, r := range b.Records {
		seen[r.ID] = true
	}
	for it.Next() {
		r := it.Record()
		if seen[r.ID] || r.Length < minMatchLength {
			continue
		}
		b.Records = append(b.Records, r)
		seen[r.ID] = true
		if len(b.Records) >= maxRecords {
			break
		}
	}
	return it.Err()
}

func sortBySimOrder(records []store.Record, order map[string]int) {
	sort.SliceStable(records, func(i, j int) bool {
		return order[records[i].ID] < order[records[j].ID]
	})
}

func filterChosen(ids []string, chosen map[string]bool) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if chosen[id] {
			out = append(out, id)
		}
	}
	return out
}
