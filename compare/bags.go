package compare

import "github.com/delph-in/gomrs/mrs"

// BagResult partitions two graph bags for scoring: graphs found in
// both (shared, paired first-match), and the leftovers on either side.
type BagResult struct {
	TestOnly []*mrs.Graph
	Shared   []*mrs.Graph
	GoldOnly []*mrs.Graph
}

// Counts returns the partition sizes (test-only, shared, gold-only).
func (r BagResult) Counts() (int, int, int) {
	return len(r.TestOnly), len(r.Shared), len(r.GoldOnly)
}

// CompareBags partitions a test bag against a gold bag. Each test
// graph is matched against the first remaining isomorphic gold graph;
// matched pairs are recorded once in Shared (the test-side graph).
// Quadratic in bag size times isomorphism cost, which is acceptable
// for evaluation-corpus sizes.
func CompareBags(test, gold []*mrs.Graph, opts *Options) (BagResult, error) {
	var res BagResult
	remaining := append([]*mrs.Graph(nil), gold...)

	for _, tg := range test {
		matched := -1
		for i, gg := range remaining {
			ok, err := Isomorphic(tg, gg, opts)
			if err != nil {
				return BagResult{}, err
			}
			if ok {
				matched = i
				break
			}
		}
		if matched >= 0 {
			res.Shared = append(res.Shared, tg)
			remaining = append(remaining[:matched], remaining[matched+1:]...)
		} else {
			res.TestOnly = append(res.TestOnly, tg)
		}
	}
	res.GoldOnly = remaining
	return res, nil
}
