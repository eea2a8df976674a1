package interval

import (
	"github.com/grailbio/base/errors"
)

// DefaultMaxPasses bounds how many candidates a single query can claim.
const DefaultMaxPasses = 3

// Criterion selects the overlap-acceptance rule applied when the binary
// search lands on a candidate sharing coordinates with the query.
type Criterion int

const (
	// Any accepts every shared coordinate, threshold ignored.
	Any Criterion = iota
	// Percent accepts containment unconditionally; partial overlap must cover
	// at least the threshold fraction of the query's length.
	Percent
	// PercentBoth is Percent with partial overlap also accepted when the
	// threshold is met against the candidate's length instead.
	PercentBoth
	// PercentExact replicates the reference genome-browser semantics: on
	// containment the threshold denominator is the contained (smaller)
	// interval's own length; partial overlap behaves like Percent.
	PercentExact
	// PercentExactBoth combines PercentExact containment with the PercentBoth
	// partial-overlap rule.
	PercentExactBoth
)

var criterionNames = map[Criterion]string{
	Any:              "any",
	Percent:          "percent",
	PercentBoth:      "percent-both",
	PercentExact:     "percent-exact",
	PercentExactBoth: "percent-exact-both",
}

func (c Criterion) String() string {
	if name, found := criterionNames[c]; found {
		return name
	}
	return "unknown"
}

// ParseCriterion resolves a criterion name once at configuration time, so no
// string dispatch survives into the matching loop.
func ParseCriterion(name string) (Criterion, error) {
	for c, n := range criterionNames {
		if n == name {
			return c, nil
		}
	}
	return Any, errors.E(errors.Invalid, "interval.ParseCriterion: unknown criterion "+name)
}

// rule is the strategy value the criterion compiles down to.  All five
// criteria share one search loop parameterized by these three switches.
type rule struct {
	usePercent   bool // false: any shared coordinate matches
	bothSided    bool // partial overlap may satisfy the candidate-length ratio
	exactContain bool // containment denominator = smaller interval's length
}

func (c Criterion) rule() rule {
	switch c {
	case Percent:
		return rule{usePercent: true}
	case PercentBoth:
		return rule{usePercent: true, bothSided: true}
	case PercentExact:
		return rule{usePercent: true, exactContain: true}
	case PercentExactBoth:
		return rule{usePercent: true, bothSided: true, exactContain: true}
	}
	return rule{}
}

// Extension describes center-anchored matching: when enabled, every interval
// is compared as [anchor - Up, anchor + Down] instead of its raw boundaries.
type Extension struct {
	Enabled bool
	Up      PosType
	Down    PosType
}

// MatchResult records one claimed candidate.  Index is the candidate's
// position within the working list searched on that pass (passes after the
// first operate on a list with previously claimed candidates removed, so
// Index is not stable across passes).
type MatchResult struct {
	Index int
	Entry Entry
}

// Matcher classifies query intervals against start-sorted candidate buckets.
// The zero Percent with a percent-family criterion accepts every partial
// overlap, which mirrors the reference tool's behavior at threshold 0.
// Matchers built directly as literals work; NewMatcher additionally resolves
// the criterion's strategy once up front instead of per decision.
type Matcher struct {
	Criterion Criterion
	Percent   float64 // threshold in [0, 100]
	MaxPasses int     // <= 0 means DefaultMaxPasses
	Extend    Extension

	compiled bool
	rule     rule
}

// NewMatcher resolves the criterion's strategy once up front.
func NewMatcher(criterion Criterion, percent float64, maxPasses int, extend Extension) *Matcher {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	return &Matcher{
		Criterion: criterion,
		Percent:   percent,
		MaxPasses: maxPasses,
		Extend:    extend,
		compiled:  true,
		rule:      criterion.rule(),
	}
}

// activeRule returns the compiled strategy, deriving it from Criterion for
// matchers constructed without NewMatcher.
func (m *Matcher) activeRule() rule {
	if m.compiled {
		return m.rule
	}
	return m.Criterion.rule()
}

// bounds returns the coordinates an entry is compared under: its raw
// boundaries, or the anchored window when extension is active and the entry
// carries an anchor.  Entries without an anchor fall back to their raw
// boundaries rather than being dropped.
func (m *Matcher) bounds(e *Entry) (lo, hi PosType) {
	if m.Extend.Enabled && e.HasAnchor {
		return e.Anchor - m.Extend.Up, e.Anchor + m.Extend.Down
	}
	return e.Start, e.End
}

// accept decides a located coordinate-sharing pair under the compiled rule.
func (m *Matcher) accept(qLo, qHi, cLo, cHi PosType) bool {
	r := m.activeRule()
	if !r.usePercent {
		return true
	}
	frac := m.Percent / 100
	queryLen := float64(qHi - qLo)
	candLen := float64(cHi - cLo)
	switch {
	case cLo >= qLo && cHi <= qHi: // candidate inside query
		if !r.exactContain {
			return true
		}
		// The contained side is fully covered, so the overlap equals the
		// smaller interval's length and the ratio is taken against that same
		// length, never the query's.
		return candLen >= frac*candLen
	case qLo >= cLo && qHi <= cHi: // query inside candidate
		if !r.exactContain {
			return true
		}
		return queryLen >= frac*queryLen
	}
	var overlap float64
	if qLo < cLo {
		overlap = float64(qHi - cLo)
	} else {
		overlap = float64(cHi - qLo)
	}
	if overlap >= frac*queryLen {
		return true
	}
	return r.bothSided && overlap >= frac*candLen
}

// searchOnce bisects a start-sorted candidate list for one coordinate-sharing
// candidate and resolves it under the criterion.  The decision at the first
// located candidate is final for the pass: a rejected partial overlap ends
// the search rather than probing neighbors, matching the reference tool.
func (m *Matcher) searchOnce(q *Entry, cands []Entry) (int, bool) {
	qLo, qHi := m.bounds(q)
	lo, hi := 0, len(cands)
	// When the window degenerates to candidate 0 alone, hi stays at 1 so that
	// index 0 is still examined before the loop exits.
	for lo < hi {
		ind := int(uint(lo+hi) >> 1)
		cLo, cHi := m.bounds(&cands[ind])
		switch {
		case qHi <= cLo:
			hi = ind
		case qLo >= cHi:
			lo = ind + 1
		default:
			return ind, m.accept(qLo, qHi, cLo, cHi)
		}
	}
	return 0, false
}

// Match runs up to MaxPasses search passes of query against bucket and
// returns the claimed candidates, at most one per pass.  The shared bucket is
// only borrowed: a private working list is materialized the first time a
// claimed candidate must be removed, so queries that match at most once never
// copy.  Passes stop at the first pass that finds nothing.  A nil bucket
// (chromosome absent from the candidate set) yields zero results.
func (m *Matcher) Match(q *Entry, bucket []Entry) []MatchResult {
	var results []MatchResult
	var working []Entry
	cands := bucket
	maxPasses := m.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	for pass := 0; pass < maxPasses; pass++ {
		ind, ok := m.searchOnce(q, cands)
		if !ok {
			break
		}
		results = append(results, MatchResult{Index: ind, Entry: cands[ind]})
		if pass+1 == maxPasses {
			break
		}
		if working == nil {
			working = make([]Entry, 0, len(cands)-1)
			working = append(working, cands[:ind]...)
			working = append(working, cands[ind+1:]...)
		} else {
			working = append(working[:ind], working[ind+1:]...)
		}
		cands = working
	}
	return results
}
