// Copyright 2019 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package intersect

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pmoulos/hts-tools-sub001/interval"
)

// Counts are the sizes of the four classification buckets.
type Counts struct {
	OverlapA int
	OverlapB int
	OnlyA    int
	OnlyB    int
}

func (c *Counts) add(o Counts) {
	c.OverlapA += o.OverlapA
	c.OverlapB += o.OverlapB
	c.OnlyA += o.OnlyA
	c.OnlyB += o.OnlyB
}

// PairDist is one emitted distance row: a query record, the candidate it was
// measured against, and their signed distances.
type PairDist struct {
	A    interval.Entry
	B    interval.Entry
	Dist interval.Distances
}

// ChromResult holds one chromosome's classification buckets.  The line
// slices hold full input records, deduplicated by exact content and ordered
// by the start field, so their content does not depend on the order records
// were streamed in.
type ChromResult struct {
	Chrom     string
	OverlapA  []string
	OverlapB  []string
	OnlyA     []string
	OnlyB     []string
	PairDists []PairDist
	NearMiss  []PairDist
}

// Counts returns the bucket sizes for this chromosome.
func (r *ChromResult) Counts() Counts {
	return Counts{
		OverlapA: len(r.OverlapA),
		OverlapB: len(r.OverlapB),
		OnlyA:    len(r.OnlyA),
		OnlyB:    len(r.OnlyB),
	}
}

// classifyChrom matches every A record of one chromosome against the
// chromosome's B bucket and aggregates the four buckets.  All state is local
// to the chromosome, which is what allows the caller to run one goroutine
// per chromosome with no locking.
func classifyChrom(chrom string, aRecs, bucket []interval.Entry, m *interval.Matcher, cfg config) ChromResult {
	r := ChromResult{Chrom: chrom}
	matchedA := make(map[string]bool)
	onlyAseen := make(map[string]bool)
	claimedB := make(map[string]bool)
	var unmatched []*interval.Entry

	for i := range aRecs {
		q := &aRecs[i]
		res := m.Match(q, bucket)
		if len(res) == 0 {
			if !onlyAseen[q.Line] {
				onlyAseen[q.Line] = true
				r.OnlyA = append(r.OnlyA, q.Line)
			}
			unmatched = append(unmatched, q)
			continue
		}
		if !matchedA[q.Line] {
			matchedA[q.Line] = true
			r.OverlapA = append(r.OverlapA, q.Line)
		}
		for _, mr := range res {
			// The matching B records are the ones encountered while scanning
			// A; claiming them here is also what makes onlyB computable by
			// exclusion below.
			if !claimedB[mr.Entry.Line] {
				claimedB[mr.Entry.Line] = true
				r.OverlapB = append(r.OverlapB, mr.Entry.Line)
			}
			if cfg.wantPairDists {
				entry := mr.Entry
				r.PairDists = append(r.PairDists, PairDist{
					A:    *q,
					B:    entry,
					Dist: interval.PairDistances(q, &entry, cfg.ext),
				})
			}
		}
	}

	seenB := make(map[string]bool)
	for i := range bucket {
		line := bucket[i].Line
		if claimedB[line] || seenB[line] {
			continue
		}
		seenB[line] = true
		r.OnlyB = append(r.OnlyB, line)
	}

	// Near-miss distances can only be computed after the full A scan, once
	// the set of never-claimed B records is known.
	if cfg.wantNearMiss {
		for _, q := range unmatched {
			c, d, ok := interval.Nearest(q, bucket, cfg.ext, func(e *interval.Entry) bool {
				return claimedB[e.Line]
			})
			if ok && absPos(d.Edge) <= cfg.gap {
				r.NearMiss = append(r.NearMiss, PairDist{A: *q, B: *c, Dist: d})
			}
		}
	}

	sortByStart(r.OverlapA)
	sortByStart(r.OverlapB)
	sortByStart(r.OnlyA)
	sortByStart(r.OnlyB)
	sortPairDists(r.PairDists)
	sortPairDists(r.NearMiss)
	return r
}

// startField extracts the record's start coordinate (second field) for
// output ordering.  Unparseable records sort as 0.
func startField(line string) int {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	v, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return v
}

// sortByStart orders output lines by start coordinate, tie-breaking on full
// line content so emission is deterministic regardless of processing order.
func sortByStart(lines []string) {
	sort.SliceStable(lines, func(i, j int) bool {
		si, sj := startField(lines[i]), startField(lines[j])
		if si != sj {
			return si < sj
		}
		return lines[i] < lines[j]
	})
}

func sortPairDists(pairs []PairDist) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].A.Start != pairs[j].A.Start {
			return pairs[i].A.Start < pairs[j].A.Start
		}
		if pairs[i].B.Start != pairs[j].B.Start {
			return pairs[i].B.Start < pairs[j].B.Start
		}
		return pairs[i].A.Line < pairs[j].A.Line
	})
}

func absPos(x interval.PosType) interval.PosType {
	if x < 0 {
		return -x
	}
	return x
}
