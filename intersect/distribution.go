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
	"github.com/grailbio/base/log"
	"github.com/pmoulos/hts-tools-sub001/interval"
	"github.com/pmoulos/hts-tools-sub001/util"
)

// DistributionRow tabulates one threshold of a sweep: the four bucket sizes
// plus summary statistics of the matched-pair edge distances.
type DistributionRow struct {
	Percent    float64
	Counts     Counts
	MeanEdge   float64
	MedianEdge float64
}

// runDistribution repeats the full matcher+aggregator pipeline once per
// threshold over the already-loaded sets, keeping only the bucket sizes.
// Per-record output is discarded by construction.
func runDistribution(aSet, bSet *interval.Set, cfg config) ([]DistributionRow, error) {
	rows := make([]DistributionRow, 0, len(cfg.sweep))
	for _, percent := range cfg.sweep {
		res, err := classifySets(aSet, bSet, cfg, percent)
		if err != nil {
			return nil, err
		}
		dists := res.edgeDists(nil)
		rows = append(rows, DistributionRow{
			Percent:    percent,
			Counts:     res.Totals(),
			MeanEdge:   util.MeanInts(dists),
			MedianEdge: util.MedianInts(dists),
		})
		log.Debug.Printf("intersect: threshold %v classified (%d overlapping A record(s))",
			percent, rows[len(rows)-1].Counts.OverlapA)
	}
	return rows, nil
}
