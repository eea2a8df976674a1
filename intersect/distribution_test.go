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
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sweepInputs(t *testing.T, dir string) (string, string) {
	aPath := writeInput(t, dir, "a.bed",
		"chr1\t0\t1000\ta1",    // 20% of a1 overlaps b1
		"chr1\t2000\t2100\ta2", // contained in b2
	)
	bPath := writeInput(t, dir, "b.bed",
		"chr1\t800\t1200\tb1",
		"chr1\t1900\t2200\tb2",
	)
	return aPath, bPath
}

func TestDistributionSweepMonotonic(t *testing.T) {
	aPath, bPath := sweepInputs(t, t.TempDir())
	opts := Opts{
		APath:        aPath,
		BPath:        bPath,
		Criterion:    "percent",
		PercentSweep: []float64{10, 50, 90},
		MaxPasses:    3,
	}
	cfg, err := validateOpts(opts)
	require.NoError(t, err)
	aSet, bSet, err := loadSets(opts, &cfg)
	require.NoError(t, err)
	rows, err := runDistribution(&aSet, &bSet, cfg)
	require.NoError(t, err)
	require.Equal(t, 3, len(rows))

	assert.Equal(t, Counts{OverlapA: 2, OverlapB: 2, OnlyA: 0, OnlyB: 0}, rows[0].Counts)
	assert.Equal(t, Counts{OverlapA: 1, OverlapB: 1, OnlyA: 1, OnlyB: 1}, rows[1].Counts)
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i].Counts.OverlapA <= rows[i-1].Counts.OverlapA,
			"overlapA grew from threshold %v to %v", rows[i-1].Percent, rows[i].Percent)
	}

	// At threshold 10 the matched pairs are a1-b1 (edge 200) and the
	// contained a2-b2 (edge 0).
	assert.Equal(t, 100.0, rows[0].MeanEdge)
	assert.Equal(t, 100.0, rows[0].MedianEdge)
}

func TestRunWritesDistributionTable(t *testing.T) {
	dir := t.TempDir()
	aPath, bPath := sweepInputs(t, dir)
	opts := Opts{
		APath:        aPath,
		BPath:        bPath,
		Criterion:    "percent",
		PercentSweep: []float64{10, 50, 90},
		MaxPasses:    3,
		OutDir:       dir,
	}
	require.NoError(t, Run(opts))
	content, err := ioutil.ReadFile(filepath.Join(dir, "a_b.distribution.tsv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	require.Equal(t, 4, len(lines))
	assert.Equal(t, "percent\toverlapA\toverlapB\tonlyA\tonlyB\tmean_edge_dist\tmedian_edge_dist", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "10\t2\t2\t0\t0\t"))
	assert.True(t, strings.HasPrefix(lines[2], "50\t1\t1\t1\t1\t"))
}

func TestAutoExtend(t *testing.T) {
	dir := t.TempDir()
	// The query and candidate are 90 bases apart raw, so only the
	// auto-derived 200-base windows around the two anchors can bridge them.
	// The chr9 records exist to pull the median interval length up to 400.
	aPath := writeInput(t, dir, "a.bed",
		"chr1\t995\t1005\t1000",
		"chr9\t0\t400\t200",
		"chr9\t1000\t1400\t1200",
		"chr9\t2000\t2400\t2200",
	)
	bPath := writeInput(t, dir, "b.bed",
		"chr1\t1095\t1105\t1100",
	)
	opts := Opts{
		APath:        aPath,
		BPath:        bPath,
		Criterion:    "any",
		MaxPasses:    3,
		AnchorColumn: 3,
	}
	res, err := Classify(opts)
	require.NoError(t, err)
	assert.Equal(t, 1, len(res.Chroms[0].OnlyA))

	opts.AutoExtend = true
	res, err = Classify(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"chr1\t995\t1005\t1000"}, res.Chroms[0].OverlapA)
	assert.Equal(t, []string{"chr1\t1095\t1105\t1100"}, res.Chroms[0].OverlapB)
}
