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
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/pmoulos/hts-tools-sub001/interval"
	"github.com/pmoulos/hts-tools-sub001/util"
)

// Output kind tags accepted in Opts.OutputKinds.
const (
	KindOverlapA  = "overlapA"
	KindOverlapB  = "overlapB"
	KindOnlyA     = "onlyA"
	KindOnlyB     = "onlyB"
	KindPairDists = "pairDistances"
	KindNearMiss  = "nearMissDistances"
)

type Opts struct {
	// Commandline options.
	APath            string
	BPath            string
	Criterion        string
	Percent          float64
	PercentSweep     []float64 // non-empty selects distribution mode
	ExtendUpstream   int
	ExtendDownstream int
	AutoExtend       bool
	AnchorColumn     int // 0-based field index; 0 = unset
	MaxPasses        int
	GapThreshold     int
	OutputKinds      []string
	HasHeader        bool
	ExcludeChrom     string
	ValidateSorted   bool
	OutDir           string // "" = directory of APath
	Parallelism      int    // 0 = GOMAXPROCS

	// SAMHeader optionally pins chromosome emission order to a sequence
	// dictionary instead of lexicographic order.
	SAMHeader *sam.Header
}

var DefaultOpts = Opts{
	Criterion:    "any",
	MaxPasses:    interval.DefaultMaxPasses,
	ExcludeChrom: "chrM|chrU|_random|_hap",
	OutputKinds:  []string{KindOverlapA, KindOverlapB, KindOnlyA, KindOnlyB},
}

// config is Opts after validation: criterion resolved, kinds set-ified,
// extension amounts fixed (except AutoExtend, resolved after loading).
type config struct {
	criterion     interval.Criterion
	percent       float64
	sweep         []float64
	maxPasses     int
	ext           interval.Extension
	autoExtend    bool
	gap           interval.PosType
	kinds         map[string]bool
	wantPairDists bool
	wantNearMiss  bool
	parallelism   int
	setOpts       interval.SetOpts
}

func validateOpts(opts Opts) (cfg config, err error) {
	if opts.APath == "" || opts.BPath == "" {
		return cfg, errors.E(errors.Invalid, "intersect: both input paths are required")
	}
	if cfg.criterion, err = interval.ParseCriterion(opts.Criterion); err != nil {
		return cfg, err
	}
	if opts.Percent < 0 || opts.Percent > 100 {
		return cfg, errors.E(errors.Invalid, fmt.Sprintf("intersect: percent threshold %v outside [0,100]", opts.Percent))
	}
	for _, p := range opts.PercentSweep {
		if p < 0 || p > 100 {
			return cfg, errors.E(errors.Invalid, fmt.Sprintf("intersect: sweep threshold %v outside [0,100]", p))
		}
	}
	if len(opts.PercentSweep) > 0 && cfg.criterion == interval.Any {
		return cfg, errors.E(errors.Invalid, "intersect: a threshold sweep is meaningless under criterion \"any\"")
	}
	cfg.kinds = make(map[string]bool)
	for _, kind := range opts.OutputKinds {
		switch kind {
		case KindOverlapA, KindOverlapB, KindOnlyA, KindOnlyB, KindPairDists, KindNearMiss:
			cfg.kinds[kind] = true
		default:
			return cfg, errors.E(errors.Invalid, fmt.Sprintf("intersect: unknown output kind %q", kind))
		}
	}
	if len(opts.PercentSweep) > 0 && len(opts.OutputKinds) > 0 {
		return cfg, errors.E(errors.Invalid, "intersect: distribution mode replaces per-record output; leave OutputKinds empty")
	}
	if opts.GapThreshold < 0 {
		return cfg, errors.E(errors.Invalid, fmt.Sprintf("intersect: negative gap threshold %d", opts.GapThreshold))
	}
	if cfg.kinds[KindNearMiss] && opts.GapThreshold == 0 {
		return cfg, errors.E(errors.Invalid, "intersect: nearMissDistances output requires a positive GapThreshold")
	}

	explicitExtend := opts.ExtendUpstream != 0 || opts.ExtendDownstream != 0
	autoExtend := opts.AutoExtend
	if explicitExtend && autoExtend {
		log.Printf("intersect: both explicit extension and AutoExtend given; explicit values win")
		autoExtend = false
	}
	if explicitExtend || autoExtend {
		if opts.AnchorColumn <= 0 {
			return cfg, errors.E(errors.Invalid, "intersect: center-anchored matching requires AnchorColumn")
		}
		cfg.ext = interval.Extension{
			Enabled: true,
			Up:      interval.PosType(opts.ExtendUpstream),
			Down:    interval.PosType(opts.ExtendDownstream),
		}
		cfg.autoExtend = autoExtend
	}

	cfg.percent = opts.Percent
	cfg.sweep = opts.PercentSweep
	cfg.maxPasses = opts.MaxPasses
	if cfg.maxPasses <= 0 {
		cfg.maxPasses = interval.DefaultMaxPasses
	}
	cfg.gap = interval.PosType(opts.GapThreshold)
	cfg.wantPairDists = cfg.kinds[KindPairDists] || len(cfg.sweep) > 0
	cfg.wantNearMiss = cfg.kinds[KindNearMiss]
	cfg.parallelism = opts.Parallelism
	if cfg.parallelism <= 0 {
		cfg.parallelism = runtime.GOMAXPROCS(0)
	}
	cfg.setOpts = interval.SetOpts{
		ExcludeChrom:   opts.ExcludeChrom,
		AnchorColumn:   opts.AnchorColumn,
		HasHeader:      opts.HasHeader,
		ValidateSorted: opts.ValidateSorted,
		SAMHeader:      opts.SAMHeader,
	}
	return cfg, nil
}

// Result is one full classification of A against B.
type Result struct {
	ABase   string
	BBase   string
	HeaderA string
	HeaderB string
	Chroms  []ChromResult // in emission order
}

// Totals sums the per-chromosome bucket sizes.
func (r *Result) Totals() (c Counts) {
	for i := range r.Chroms {
		c.add(r.Chroms[i].Counts())
	}
	return c
}

// edgeDists collects every matched-pair edge distance, for the distribution
// table's mean/median columns.
func (r *Result) edgeDists(dst []int) []int {
	for i := range r.Chroms {
		for _, pd := range r.Chroms[i].PairDists {
			dst = append(dst, int(pd.Dist.Edge))
		}
	}
	return dst
}

// mergeChroms forms the emission order over the union of both sets'
// chromosomes, applying the same order each set was loaded with: SAM
// reference order when a header is supplied, lexicographic otherwise, so
// B-only chromosomes interleave with A's instead of trailing them.  B-only
// chromosomes still matter because all their records classify as onlyB.
func mergeChroms(aChroms, bChroms []string, hdr *sam.Header) []string {
	union := make(map[string]bool, len(aChroms)+len(bChroms))
	for _, chrom := range aChroms {
		union[chrom] = true
	}
	for _, chrom := range bChroms {
		union[chrom] = true
	}
	merged := make([]string, 0, len(union))
	if hdr != nil {
		for _, ref := range hdr.Refs() {
			name := ref.Name()
			if union[name] {
				merged = append(merged, name)
				delete(union, name)
			}
		}
	}
	rest := make([]string, 0, len(union))
	for chrom := range union {
		rest = append(rest, chrom)
	}
	sort.Strings(rest)
	return append(merged, rest...)
}

// classifySets runs one full matcher+aggregator pipeline over already-loaded
// sets.  Chromosomes are processed in parallel; each worker owns a disjoint
// chromosome, so the per-index result write is the only join point.
func classifySets(aSet, bSet *interval.Set, cfg config, percent float64) (Result, error) {
	res := Result{HeaderA: aSet.Header(), HeaderB: bSet.Header()}
	chroms := mergeChroms(aSet.Chroms(), bSet.Chroms(), cfg.setOpts.SAMHeader)
	res.Chroms = make([]ChromResult, len(chroms))
	err := traverse.Limit(cfg.parallelism).Each(len(chroms), func(i int) error {
		chrom := chroms[i]
		m := interval.NewMatcher(cfg.criterion, percent, cfg.maxPasses, cfg.ext)
		res.Chroms[i] = classifyChrom(chrom, aSet.Bucket(chrom), bSet.Bucket(chrom), m, cfg)
		return nil
	})
	return res, err
}

func loadSets(opts Opts, cfg *config) (aSet, bSet interval.Set, err error) {
	if bSet, err = interval.NewSetFromPath(opts.BPath, cfg.setOpts); err != nil {
		return
	}
	if aSet, err = interval.NewSetFromPath(opts.APath, cfg.setOpts); err != nil {
		return
	}
	log.Printf("intersect: loaded %d A record(s), %d B record(s)", aSet.N(), bSet.N())
	if cfg.autoExtend {
		lengths := aSet.Lengths(nil)
		lengths = bSet.Lengths(lengths)
		half := interval.PosType(util.MedianInts(lengths) / 2)
		cfg.ext.Up, cfg.ext.Down = half, half
		log.Printf("intersect: auto-extend derived %d bases on each side of the anchor", half)
	}
	return
}

// Classify validates opts, loads both inputs and returns the classification
// without writing any output.  Distribution mode is not handled here.
func Classify(opts Opts) (Result, error) {
	cfg, err := validateOpts(opts)
	if err != nil {
		return Result{}, err
	}
	aSet, bSet, err := loadSets(opts, &cfg)
	if err != nil {
		return Result{}, err
	}
	res, err := classifySets(&aSet, &bSet, cfg, cfg.percent)
	res.ABase, res.BBase = outputBase(opts.APath), outputBase(opts.BPath)
	return res, err
}

// Run executes the configured pipeline end to end: per-record classification
// with one output file per selected kind, or, when a threshold sweep is
// configured, one distribution table.
func Run(opts Opts) error {
	cfg, err := validateOpts(opts)
	if err != nil {
		return err
	}
	aSet, bSet, err := loadSets(opts, &cfg)
	if err != nil {
		return err
	}
	outDir := opts.OutDir
	if outDir == "" {
		outDir = filepath.Dir(opts.APath)
	}
	aBase, bBase := outputBase(opts.APath), outputBase(opts.BPath)

	if len(cfg.sweep) > 0 {
		rows, derr := runDistribution(&aSet, &bSet, cfg)
		if derr != nil {
			return derr
		}
		return writeDistribution(filepath.Join(outDir, aBase+"_"+bBase+".distribution.tsv"), rows)
	}

	res, err := classifySets(&aSet, &bSet, cfg, cfg.percent)
	if err != nil {
		return err
	}
	res.ABase, res.BBase = aBase, bBase
	return writeResult(outDir, &res, cfg)
}

// outputBase derives the file-name stem used for output naming: the input's
// base name with compression and format extensions stripped.
func outputBase(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".gz") {
		base = base[:len(base)-len(".gz")]
	}
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return base
}
