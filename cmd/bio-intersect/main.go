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
package main

/*
bio-intersect classifies the records of one sorted tab-delimited interval
file against a second one, reproducing genome-browser table-intersection
overlap semantics.
*/

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/pmoulos/hts-tools-sub001/intersect"
)

var (
	criterion      = flag.String("criterion", intersect.DefaultOpts.Criterion, "Overlap criterion; 'any', 'percent', 'percent-both', 'percent-exact', or 'percent-exact-both'")
	percent        = flag.String("percent", "", "Overlap threshold in [0,100]; a comma-separated list sweeps every threshold into one distribution table instead of per-record output")
	extendUp       = flag.Int("extend-up", 0, "Bases to extend upstream of the anchor point; activates center-anchored matching and requires -anchor-col")
	extendDown     = flag.Int("extend-down", 0, "Bases to extend downstream of the anchor point; activates center-anchored matching and requires -anchor-col")
	autoExtend     = flag.Bool("auto-extend", false, "Derive both extension amounts as half the median interval length over both inputs; explicit -extend-up/-extend-down win")
	anchorCol      = flag.Int("anchor-col", 0, "0-based column index of the anchor (summit/mode) point, shared by both inputs; 0 = unset")
	maxPasses      = flag.Int("max-passes", intersect.DefaultOpts.MaxPasses, "Upper bound on candidates a single record can claim")
	gap            = flag.Int("gap", 0, "Maximum gap for near-miss distance reporting; 0 disables")
	outputKinds    = flag.String("output", strings.Join(intersect.DefaultOpts.OutputKinds, ","), "Comma-separated output kinds from overlapA,overlapB,onlyA,onlyB,pairDistances,nearMissDistances; ignored in sweep mode")
	hasHeader      = flag.Bool("header", false, "Treat the first line of each input as a header line")
	excludeChrom   = flag.String("exclude-chrom", intersect.DefaultOpts.ExcludeChrom, "Chromosomes matching this regexp are dropped on load; empty disables")
	validateSorted = flag.Bool("validate-sorted", false, "Fail fast if a chromosome's records are not in ascending start order instead of silently misclassifying")
	outDir         = flag.String("out-dir", "", "Output directory; defaults to the A file's directory")
	parallelism    = flag.Int("parallelism", 0, "Maximum number of chromosomes processed simultaneously; 0 = GOMAXPROCS")
)

func bioIntersectUsage() {
	fmt.Printf("Usage: %s [OPTIONS] apath bpath\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

// parsePercentList accepts "70" or "10,50,90"; the list form selects
// distribution mode.
func parsePercentList(s string) (single float64, sweep []float64, err error) {
	if s == "" {
		return 0, nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) == 1 {
		single, err = strconv.ParseFloat(parts[0], 64)
		return single, nil, err
	}
	for _, part := range parts {
		var p float64
		if p, err = strconv.ParseFloat(strings.TrimSpace(part), 64); err != nil {
			return 0, nil, err
		}
		sweep = append(sweep, p)
	}
	return 0, sweep, nil
}

func main() {
	flag.Usage = bioIntersectUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		log.Fatalf("Expected exactly two positional arguments (apath and bpath); got '%s'", strings.Join(flag.Args(), " "))
	}
	single, sweep, err := parsePercentList(*percent)
	if err != nil {
		log.Fatalf("Invalid -percent value '%s': %v", *percent, err)
	}
	var kinds []string
	if len(sweep) == 0 && *outputKinds != "" {
		for _, kind := range strings.Split(*outputKinds, ",") {
			kinds = append(kinds, strings.TrimSpace(kind))
		}
	}
	opts := intersect.Opts{
		APath:            flag.Arg(0),
		BPath:            flag.Arg(1),
		Criterion:        *criterion,
		Percent:          single,
		PercentSweep:     sweep,
		ExtendUpstream:   *extendUp,
		ExtendDownstream: *extendDown,
		AutoExtend:       *autoExtend,
		AnchorColumn:     *anchorCol,
		MaxPasses:        *maxPasses,
		GapThreshold:     *gap,
		OutputKinds:      kinds,
		HasHeader:        *hasHeader,
		ExcludeChrom:     *excludeChrom,
		ValidateSorted:   *validateSorted,
		OutDir:           *outDir,
		Parallelism:      *parallelism,
	}
	if err := intersect.Run(opts); err != nil {
		log.Fatalf("bio-intersect: %v", err)
	}
}
