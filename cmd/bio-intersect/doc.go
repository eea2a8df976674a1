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

/*
Given two tab-delimited interval files (A and B, both sorted by start within
each chromosome), bio-intersect classifies every A record as overlapping or
not overlapping B under a selectable criterion, and derives which B records
participate.  This command reproduces genome-browser table-intersection
semantics, including the exact containment-denominator rule of the
'percent-exact' criteria.

One output file is written per selected kind (overlapA, overlapB, onlyA,
onlyB, pairDistances, nearMissDistances), named by concatenating the two
input base names and the kind tag.  Passing a comma-separated -percent list
instead produces a single distribution table of bucket sizes per threshold.

Sample usage:
bio-intersect \
    -criterion percent-exact \
    -percent 50 \
    -output overlapA,onlyA \
    peaks.bed \
    regions.bed
*/
package main
