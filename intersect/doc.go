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

// Package intersect classifies every record of one chromosome-tagged
// interval file (A) as overlapping or not overlapping a second file (B)
// under a selectable overlap criterion, and derives by exclusion which B
// records participate.  Output is either one file of input records per
// classification bucket, or, for a sweep of overlap-percentage thresholds,
// a table of bucket sizes per threshold.
//
// Matching is chromosome-local, so chromosomes are processed one goroutine
// each with a single merge at the end; within a chromosome, emitted records
// are re-sorted by start coordinate so output never depends on processing
// order.
package intersect
