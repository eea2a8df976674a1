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
	"bufio"
	"path/filepath"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/pmoulos/hts-tools-sub001/interval"
)

// kindPath names one output file by concatenating the two input stems and
// the kind tag.
func kindPath(outDir string, res *Result, kind string) string {
	return filepath.Join(outDir, res.ABase+"_"+res.BBase+"."+kind+".tsv")
}

// writeResult emits one file per selected output kind.
func writeResult(outDir string, res *Result, cfg config) error {
	recordKinds := []struct {
		kind   string
		header string
		lines  func(*ChromResult) []string
	}{
		{KindOverlapA, res.HeaderA, func(c *ChromResult) []string { return c.OverlapA }},
		{KindOverlapB, res.HeaderB, func(c *ChromResult) []string { return c.OverlapB }},
		{KindOnlyA, res.HeaderA, func(c *ChromResult) []string { return c.OnlyA }},
		{KindOnlyB, res.HeaderB, func(c *ChromResult) []string { return c.OnlyB }},
	}
	for _, rk := range recordKinds {
		if !cfg.kinds[rk.kind] {
			continue
		}
		if err := writeRecordFile(kindPath(outDir, res, rk.kind), rk.header, res, rk.lines); err != nil {
			return err
		}
	}
	if cfg.kinds[KindPairDists] {
		err := writeDistFile(kindPath(outDir, res, KindPairDists), res, func(c *ChromResult) []PairDist { return c.PairDists })
		if err != nil {
			return err
		}
	}
	if cfg.kinds[KindNearMiss] {
		err := writeDistFile(kindPath(outDir, res, KindNearMiss), res, func(c *ChromResult) []PairDist { return c.NearMiss })
		if err != nil {
			return err
		}
	}
	return nil
}

// writeRecordFile writes classified input records verbatim, chromosome by
// chromosome in the result's emission order.
func writeRecordFile(path, header string, res *Result, lines func(*ChromResult) []string) (err error) {
	ctx := vcontext.Background()
	var dst file.File
	if dst, err = file.Create(ctx, path); err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, dst, &err)
	w := bufio.NewWriter(dst.Writer(ctx))
	n := 0
	if header != "" {
		if _, err = w.WriteString(header + "\n"); err != nil {
			return err
		}
	}
	for i := range res.Chroms {
		for _, line := range lines(&res.Chroms[i]) {
			if _, err = w.WriteString(line + "\n"); err != nil {
				return err
			}
			n++
		}
	}
	if err = w.Flush(); err != nil {
		return err
	}
	log.Printf("intersect: wrote %d record(s) to %s", n, path)
	return nil
}

func writePosField(w *tsv.Writer, pos interval.PosType) {
	w.WriteString(strconv.Itoa(int(pos)))
}

// writeDistFile writes one distance row per pair: both pairs' coordinates
// followed by the three signed distances.
func writeDistFile(path string, res *Result, pairs func(*ChromResult) []PairDist) (err error) {
	ctx := vcontext.Background()
	var dst file.File
	if dst, err = file.Create(ctx, path); err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, dst, &err)
	w := tsv.NewWriter(dst.Writer(ctx))
	w.WriteString("chrom\ta_start\ta_end\tb_start\tb_end\tedge_dist\tanchor_dist\topposite_dist")
	if err = w.EndLine(); err != nil {
		return err
	}
	for i := range res.Chroms {
		for _, pd := range pairs(&res.Chroms[i]) {
			w.WriteString(pd.A.Chrom)
			writePosField(w, pd.A.Start)
			writePosField(w, pd.A.End)
			writePosField(w, pd.B.Start)
			writePosField(w, pd.B.End)
			writePosField(w, pd.Dist.Edge)
			writePosField(w, pd.Dist.Anchor)
			writePosField(w, pd.Dist.Opposite)
			if err = w.EndLine(); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

// writeDistribution writes the sweep table: a header row of bucket names and
// one data row per threshold.
func writeDistribution(path string, rows []DistributionRow) (err error) {
	ctx := vcontext.Background()
	var dst file.File
	if dst, err = file.Create(ctx, path); err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, dst, &err)
	w := tsv.NewWriter(dst.Writer(ctx))
	w.WriteString("percent\toverlapA\toverlapB\tonlyA\tonlyB\tmean_edge_dist\tmedian_edge_dist")
	if err = w.EndLine(); err != nil {
		return err
	}
	for _, row := range rows {
		w.WriteString(strconv.FormatFloat(row.Percent, 'g', -1, 64))
		w.WriteString(strconv.Itoa(row.Counts.OverlapA))
		w.WriteString(strconv.Itoa(row.Counts.OverlapB))
		w.WriteString(strconv.Itoa(row.Counts.OnlyA))
		w.WriteString(strconv.Itoa(row.Counts.OnlyB))
		w.WriteString(strconv.FormatFloat(row.MeanEdge, 'g', -1, 64))
		w.WriteString(strconv.FormatFloat(row.MedianEdge, 'g', -1, 64))
		if err = w.EndLine(); err != nil {
			return err
		}
	}
	err = w.Flush()
	if err == nil {
		log.Printf("intersect: wrote distribution table with %d row(s) to %s", len(rows), path)
	}
	return err
}
