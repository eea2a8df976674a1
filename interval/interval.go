package interval

import (
	"bufio"
	"io"
	"regexp"
	"sort"
	"strconv"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
)

// PosType is this package's coordinate type.
type PosType int32

// Entry is one record of a tab-delimited interval file.  Start/End are the
// second and third fields; Start <= End is deliberately not assumed, since
// some upstream producers swap the two to encode strand.  Line retains the
// full record verbatim so downstream output can reproduce every payload
// column without this package knowing their meaning.
type Entry struct {
	Chrom     string
	Start     PosType
	End       PosType
	Anchor    PosType
	HasAnchor bool
	Line      string
}

// Length returns the entry's span.  Negative spans (swapped boundaries) are
// reported as their absolute value.
func (e *Entry) Length() PosType {
	if e.End < e.Start {
		return e.Start - e.End
	}
	return e.End - e.Start
}

// Center returns the representative point used for distance reporting: the
// anchor when one was parsed, the boundary midpoint otherwise.
func (e *Entry) Center() PosType {
	if e.HasAnchor {
		return e.Anchor
	}
	return (e.Start + e.End) / 2
}

// SetOpts defines behavior of this package's interval-file loading
// function(s).
type SetOpts struct {
	// ExcludeChrom is a regexp matched against the chromosome field; matching
	// records are dropped.  Callers use this to reproduce e.g.
	// mitochondrial/unplaced-contig exclusion heuristics.  Empty disables.
	ExcludeChrom string
	// AnchorColumn is the 0-based field index holding a representative interior
	// point (e.g. a peak summit).  0 disables, since field 0 is the chromosome.
	AnchorColumn int
	// HasHeader causes the first line to be stashed (see Set.Header) instead of
	// parsed.  Header auto-detection is the caller's job.
	HasHeader bool
	// ValidateSorted enables a fail-fast check that each chromosome's records
	// arrive in nondecreasing Start order.  The search code silently assumes
	// this; the check is off by default to match the historical behavior of
	// accepting whatever the external sort produced.
	ValidateSorted bool
	// SAMHeader, when non-nil, pins Set.Chroms to the header's reference
	// sequence order (references absent from the input are skipped; input
	// chromosomes absent from the header follow in lexicographic order).
	SAMHeader *sam.Header
}

// Set maps chromosome name -> records of that chromosome in input order.
// Correctness of the search code in this package requires each bucket to be
// sorted ascending by Start; that ordering is a precondition supplied by the
// producer of the input file, not established here.
type Set struct {
	nameMap map[string][]Entry
	chroms  []string
	header  string
	n       int
}

// Bucket returns the records of one chromosome, or nil if the chromosome
// never appeared in the input.  The returned slice is shared; callers must
// not mutate it.
func (s *Set) Bucket(chrom string) []Entry {
	return s.nameMap[chrom]
}

// Chroms returns the chromosome emission order established at load time.
func (s *Set) Chroms() []string {
	return s.chroms
}

// N returns the number of records kept.
func (s *Set) N() int { return s.n }

// Header returns the stashed header line, or "" if HasHeader was unset.
func (s *Set) Header() string { return s.header }

// Lengths appends every kept record's span to dst and returns it.  Used for
// deriving extension amounts from the observed length distribution.
func (s *Set) Lengths(dst []int) []int {
	for _, chrom := range s.chroms {
		for i := range s.nameMap[chrom] {
			dst = append(dst, int(s.nameMap[chrom][i].Length()))
		}
	}
	return dst
}

// fieldTokens identifies up to the first len(tokens) tab/space-delimited
// tokens from curLine, returning the number of tokens saved.  Any (group of)
// characters <= ' ' is treated as a delimiter.  Simple loops beat the
// standard library string-split functions at the token counts seen here.
func fieldTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

func scanSet(scanner *bufio.Scanner, opts SetOpts) (set Set, err error) {
	set.nameMap = make(map[string][]Entry)

	var exclude *regexp.Regexp
	if opts.ExcludeChrom != "" {
		if exclude, err = regexp.Compile(opts.ExcludeChrom); err != nil {
			err = errors.E(errors.Invalid, err, "interval.scanSet: bad chromosome-exclusion pattern", opts.ExcludeChrom)
			return
		}
	}
	nToken := 3
	if opts.AnchorColumn >= nToken {
		nToken = opts.AnchorColumn + 1
	}
	tokens := make([][]byte, nToken)
	prevStart := make(map[string]PosType)

	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		if lineIdx == 1 && opts.HasHeader {
			set.header = string(curLine)
			continue
		}
		got := fieldTokens(tokens, curLine)
		if got == 0 {
			continue
		}
		if got < 3 {
			log.Error.Printf("interval.scanSet: line %d has fewer than 3 fields; record skipped", lineIdx)
			continue
		}
		chromBytes := tokens[0]
		if exclude != nil && exclude.Match(chromBytes) {
			continue
		}
		start, perr := strconv.Atoi(gunsafe.BytesToString(tokens[1]))
		if perr != nil {
			log.Error.Printf("interval.scanSet: line %d has non-integer start %q; record skipped", lineIdx, tokens[1])
			continue
		}
		end, perr := strconv.Atoi(gunsafe.BytesToString(tokens[2]))
		if perr != nil {
			log.Error.Printf("interval.scanSet: line %d has non-integer end %q; record skipped", lineIdx, tokens[2])
			continue
		}
		entry := Entry{
			Start: PosType(start),
			End:   PosType(end),
			Line:  string(curLine),
		}
		if opts.AnchorColumn > 0 && got > opts.AnchorColumn {
			if anchor, aerr := strconv.Atoi(gunsafe.BytesToString(tokens[opts.AnchorColumn])); aerr == nil {
				entry.Anchor = PosType(anchor)
				entry.HasAnchor = true
			}
		}
		// chromBytes refers to scanner-owned memory; copy before keeping.
		chrom := string(chromBytes)
		entry.Chrom = chrom
		if opts.ValidateSorted {
			if prev, seen := prevStart[chrom]; seen && entry.Start < prev {
				err = errors.E(errors.Invalid, "interval.scanSet: unsorted input on line "+strconv.Itoa(lineIdx)+" (chromosome "+chrom+")")
				return
			}
			prevStart[chrom] = entry.Start
		}
		set.nameMap[chrom] = append(set.nameMap[chrom], entry)
		set.n++
	}
	if err = scanner.Err(); err != nil {
		return
	}
	set.chroms = chromOrder(set.nameMap, opts.SAMHeader)
	return
}

// chromOrder fixes the emission order for a loaded set: SAM reference order
// when a header is supplied, lexicographic otherwise; chromosomes unknown to
// the header follow it lexicographically.
func chromOrder(nameMap map[string][]Entry, hdr *sam.Header) []string {
	chroms := make([]string, 0, len(nameMap))
	if hdr == nil {
		for chrom := range nameMap {
			chroms = append(chroms, chrom)
		}
		sort.Strings(chroms)
		return chroms
	}
	inHeader := make(map[string]bool)
	for _, ref := range hdr.Refs() {
		name := ref.Name()
		inHeader[name] = true
		if _, found := nameMap[name]; found {
			chroms = append(chroms, name)
		}
	}
	var rest []string
	for chrom := range nameMap {
		if !inHeader[chrom] {
			rest = append(rest, chrom)
		}
	}
	sort.Strings(rest)
	return append(chroms, rest...)
}

// NewSet loads a tab-delimited interval file ([chrom, start, end, ...] per
// line) into per-chromosome buckets.  Input must already be sorted by start
// within each chromosome unless opts.ValidateSorted is requested.
func NewSet(reader io.Reader, opts SetOpts) (set Set, err error) {
	scanner := bufio.NewScanner(reader)
	// Payload columns can make records long; the default Scanner cap is too
	// small for some annotation-heavy inputs.
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<22)
	return scanSet(scanner, opts)
}

// NewSetFromPath is a wrapper for NewSet that takes a path instead of an
// io.Reader, transparently decompressing gzipped inputs.
func NewSetFromPath(path string, opts SetOpts) (set Set, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		err = errors.E(errors.NotExist, err, "interval.NewSetFromPath: cannot open", path)
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return NewSet(reader, opts)
}
