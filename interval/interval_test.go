package interval

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

func TestNewSetBasic(t *testing.T) {
	input := strings.Join([]string{
		"chr1\t100\t200\tpeak1",
		"chr1\t300\t800\tpeak2",
		"chr2\t50\t90",
		"",
		"chr2\t120\t140\tpeak4\textra",
	}, "\n")
	set, err := NewSet(strings.NewReader(input), SetOpts{})
	assert.NoError(t, err)
	expect.EQ(t, set.N(), 4)
	expect.EQ(t, set.Chroms(), []string{"chr1", "chr2"})

	chr1 := set.Bucket("chr1")
	assert.EQ(t, len(chr1), 2)
	expect.EQ(t, chr1[0].Chrom, "chr1")
	expect.EQ(t, chr1[0].Start, PosType(100))
	expect.EQ(t, chr1[0].End, PosType(200))
	expect.EQ(t, chr1[0].Line, "chr1\t100\t200\tpeak1")
	expect.EQ(t, chr1[1].Length(), PosType(500))

	chr2 := set.Bucket("chr2")
	assert.EQ(t, len(chr2), 2)
	expect.EQ(t, chr2[1].Line, "chr2\t120\t140\tpeak4\textra")

	expect.Nil(t, set.Bucket("chr3"))
}

func TestNewSetSkipsMalformedRecords(t *testing.T) {
	input := strings.Join([]string{
		"chr1\t100\t200",
		"chr1\tonly-two",
		"chr1\tnot\tnumeric",
		"chr1\t500\t600",
	}, "\n")
	set, err := NewSet(strings.NewReader(input), SetOpts{})
	assert.NoError(t, err)
	expect.EQ(t, set.N(), 2)
	expect.EQ(t, len(set.Bucket("chr1")), 2)
}

func TestNewSetHeader(t *testing.T) {
	input := "chrom\tstart\tend\nchr1\t100\t200\n"
	set, err := NewSet(strings.NewReader(input), SetOpts{HasHeader: true})
	assert.NoError(t, err)
	expect.EQ(t, set.Header(), "chrom\tstart\tend")
	expect.EQ(t, set.N(), 1)
}

func TestNewSetExcludeChrom(t *testing.T) {
	input := strings.Join([]string{
		"chr1\t100\t200",
		"chrM\t10\t20",
		"chr7_random\t30\t40",
		"chr2\t100\t200",
	}, "\n")
	set, err := NewSet(strings.NewReader(input), SetOpts{ExcludeChrom: "chrM|_random"})
	assert.NoError(t, err)
	expect.EQ(t, set.Chroms(), []string{"chr1", "chr2"})
	expect.EQ(t, set.N(), 2)

	// Empty pattern keeps everything.
	set, err = NewSet(strings.NewReader(input), SetOpts{})
	assert.NoError(t, err)
	expect.EQ(t, set.N(), 4)

	_, err = NewSet(strings.NewReader(input), SetOpts{ExcludeChrom: "("})
	expect.NotNil(t, err)
}

func TestNewSetAnchorColumn(t *testing.T) {
	input := strings.Join([]string{
		"chr1\t100\t200\t150",
		"chr1\t300\t800\tnot-a-number",
		"chr1\t900\t950",
	}, "\n")
	set, err := NewSet(strings.NewReader(input), SetOpts{AnchorColumn: 3})
	assert.NoError(t, err)
	chr1 := set.Bucket("chr1")
	assert.EQ(t, len(chr1), 3)
	expect.True(t, chr1[0].HasAnchor)
	expect.EQ(t, chr1[0].Anchor, PosType(150))
	expect.EQ(t, chr1[0].Center(), PosType(150))
	expect.False(t, chr1[1].HasAnchor)
	expect.EQ(t, chr1[1].Center(), PosType(550))
	expect.False(t, chr1[2].HasAnchor)
}

func TestNewSetValidateSorted(t *testing.T) {
	sorted := "chr1\t100\t200\nchr2\t50\t60\nchr1\t300\t400\n"
	_, err := NewSet(strings.NewReader(sorted), SetOpts{ValidateSorted: true})
	expect.NoError(t, err)

	unsorted := "chr1\t300\t400\nchr1\t100\t200\n"
	_, err = NewSet(strings.NewReader(unsorted), SetOpts{ValidateSorted: true})
	expect.NotNil(t, err)

	// The check is opt-in: without it the loader accepts the input as-is.
	set, err := NewSet(strings.NewReader(unsorted), SetOpts{})
	expect.NoError(t, err)
	expect.EQ(t, set.N(), 2)
}

func TestNewSetSwappedBoundaries(t *testing.T) {
	// Some producers swap start/end to encode strand; the loader keeps the
	// record as-is.
	set, err := NewSet(strings.NewReader("chr1\t200\t100\n"), SetOpts{})
	assert.NoError(t, err)
	e := set.Bucket("chr1")[0]
	expect.EQ(t, e.Start, PosType(200))
	expect.EQ(t, e.End, PosType(100))
	expect.EQ(t, e.Length(), PosType(100))
}

func TestNewSetFromPath(t *testing.T) {
	dir := t.TempDir()
	content := "chr1\t100\t200\tpeak1\nchr1\t300\t400\tpeak2\n"

	plain := filepath.Join(dir, "test.bed")
	assert.NoError(t, ioutil.WriteFile(plain, []byte(content), 0644))

	zipped := filepath.Join(dir, "test.bed.gz")
	var buf strings.Builder
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, zw.Close())
	assert.NoError(t, ioutil.WriteFile(zipped, []byte(buf.String()), 0644))

	for _, path := range []string{plain, zipped} {
		set, err := NewSetFromPath(path, SetOpts{})
		assert.NoError(t, err)
		expect.EQ(t, set.N(), 2)
		expect.EQ(t, set.Bucket("chr1")[1].Line, "chr1\t300\t400\tpeak2")
	}

	_, err = NewSetFromPath(filepath.Join(dir, "missing.bed"), SetOpts{})
	expect.NotNil(t, err)
}

func TestChromOrderSAMHeader(t *testing.T) {
	chr2, _ := sam.NewReference("chr2", "", "", 2000, nil, nil)
	chr10, _ := sam.NewReference("chr10", "", "", 1000, nil, nil)
	chr1, _ := sam.NewReference("chr1", "", "", 1000, nil, nil)
	hdr, _ := sam.NewHeader(nil, []*sam.Reference{chr2, chr10, chr1})

	input := strings.Join([]string{
		"chr1\t100\t200",
		"chr10\t100\t200",
		"chr2\t100\t200",
		"chrUn_gl000220\t1\t2",
	}, "\n")
	set, err := NewSet(strings.NewReader(input), SetOpts{SAMHeader: hdr})
	assert.NoError(t, err)
	// Header references first, in dictionary order; unknown chromosomes
	// follow lexicographically.
	expect.EQ(t, set.Chroms(), []string{"chr2", "chr10", "chr1", "chrUn_gl000220"})
}
