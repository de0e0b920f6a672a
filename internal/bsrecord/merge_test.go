package bsrecord

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnmtools/format/internal/bsseqtest"
	"github.com/dnmtools/format/internal/ferrors"
)

func skip(n int) sam.CigarOp { return sam.NewCigarOp(sam.CigarSkipped, n) }

func mate(h *sam.Header, name string, pos int, reverse bool, cig sam.Cigar, seq string, nm int) *sam.Record {
	r := bsseqtest.WithCV(bsseqtest.WithNM(
		bsseqtest.Record(h, name, pos, reverse, cig, seq), nm), 'T')
	return r
}

func TestMergeMatesNonOverlapInsertsSkip(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	a := mate(h, "r", 0, false, sam.Cigar{m(10)}, "AAAAAAAAAA", 1)
	b := mate(h, "r", 15, true, sam.Cigar{m(10)}, "CCCCCCCCCC", 2)
	bsseqtest.AsMate(a, b, true)
	bsseqtest.AsMate(b, a, false)

	var merged sam.Record
	span, err := MergeMates(a, b, &merged)
	require.NoError(t, err)
	assert.Equal(t, 25, span)
	assert.Equal(t, sam.Cigar{m(10), skip(5), m(10)}, merged.Cigar)
	assert.Equal(t, 20, merged.Seq.Length)
	assert.Nil(t, merged.MateRef)
	assert.Equal(t, -1, merged.MatePos)

	nm, err := getNM(&merged)
	require.NoError(t, err)
	assert.Equal(t, int64(3), nm)
	cv, err := cvValue(&merged)
	require.NoError(t, err)
	assert.Equal(t, byte('T'), cv)
}

func TestMergeMatesOverlapSplitsCigar(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	a := mate(h, "r", 0, false, sam.Cigar{m(10)}, "AAAAAAAAAA", 1)
	b := mate(h, "r", 5, true, sam.Cigar{m(10)}, "CCCCCCCCCC", 1)
	bsseqtest.AsMate(a, b, true)
	bsseqtest.AsMate(b, a, false)

	var merged sam.Record
	span, err := MergeMates(a, b, &merged)
	require.NoError(t, err)
	assert.Equal(t, 15, span)
	assert.Equal(t, sam.Cigar{m(15)}, merged.Cigar)
	assert.Equal(t, 15, merged.Seq.Length)
}

func TestMergeMatesKeepBetterEndPicksLongerSpan(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	a := mate(h, "r", 0, false, sam.Cigar{m(10)}, "AAAAAAAAAA", 1)
	b := mate(h, "r", 0, true, sam.Cigar{m(15)}, "CCCCCCCCCCCCCCC", 2)
	bsseqtest.AsMate(a, b, true)
	bsseqtest.AsMate(b, a, false)

	var merged sam.Record
	span, err := MergeMates(a, b, &merged)
	require.NoError(t, err)
	assert.Equal(t, 15, span)
	assert.Equal(t, sam.Cigar{m(15)}, merged.Cigar)
	assert.Equal(t, 0, merged.Pos)
	assert.Equal(t, 15, merged.TempLen)
	assert.Nil(t, merged.MateRef)
	assert.Equal(t, -1, merged.MatePos)

	nm, err := getNM(&merged)
	require.NoError(t, err)
	assert.Equal(t, int64(2), nm)

	// merged must not alias b's backing arrays.
	merged.Cigar[0] = m(999)
	assert.Equal(t, sam.Cigar{m(15)}, b.Cigar)
}

func TestMergeMatesDovetailTruncatesToOverlap(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	a := mate(h, "r", 10, false, sam.Cigar{m(10)}, "AAAAAAAAAA", 1)
	b := mate(h, "r", 5, true, sam.Cigar{m(10)}, "CCCCCCCCCC", 1)
	bsseqtest.AsMate(a, b, true)
	bsseqtest.AsMate(b, a, false)

	var merged sam.Record
	span, err := MergeMates(a, b, &merged)
	require.NoError(t, err)
	assert.Equal(t, 5, span)
	assert.Equal(t, sam.Cigar{m(5)}, merged.Cigar)
	assert.Equal(t, 5, merged.Seq.Length)
	assert.Equal(t, 10, merged.Pos)

	nm, err := getNM(&merged)
	require.NoError(t, err)
	assert.Equal(t, int64(1), nm)
}

func TestMergeMatesSameStrandIsNotMates(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	a := mate(h, "r", 0, false, sam.Cigar{m(10)}, "AAAAAAAAAA", 1)
	b := mate(h, "r", 15, false, sam.Cigar{m(10)}, "CCCCCCCCCC", 1)
	bsseqtest.AsMate(a, b, true)
	bsseqtest.AsMate(b, a, false)

	var merged sam.Record
	_, err := MergeMates(a, b, &merged)
	assert.ErrorIs(t, err, ferrors.ErrNotMates)
}

func TestMergeMatesDovetailWithNoOverlapIsNotMates(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	a := mate(h, "r", 20, false, sam.Cigar{m(5)}, "AAAAA", 1)
	b := mate(h, "r", 0, true, sam.Cigar{m(5)}, "CCCCC", 1)
	bsseqtest.AsMate(a, b, true)
	bsseqtest.AsMate(b, a, false)

	var merged sam.Record
	_, err := MergeMates(a, b, &merged)
	assert.ErrorIs(t, err, ferrors.ErrNotMates)
}
