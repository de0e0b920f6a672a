package bsrecord

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnmtools/format/internal/bsseqtest"
)

func m(n int) sam.CigarOp { return sam.NewCigarOp(sam.CigarMatch, n) }

func TestPosAndEndPos(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	r := bsseqtest.Record(h, "read1", 100, false, sam.Cigar{m(36)}, "ACGTACGTACGTACGTACGTACGTACGTACGTACGT")
	assert.Equal(t, 100, Pos(r))
	assert.Equal(t, 136, EndPos(r))
}

func TestTIDUnmappedIsNegativeOne(t *testing.T) {
	r := &sam.Record{}
	assert.Equal(t, -1, TID(r))
}

func TestIsReverse(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	fwd := bsseqtest.Record(h, "r", 0, false, sam.Cigar{m(4)}, "ACGT")
	rev := bsseqtest.Record(h, "r", 0, true, sam.Cigar{m(4)}, "ACGT")
	assert.False(t, IsReverse(fwd))
	assert.True(t, IsReverse(rev))
}

func TestSameNameRespectsSuffixAndLength(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	a := bsseqtest.Record(h, "frag1/1", 0, false, sam.Cigar{m(4)}, "ACGT")
	b := bsseqtest.Record(h, "frag1/2", 0, true, sam.Cigar{m(4)}, "ACGT")
	assert.True(t, SameName(a, b, 1))
	assert.False(t, SameName(a, b, 0))

	c := bsseqtest.Record(h, "frag22/1", 0, true, sam.Cigar{m(4)}, "ACGT")
	assert.False(t, SameName(a, c, 1))
}

func TestFlipConversionTogglesStrandAndCV(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	r := bsseqtest.WithCV(bsseqtest.Record(h, "r", 0, false, sam.Cigar{m(4)}, "ACGT"), 'A')
	require.NoError(t, FlipConversion(r))
	assert.True(t, IsReverse(r))
	cv, err := cvValue(r)
	require.NoError(t, err)
	assert.Equal(t, byte('T'), cv)
	arich, err := IsARich(r)
	require.NoError(t, err)
	assert.False(t, arich)
}

func TestNormalizeCigarCoalescesAndShrinks(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	r := bsseqtest.Record(h, "r", 0, false, sam.Cigar{m(4), m(4)}, "ACGTACGT")
	require.NoError(t, NormalizeCigar(r))
	assert.Equal(t, sam.Cigar{m(8)}, r.Cigar)
}
