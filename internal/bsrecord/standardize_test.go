package bsrecord

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnmtools/format/internal/bsseqtest"
)

func TestStandardizeAbismalIsNoOpBesidesQual(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	r := bsseqtest.WithCV(bsseqtest.WithNM(
		bsseqtest.Record(h, "r", 0, false, sam.Cigar{m(4)}, "ACGT"), 1), 'T')
	require.NoError(t, Standardize(Abismal, r))
	for _, q := range r.Qual {
		assert.Equal(t, byte(0xFF), q)
	}
	cv, err := cvValue(r)
	require.NoError(t, err)
	assert.Equal(t, byte('T'), cv)
}

func TestStandardizeBsmapDerivesCVFromZS(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	r := bsseqtest.WithNM(bsseqtest.WithZS(
		bsseqtest.Record(h, "r", 0, true, sam.Cigar{m(4)}, "ACGT"), "+-"), 2)
	require.NoError(t, Standardize(Bsmap, r))
	cv, err := cvValue(r)
	require.NoError(t, err)
	assert.Equal(t, byte('A'), cv)
	nm, err := getNM(r)
	require.NoError(t, err)
	assert.Equal(t, int64(2), nm)
	assert.Len(t, r.AuxFields, 2)
}

func TestStandardizeBismarkDerivesCVFromXR(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	r := bsseqtest.WithNM(bsseqtest.WithXR(
		bsseqtest.Record(h, "r", 0, false, sam.Cigar{m(4)}, "ACGT"), "GA"), 3)
	require.NoError(t, Standardize(Bismark, r))
	cv, err := cvValue(r)
	require.NoError(t, err)
	assert.Equal(t, byte('A'), cv)
}

func TestStandardizeUnsupportedFormat(t *testing.T) {
	h := bsseqtest.Chrom("chr1", 1000)
	r := bsseqtest.Record(h, "r", 0, false, sam.Cigar{m(4)}, "ACGT")
	err := Standardize(Format("unknown"), r)
	assert.Error(t, err)
}
