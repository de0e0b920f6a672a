package packedseq

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unpack(seq []sam.Doublet, qlen int) string {
	const bases = "=ACMGRSVTWYHKDBN"
	out := make([]byte, qlen)
	for i := 0; i < qlen; i++ {
		b := seq[i/2]
		if i%2 == 0 {
			out[i] = bases[b>>4]
		} else {
			out[i] = bases[b&0xf]
		}
	}
	return string(out)
}

func pack(t *testing.T, s string) []sam.Doublet {
	t.Helper()
	return sam.NewSeq([]byte(s)).Seq
}

func TestReverseComplementEvenLength(t *testing.T) {
	seq := pack(t, "ACGT")
	ReverseComplement(seq, 4)
	assert.Equal(t, "ACGT", unpack(seq, 4))
}

func TestReverseComplementOddLength(t *testing.T) {
	seq := pack(t, "AACGT")
	ReverseComplement(seq, 5)
	assert.Equal(t, "ACGTT", unpack(seq, 5))
}

func TestReverseComplementIsInvolution(t *testing.T) {
	original := "GATTACAGATTACA"
	seq := pack(t, original)
	ReverseComplement(seq, len(original))
	ReverseComplement(seq, len(original))
	assert.Equal(t, original, unpack(seq, len(original)))
}

func TestNumBytes(t *testing.T) {
	assert.Equal(t, 0, NumBytes(0))
	assert.Equal(t, 1, NumBytes(1))
	assert.Equal(t, 1, NumBytes(2))
	assert.Equal(t, 2, NumBytes(3))
	assert.Equal(t, 2, NumBytes(4))
}

func TestConcatEvenEven(t *testing.T) {
	a := pack(t, "AACC")
	b := pack(t, "GGTT")
	c := make([]sam.Doublet, NumBytes(8))
	Concat(a, b, c, 4, 4)
	// b is reverse-complemented before appending, per the merge algebra.
	assert.Equal(t, "AACCAACC", unpack(c, 8))
}

func TestConcatOddA(t *testing.T) {
	a := pack(t, "AAA")
	b := pack(t, "GGTT")
	c := make([]sam.Doublet, NumBytes(7))
	Concat(a, b, c, 3, 4)
	assert.Equal(t, "AAAAACC", unpack(c, 7))
}

func TestConcatOddB(t *testing.T) {
	a := pack(t, "AACC")
	b := pack(t, "GGT")
	c := make([]sam.Doublet, NumBytes(7))
	Concat(a, b, c, 4, 3)
	assert.Equal(t, "AACCACC", unpack(c, 7))
}

func TestConcatOddBoth(t *testing.T) {
	a := pack(t, "AAA")
	b := pack(t, "GGT")
	c := make([]sam.Doublet, NumBytes(6))
	Concat(a, b, c, 3, 3)
	assert.Equal(t, "AAAACC", unpack(c, 6))
}

func TestConcatPrefixOnly(t *testing.T) {
	a := pack(t, "AACCGGTT")
	b := pack(t, "TTTT")
	c := make([]sam.Doublet, NumBytes(4))
	Concat(a, b, c, 4, 0)
	assert.Equal(t, "AACC", unpack(c, 4))
}

func TestUnpackHelperAgreesWithNewSeq(t *testing.T) {
	s := sam.NewSeq([]byte("ACGTN"))
	require.Equal(t, "ACGTN", unpack(s.Seq, 5))
}
