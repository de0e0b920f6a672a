package suffix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnmtools/format/internal/ferrors"
)

func TestGuessLengthFindsCommonMateSuffix(t *testing.T) {
	names := []string{"read1/1", "read1/2", "read2/1", "read2/2", "read3/1", "read3/2"}
	length, trivial, err := GuessLength(names)
	require.NoError(t, err)
	assert.False(t, trivial)
	assert.Equal(t, 1, length)
}

func TestGuessLengthShortNamesReturnsZero(t *testing.T) {
	names := []string{"A", "B", "C"}
	length, trivial, err := GuessLength(names)
	require.NoError(t, err)
	assert.True(t, trivial)
	assert.Equal(t, 0, length)
}

func TestGuessLengthTripletsFail(t *testing.T) {
	names := []string{"read1/1", "read1/2", "read1/3"}
	_, _, err := GuessLength(names)
	assert.ErrorIs(t, err, ferrors.ErrSuffixIndeterminate)
}

func TestVerifyLengthRejectsTooLong(t *testing.T) {
	names := []string{"read1/1", "read1/2"}
	err := VerifyLength(names, 10)
	assert.ErrorIs(t, err, ferrors.ErrSuffixIndeterminate)
}

func TestVerifyLengthAcceptsGoodLength(t *testing.T) {
	names := []string{"read1/1", "read1/2", "read2/1", "read2/2"}
	assert.NoError(t, VerifyLength(names, 1))
}

func TestVerifyAdjacencyDetectsNonConsecutiveMates(t *testing.T) {
	names := []string{"read1/1", "read2/1", "read1/2", "read2/2"}
	err := VerifyAdjacency(names, 1)
	assert.ErrorIs(t, err, ferrors.ErrMatesNotConsecutive)
}

func TestVerifyAdjacencyAcceptsConsecutiveMates(t *testing.T) {
	names := []string{"read1/1", "read1/2", "read2/1", "read2/2"}
	assert.NoError(t, VerifyAdjacency(names, 1))
}
