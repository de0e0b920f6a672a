// Package cigarops implements the CIGAR algebra used to keep merged
// and standardized alignment records well formed: operation
// classification, the external-insertion and internal-soft-clip
// rewrite rules, and run-length coalescing of adjacent identical
// operations.
package cigarops

import (
	"github.com/grailbio/hts/sam"

	"github.com/dnmtools/format/internal/ferrors"
)

// consumeTable mirrors the 9-entry table from the SAM spec: for each
// CigarOpType, whether it advances the reference cursor and/or the
// query cursor. Kept local (rather than relying on sam.CigarOpType's
// own accounting) because C1 owns this classification.
var consumeTable = [...]struct{ ref, query bool }{
	sam.CigarMatch:      {true, true},
	sam.CigarInsertion:  {false, true},
	sam.CigarDeletion:   {true, false},
	sam.CigarSkipped:    {true, false},
	sam.CigarSoftClipped: {false, true},
	sam.CigarHardClipped: {false, false},
	sam.CigarPadded:     {false, false},
	sam.CigarEqual:      {true, true},
	sam.CigarMismatch:   {true, true},
}

// ConsumesRef reports whether op advances the reference cursor.
func ConsumesRef(op sam.CigarOp) bool {
	return consumeTable[op.Type()].ref
}

// ConsumesQuery reports whether op advances the query cursor.
func ConsumesQuery(op sam.CigarOp) bool {
	return consumeTable[op.Type()].query
}

// RefLen returns the total reference span consumed by cig.
func RefLen(cig sam.Cigar) int {
	n := 0
	for _, op := range cig {
		if ConsumesRef(op) {
			n += op.Len()
		}
	}
	return n
}

// QueryLen returns the total query length consumed by cig.
func QueryLen(cig sam.Cigar) int {
	n := 0
	for _, op := range cig {
		if ConsumesQuery(op) {
			n += op.Len()
		}
	}
	return n
}

func toSoftClip(op sam.CigarOp) sam.CigarOp { return sam.NewCigarOp(sam.CigarSoftClipped, op.Len()) }
func toInsertion(op sam.CigarOp) sam.CigarOp { return sam.NewCigarOp(sam.CigarInsertion, op.Len()) }

// FixExternalInsertions walks from each end of cig toward the middle,
// converting every leading/trailing operation that does not consume
// the reference into a soft-clip of the same length. A cigar of fewer
// than two operations is left unchanged and never fails; otherwise it
// returns ferrors.ErrCigarEatsNoRef if cig has no reference-consuming
// operation at all.
func FixExternalInsertions(cig sam.Cigar) error {
	if len(cig) < 2 {
		return nil
	}

	i := 0
	for i < len(cig) && !ConsumesRef(cig[i]) {
		cig[i] = toSoftClip(cig[i])
		i++
	}
	if i == len(cig) {
		return ferrors.ErrCigarEatsNoRef
	}

	j := len(cig) - 1
	for j > 0 && !ConsumesRef(cig[j]) {
		cig[j] = toSoftClip(cig[j])
		j--
	}
	return nil
}

// FixInternalSoftclips locates the first and last reference-consuming
// operations in cig and converts every soft-clip strictly between
// them into an insertion of the same length. This models a
// soft-clipped tail that was shifted into the interior of a cigar by
// a prior merge.
func FixInternalSoftclips(cig sam.Cigar) error {
	if len(cig) < 3 {
		return nil
	}

	beg := 0
	for beg < len(cig) && !ConsumesRef(cig[beg]) {
		beg++
	}
	if beg == len(cig) {
		return ferrors.ErrCigarEatsNoRef
	}

	end := len(cig) - 1
	for end > beg && !ConsumesRef(cig[end]) {
		end--
	}

	for i := beg + 1; i < end; i++ {
		if cig[i].Type() == sam.CigarSoftClipped {
			cig[i] = toInsertion(cig[i])
		}
	}
	return nil
}

// Coalesce collapses maximal runs of identical adjacent operation
// codes in cig into a single operation whose length is the sum. It
// returns the reduced slice (sharing cig's backing array), whose
// length is the new length n'; callers are responsible for reporting
// the size delta (len(cig) - n') to whatever container owns the cigar
// bytes.
func Coalesce(cig sam.Cigar) sam.Cigar {
	if len(cig) < 2 {
		return cig
	}
	dst := 0
	for src := 1; src < len(cig); src++ {
		if cig[dst].Type() == cig[src].Type() {
			cig[dst] = sam.NewCigarOp(cig[dst].Type(), cig[dst].Len()+cig[src].Len())
		} else {
			dst++
			cig[dst] = cig[src]
		}
	}
	return cig[:dst+1]
}

// Normalize runs the three rewrite passes in the required order —
// external-insertion fix, internal-soft-clip fix, coalesce — and
// returns the normalized cigar along with the number of operations
// removed by coalescing (the delta a packed BAM record would shift
// seq/qual/aux by; bsrecord.NormalizeCigar does not need it, since
// sam.Record keeps the cigar in its own slice).
func Normalize(cig sam.Cigar) (sam.Cigar, int, error) {
	if err := FixExternalInsertions(cig); err != nil {
		return nil, 0, err
	}
	if err := FixInternalSoftclips(cig); err != nil {
		return nil, 0, err
	}
	before := len(cig)
	cig = Coalesce(cig)
	return cig, before - len(cig), nil
}

// GetFullAndPartialOps returns the count k of leading operations in
// cig whose cumulative reference consumption is <= nRef, and the
// residual length from operation k needed to reach exactly nRef
// reference bases. A partial operation should only be emitted by the
// caller when k < len(cig) && partial > 0 — this split is shared by
// the head-overlap and dovetail merge strategies in internal/bsrecord
// to avoid divergent tie-breaking between the two call sites.
func GetFullAndPartialOps(cig sam.Cigar, nRef int) (k int, partial int) {
	rlen := 0
	for k = 0; k < len(cig); k++ {
		if ConsumesRef(cig[k]) {
			if rlen+cig[k].Len() > nRef {
				break
			}
			rlen += cig[k].Len()
		}
	}
	return k, nRef - rlen
}
