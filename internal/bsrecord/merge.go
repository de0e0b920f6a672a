package bsrecord

import (
	"github.com/grailbio/hts/sam"

	"github.com/dnmtools/format/internal/cigarops"
	"github.com/dnmtools/format/internal/ferrors"
	"github.com/dnmtools/format/internal/packedseq"
)

// areMates checks the merge preconditions: the two records must name
// the same reference position for each other's mate fields and sit on
// opposite strands.
func areMates(one, two *sam.Record) bool {
	return TID(one) == mateTID(two) && one.MatePos == two.Pos &&
		mateTID(one) == TID(two) && one.Pos == two.MatePos &&
		IsReverse(one) != IsReverse(two)
}

func mateTID(r *sam.Record) int {
	if r.MateRef == nil {
		return -1
	}
	return r.MateRef.ID()
}

// MergeMates implements the four-case mate-merging decision in
// spec.md §4.5. one is the left (forward-strand) mate, two the right
// (reverse-strand) mate. On success it returns the fragment span
// (two.endpos() - one.pos()) and fills merged with the synthesized
// record; the caller compares the span against 0 and maxFragLen to
// decide whether to actually use it. If the two records fail the
// mate-adjacency precondition, it returns ferrors.ErrNotMates and the
// caller must emit both records unmerged.
func MergeMates(one, two, merged *sam.Record) (int, error) {
	if !areMates(one, two) {
		return 0, ferrors.ErrNotMates
	}

	oneS, oneE := Pos(one), EndPos(one)
	twoS, twoE := Pos(two), EndPos(two)

	spacer := twoS - oneE
	var err error
	switch {
	case spacer >= 0:
		err = mergeNonOverlap(one, two, spacer, merged)
	default:
		head := twoS - oneS
		switch {
		case head > 0:
			err = mergeOverlap(one, two, head, merged)
		case head == 0:
			keepBetterEnd(one, two, merged)
		default:
			overlap := twoE - oneS
			if overlap > 0 {
				err = truncateOverlap(one, overlap, merged)
			} else {
				return 0, ferrors.ErrNotMates
			}
		}
	}
	if err != nil {
		return 0, err
	}

	if err := NormalizeCigar(merged); err != nil {
		return 0, err
	}
	return twoE - oneS, nil
}

// baseFlags keeps only the strand/read1/read2 bits of r, the flag
// contribution every merge strategy shares.
func baseFlags(r *sam.Record) sam.Flags {
	return r.Flags & mergeFlagMask
}

// mergeNonOverlap handles spacer >= 0: concatenate the two cigars
// with a reference-skip ('N') of length spacer between them, and
// append the reverse complement of b's whole packed sequence to a's
// (no overlap to resolve).
func mergeNonOverlap(a, b *sam.Record, spacer int, c *sam.Record) error {
	cCig := make(sam.Cigar, 0, len(a.Cigar)+len(b.Cigar)+1)
	cCig = append(cCig, a.Cigar...)
	cCig = append(cCig, sam.NewCigarOp(sam.CigarSkipped, spacer))
	cCig = append(cCig, b.Cigar...)

	aSeqLen := a.Seq.Length
	bSeqLen := b.Seq.Length
	cSeqLen := aSeqLen + bSeqLen

	initMerged(c, a, cCig, cSeqLen)

	packedseq.Concat(a.Seq.Seq, b.Seq.Seq, c.Seq.Seq, aSeqLen, bSeqLen)

	return sumNM(a, b, c)
}

// mergeOverlap handles spacer < 0 && head > 0: keep the prefix of a's
// cigar that consumes the first `head` reference bases (splitting a
// partial operation if needed), then append all of b's cigar, fusing
// the boundary operations if they share a code.
func mergeOverlap(a, b *sam.Record, head int, c *sam.Record) error {
	k, partial := cigarops.GetFullAndPartialOps(a.Cigar, head)
	usePartial := k < len(a.Cigar) && partial > 0

	var prefix sam.Cigar
	prefix = append(prefix, a.Cigar[:k]...)
	if usePartial {
		prefix = append(prefix, sam.NewCigarOp(a.Cigar[k].Type(), partial))
	}

	mergeMid := len(prefix) > 0 && len(b.Cigar) > 0 && prefix[len(prefix)-1].Type() == b.Cigar[0].Type()

	cCig := make(sam.Cigar, 0, len(prefix)+len(b.Cigar))
	cCig = append(cCig, prefix...)
	aSeqLen := cigarops.QueryLen(cCig)
	if mergeMid {
		last := cCig[len(cCig)-1]
		cCig[len(cCig)-1] = sam.NewCigarOp(last.Type(), last.Len()+b.Cigar[0].Len())
		cCig = append(cCig, b.Cigar[1:]...)
	} else {
		cCig = append(cCig, b.Cigar...)
	}

	cSeqLen := aSeqLen + b.Seq.Length

	initMerged(c, a, cCig, cSeqLen)

	packedseq.Concat(a.Seq.Seq, b.Seq.Seq, c.Seq.Seq, aSeqLen, b.Seq.Length)

	return sumNM(a, b, c)
}

// truncateOverlap handles spacer < 0 && head < 0 && overlap > 0 (the
// dovetail case): truncate a's cigar to its first `overlap` reference
// bases; b is discarded entirely, and only the matching prefix of a's
// packed sequence is copied.
func truncateOverlap(a *sam.Record, overlap int, c *sam.Record) error {
	k, partial := cigarops.GetFullAndPartialOps(a.Cigar, overlap)
	usePartial := k < len(a.Cigar) && partial > 0

	cCig := make(sam.Cigar, 0, k+1)
	cCig = append(cCig, a.Cigar[:k]...)
	if usePartial {
		cCig = append(cCig, sam.NewCigarOp(a.Cigar[k].Type(), partial))
	}

	cSeqLen := cigarops.QueryLen(cCig)

	initMerged(c, a, cCig, cSeqLen)

	copy(c.Seq.Seq, a.Seq.Seq[:packedseq.NumBytes(cSeqLen)])
	if cSeqLen%2 == 1 {
		c.Seq.Seq[len(c.Seq.Seq)-1] &= 0xf0
	}

	nm, err := getNM(a)
	if err != nil {
		return err
	}
	return setOnlyNMAndCV(c, nm, mustCV(a))
}

// keepBetterEnd handles spacer < 0 && head == 0: the two mates start
// at the same reference position, so keep whichever has the larger
// reference span and turn it into a standalone merged record.
func keepBetterEnd(a, b *sam.Record, c *sam.Record) {
	src := a
	if cigarops.RefLen(b.Cigar) > cigarops.RefLen(a.Cigar) {
		src = b
	}
	// Deep-copy the mutable fields: c must not alias src's backing
	// arrays, since src may still be emitted unmerged by the caller
	// if the driver decides against using this merge after all, and
	// NormalizeCigar mutates its cigar slice in place.
	*c = *src
	c.Cigar = append(sam.Cigar(nil), src.Cigar...)
	c.Seq.Seq = append([]sam.Doublet(nil), src.Seq.Seq...)
	c.Qual = append([]byte(nil), src.Qual...)
	c.AuxFields = append(sam.AuxFields(nil), src.AuxFields...)
	clearMateFields(c)
	c.TempLen = cigarops.RefLen(c.Cigar)
}

// initMerged sets up c's coordinate, flag, mapq, and sequence/cigar
// shape for any of the overlap/non-overlap merge strategies. Sequence
// and aux contents are filled in by the caller afterward.
func initMerged(c, left *sam.Record, cig sam.Cigar, seqLen int) {
	c.Name = left.Name
	c.Ref = left.Ref
	c.Pos = left.Pos
	c.MapQ = left.MapQ
	c.Cigar = cig
	c.Flags = baseFlags(left)
	c.MateRef = nil
	c.MatePos = -1
	c.TempLen = cigarops.RefLen(cig)
	c.Seq = sam.Seq{Length: seqLen, Seq: make([]sam.Doublet, packedseq.NumBytes(seqLen))}
	c.Qual = make([]byte, seqLen)
	for i := range c.Qual {
		c.Qual[i] = 0xFF
	}
	c.AuxFields = nil
}

func sumNM(a, b, c *sam.Record) error {
	nmA, err := getNM(a)
	if err != nil {
		return err
	}
	nmB, err := getNM(b)
	if err != nil {
		return err
	}
	return setOnlyNMAndCV(c, nmA+nmB, mustCV(a))
}

// mustCV returns r's CV value, defaulting to 'T' if the tag is
// somehow absent; by the time MergeMates runs, Standardize has
// already guaranteed CV is present on every record.
func mustCV(r *sam.Record) byte {
	cv, err := cvValue(r)
	if err != nil {
		return 'T'
	}
	return cv
}
