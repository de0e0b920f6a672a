// Package bsrecord provides the typed view (C3) and per-mapper
// standardizer (C4) over *sam.Record described in spec.md §4.3-4.4.
// Callers outside this package should not reach into sam.Record's
// fields directly for anything pairing- or merge-related; this
// package is the single translation layer between spec vocabulary
// (pos, endpos, tid, CV) and the hts library's field names.
package bsrecord

import (
	"github.com/grailbio/hts/sam"

	"github.com/dnmtools/format/internal/cigarops"
	"github.com/dnmtools/format/internal/packedseq"
)

// mergeFlagMask is the set of flag bits that survive a merge or a
// keep-better-end decision: strand, read1, read2. Every other bit
// (paired, proper-pair, duplicate, ...) is dropped.
const mergeFlagMask = sam.Reverse | sam.Read1 | sam.Read2

// TID returns the reference index of r, or -1 if r is unmapped.
func TID(r *sam.Record) int {
	if r.Ref == nil {
		return -1
	}
	return r.Ref.ID()
}

// Pos returns the 0-based reference start of r.
func Pos(r *sam.Record) int {
	return r.Pos
}

// EndPos returns pos + the reference span consumed by r's cigar.
func EndPos(r *sam.Record) int {
	return r.Pos + cigarops.RefLen(r.Cigar)
}

// IsReverse reports whether r is flagged as mapped to the reverse
// strand.
func IsReverse(r *sam.Record) bool {
	return r.Flags&sam.Reverse != 0
}

// IsARich reports whether r's CV tag currently reads 'A'.
func IsARich(r *sam.Record) (bool, error) {
	cv, err := cvValue(r)
	if err != nil {
		return false, err
	}
	return cv == 'A', nil
}

// SameName reports whether a and b share a read name once the last
// suffLen bytes are stripped from each. Names of differing length
// never match (mirrors the C++ same_name, which first compares
// stripped lengths).
func SameName(a, b *sam.Record, suffLen int) bool {
	if len(a.Name) != len(b.Name) {
		return false
	}
	if len(a.Name) <= suffLen {
		return false
	}
	n := len(a.Name) - suffLen
	return a.Name[:n] == b.Name[:n]
}

// FlipConversion toggles the reverse-strand flag, reverse-complements
// the packed sequence in place, and resets CV to 'T'. This is applied
// to any record whose CV still reads 'A' right before it is emitted,
// so every output record ends up T-rich.
func FlipConversion(r *sam.Record) error {
	r.Flags ^= sam.Reverse
	packedseq.ReverseComplement(r.Seq.Seq, r.Seq.Length)
	return setCV(r, 'T')
}

// NormalizeCigar runs the C1 rewrite passes over r's cigar and
// shrinks it in place if coalescing removed operations. sam.Record's
// Cigar field is an independent slice (not packed inline with
// seq/qual/aux the way raw BAM bytes are), so unlike the C++
// original's byte-shifting trick, shrinking it here is just a
// reslice; no other field of r needs to move.
func NormalizeCigar(r *sam.Record) error {
	cig, _, err := cigarops.Normalize(r.Cigar)
	if err != nil {
		return err
	}
	r.Cigar = cig
	return nil
}

// clearMateFields sets mtid/mpos to the merged-record sentinel and
// keeps only the strand/read1/read2 flag bits, per spec.md's merged
// record invariants.
func clearMateFields(r *sam.Record) {
	r.MateRef = nil
	r.MatePos = -1
	r.Flags &= mergeFlagMask
}
