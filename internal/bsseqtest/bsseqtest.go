// Package bsseqtest provides shared *sam.Record builders for tests
// across this module, modeled on markduplicates/testutils.go.
package bsseqtest

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

// Chrom returns a *sam.Header with a single reference named name of
// the given length, for tests that only need one contig.
func Chrom(name string, length int) *sam.Header {
	ref, err := sam.NewReference(name, "", "", length, nil, nil)
	if err != nil {
		panic(err)
	}
	h, err := sam.NewHeader(nil, []*sam.Reference{ref})
	if err != nil {
		panic(err)
	}
	return h
}

// Record builds a mapped record with the given name, position,
// strand, cigar, and ungapped base sequence (Seq is packed via
// sam.NewSeq; Qual is filled with the placeholder base quality 30).
func Record(header *sam.Header, name string, pos int, reverse bool, cigar sam.Cigar, seq string) *sam.Record {
	r := &sam.Record{
		Name:    name,
		Ref:     header.Refs()[0],
		Pos:     pos,
		MapQ:    30,
		Cigar:   cigar,
		Flags:   sam.Paired | sam.ProperPair,
		MateRef: header.Refs()[0],
		MatePos: pos,
		Seq:     sam.NewSeq([]byte(seq)),
		Qual:    make([]byte, len(seq)),
	}
	for i := range r.Qual {
		r.Qual[i] = 30
	}
	if reverse {
		r.Flags |= sam.Reverse
	}
	return r
}

// WithNM appends an NM aux tag to r and returns r.
func WithNM(r *sam.Record, nm int) *sam.Record {
	aux, err := sam.NewAux(sam.NewTag("NM"), int32(nm))
	if err != nil {
		panic(fmt.Sprintf("bsseqtest: NM tag: %v", err))
	}
	r.AuxFields = append(r.AuxFields, aux)
	return r
}

// WithCV appends a CV aux tag (character type, 'A' or 'T') to r and
// returns r.
func WithCV(r *sam.Record, cv byte) *sam.Record {
	tag := sam.NewTag("CV")
	r.AuxFields = append(r.AuxFields, sam.Aux([]byte{tag[0], tag[1], 'A', cv}))
	return r
}

// WithZS appends a ZS aux tag (BSMAP-style two-character strand
// string, e.g. "++"/"+-") to r and returns r.
func WithZS(r *sam.Record, zs string) *sam.Record {
	aux, err := sam.NewAux(sam.NewTag("ZS"), zs)
	if err != nil {
		panic(fmt.Sprintf("bsseqtest: ZS tag: %v", err))
	}
	r.AuxFields = append(r.AuxFields, aux)
	return r
}

// WithXR appends an XR aux tag (Bismark-style conversion string, e.g.
// "CT"/"GA") to r and returns r.
func WithXR(r *sam.Record, xr string) *sam.Record {
	aux, err := sam.NewAux(sam.NewTag("XR"), xr)
	if err != nil {
		panic(fmt.Sprintf("bsseqtest: XR tag: %v", err))
	}
	r.AuxFields = append(r.AuxFields, aux)
	return r
}

// AsMate marks r as read1 or read2 and points its mate fields at
// other, matching a proper pair's flag conventions.
func AsMate(r, other *sam.Record, read1 bool) *sam.Record {
	if read1 {
		r.Flags |= sam.Read1
	} else {
		r.Flags |= sam.Read2
	}
	r.MateRef = other.Ref
	r.MatePos = other.Pos
	if other.Flags&sam.Reverse != 0 {
		r.Flags |= sam.MateReverse
	}
	return r
}
