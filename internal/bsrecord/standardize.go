package bsrecord

import (
	"github.com/grailbio/hts/sam"

	"github.com/dnmtools/format/internal/ferrors"
	"github.com/dnmtools/format/internal/packedseq"
)

// Format names the supported input mappers (the -f flag's domain).
type Format string

const (
	Abismal Format = "abismal"
	Walt    Format = "walt"
	Bsmap   Format = "bsmap"
	Bismark Format = "bismark"
)

// ValidFormats lists the mapper names Standardize accepts.
var ValidFormats = []Format{Abismal, Walt, Bsmap, Bismark}

// Standardize rewrites r in place into the canonical form: at most
// two aux entries (NM, CV), qual blanked to 0xFF, and the packed
// sequence reverse-complemented if the record is on the reverse
// strand. abismal and walt output is already canonical and is left
// untouched apart from qual blanking.
func Standardize(format Format, r *sam.Record) error {
	switch format {
	case Abismal, Walt:
		// no-op: already canonical.
	case Bsmap:
		if err := standardizeBsmap(r); err != nil {
			return err
		}
	case Bismark:
		if err := standardizeBismark(r); err != nil {
			return err
		}
	default:
		return ferrors.ErrUnsupportedFormat
	}

	blankQual(r)
	return nil
}

func standardizeBsmap(r *sam.Record) error {
	zs, err := getString(r, zsTag)
	if err != nil {
		return err
	}
	if len(zs) < 2 {
		return ferrors.ErrAuxMissing
	}
	cv := byte('T')
	if zs[1] == '-' {
		cv = 'A'
	}

	nm, err := getNM(r)
	if err != nil {
		return err
	}

	if err := setOnlyNMAndCV(r, nm, cv); err != nil {
		return err
	}

	if IsReverse(r) {
		packedseq.ReverseComplement(r.Seq.Seq, r.Seq.Length)
	}
	return nil
}

func standardizeBismark(r *sam.Record) error {
	xr, err := getString(r, xrTag)
	if err != nil {
		return err
	}
	cv := byte('T')
	if xr == "GA" {
		cv = 'A'
	}

	nm, err := getNM(r)
	if err != nil {
		return err
	}

	if err := setOnlyNMAndCV(r, nm, cv); err != nil {
		return err
	}

	if IsReverse(r) {
		packedseq.ReverseComplement(r.Seq.Seq, r.Seq.Length)
	}
	return nil
}

// blankQual overwrites r's quality string with 0xFF, matching
// htslib's convention for "quality not stored".
func blankQual(r *sam.Record) {
	for i := range r.Qual {
		r.Qual[i] = 0xFF
	}
}
