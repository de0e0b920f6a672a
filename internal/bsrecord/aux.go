package bsrecord

import (
	"github.com/grailbio/hts/sam"

	"github.com/dnmtools/format/internal/ferrors"
)

var (
	nmTag = sam.NewTag("NM")
	cvTag = sam.NewTag("CV")
	zsTag = sam.NewTag("ZS")
	xrTag = sam.NewTag("XR")
)

// auxInt reads an aux field holding any of the BAM integer widths and
// normalizes it to an int64; the 'NM' tag is free to arrive as c/C/s/S/i/I
// depending on which mapper produced it.
func auxInt(a sam.Aux) (int64, bool) {
	switch v := a.Value().(type) {
	case int8:
		return int64(v), true
	case uint8:
		return int64(v), true
	case int16:
		return int64(v), true
	case uint16:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint32:
		return int64(v), true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// getNM returns the NM (edit distance) tag value of r.
func getNM(r *sam.Record) (int64, error) {
	a := r.AuxFields.Get(nmTag)
	if a == nil {
		return 0, ferrors.ErrAuxMissing
	}
	nm, ok := auxInt(a)
	if !ok {
		return 0, ferrors.ErrAuxMissing
	}
	return nm, nil
}

// getString returns the string value of the aux tag t on r.
func getString(r *sam.Record, t sam.Tag) (string, error) {
	a := r.AuxFields.Get(t)
	if a == nil {
		return "", ferrors.ErrAuxMissing
	}
	s, ok := a.Value().(string)
	if !ok {
		return "", ferrors.ErrAuxMissing
	}
	return s, nil
}

// setOnlyNMAndCV discards every aux field on r except NM (passed
// through) and CV (set to the given conversion byte, 'A' or 'T'),
// matching the standardizer's contract that every standardized record
// carries at most two aux entries.
func setOnlyNMAndCV(r *sam.Record, nm int64, cv byte) error {
	newNM, err := sam.NewAux(nmTag, int32(nm))
	if err != nil {
		return err
	}
	r.AuxFields = sam.AuxFields{newNM, newCharAux(cvTag, cv)}
	return nil
}

// newCharAux builds a BAM 'A'-type (single printable character) aux
// field directly: sam.Aux is the wire-level tag+type+value byte
// slice (tag[0:2], type byte, value bytes), and biogo/hts/sam has no
// type-inferring constructor for the 'A' type, so this is built by
// hand the same way htslib's bam_aux_append('A', ...) does.
func newCharAux(t sam.Tag, v byte) sam.Aux {
	return sam.Aux([]byte{t[0], t[1], 'A', v})
}

// updateNM replaces (or appends) the NM aux field on r with sum.
func updateNM(r *sam.Record, sum int64) error {
	newNM, err := sam.NewAux(nmTag, int32(sum))
	if err != nil {
		return err
	}
	for i, a := range r.AuxFields {
		if a.Tag() == nmTag {
			r.AuxFields[i] = newNM
			return nil
		}
	}
	r.AuxFields = append(r.AuxFields, newNM)
	return nil
}

// appendCV appends a CV aux field with the given conversion byte.
func appendCV(r *sam.Record, cv byte) {
	r.AuxFields = append(r.AuxFields, newCharAux(cvTag, cv))
}

// cvValue returns the CV tag's character value.
func cvValue(r *sam.Record) (byte, error) {
	a := r.AuxFields.Get(cvTag)
	if a == nil || len(a) < 4 {
		return 0, ferrors.ErrAuxMissing
	}
	return a[3], nil
}

// setCV overwrites the CV tag's value in place, leaving every other
// field untouched (CV is always already present by the time this is
// called, from standardization).
func setCV(r *sam.Record, cv byte) error {
	for i, a := range r.AuxFields {
		if a.Tag() == cvTag && len(a) >= 4 {
			r.AuxFields[i][3] = cv
			return nil
		}
	}
	return ferrors.ErrAuxMissing
}
