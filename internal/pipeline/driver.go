// Package pipeline implements the single-lookback streaming driver
// (C7): it reads records one at a time, standardizes each, decides
// whether consecutive records are mates due for merging, and emits
// the result to a sink.
package pipeline

import (
	"io"

	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"

	"github.com/dnmtools/format/internal/bsio"
	"github.com/dnmtools/format/internal/bsrecord"
	"github.com/dnmtools/format/internal/ferrors"
)

// Options configures a Driver.
type Options struct {
	Format     bsrecord.Format
	SuffixLen  int
	MaxFragLen int
}

// Driver runs the merge-or-pass-through state machine described in
// spec.md §4.7 over a Source, writing to a Sink.
type Driver struct {
	opts Options
}

// New constructs a Driver.
func New(opts Options) *Driver {
	return &Driver{opts: opts}
}

// Run drains src, standardizing and merging mate pairs as it goes,
// and writes every resulting record to dst. It returns nil once src
// is exhausted (io.EOF) and all buffered state has been flushed.
func (d *Driver) Run(src bsio.Source, dst bsio.Sink) error {
	prev, err := src.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return errors.Wrap(ferrors.ErrReadFailure, err.Error())
	}
	if err := bsrecord.Standardize(d.opts.Format, prev); err != nil {
		return err
	}

	previousWasMerged := false
	var merged sam.Record

	for {
		cur, err := src.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(ferrors.ErrReadFailure, err.Error())
		}
		if err := bsrecord.Standardize(d.opts.Format, cur); err != nil {
			return err
		}

		if bsrecord.SameName(prev, cur, d.opts.SuffixLen) {
			left, right := prev, cur
			if !bsrecord.IsReverse(right) {
				left, right = right, left
			}
			span, mergeErr := bsrecord.MergeMates(left, right, &merged)
			switch {
			case mergeErr == nil && span > 0 && span < d.opts.MaxFragLen:
				if err := emit(dst, &merged); err != nil {
					return err
				}
			case mergeErr == nil || errors.Cause(mergeErr) == ferrors.ErrNotMates:
				if err := emit(dst, left); err != nil {
					return err
				}
				if err := emit(dst, right); err != nil {
					return err
				}
			default:
				return mergeErr
			}
			previousWasMerged = true
		} else {
			if !previousWasMerged {
				if err := emit(dst, prev); err != nil {
					return err
				}
			}
			previousWasMerged = false
		}

		prev = cur
	}

	if !previousWasMerged {
		if err := emit(dst, prev); err != nil {
			return err
		}
	}
	return nil
}

// emit flips r to T-rich conversion if it is currently A-rich, then
// writes it to dst.
func emit(dst bsio.Sink, r *sam.Record) error {
	arich, err := bsrecord.IsARich(r)
	if err != nil {
		return err
	}
	if arich {
		if err := bsrecord.FlipConversion(r); err != nil {
			return err
		}
	}
	if err := dst.Write(r); err != nil {
		return errors.Wrap(ferrors.ErrWriteFailure, err.Error())
	}
	return nil
}
