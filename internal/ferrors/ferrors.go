// Package ferrors defines the sentinel errors used across the format
// pipeline. Call sites wrap these with errors.Wrap/Wrapf so a reader
// gets both the fixed category (via errors.Cause) and the offending
// record/file in the message.
package ferrors

import "github.com/pkg/errors"

var (
	// ErrInvalidArguments covers incompatible flags or a missing
	// positional argument on the command line.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrInputOpen is returned when the input SAM/BAM file or stream
	// cannot be opened.
	ErrInputOpen = errors.New("error opening input")

	// ErrOutputOpen is returned when the output sink cannot be opened.
	ErrOutputOpen = errors.New("error opening output")

	// ErrHeaderRead is returned when the input header fails to parse.
	ErrHeaderRead = errors.New("failed to read header")

	// ErrUnsupportedFormat is returned when the input container is not
	// SAM or BAM.
	ErrUnsupportedFormat = errors.New("not SAM/BAM format")

	// ErrSuffixIndeterminate is returned when the preflight suffix
	// guess finds triplets, or the requested suffix length is too long
	// for the read names.
	ErrSuffixIndeterminate = errors.New("failed to identify read name suffix length")

	// ErrMatesNotConsecutive is returned when two records sharing a
	// stripped name are not adjacent in the input stream.
	ErrMatesNotConsecutive = errors.New("mates not consecutive")

	// ErrCigarEatsNoRef is returned when a CIGAR has no
	// reference-consuming operation.
	ErrCigarEatsNoRef = errors.New("cigar eats no ref")

	// ErrAuxMissing is returned when a required aux tag (ZS, XR, NM,
	// CV) is absent from a record.
	ErrAuxMissing = errors.New("required aux tag missing")

	// ErrReadFailure wraps an error from the input stream.
	ErrReadFailure = errors.New("read failure")

	// ErrWriteFailure wraps an error from the output sink.
	ErrWriteFailure = errors.New("write failure")

	// ErrNotMates is returned by MergeMates when the two candidate
	// records fail the mate-adjacency precondition (spec.md's
	// "large negative sentinel", represented here as a typed error).
	ErrNotMates = errors.New("records are not mates")
)
