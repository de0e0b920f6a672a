// Package bsio provides the thin I/O shims (C8) the pipeline driver
// streams through: a record source, a record sink, and the header
// bookkeeping (PG line, format mention check) around them. File
// opening goes through grailbio/base/file so that inputs and outputs
// named with a cloud scheme work the same as local paths, matching
// markduplicates' and fusion's I/O style. Compression and
// decompression concurrency is delegated to the hts library's own
// reader/writer goroutine-pool parameters, the same way
// cmd/bio-bam-sort wires threads through biogo/hts/bam.
package bsio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"

	"github.com/dnmtools/format/internal/ferrors"
)

// ctxCloser adapts a file.File, whose Close takes a context, to the
// plain io.Closer the rest of this package uses.
type ctxCloser struct {
	ctx context.Context
	f   file.File
}

func (c ctxCloser) Close() error { return c.f.Close(c.ctx) }

const programID = "DNMTOOLS"

// Version is the program-provenance version string recorded in the
// output header's PG line.
var Version = "5.0.0"

// Source yields alignment records and exposes the header they are
// relative to.
type Source interface {
	Header() *sam.Header
	Read() (*sam.Record, error)
	Close() error
}

// Sink accepts alignment records bound to a header fixed at
// construction.
type Sink interface {
	Write(*sam.Record) error
	Close() error
}

// recordReader is implemented by both sam.Reader and bam.Reader.
type recordReader interface {
	Header() *sam.Header
	Read() (*sam.Record, error)
}

type source struct {
	recordReader
	closer io.Closer
}

func (s *source) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// OpenSourceOpts configures OpenSource.
type OpenSourceOpts struct {
	// Threads is the number of decompression worker goroutines handed
	// to the BAM reader; meaningless for SAM input. Zero means
	// runtime.NumCPU().
	Threads int
}

// bamMagic is the leading two bytes of every bgzf block, and therefore
// of every BAM file; SAM files are plain text and never start with
// it.
var bamMagic = [2]byte{0x1f, 0x8b}

// detectContainer peeks the head of in, without consuming it, to
// classify the stream as BAM or SAM the way hts_open's own format
// sniffing does, rather than trusting a filename suffix. Anything
// that is neither gzip-magic'd binary nor plausible SAM text is
// reported as ferrors.ErrUnsupportedFormat, mirroring check_input_file's
// category and format checks in the original tool.
func detectContainer(r *bufio.Reader) (isBAM bool, err error) {
	head, peekErr := r.Peek(2)
	if len(head) == 0 {
		if peekErr != nil {
			return false, fmt.Errorf("empty input: %w", ferrors.ErrUnsupportedFormat)
		}
		return false, nil
	}
	if len(head) == 2 && head[0] == bamMagic[0] && head[1] == bamMagic[1] {
		return true, nil
	}
	// SAM text always opens with an ASCII header line or a
	// tab-delimited alignment record; either way the first byte is
	// printable.
	if head[0] == '@' || (head[0] >= 0x20 && head[0] < 0x7f) {
		return false, nil
	}
	return false, ferrors.ErrUnsupportedFormat
}

// OpenSource opens path ("-" means stdin) as a SAM or BAM record
// source. The container format is determined by sniffing the stream's
// leading bytes, not by the path's extension; a container that is
// neither SAM nor BAM is rejected with ferrors.ErrUnsupportedFormat
// before any record is parsed.
func OpenSource(path string, opts OpenSourceOpts) (Source, error) {
	var raw io.Reader
	var closer io.Closer
	if path == "-" || path == "" {
		raw = os.Stdin
	} else {
		ctx := vcontext.Background()
		f, err := file.Open(ctx, path)
		if err != nil {
			return nil, errors.Wrapf(ferrors.ErrInputOpen, "%v: %v", path, err)
		}
		raw, closer = f.Reader(ctx), ctxCloser{ctx: ctx, f: f}
	}

	in := bufio.NewReader(raw)
	isBAM, err := detectContainer(in)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, errors.Wrapf(err, "%v", path)
	}

	var rr recordReader
	if isBAM {
		threads := opts.Threads
		if threads < 1 {
			threads = runtime.NumCPU()
		}
		rr, err = bam.NewReader(in, threads)
	} else {
		rr, err = sam.NewReader(in)
	}
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, errors.Wrapf(ferrors.ErrHeaderRead, "%v: %v", path, err)
	}
	return &source{recordReader: rr, closer: closer}, nil
}

// OpenSinkOpts configures OpenSink.
type OpenSinkOpts struct {
	// BAM requests BAM output; otherwise SAM text is written.
	BAM bool
	// Threads is the number of compression worker goroutines handed to
	// the BAM writer; meaningless for SAM output. Zero means
	// runtime.NumCPU().
	Threads int
}

type samSink struct {
	w      *sam.Writer
	closer io.Closer
}

func (s *samSink) Write(r *sam.Record) error { return s.w.Write(r) }
func (s *samSink) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

type bamSink struct {
	w      *bam.Writer
	closer io.Closer
}

func (s *bamSink) Write(r *sam.Record) error { return s.w.Write(r) }
func (s *bamSink) Close() error {
	if err := s.w.Close(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// OpenSink opens path ("-" or "" means stdout) as a SAM or BAM sink
// bound to header.
func OpenSink(path string, header *sam.Header, opts OpenSinkOpts) (Sink, error) {
	var out io.Writer
	var closer io.Closer
	if path == "" || path == "-" {
		out = os.Stdout
	} else {
		ctx := vcontext.Background()
		f, err := file.Create(ctx, path)
		if err != nil {
			return nil, errors.Wrapf(ferrors.ErrOutputOpen, "%v: %v", path, err)
		}
		out, closer = f.Writer(ctx), ctxCloser{ctx: ctx, f: f}
	}

	if opts.BAM {
		threads := opts.Threads
		if threads < 1 {
			threads = runtime.NumCPU()
		}
		w, err := bam.NewWriter(out, header, threads)
		if err != nil {
			if closer != nil {
				closer.Close()
			}
			return nil, errors.Wrapf(ferrors.ErrOutputOpen, "%v: %v", path, err)
		}
		return &bamSink{w: w, closer: closer}, nil
	}

	w, err := sam.NewWriter(out, header, 0)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, errors.Wrapf(ferrors.ErrOutputOpen, "%v: %v", path, err)
	}
	return &samSink{w: w, closer: closer}, nil
}

// AddProgramLine appends the @PG header line this tool's runs always
// carry, matching the original's add_pg_line.
func AddProgramLine(header *sam.Header, cmdline string) error {
	return header.AddProgram(sam.NewProgram(programID, programID, cmdline, "", Version))
}

// HeaderMentionsFormat reports whether format (case-insensitively)
// appears anywhere in header's free-form text, used to emit a
// warning (not a fatal error) when the requested mapper name seems
// absent from the input's own header.
func HeaderMentionsFormat(header *sam.Header, format string) bool {
	text, err := header.MarshalText()
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToUpper(string(text)), strings.ToUpper(format))
}
