// dnmtools-format converts SAM/BAM mapped bisulfite-sequencing reads
// to the standard canonical dnmtools form: T-rich orientation, a CV
// conversion tag, and consecutive mates fused into a single fragment
// record where possible.
package main

import (
	"flag"
	"io"
	"math"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/dnmtools/format/internal/bsio"
	"github.com/dnmtools/format/internal/bsrecord"
	"github.com/dnmtools/format/internal/ferrors"
	"github.com/dnmtools/format/internal/pipeline"
	"github.com/dnmtools/format/internal/suffix"
)

var (
	threadsFlag   = flag.Int("t", 1, "number of threads")
	bamFlag       = flag.Bool("B", false, "output in BAM format")
	stdoutFlag    = flag.Bool("stdout", false, "write to standard output")
	formatFlag    = flag.String("f", "", "input format {abismal, bsmap, bismark, walt}")
	suffLenFlag   = flag.Int("s", 0, "read name suffix length (0 = guess)")
	singleEndFlag = flag.Bool("single-end", false, "assume single-end [do not use with -s]")
	maxFragFlag   = flag.Int("L", math.MaxInt32, "maximum allowed insert size")
	checkFlag     = flag.Int("c", 1000000, "check this many reads to validate read name suffix")
	forceFlag     = flag.Bool("F", false, "force formatting for mixed single and paired reads")
	verboseFlag   = flag.Bool("v", false, "print more information")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	cmdline := strings.Join(os.Args, " ")

	if *suffLenFlag != 0 && *singleEndFlag {
		log.Fatalf("%v: -s and --single-end are mutually exclusive", ferrors.ErrInvalidArguments)
	}

	args := flag.Args()
	var infile, outfile string
	switch {
	case len(args) == 1 && !*stdoutFlag:
		infile = args[0]
		outfile = "-"
	case len(args) == 2 && *stdoutFlag:
		log.Fatalf("%v: output argument forbidden with --stdout", ferrors.ErrInvalidArguments)
	case len(args) == 2:
		infile, outfile = args[0], args[1]
	case len(args) == 1 && *stdoutFlag:
		infile = args[0]
		outfile = "-"
	default:
		flag.Usage()
		log.Fatalf("%v: expected <input.sam|bam> [output]", ferrors.ErrInvalidArguments)
	}

	format := bsrecord.Format(*formatFlag)
	if !validFormat(format) {
		log.Fatalf("%v: unsupported input format %q", ferrors.ErrInvalidArguments, *formatFlag)
	}

	if *verboseFlag {
		config := "PE"
		if *singleEndFlag {
			config = "SE"
		}
		log.Printf("[input file: %v]", infile)
		log.Printf("[mapper: %v]", *formatFlag)
		log.Printf("[configuration: %v]", config)
		log.Printf("[output file: %v]", outfile)
		log.Printf("[force formatting: %v]", *forceFlag)
		log.Printf("[threads requested: %v]", *threadsFlag)
		log.Printf("[command line: %q]", cmdline)
	}

	suffLen := *suffLenFlag
	if !*singleEndFlag && !*forceFlag {
		names, err := loadReadNames(infile, *checkFlag)
		if err != nil {
			log.Fatalf("%v", err)
		}

		if suffLen == 0 {
			guessed, trivial, err := suffix.GuessLength(names)
			if err != nil {
				log.Fatalf("%v: verify reads are not single-end, or specify "+
					"read name suffix length directly", err)
			}
			if trivial {
				log.Printf("[warning: guessed read name suffix length is 0; "+
					"reads may be single-end (%v)]", infile)
			}
			suffLen = guessed
			if *verboseFlag {
				log.Printf("[read name suffix length guess: %v]", suffLen)
			}
		} else if err := suffix.VerifyLength(names, suffLen); err != nil {
			log.Fatalf("%v: wrong read name suffix length [%v] in: %v", err, suffLen, infile)
		}

		if err := suffix.VerifyAdjacency(names, suffLen); err != nil {
			log.Fatalf("%v: mates not consecutive in: %v", err, infile)
		}
	}

	if *verboseFlag && !*singleEndFlag {
		log.Printf("[readname suffix length: %v]", suffLen)
	}

	src, err := bsio.OpenSource(infile, bsio.OpenSourceOpts{
		Threads: *threadsFlag,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer src.Close()

	if *verboseFlag && !bsio.HeaderMentionsFormat(src.Header(), *formatFlag) {
		log.Printf("[warning: input format not found in header (%v, %v)]", *formatFlag, infile)
	}

	header := src.Header().Clone()
	if err := bsio.AddProgramLine(header, cmdline); err != nil {
		log.Fatalf("%v", err)
	}

	dst, err := bsio.OpenSink(outfile, header, bsio.OpenSinkOpts{
		BAM:     *bamFlag,
		Threads: *threadsFlag,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	driver := pipeline.New(pipeline.Options{
		Format:     format,
		SuffixLen:  suffLen,
		MaxFragLen: *maxFragFlag,
	})
	if err := driver.Run(src, dst); err != nil {
		log.Fatalf("%v", err)
	}
	if err := dst.Close(); err != nil {
		log.Fatalf("%v", err)
	}
}

func validFormat(f bsrecord.Format) bool {
	for _, v := range bsrecord.ValidFormats {
		if f == v {
			return true
		}
	}
	return false
}

// loadReadNames opens path independently of the main pipeline run and
// reads up to n record names for the preflight suffix checks.
func loadReadNames(path string, n int) ([]string, error) {
	src, err := bsio.OpenSource(path, bsio.OpenSourceOpts{})
	if err != nil {
		return nil, err
	}
	defer src.Close()

	names := make([]string, 0, n)
	for len(names) < n {
		r, err := src.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		names = append(names, r.Name)
	}
	return names, nil
}
