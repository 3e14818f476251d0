package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/QuarticCat/enum-ptr/errors"
	"github.com/QuarticCat/enum-ptr/witplan"
)

func main() {
	var (
		witFile     = flag.String("wit", "-", "Path to a WIT JSON document (- for stdin)")
		typeName    = flag.String("type", "", "Only plan the named variant type")
		repAlign    = flag.Uint("rep-align", witplan.DefaultRepAlign, "Alignment of resource reps in guest memory")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger = l
	}
	defer logger.Sync()

	res, err := load(*witFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	results := witplan.Scan(res, witplan.RepAlign(uintptr(*repAlign)))
	if *typeName != "" {
		results = filter(results, *typeName, true)
		if len(results) == 0 {
			fmt.Fprintf(os.Stderr, "Error: no variant type named %q\n", *typeName)
			os.Exit(1)
		}
	}
	for _, r := range results {
		logger.Debug("planned variant",
			zap.String("type", r.Name),
			zap.Bool("ok", r.OK()),
			zap.Error(r.Err))
	}

	if *interactive {
		if err := runInteractive(*witFile, results); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	report(os.Stdout, results, styled)
}

// load decodes a WIT JSON document from path, or from stdin when path is "-".
func load(path string) (*wit.Resolve, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Load("open "+path, err)
		}
		defer f.Close()
		r = f
	}
	res, err := wit.DecodeJSON(r)
	if err != nil {
		return nil, errors.Load("decode WIT JSON", err)
	}
	return res, nil
}
