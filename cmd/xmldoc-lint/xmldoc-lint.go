package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"
	"github.com/xmldoc-go/xmldoc"
)

type cmdopts struct {
	Format     bool   `long:"format" description:"reindent the output"`
	Encoding   string `long:"encoding" description:"override encoding detection"`
	Strict     bool   `long:"strict" description:"reject markup errors instead of recovering"`
	Blanks     bool   `long:"blanks" description:"keep whitespace-only text nodes"`
	NoDecl     bool   `long:"nodecl" description:"omit the XML declaration"`
	Version    bool   `long:"version"`
}

func main() {
	os.Exit(_main())
}

func showVersion() {
	fmt.Printf("xmldoc-lint: using xmldoc version %s\n", xmldoc.Version)
}

func showUsage() {
	fmt.Printf(`Usage : xmldoc-lint [options] XMLfiles ...
	Parse the XML files and output the result of the parsing
	--version : display the version of the XML library used
`)
}

func _main() int {
	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		showUsage()
		return 1
	}

	if opts.Version {
		showVersion()
		return 0
	}

	inputCh := make(chan io.Reader)
	// buffered so a failed open does not deadlock against the
	// inputCh close below
	errCh := make(chan error, 1)
	switch {
	case len(args) > 0: // filename present
		go func() {
			defer close(inputCh)
			for _, f := range args {
				fh, err := os.Open(f)
				if err != nil {
					errCh <- err
					return
				}
				inputCh <- fh
			}
		}()
	case !isatty.IsTerminal(os.Stdin.Fd()):
		go func() {
			defer close(inputCh)
			inputCh <- os.Stdin
		}()
	default:
		showUsage()
		return 1
	}

	var popts []xmldoc.ParseOption
	if opts.Encoding != "" {
		popts = append(popts, xmldoc.WithEncoding(opts.Encoding))
	}
	if opts.Strict {
		popts = append(popts, xmldoc.WithStrict(true))
	}
	if opts.Blanks {
		popts = append(popts, xmldoc.WithEmptyTextNodes(true))
	}

	var wopts []xmldoc.WriteOption
	if opts.Format {
		wopts = append(wopts, xmldoc.WithIndent("  "))
	}
	if opts.NoDecl {
		wopts = append(wopts, xmldoc.WithDeclaration(false))
	}

	p := xmldoc.NewParser(popts...)
	for in := range inputCh {
		doc, err := p.ParseReader(in)
		if c, ok := in.(io.Closer); ok && c != os.Stdin {
			c.Close()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}

		if err := doc.Write(os.Stdout, wopts...); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}
		fmt.Println()
	}

	select {
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "%s", err)
		return 1
	default:
	}

	return 0
}
