package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"go.uber.org/zap"

	"github.com/tsawler/pdfgraph/internal/filters"
)

type MainConfig struct {
	Verbose bool   `cli:"name=v aliases=verbose desc='log every filter stage to stderr'"`
	Strict  bool   `cli:"name=strict desc='fail on corrupt data instead of keeping partial output'"`
	Force   bool   `cli:"name=force desc='write binary output to a terminal'"`
	Out     string `cli:"name=o desc='output file (default stdout)'"`

	Main *cli.Command
}

type DecodeConfig struct {
	*MainConfig

	Filters  string `cli:"name=f aliases=filters desc='comma separated filter chain, first filter applied first'"`
	Dict     string `cli:"name=d aliases=dict desc='YAML file holding the stream dictionary'"`
	SkipLast bool   `cli:"name=skip-last desc='stop before the last filter'"`

	Decode *cli.Command
}

type EncodeConfig struct {
	*MainConfig

	Filters string `cli:"name=f aliases=filters desc='comma separated filter chain the output decodes with'"`
	DictOut string `cli:"name=dict-out desc='write the matching stream dictionary as YAML to this file'"`

	Encode *cli.Command
}

type FiltersConfig struct {
	*MainConfig

	Filters *cli.Command
}

var warnColor = color.New(color.FgYellow)

func warnf(w io.Writer, format string, args ...any) {
	warnColor.Fprintf(w, "pdffilter: "+format+"\n", args...)
}

func (cfg *MainConfig) logger() (*zap.Logger, error) {
	if !cfg.Verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// output writes data to -o, or to w when no file was named.
func (cfg *MainConfig) output(w io.Writer, data []byte) error {
	if cfg.Out != "" && cfg.Out != "-" {
		return os.WriteFile(cfg.Out, data, 0644)
	}
	return writeOutput(w, data, cfg.Force)
}

func writeOutput(w io.Writer, data []byte, force bool) error {
	if !force && isTerminal(w) && !printable(data) {
		return fmt.Errorf("%w: refusing to write binary data to a terminal, use -force or -o", cli.ErrUsage)
	}
	_, err := w.Write(data)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printable(data []byte) bool {
	for _, b := range data {
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' {
			return false
		}
		if b >= 0x7f {
			return false
		}
	}
	return true
}

// readInput reads the named file, or in when there is none or it is "-".
func readInput(in io.Reader, args []string) ([]byte, error) {
	switch {
	case len(args) > 1:
		return nil, fmt.Errorf("%w: at most one input file", cli.ErrUsage)
	case len(args) == 0 || args[0] == "-":
		return io.ReadAll(in)
	default:
		return os.ReadFile(args[0])
	}
}

// parseChain splits a comma separated filter list and expands abbreviations.
func parseChain(s string) []string {
	var chain []string
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimPrefix(strings.TrimSpace(name), "/")
		if name == "" {
			continue
		}
		chain = append(chain, filters.Canonical(name))
	}
	return chain
}
