package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/tsawler/pdfgraph/alloc"
	"github.com/tsawler/pdfgraph/internal/filters"
)

func encode(cfg *EncodeConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Encode.Parse(cc, args)
	if err != nil {
		return err
	}
	chain := parseChain(cfg.Filters)
	if len(chain) == 0 {
		return fmt.Errorf("%w: -f is required", cli.ErrUsage)
	}
	data, err := readInput(cc.In, args)
	if err != nil {
		return err
	}
	out, err := encodeChain(filters.DefaultRegistry(), chain, data)
	if err != nil {
		return err
	}
	if cfg.DictOut != "" {
		dict, err := formatStreamDict(chain, len(out))
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.DictOut, dict, 0644); err != nil {
			return err
		}
	}
	return cfg.output(cc.Out, out)
}

// encodeChain encodes data so that decoding with chain, first filter
// first, gives it back.
func encodeChain(reg *filters.Registry, chain []string, data []byte) ([]byte, error) {
	a := alloc.New()
	for i := len(chain) - 1; i >= 0; i-- {
		name := filters.Canonical(chain[i])
		f, err := reg.New(name, a, nil)
		if err != nil {
			return nil, err
		}
		var out bytes.Buffer
		if err := f.Encode(data, &out); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if name == filters.ASCII85 {
			out.WriteString("~>")
		}
		data = out.Bytes()
	}
	return data, nil
}

func listFilters(cfg *FiltersConfig, cc *cli.Context, args []string) error {
	if _, err := cfg.Filters.Parse(cc, args); err != nil {
		return err
	}
	for _, name := range filters.DefaultRegistry().Names() {
		fmt.Fprintln(cc.Out, name)
	}
	return nil
}
