package main

import (
	"fmt"
	"io"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/tsawler/pdfgraph/alloc"
	"github.com/tsawler/pdfgraph/core"
)

func decode(cfg *DecodeConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Decode.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Filters != "" && cfg.Dict != "" {
		return fmt.Errorf("%w: -f and -d are mutually exclusive", cli.ErrUsage)
	}
	raw, err := readInput(cc.In, args)
	if err != nil {
		return err
	}
	var dict []byte
	if cfg.Dict != "" {
		if dict, err = os.ReadFile(cfg.Dict); err != nil {
			return err
		}
	}

	log, err := cfg.logger()
	if err != nil {
		return err
	}
	defer log.Sync()

	mode := core.DecodeAll
	if cfg.SkipLast {
		mode = core.DecodeNotLastFilter
	}
	req := decodeRequest{
		raw:   raw,
		chain: parseChain(cfg.Filters),
		dict:  dict,
		mode:  mode,
		warn:  os.Stderr,
	}
	out, err := req.run(core.WithLogger(log), core.WithStrict(cfg.Strict))
	if err != nil {
		return err
	}
	if len(out) == 0 && len(raw) > 0 {
		warnf(req.warn, "%d input bytes decoded to nothing", len(raw))
	}
	return cfg.output(cc.Out, out)
}

type decodeRequest struct {
	raw   []byte
	chain []string // used when dict is empty
	dict  []byte   // YAML stream dictionary
	mode  core.DecodeMode
	warn  io.Writer
}

// run decodes raw through the requested chain and returns a copy of the result.
func (r decodeRequest) run(opts ...core.Option) ([]byte, error) {
	a := alloc.New()
	s, err := r.stream(a)
	if err != nil {
		return nil, err
	}
	defer s.Release()

	if n, ok := s.Dict().GetInt("Length"); ok && n != s.RawSize() && r.warn != nil {
		warnf(r.warn, "Length %d does not match %d input bytes", n, s.RawSize())
	}

	acc, err := core.NewAccess(a, opts...)
	if err != nil {
		return nil, err
	}
	if err := acc.Attach(s, r.mode); err != nil {
		return nil, err
	}
	defer acc.Detach()
	return append([]byte{}, acc.Data()...), nil
}

func (r decodeRequest) stream(a *alloc.Allocator) (core.Stream, error) {
	if len(r.dict) > 0 {
		d, err := parseStreamDict(a, r.dict)
		if err != nil {
			return core.Stream{}, err
		}
		declared, hasLength := d.GetInt("Length")
		s := core.NewStreamBytes(a, r.raw)
		s.SetDictionary(d)
		if hasLength {
			// SetDictionary syncs Length with the data; keep the declared
			// value so a mismatch is visible.
			s.Dict().SetInteger("Length", declared)
		}
		return s, nil
	}

	s := core.NewStreamBytes(a, r.raw)
	switch len(r.chain) {
	case 0:
	case 1:
		s.Dict().SetName("Filter", r.chain[0])
	default:
		arr := s.Dict().SetArray("Filter")
		for _, name := range r.chain {
			arr.AppendName(name)
		}
	}
	return s, nil
}
