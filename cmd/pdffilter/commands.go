package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "pdffilter").
		WithSynopsis("pdffilter [opts] command [opts]").
		WithDescription("pdffilter runs bytes through PDF stream filter chains.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return pdffilterMain(cfg, cc, args)
		}).
		WithSubs(
			DecodeCommand(cfg),
			EncodeCommand(cfg),
			FiltersCommand(cfg))
}

func DecodeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DecodeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Decode, "decode").
		WithAliases("d", "dec").
		WithSynopsis("decode [-f filters | -d dict.yaml] [-skip-last] [file]").
		WithDescription("decode raw stream data through its filter chain").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return decode(cfg, cc, args)
		})
}

func EncodeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &EncodeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Encode, "encode").
		WithAliases("e", "enc").
		WithSynopsis("encode -f filters [-dict-out dict.yaml] [file]").
		WithDescription("encode data so that the named filter chain decodes it").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return encode(cfg, cc, args)
		})
}

func FiltersCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &FiltersConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Filters, "filters").
		WithAliases("ls").
		WithSynopsis("filters").
		WithDescription("list the filters the decoder knows").
		WithRun(func(cc *cli.Context, args []string) error {
			return listFilters(cfg, cc, args)
		})
}
