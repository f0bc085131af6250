// l5anim converts Level-5 animation containers (.mtn2, .imm2, .mtm2) to and
// from editable JSON or YAML.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Faultbox/l5anim/internal/config"
	"github.com/Faultbox/l5anim/internal/convert"
	"github.com/Faultbox/l5anim/internal/logger"
	"github.com/Faultbox/l5anim/pkg/namehash"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

type options struct {
	decode     bool
	encode     bool
	info       bool
	check      bool
	help       bool
	output     string
	names      string
	saveConfig string
	flags      config.Flags
}

func newFlagSet(opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("l5anim", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.Usage = func() {}

	fs.BoolVarP(&opts.decode, "decode", "d", false, "decode containers to JSON/YAML next to each input")
	fs.BoolVarP(&opts.encode, "compress", "c", false, "encode <input> JSON/YAML into container <output>")
	fs.BoolVarP(&opts.info, "info", "i", false, "print a summary of each container")
	fs.BoolVar(&opts.check, "check", false, "decode and re-encode each container, report whether bytes match")
	fs.StringVarP(&opts.output, "output", "o", "", "output path for -d with a single input")
	fs.StringVar(&opts.names, "names", "", "YAML name list used by --info to label node hashes")
	fs.StringVar(&opts.saveConfig, "save-config", "", "write the effective configuration to this path")
	fs.BoolVarP(&opts.help, "help", "h", false, "show this help")
	opts.flags.Register(fs)
	return fs
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, `l5anim - Level-5 animation container converter

Usage:
  l5anim -d <file.mtn2> [more files]      Decode to <file>.json (or .yaml with --yaml)
  l5anim -c <input.json> <output.mtn2>    Encode JSON/YAML into a container
  l5anim -i <file.mtn2> [more files]      Show container information
  l5anim --check <file.mtn2> [...]        Verify a decode/encode round trip

Options:
%s
Examples:
  l5anim -d walk.mtn2
  l5anim -c walk.json walk.mtn2 --verify
  l5anim -i --names bones.yaml walk.mtn2
`, fs.FlagUsages())
}

func run(args []string, stdout io.Writer) error {
	var opts options
	fs := newFlagSet(&opts)
	if err := fs.Parse(args); err != nil {
		printUsage(os.Stderr, fs)
		return err
	}

	modes := 0
	for _, m := range []bool{opts.decode, opts.encode, opts.info, opts.check} {
		if m {
			modes++
		}
	}
	if opts.help || (modes == 0 && opts.saveConfig == "") {
		printUsage(stdout, fs)
		return nil
	}
	if modes > 1 {
		return errors.New("choose one of -d, -c, -i and --check")
	}

	cfg, err := config.Load(&opts.flags)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	if opts.saveConfig != "" {
		if err := cfg.SaveTo(opts.saveConfig); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		logger.Info("saved config", zap.String("path", opts.saveConfig))
		if modes == 0 {
			return nil
		}
	}

	conv := convert.New(convert.OptionsFrom(cfg), logger.For("convert"))
	paths := fs.Args()

	switch {
	case opts.decode:
		return cmdDecode(conv, paths, opts.output)
	case opts.encode:
		return cmdEncode(conv, paths)
	case opts.info:
		return cmdInfo(conv, paths, opts.names, stdout)
	default:
		return cmdCheck(conv, paths, stdout)
	}
}

func cmdDecode(conv *convert.Converter, paths []string, output string) error {
	if len(paths) == 0 {
		return errors.New("please provide an input path for -d")
	}
	if output != "" && len(paths) > 1 {
		return errors.New("-o needs a single input")
	}

	failed := 0
	for _, p := range paths {
		if _, err := conv.DecodeFile(p, output); err != nil {
			logger.Error("decode failed", zap.String("path", p), zap.Error(err))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func cmdEncode(conv *convert.Converter, paths []string) error {
	switch len(paths) {
	case 0:
		return errors.New("please provide an input path for -c")
	case 1:
		return errors.New("please provide an output path for -c")
	case 2:
		return conv.EncodeFile(paths[0], paths[1])
	}
	return fmt.Errorf("-c takes an input and an output path, got %d paths", len(paths))
}

func cmdInfo(conv *convert.Converter, paths []string, namesFile string, stdout io.Writer) error {
	if len(paths) == 0 {
		return errors.New("please provide an input path for -i")
	}

	var names namehash.NameResolver
	if namesFile != "" {
		r, err := namehash.LoadMapResolver(namesFile)
		if err != nil {
			return err
		}
		if len(r) == 0 {
			logger.Warn("name list is empty", zap.String("path", namesFile))
		}
		logger.Debug("loaded node names", zap.String("path", namesFile), zap.Int("count", len(r)))
		names = r
	}

	for i, p := range paths {
		s, err := conv.Info(p, names)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(stdout)
		}
		if _, err := s.WriteTo(stdout); err != nil {
			return err
		}
	}
	return nil
}

func cmdCheck(conv *convert.Converter, paths []string, stdout io.Writer) error {
	if len(paths) == 0 {
		return errors.New("please provide an input path for --check")
	}

	mismatched := 0
	for _, p := range paths {
		r, err := conv.Verify(p)
		if err != nil {
			return err
		}
		status := "ok"
		if !r.Match() {
			status = "DIFFERS"
			mismatched++
		}
		fmt.Fprintf(stdout, "%-8s %s  %016x -> %016x\n", status, p, r.InputDigest, r.OutputDigest)
	}
	if mismatched > 0 {
		return fmt.Errorf("%w in %d of %d files", convert.ErrVerifyMismatch, mismatched, len(paths))
	}
	return nil
}
