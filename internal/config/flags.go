package config

import "github.com/spf13/pflag"

// Flags holds the command-line overrides of the config file.
type Flags struct {
	ConfigPath string
	Debug      bool
	LogFile    string
	YAML       bool
	Strict     bool
	Verify     bool

	set *pflag.FlagSet
}

// Register adds the config flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "also write logs to this file")
	fs.BoolVar(&f.YAML, "yaml", false, "write YAML instead of JSON when decoding")
	fs.BoolVar(&f.Strict, "strict", false, "reject payloads whose size disagrees with the headers")
	fs.BoolVar(&f.Verify, "verify", false, "decode encoded output again and compare")
	f.set = fs
}

// changed reports whether the named boolean flag was given on the command
// line. Without a flag set, only true values count as given.
func (f *Flags) changed(name string, v bool) bool {
	if f.set == nil {
		return v
	}
	return f.set.Changed(name)
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.YAML {
		cfg.Interchange.Format = FormatYAML
	}
	if f.changed("strict", f.Strict) {
		cfg.Codec.Strict = f.Strict
	}
	if f.changed("verify", f.Verify) {
		cfg.Codec.Verify = f.Verify
	}
}
