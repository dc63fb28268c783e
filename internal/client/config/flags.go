package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/policylogs/internal/flagx"
)

var knownFlags = []string{"-a", "-t", "-i", "-s", "-seed", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   server base url
//	-t int      request timeout (seconds)
//	-i int      background refresh interval (seconds, 0 disables)
//	-s string   secure store file ("" keeps secrets in memory only)
//	-seed       show demo records when the first refresh fails
//	-l string   log level (debug, info, warn, error)
//
// args are filtered with flagx.FilterArgs first so that flags owned by
// other components (-c/-config) do not cause errors here.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("policylogs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "server base url")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	interval := fs.Int("i", int(cfg.RefreshInterval.Seconds()), "refresh interval (in seconds)")
	fs.StringVar(&cfg.StorePath, "s", cfg.StorePath, "secure store path")
	fs.BoolVar(&cfg.SeedFallback, "seed", cfg.SeedFallback, "show demo records when offline")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["t"] {
		cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	}
	if set["i"] {
		cfg.RefreshInterval = time.Duration(*interval) * time.Second
	}
	return nil
}
