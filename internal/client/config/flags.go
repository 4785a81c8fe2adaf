package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/impify/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   server base URL
//	-t int      request timeout in seconds
//	-d string   path of the local SQLite database
//	-p int      dashboard poll interval in seconds
//
// Only these flags are read from os.Args; everything else is left to other
// components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "server base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database file")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	poll := fs.Int("p", int(cfg.PollInterval.Seconds()), "dashboard poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.PollInterval = time.Duration(*poll) * time.Second
}
