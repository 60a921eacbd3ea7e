package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/tkjaer/echobench/internal/version"
)

// Built-in defaults, used when no flags are given.
const (
	DefaultHost     = "127.0.0.1"
	DefaultPort     = 12345
	DefaultRounds   = 10
	DefaultWorkers  = 1000
	DefaultMaxReply = 32
	DefaultMessage  = "dummy message"
	DefaultOutput   = "bench.txt"
)

type Args struct {
	// Target
	Host      string
	Port      uint
	ForceIPv4 bool
	ForceIPv6 bool

	// Load shape
	Rounds  uint
	Workers uint

	// Probe
	Message  string
	MaxReply uint

	// Output
	Output      string // result log, truncated at start
	JsonFile    string // optional JSON-lines copy of every result
	MetricsAddr string // optional Prometheus listener, e.g. ":9100"

	// Stall tracking
	StallWarn time.Duration // 0 disables

	// Logging
	Log      string // log file path, empty means stderr
	LogLevel string // log level: debug, info, warn, error
}

func ParseArgs() (Args, error) {
	var args Args
	var showVersion bool

	flag.Usage = func() {
		println("echobench - barrier-synchronized TCP echo latency benchmark")
		println()
		println("Spawns a batch of workers per round that connect to an echo server at the")
		println("same instant, send a probe, and log the round-trip time of the echo.")
		println()
		println("Usage:")
		println("  echobench [OPTIONS]")
		println()
		println("Examples:")
		println("  echobench                                  # 10 rounds of 1000 workers against 127.0.0.1:12345")
		println("  echobench -r 1 -w 4 --host echo.local      # one small round")
		println("  echobench -j results.json --metrics-addr :9100")
		println()
		println("Options:")
		flag.PrintDefaults()
	}

	flag.BoolVarP(&showVersion, "version", "v", false, "Show version information")
	flag.StringVar(&args.Host, "host", DefaultHost, "Target echo server host")
	flag.UintVarP(&args.Port, "port", "p", DefaultPort, "Target echo server port")
	flag.BoolVarP(&args.ForceIPv4, "ipv4", "4", false, "Force IPv4 when resolving host")
	flag.BoolVarP(&args.ForceIPv6, "ipv6", "6", false, "Force IPv6 when resolving host")
	flag.UintVarP(&args.Rounds, "rounds", "r", DefaultRounds, "Number of benchmark rounds")
	flag.UintVarP(&args.Workers, "workers", "w", DefaultWorkers, "Concurrent workers per round")
	flag.StringVarP(&args.Message, "message", "m", DefaultMessage, "Probe message sent by every worker")
	flag.UintVar(&args.MaxReply, "max-reply", DefaultMaxReply, "Maximum reply length read per worker")
	flag.StringVarP(&args.Output, "output", "o", DefaultOutput, "Result log file (truncated at start)")
	flag.StringVarP(&args.JsonFile, "json-file", "j", "", "Also write every result as JSON lines to file (- = stdout)")
	flag.StringVar(&args.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (empty = disabled)")
	flag.DurationVar(&args.StallWarn, "stall-warn", 5*time.Second, "Warn about workers running longer than this (0 = disabled)")
	flag.StringVarP(&args.Log, "log", "l", "", "Diagnostic log file (empty = stderr)")
	flag.StringVar(&args.LogLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.Parse()

	if showVersion {
		fmt.Println(version.FullVersion())
		os.Exit(0)
	}

	return args, args.Validate()
}

// Validate checks the argument combination.
func (a Args) Validate() error {
	switch {
	case a.Host == "":
		return errors.New("host is required")
	case a.Port == 0 || a.Port > 65535:
		return errors.New("port must be between 1 and 65535")
	case a.ForceIPv4 && a.ForceIPv6:
		return errors.New("cannot force both IPv4 and IPv6")
	case a.Rounds == 0:
		return errors.New("rounds must be at least 1")
	case a.Workers == 0:
		return errors.New("workers must be at least 1")
	case a.Message == "":
		return errors.New("message must not be empty")
	case a.MaxReply < uint(len(a.Message)):
		return errors.New("message must not be longer than max-reply")
	case a.Output == "":
		return errors.New("output file is required")
	case a.StallWarn < 0:
		return errors.New("stall-warn must not be negative")
	}
	return nil
}

// Defaults returns Args populated with the built-in defaults, as if no
// flags were given.
func Defaults() Args {
	return Args{
		Host:      DefaultHost,
		Port:      DefaultPort,
		Rounds:    DefaultRounds,
		Workers:   DefaultWorkers,
		Message:   DefaultMessage,
		MaxReply:  DefaultMaxReply,
		Output:    DefaultOutput,
		StallWarn: 5 * time.Second,
		LogLevel:  "error",
	}
}
