// ticketstats computes support-ticket metrics or the open backlog from a
// helpdesk CSV export and prints them as text, JSON or YAML.
//
// Usage:
//
//	ticketstats [flags] <file.csv|->
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-metrics/internal/analytics"
	"github.com/spec-kit/ticket-metrics/internal/config"
	"github.com/spec-kit/ticket-metrics/internal/observability"
	"github.com/spec-kit/ticket-metrics/internal/report"
	"github.com/spec-kit/ticket-metrics/internal/ticketcsv"
)

const (
	viewMetrics = "metrics"
	viewBacklog = "backlog"
)

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }
func (e usageError) ExitCode() int { return 2 }

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

type options struct {
	view     string
	format   string
	now      string
	timezone string
	limit    int
	noColor  bool
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	cfg := config.LoadCLI()
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Logger.Level = "warn"
	}
	logger, err := observability.NewCLILogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	var opts options
	flagSet := pflag.NewFlagSet("ticketstats", pflag.ContinueOnError)
	flagSet.StringVar(&opts.view, "view", viewMetrics, "report to compute: metrics or backlog")
	flagSet.StringVarP(&opts.format, "format", "f", string(report.FormatText), "output format: text, json or yaml")
	flagSet.StringVar(&opts.now, "now", "", "reference time for ages, RFC3339 (default: current time)")
	flagSet.StringVar(&opts.timezone, "timezone", cfg.App.Timezone, "zone for timestamps without an offset")
	flagSet.IntVarP(&opts.limit, "limit", "n", 0, "show at most N backlog rows (0 = all)")
	flagSet.BoolVar(&opts.noColor, "no-color", false, "disable colored text output")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.SetOutput(io.Discard)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stdout, flagSet)
			return nil
		}
		return usageError{msg: err.Error()}
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stdout, flagSet)
		return nil
	}
	if flagSet.NArg() != 1 {
		return usageError{msg: "expected exactly one input file (use - for stdin)"}
	}

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return usageError{msg: err.Error()}
	}
	if opts.limit < 0 {
		return usageError{msg: "--limit must not be negative"}
	}
	now, err := referenceTime(opts.now, opts.timezone)
	if err != nil {
		return usageError{msg: err.Error()}
	}

	path := flagSet.Arg(0)
	content, err := readInput(path, stdin)
	if err != nil {
		return err
	}
	lines := ticketcsv.SplitLines(strings.TrimPrefix(string(content), "\ufeff"))
	logger.Debug("input loaded", zap.String("path", path), zap.Int("bytes", len(content)), zap.Int("lines", len(lines)))

	renderOpts := report.Options{Format: format, Color: !opts.noColor, Limit: opts.limit}
	switch opts.view {
	case viewMetrics:
		metrics := analytics.ComputeMetrics(lines, now)
		if metrics.TotalTickets == 0 {
			logger.Warn("no tickets found in input", zap.String("path", path))
		}
		return report.RenderMetrics(stdout, metrics, renderOpts)
	case viewBacklog:
		return report.RenderBacklog(stdout, analytics.ComputeBacklog(lines, now), renderOpts)
	default:
		return usageError{msg: fmt.Sprintf("unknown view %q (want metrics or backlog)", opts.view)}
	}
}

func referenceTime(value, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --timezone: %w", err)
	}
	if value == "" {
		return time.Now().In(loc), nil
	}
	now, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now: %w", err)
	}
	return now.In(loc), nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: ticketstats [flags] <file.csv|->\n\n")
	fmt.Fprintf(w, "Computes support metrics or the open backlog from a helpdesk CSV export.\n\n")
	fmt.Fprintf(w, "Flags:\n%s", flagSet.FlagUsages())
}
