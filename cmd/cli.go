package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Run is the entry point for the CLI. It is kept out of the main package so
// tests can drive the commands.
func Run(args []string) {
	if err := run(args, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	setConfigPath(extractOption(args, "-f", "--config"))
	setOutput(stdout)
	logLevel = extractOption(args, "", "--log-level")
	configureLogging(stderr, extractOption(args, "", "--error-format"), logLevel)

	opts := &Options{}
	var first string
	if len(args) > 0 {
		first = args[0]
	}
	opts.Init(first)

	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	_, err := parser.ParseArgs(args)
	if err == nil {
		return nil
	}
	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
		fmt.Fprintln(stdout, flagsErr.Message)
		return nil
	}
	reportError(err)
	return err
}

// extractOption searches the raw argument list for an option before the full
// flags parsing is performed, so that the config and logging are set up
// before any command executes.
func extractOption(args []string, short, long string) string {
	for i, a := range args {
		switch {
		case a == "--":
			return ""
		case (short != "" && a == short) || a == long:
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, long+"="):
			return strings.TrimPrefix(a, long+"=")
		}
	}
	return ""
}

// configureLogging installs the global logger. Human and plain formats use a
// console writer, json writes one JSON object per event.
func configureLogging(w io.Writer, format, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	var out io.Writer
	switch format {
	case "json":
		out = w
	case "plain":
		out = zerolog.ConsoleWriter{Out: w, NoColor: true}
	default:
		out = zerolog.ConsoleWriter{Out: w}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "cedar-mcp-schema").Logger()
}

// reportError logs err with the chain of errors it wraps.
func reportError(err error) {
	var causes []string
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		causes = append(causes, cause.Error())
	}
	event := log.WithLevel(zerolog.ErrorLevel).Err(err)
	if len(causes) > 0 {
		event = event.Strs("causes", causes)
	}
	event.Msg("command failed")
}
