package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jcape/datatest/internal/app"
	hclconf "github.com/jcape/datatest/internal/hcl"
	"github.com/jcape/datatest/internal/synth"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("datatestgen", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
datatestgen - generates registration code for data-driven Go tests.

Usage:
  datatestgen [options] [DIR ...]

Arguments:
  DIR
    Package directory to process; defaults to the current directory.
    A trailing /... processes every package directory below it.
    Usually run from a //go:generate comment.

Options:
`)
		flagSet.PrintDefaults()
	}

	outputFlag := flagSet.String("output", app.DefaultOutput, "Name of the generated file in each package directory.")
	hclFlag := flagSet.String("hcl", hclconf.DefaultFilename, "Name of the optional HCL declaration file in each package directory.")
	registerFlag := flagSet.String("register", synth.DefaultRegister, "Name of the generated registration function.")
	entryFlag := flagSet.Bool("entry", true, "Generate TestDatatest and BenchmarkDatatest entry points.")
	checkFlag := flagSet.Bool("check", false, "Report out-of-date generated files as a diff instead of writing them.")
	keepGoingFlag := flagSet.Bool("keep-going", false, "Write code for valid functions even if others have errors.")
	workersFlag := flagSet.Int("workers", 0, "Number of package directories processed concurrently. 0 uses GOMAXPROCS.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.", "dirs", flagSet.Args())

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must not be negative"}
	}

	config, err := app.NewConfig(app.Config{
		Dirs:      flagSet.Args(),
		Output:    *outputFlag,
		HCLFile:   *hclFlag,
		Register:  *registerFlag,
		Entry:     *entryFlag,
		Check:     *checkFlag,
		KeepGoing: *keepGoingFlag,
		Workers:   *workersFlag,
		LogFormat: logFormat,
		LogLevel:  logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
