package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/curvefit/internal/app"
	"github.com/vk/curvefit/internal/formula"
	"github.com/vk/curvefit/internal/render"
)

// ExitError is an error that carries a specific process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated config, a
// boolean indicating the program should exit cleanly (help or no
// arguments), or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("curvefit", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
curvefit - fit a parameterised equation to CSV data by nonlinear least squares.

Usage:
  curvefit [options] TARGET EXPR [CSV_PATH]

Arguments:
  TARGET
    Name of the column holding the observed values (the Y column).
  EXPR
    The parameterised equation, e.g. 'm * x + c'. Identifiers matching a
    column are read from the data; every other identifier is fitted.
  CSV_PATH
    Path to the input CSV file. When omitted, stdin is read.

Options:
`)
		flagSet.PrintDefaults()
	}

	outFlag := flagSet.String("out", "table", "Output format: table, plain, csv, md or json.")
	oFlag := flagSet.String("o", "", "Output format (shorthand).")
	noStatsFlag := flagSet.Bool("no-stats", false, "Do not output the fitting statistics along with the parameters.")
	debugFlag := flagSet.Bool("debug", false, "Print the parsed expression and identifier classification. Does not attempt a fit.")
	resolverFlag := flagSet.String("resolver", "v1", "Equation resolver version: 'v1' or 'v2'.")
	maxIterFlag := flagSet.Int("max-iterations", 0, "Override the solver iteration cap. 0 keeps the default.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() < 2 {
		flagSet.Usage()
		return nil, true, nil
	}

	out := *outFlag
	if *oFlag != "" {
		out = *oFlag
	}
	format, err := render.ParseFormat(out)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	resolver := formula.Resolver(strings.ToLower(*resolverFlag))
	switch resolver {
	case formula.ResolverV1, formula.ResolverV2:
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown equation resolver %q: must be 'v1' or 'v2'", *resolverFlag)}
	}

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

	dataPath := ""
	if flagSet.NArg() > 2 {
		dataPath = flagSet.Arg(2)
	}

	config, err := app.NewConfig(app.Config{
		Target:        flagSet.Arg(0),
		Formula:       flagSet.Arg(1),
		DataPath:      dataPath,
		Resolver:      resolver,
		Output:        format,
		NoStats:       *noStatsFlag,
		Debug:         *debugFlag,
		MaxIterations: *maxIterFlag,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
