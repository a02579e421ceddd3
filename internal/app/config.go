package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jcape/datatest/internal/gosrc"
	hclconf "github.com/jcape/datatest/internal/hcl"
)

// DefaultOutput is the name of the generated file in each package
// directory.
const DefaultOutput = "datatest_gen_test.go"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Dirs are the package directories to process. A trailing "/..."
	// includes every package directory below.
	Dirs []string

	Output   string // generated file name
	HCLFile  string // declaration file name
	Register string // registration function name
	Entry    bool   // generate TestDatatest/BenchmarkDatatest

	Check     bool // report stale files instead of writing
	KeepGoing bool // write code for valid declarations despite errors
	Workers   int

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Dirs) == 0 {
		cfg.Dirs = []string{"."}
	}

	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if filepath.Base(cfg.Output) != cfg.Output {
		return nil, fmt.Errorf("output %q must be a file name, not a path", cfg.Output)
	}
	if !strings.HasSuffix(cfg.Output, "_test.go") {
		return nil, errors.New("output file name must end in _test.go so that the generated code only builds with tests")
	}

	if cfg.HCLFile == "" {
		cfg.HCLFile = hclconf.DefaultFilename
	}
	if filepath.Base(cfg.HCLFile) != cfg.HCLFile {
		return nil, fmt.Errorf("hcl file %q must be a file name, not a path", cfg.HCLFile)
	}

	if cfg.Workers < 1 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	return &cfg, nil
}

// OutputFor returns the generated file name for pkg. An external test
// package that shares its directory gets its own file.
func (c *Config) OutputFor(pkg *gosrc.Package) string {
	if strings.HasSuffix(pkg.Name, "_test") && len(pkg.Siblings) > 0 {
		return c.externalOutput()
	}
	return c.Output
}

func (c *Config) externalOutput() string {
	return strings.TrimSuffix(c.Output, "_test.go") + "_x_test.go"
}
