package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/reservekit/api-contract-tests/framework"

	"github.com/alessio/shellescape"
)

type commandParams struct {
	specPath string
	filters  framework.RegexFilters
	debug    bool
	debugAll bool
	metrics  bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.specPath, "spec", "", "API contract document (YAML or JSON); defaults to the built-in reservation API")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.BoolVar(&c.metrics, "metrics", false, "count calls per verb and outcome, and print the counters at the end")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	return true
}

// rerunCommand builds a command line that runs only the failed tests again.
func (c *commandParams) rerunCommand(program string, failures []framework.TestResult) string {
	var b commandBuilder
	b.add(program)
	if c.specPath != "" {
		b.add("-spec", c.specPath)
	}
	var ids []string
	for _, f := range failures {
		ids = append(ids, regexp.QuoteMeta(f.TestID.String()))
	}
	b.add("-run", "^("+strings.Join(ids, "|")+")$")
	if c.debug || c.debugAll {
		b.add("-debug")
	}
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
