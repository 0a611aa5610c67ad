package main

import (
	"fmt"
	"os"

	"github.com/reservekit/api-contract-tests/apispec"
	"github.com/reservekit/api-contract-tests/callmetrics"
	"github.com/reservekit/api-contract-tests/config"
	"github.com/reservekit/api-contract-tests/contracttests"
	"github.com/reservekit/api-contract-tests/framework"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		os.Exit(1)
	}

	doc := apispec.Builtin()
	if params.specPath != "" {
		if doc, err = apispec.Load(params.specPath); err != nil {
			fmt.Fprintf(os.Stderr, "Could not read API document: %s\n", err)
			os.Exit(1)
		}
	}

	var metrics *callmetrics.Collector
	registry := prometheus.NewRegistry()
	if params.metrics || cfg.MetricsAutowrap {
		if metrics, err = callmetrics.New(registry); err != nil {
			fmt.Fprintf(os.Stderr, "Could not set up metrics: %s\n", err)
			os.Exit(1)
		}
	}

	env := contracttests.NewEnvironment(cfg, doc, metrics, os.Stdout)

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters)

	fmt.Println("Running test suite")

	testLogger := &ConsoleTestLogger{
		Out:                  os.Stdout,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := contracttests.RunTestSuite(env, params.filters.AsFilter, testLogger)

	fmt.Println()
	framework.PrintResults(os.Stdout, results)

	if metrics != nil {
		fmt.Println()
		if err := printMetrics(registry); err != nil {
			fmt.Fprintf(os.Stderr, "Could not print metrics: %s\n", err)
		}
	}

	if !results.OK() {
		fmt.Println()
		fmt.Println("To run only the failed tests again:")
		fmt.Printf("  %s\n", params.rerunCommand(os.Args[0], results.Failures))
		os.Exit(1)
	}
}

func printMetrics(registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			return err
		}
	}
	return nil
}
