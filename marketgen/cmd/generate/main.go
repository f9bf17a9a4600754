// Command generate writes the market catalog the portal loads at startup:
// the simulated liquidity pools, the token allow-list, the USD price table
// and the gas model.
//
// Usage:
//
//	go run ./marketgen/cmd/generate \
//	  --output ./generated/market.toml
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/riseport-labs/rise-swap-hub/marketgen"
)

func main() {
	// Define command-line flags
	output := flag.String("output", "./generated/market.toml", "Output path for the market catalog")
	format := flag.String("format", "auto", "Output format: auto, toml, json")
	validate := flag.Bool("validate-only", false, "Only validate the catalog, don't write it")

	flag.Parse()

	config := marketgen.GeneratorConfig{
		OutputPath:   *output,
		OutputFormat: parseFormat(*format),
	}

	if *validate {
		config.OutputPath = ""
	}

	generator := marketgen.NewGenerator(config)

	fmt.Println("Generating market catalog...")

	result, err := generator.Generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error while generating the market catalog: %v\n", err)
		os.Exit(1)
	}

	// Print summary
	fmt.Println("\nSummary:")
	fmt.Printf("Pools: %d\n", result.PoolCount)
	fmt.Printf("Tokens: %d\n", result.TokenCount)

	if result.OutputPath != "" {
		fmt.Println("\nOutput file:")
		fmt.Printf("\t%s\n", result.OutputPath)
	}

	fmt.Println("\nFinished the catalog generation!")
}

func parseFormat(s string) marketgen.OutputFormat {
	switch strings.ToLower(s) {
	case "toml":
		return marketgen.FormatTOML
	case "json":
		return marketgen.FormatJSON
	default:
		return marketgen.FormatAuto
	}
}
