// appchains runs AppChains reports and beacon lookups from the command line.
//
// Usage:
//
//	appchains report <appCode> <dataSourceID> [--endpoint=StartApp] [--raw] [--save-dir=<dir>]
//	appchains batch --chain=<appCode>=<dataSourceID> ... [--endpoint=StartAppBatch] [--raw]
//	appchains beacon <chrom> <pos> <allele> [--kind=sequencing|public|all]
//
// Settings come from --config (YAML), then APPCHAINS_* variables, then flags.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
