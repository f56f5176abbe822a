package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/adamwoolhether/appchains"
	"github.com/spf13/cobra"
)

var batchFlags struct {
	endpoint string
	chains   []string
	raw      bool
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run several chains together and print every report",
	RunE:  runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchFlags.endpoint, "endpoint", appchains.EndpointStartAppBatch, "Batch submission endpoint")
	f.StringArrayVar(&batchFlags.chains, "chain", nil, "Chain as <appCode>=<dataSourceID> (repeatable, required)")
	f.BoolVar(&batchFlags.raw, "raw", false, "Print terminal job status JSON instead of reports")

	_ = batchCmd.MarkFlagRequired("chain")
}

func runBatch(cmd *cobra.Command, _ []string) error {
	chains, err := parseChains(batchFlags.chains)
	if err != nil {
		return err
	}

	c, err := newClient(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if batchFlags.raw {
		raws, err := c.GetRawReportBatch(ctx, batchFlags.endpoint, chains)
		if err != nil {
			return err
		}
		for _, code := range sortedKeys(raws) {
			fmt.Fprintf(out, "%s: %s\n", code, raws[code])
		}
		return nil
	}

	reports, err := c.GetReportBatch(ctx, batchFlags.endpoint, chains)
	if err != nil {
		return err
	}

	for _, code := range sortedKeys(reports) {
		printReport(out, code, reports[code])
	}

	return nil
}

func parseChains(pairs []string) ([]appchains.Chain, error) {
	chains := make([]appchains.Chain, 0, len(pairs))
	for _, pair := range pairs {
		code, ds, ok := strings.Cut(pair, "=")
		if !ok || code == "" || ds == "" {
			return nil, fmt.Errorf("chain %q must look like <appCode>=<dataSourceID>", pair)
		}
		chains = append(chains, appchains.Chain{AppCode: code, DataSourceID: ds})
	}
	return chains, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
