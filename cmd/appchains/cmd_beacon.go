package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adamwoolhether/appchains"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var beaconFlags struct {
	kind string
}

var beaconCmd = &cobra.Command{
	Use:   "beacon <chrom> <pos> <allele>",
	Short: "Look up an allele in the beacons",
	Args:  cobra.ExactArgs(3),
	RunE:  runBeacon,
}

func init() {
	f := beaconCmd.Flags()
	f.StringVar(&beaconFlags.kind, "kind", "public", "Beacon to query: sequencing, public or all")
}

func runBeacon(cmd *cobra.Command, args []string) error {
	chrom, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("chrom must be an integer: %w", err)
	}
	pos, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("pos must be an integer: %w", err)
	}
	allele := args[2]

	type lookup func(ctx context.Context, chrom, pos int, allele string) (string, error)

	c, err := newClient(cmd)
	if err != nil {
		return err
	}

	var names []string
	var lookups []lookup
	switch beaconFlags.kind {
	case "sequencing":
		names, lookups = []string{appchains.BeaconSequencing}, []lookup{c.SequencingBeacon}
	case "public":
		names, lookups = []string{appchains.BeaconPublic}, []lookup{c.PublicBeacon}
	case "all":
		names = []string{appchains.BeaconSequencing, appchains.BeaconPublic}
		lookups = []lookup{c.SequencingBeacon, c.PublicBeacon}
	default:
		return fmt.Errorf("unknown beacon kind %q", beaconFlags.kind)
	}

	results := make([]string, len(lookups))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, fn := range lookups {
		g.Go(func() error {
			res, err := fn(ctx, chrom, pos, allele)
			if err != nil {
				return fmt.Errorf("%s: %w", names[i], err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, name := range names {
		fmt.Fprintf(out, "%s: %s\n", name, results[i])
	}

	return nil
}
