package main

import (
	"fmt"

	"github.com/adamwoolhether/appchains"
	"github.com/spf13/cobra"
)

var reportFlags struct {
	endpoint string
	raw      bool
	saveDir  string
	parallel int
}

var reportCmd = &cobra.Command{
	Use:   "report <appCode> <dataSourceID>",
	Short: "Run one chain and print its report",
	Args:  cobra.ExactArgs(2),
	RunE:  runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportFlags.endpoint, "endpoint", appchains.EndpointStartApp, "Submission endpoint")
	f.BoolVar(&reportFlags.raw, "raw", false, "Print the terminal job status JSON instead of the report")
	f.StringVar(&reportFlags.saveDir, "save-dir", "", "Save file results (pdf) into this directory")
	f.IntVar(&reportFlags.parallel, "parallel", 4, "Concurrent file downloads with --save-dir")
}

func runReport(cmd *cobra.Command, args []string) error {
	var opts []appchains.Option
	if reportFlags.saveDir != "" {
		opts = append(opts, appchains.WithFileResults())
	}

	c, err := newClient(cmd, opts...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	appCode, dataSourceID := args[0], args[1]
	out := cmd.OutOrStdout()

	if reportFlags.raw {
		raw, err := c.GetRawReport(ctx, reportFlags.endpoint, appCode, dataSourceID)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(raw))
		return nil
	}

	rep, err := c.GetReport(ctx, reportFlags.endpoint, appCode, dataSourceID)
	if err != nil {
		return err
	}

	printReport(out, appCode, rep)

	if reportFlags.saveDir != "" {
		if err := rep.SaveFiles(ctx, reportFlags.saveDir, reportFlags.parallel); err != nil {
			return fmt.Errorf("saving files: %w", err)
		}
	}

	return nil
}
