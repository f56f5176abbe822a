package main

import (
	"fmt"
	"io"

	"github.com/adamwoolhether/appchains/report"
)

func printReport(w io.Writer, code string, rep report.Report) {
	status := "failed"
	if rep.Succeeded() {
		status = "succeeded"
	}
	fmt.Fprintf(w, "%s: %s\n", code, status)

	for _, r := range rep.Results() {
		switch v := r.Value.(type) {
		case report.Text:
			fmt.Fprintf(w, "  %s = %s\n", r.Name, v.Data)
		case report.File:
			fmt.Fprintf(w, "  %s -> %s (%s)\n", r.Name, v.Name, v.URL)
		}
	}
}
