package main

import (
	"fmt"
	"io"

	"modelfmt/internal/observ"
)

func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	report := timer.Report()
	for _, phase := range report.Phases {
		_, printErr := fmt.Fprintf(out, "%s %.1f ms", phase.Name, phase.DurationMS)
		if printErr != nil {
			panic(printErr)
		}
		if phase.Note != "" {
			fmt.Fprintf(out, " (%s)", phase.Note)
		}
		fmt.Fprintln(out)
	}
}
