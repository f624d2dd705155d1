package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/powcarbon/powcarbon/sim"
	"github.com/powcarbon/powcarbon/sim/energy"
	"github.com/powcarbon/powcarbon/sim/mining"
	"github.com/powcarbon/powcarbon/sim/trace"
)

// printReport writes the end-of-run summary. st may be nil.
func printReport(w io.Writer, res *mining.Result, st *trace.SimulationTrace, wall time.Duration) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "=== Simulation %s ===\n", res.RunID)
	fmt.Fprintf(tw, "Seed\t%d\n", res.Seed)
	fmt.Fprintf(tw, "Horizon\t%s s\t(%.1f days)\n", humanize.Commaf(res.Horizon), res.Horizon/mining.SecondsPerDay)
	fmt.Fprintf(tw, "Wall time\t%s\n", wall.Round(time.Millisecond))
	fmt.Fprintf(tw, "Events\t%s\n", humanize.Comma(int64(res.Events)))
	fmt.Fprintf(tw, "Blocks\t%s\n", humanize.Comma(res.Blocks))
	fmt.Fprintf(tw, "Transactions\t%s\n", humanize.Comma(res.Transactions))
	fmt.Fprintf(tw, "Retargets\t%d\n", res.Retargets)
	fmt.Fprintf(tw, "Final difficulty\t%s\n", humanize.SIWithDigits(res.FinalDifficulty, 4, ""))
	fmt.Fprintf(tw, "Final hash rate\t%s\n", humanize.SIWithDigits(res.FinalHashRate*1e12, 4, "H/s"))
	fmt.Fprintf(tw, "Carbon intensity\t%.6g %s\n", res.Intensity, res.IntensityUnit)
	fmt.Fprintf(tw, "Pool\t%d occupied, %d queued, peak %d queued\n", res.PoolOccupied, res.PoolQueued, res.PoolPeakQueued)
	if res.DegenerateBlocks > 0 {
		fmt.Fprintf(tw, "Empty blocks\t%d\n", res.DegenerateBlocks)
	}
	if res.FlooredSteps > 0 {
		fmt.Fprintf(tw, "Floored hash-rate steps\t%d\n", res.FlooredSteps)
	}

	fmt.Fprintln(tw, "\n=== Carbon footprint (kg CO2) ===")
	fmt.Fprintln(tw, "Series\tMean\tStd dev\tMin\tMax\tSamples")
	for _, s := range []sim.Summary{res.PerSecond, res.PerTransaction, res.PerBlock, res.EnergyPerTransaction} {
		writeSummaryRow(tw, s)
	}
	if mt, err := res.AnnualFootprintMt(); err == nil {
		fmt.Fprintf(tw, "Annual footprint\t%.4f Mt CO2\n", mt)
	} else {
		fmt.Fprintf(tw, "Annual footprint\tn/a (%v)\n", err)
	}

	if st != nil {
		ts := trace.Summarize(st)
		fmt.Fprintf(tw, "\n=== Trace (%s) ===\n", st.Level)
		if ts.Blocks > 0 {
			fmt.Fprintf(tw, "Blocks traced\t%s\tblock time mean %.1f s, p50 %.1f s, p95 %.1f s\n",
				humanize.Comma(int64(ts.Blocks)), ts.MeanBlockTime, ts.P50BlockTime, ts.P95BlockTime)
		}
		if ts.Retargets > 0 {
			fmt.Fprintf(tw, "Adjustments\t%d\tmean x%.4f, min x%.4f, max x%.4f\n",
				ts.Retargets, ts.MeanAdjustment, ts.MinAdjustment, ts.MaxAdjustment)
		}
		if ts.HashRateChanges > 0 {
			fmt.Fprintf(tw, "Hash-rate steps\t%d\t%s to %s\n", ts.HashRateChanges,
				humanize.SIWithDigits(ts.MinHashRate*1e12, 4, "H/s"), humanize.SIWithDigits(ts.MaxHashRate*1e12, 4, "H/s"))
		}
		if ts.FlooredChanges > 0 {
			fmt.Fprintf(tw, "Floored steps\t%d\n", ts.FlooredChanges)
		}
	}
}

func writeSummaryRow(w io.Writer, s sim.Summary) {
	if s.Count == 0 {
		fmt.Fprintf(w, "%s\tno samples\n", s.Name)
		return
	}
	fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%.6g\t%.6g\t%s\n",
		s.Name, s.Mean, s.StdDev(), s.Min, s.Max, humanize.Comma(s.Count))
}

// printExperiments lists the named experiments and the intensity tables.
func printExperiments(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "Experiment\tDescription")
	for _, name := range energy.ExperimentNames() {
		exp, err := energy.LookupExperiment(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", exp.Name, exp.Description)
	}
	fmt.Fprintln(tw, "\nIntensity table\tUnit")
	for _, name := range energy.TableNames() {
		tbl, err := energy.LookupTable(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", tbl.Name, tbl.Unit)
	}
}
