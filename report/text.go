package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteText writes the report for a terminal: the PASS/FAIL line, the
// itemized differences and the sampled rows of both sides.
func (r Report) WriteText(w io.Writer) error {
	v := r.Verdict
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s: %s\n", r.Status, v.Summary)
	if v.Failure != nil {
		fmt.Fprintf(tw, "failure:\t%s (%s query)\n", v.Failure.Kind, v.Failure.Query)
	} else {
		fmt.Fprintf(tw, "rows:\toriginal=%d, optimized=%d\n", v.OriginalRowCount, v.OptimizedRowCount)
	}
	if v.VariancePercentage != nil {
		fmt.Fprintf(tw, "variance:\t%.2f%%\n", *v.VariancePercentage)
	}
	if p := r.Performance; p != nil {
		if p.Error != "" {
			fmt.Fprintf(tw, "performance:\tfailed: %s\n", p.Error)
		} else {
			fmt.Fprintf(
				tw, "performance:\toriginal avg %s, optimized avg %s, improvement %.2f%% (%d runs)\n",
				p.OriginalAvg, p.OptimizedAvg, p.Improvement*100, p.Runs,
			)
		}
	}
	if len(v.Differences) > 0 {
		fmt.Fprintf(tw, "differences:\n")
		for _, d := range v.Differences {
			fmt.Fprintf(tw, "  %s\n", d)
			for _, c := range d.Cells {
				fmt.Fprintf(tw, "    row %d:\t%s\tvs %s\n", c.Row, c.Original, c.Optimized)
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if v.Failure != nil {
		return nil
	}
	for _, s := range []struct {
		name   string
		sample Sample
	}{
		{"original", r.Original},
		{"optimized", r.Optimized},
	} {
		if err := s.sample.writeText(w, s.name); err != nil {
			return err
		}
	}
	return nil
}

func (s Sample) writeText(w io.Writer, name string) error {
	if _, err := fmt.Fprintf(w, "%s sample (%d of %d rows):\n", name, len(s.Rows), s.TotalRows); err != nil {
		return err
	}
	if len(s.Rows) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\n", strings.Join(s.Columns, "\t"))
	for _, row := range s.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		fmt.Fprintf(tw, "  %s\n", strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
