package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/KaramelBytes/profile_data/internal/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const bannerWidth = 60

var banner = strings.Repeat("=", bannerWidth)

// Text renders the report as plain text, one banner-delimited section per
// analysis, in a fixed order.
func (r *Report) Text() string {
	var b strings.Builder
	p := message.NewPrinter(language.English)

	b.WriteString(banner + "\nDATA PROFILE\n" + banner + "\n")
	b.WriteString(p.Sprintf("\nDimensions: %d rows x %s columns\n", r.Rows, strconv.Itoa(r.Cols)))
	b.WriteString(fmt.Sprintf("Memory: %.2f MB\n", r.MemoryMB()))

	section(&b, "MISSING VALUES")
	if len(r.Missing) > 0 {
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Column\tCount\tPercent")
		for _, m := range r.Missing {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", safeName(m.Column), p.Sprintf("%d", m.Count), m.Percent.StringFixed(2))
		}
		tw.Flush()
	} else {
		b.WriteString("No missing values found!\n")
	}

	section(&b, "DUPLICATES")
	b.WriteString(p.Sprintf("Duplicate rows: %d (%s%%)\n", r.Duplicates.Count, r.Duplicates.Percent.StringFixed(2)))

	section(&b, "DATA TYPES")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, tc := range r.Types {
		fmt.Fprintf(tw, "%s\t%d\n", kindLabel(tc.Kind), tc.Count)
	}
	tw.Flush()

	if len(r.Numeric) > 0 {
		section(&b, "NUMERIC STATISTICS")
		r.writeDescribe(&b)

		section(&b, "OUTLIERS (IQR method)")
		if len(r.Outliers) > 0 {
			for _, o := range r.Outliers {
				b.WriteString(p.Sprintf("%s: %d outliers (%s%%)\n", safeName(o.Column), o.Count, o.Percent.StringFixed(2)))
			}
		} else {
			b.WriteString("No outliers detected!\n")
		}
	}

	if len(r.Categorical) > 0 {
		section(&b, "CATEGORICAL COLUMNS")
		for _, c := range r.Categorical {
			b.WriteString(fmt.Sprintf("\n%s:\n", safeName(c.Column)))
			b.WriteString(p.Sprintf("  Unique values: %d\n", c.Unique))
			if c.TopValues == nil {
				continue
			}
			b.WriteString("  Distribution:\n")
			tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
			for _, kv := range c.TopValues {
				fmt.Fprintf(tw, "    %s\t%s\n", safeVal(kv.Value), p.Sprintf("%d", kv.Count))
			}
			tw.Flush()
		}
	}

	b.WriteString("\n" + banner + "\n")
	return b.String()
}

// writeDescribe prints one row per statistic and one right-aligned column
// per numeric column.
func (r *Report) writeDescribe(b *strings.Builder) {
	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', tabwriter.AlignRight)
	row := func(label string, get func(NumericSummary) string) {
		fmt.Fprint(tw, label+"\t")
		for _, s := range r.Numeric {
			fmt.Fprint(tw, get(s)+"\t")
		}
		fmt.Fprintln(tw)
	}
	row("", func(s NumericSummary) string { return safeVal(s.Column) })
	row("count", func(s NumericSummary) string { return formatStat(float64(s.Count)) })
	row("mean", func(s NumericSummary) string { return formatStat(s.Mean) })
	row("std", func(s NumericSummary) string { return formatStat(s.Std) })
	row("min", func(s NumericSummary) string { return formatStat(s.Min) })
	row("25%", func(s NumericSummary) string { return formatStat(s.Q1) })
	row("50%", func(s NumericSummary) string { return formatStat(s.Median) })
	row("75%", func(s NumericSummary) string { return formatStat(s.Q3) })
	row("max", func(s NumericSummary) string { return formatStat(s.Max) })
	tw.Flush()
}

// kindLabel names a column kind in the type distribution. Text columns are
// listed as "object".
func kindLabel(k table.Kind) string {
	if k == table.KindString {
		return "object"
	}
	return k.String()
}

func section(b *strings.Builder, title string) {
	b.WriteString("\n" + banner + "\n" + title + "\n" + banner + "\n")
}

func formatStat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return safeVal(s)
}

func safeVal(s string) string {
	return strings.NewReplacer("\n", " ", "\t", " ").Replace(s)
}
