// Package format renders alignment results as Praat TextGrid documents and
// fixed-width plaintext reports. Both renderers are pure: the same result
// always yields the same bytes.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/listenupapp/aligner/internal/domain"
)

// Tier names in the TextGrid output.
const (
	WordTier  = "words"
	PhoneTier = "phones"
)

// TextGrid renders result as a two-tier ooTextFile TextGrid: tier 1 holds
// the words, tier 2 the phones. Interval indices are 1-based per tier.
func TextGrid(result *domain.AlignmentResult) string {
	total := Seconds(result.TotalDuration)

	var b strings.Builder
	b.WriteString("File type = \"ooTextFile\"\n")
	b.WriteString("Object class = \"TextGrid\"\n\n")
	b.WriteString("xmin = 0\n")
	fmt.Fprintf(&b, "xmax = %s\n", total)
	b.WriteString("tiers? <exists>\n")
	b.WriteString("size = 2\n")
	b.WriteString("item []:\n")

	writeTier(&b, 1, WordTier, total, result.Words)
	writeTier(&b, 2, PhoneTier, total, result.Phones)

	return b.String()
}

func writeTier(b *strings.Builder, index int, name, total string, intervals []domain.Interval) {
	fmt.Fprintf(b, "    item [%d]:\n", index)
	b.WriteString("        class = \"IntervalTier\"\n")
	fmt.Fprintf(b, "        name = %s\n", quote(name))
	b.WriteString("        xmin = 0\n")
	fmt.Fprintf(b, "        xmax = %s\n", total)
	fmt.Fprintf(b, "        intervals: size = %d\n", len(intervals))

	for i, iv := range intervals {
		fmt.Fprintf(b, "        intervals [%d]:\n", i+1)
		fmt.Fprintf(b, "            xmin = %s\n", Seconds(iv.Start))
		fmt.Fprintf(b, "            xmax = %s\n", Seconds(iv.End))
		fmt.Fprintf(b, "            text = %s\n", quote(iv.Label))
	}
}

// quote wraps s in double quotes, doubling embedded quotes as Praat does.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Seconds formats a time value with exactly three decimals.
func Seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
