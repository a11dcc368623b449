package format

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/listenupapp/aligner/internal/domain"
)

const (
	ruleWidth       = 80
	wordLabelWidth  = 20
	phoneLabelWidth = 10
	numberWidth     = 10
)

var (
	doubleRule = strings.Repeat("=", ruleWidth)
	singleRule = strings.Repeat("-", ruleWidth)
)

// Report renders result as a fixed-width plaintext report: a summary block
// followed by the word and phoneme tables. Labels are left-aligned in their
// column and numbers right-aligned to ten characters.
func Report(result *domain.AlignmentResult) string {
	var b strings.Builder

	b.WriteString("FORCED ALIGNMENT REPORT\n")
	b.WriteString(doubleRule + "\n\n")
	fmt.Fprintf(&b, "File: %s\n", result.Identifier)
	fmt.Fprintf(&b, "Transcript: %s\n", result.Transcript)
	fmt.Fprintf(&b, "Total Duration: %ss\n", Seconds(result.TotalDuration))
	fmt.Fprintf(&b, "Word Count: %d\n", result.WordCount())
	fmt.Fprintf(&b, "Phoneme Count: %d\n", result.PhoneCount())
	fmt.Fprintf(&b, "Average Word Duration: %ss\n", Seconds(result.AverageWordDuration))
	fmt.Fprintf(&b, "Average Phoneme Duration: %ss\n\n", Seconds(result.AveragePhoneDuration))

	b.WriteString("WORD ALIGNMENTS\n")
	b.WriteString(singleRule + "\n")
	b.WriteString("Word                 Start Time    End Time      Duration\n")
	b.WriteString(singleRule + "\n")
	writeRows(&b, wordLabelWidth, result.Words)

	b.WriteString("\n\nPHONEME ALIGNMENTS\n")
	b.WriteString(singleRule + "\n")
	b.WriteString("Phoneme    Start Time    End Time      Duration\n")
	b.WriteString(singleRule + "\n")
	writeRows(&b, phoneLabelWidth, result.Phones)

	return b.String()
}

func writeRows(b *strings.Builder, labelWidth int, intervals []domain.Interval) {
	for _, iv := range intervals {
		fmt.Fprintf(b, "%s %*ss   %*ss   %*ss\n",
			padEnd(iv.Label, labelWidth),
			numberWidth, Seconds(iv.Start),
			numberWidth, Seconds(iv.End),
			numberWidth, Seconds(iv.Duration),
		)
	}
}

// padEnd pads s with spaces to width UTF-16 code units, the unit label
// lengths are measured in elsewhere. Longer labels are left as they are.
func padEnd(s string, width int) string {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
