package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/NoCritics/succinct-tesseract/internal/types"
	"github.com/mattn/go-runewidth"
)

// boxWidth is the default width for formatted output boxes
const boxWidth = 60

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content.
// Padding is measured in terminal cells so wide glyphs stay aligned.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", runewidth.FillRight(runewidth.Truncate(title, inner, "..."), inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = runewidth.Truncate(line, inner, "...")
		fmt.Fprintf(p.out, "│ %s │\n", runewidth.FillRight(line, inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProof outputs a human-readable summary of a proof record.
func (p *Printer) PrintProof(rec *types.ProofRecord) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:        %s\n", rec.ID))
	sb.WriteString(fmt.Sprintf("Status:    %s\n", rec.Status))
	sb.WriteString(fmt.Sprintf("Program:   %s\n", rec.Program))
	sb.WriteString(fmt.Sprintf("Cycles:    %s (gas %s)\n", FormatCycles(rec.Cycles), rec.Gas))
	sb.WriteString(fmt.Sprintf("Duration:  %s\n", rec.Duration))
	sb.WriteString(fmt.Sprintf("Created:   %s\n", time.UnixMilli(rec.Timestamp).UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Prover:    %s\n", rec.Prover))
	sb.WriteString(fmt.Sprintf("Requester: %s", rec.Requester))

	title := "Latest Proof"
	if rec.Synthetic {
		title += " (synthetic)"
	}
	p.printBox(title, sb.String())
}

// FormatCycles abbreviates a cycle count the way the visualization does: 12.0M, 5.0K, 30.
func FormatCycles(cycles int64) string {
	switch {
	case cycles >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(cycles)/1_000_000)
	case cycles >= 1_000:
		return fmt.Sprintf("%.1fK", float64(cycles)/1_000)
	default:
		return fmt.Sprintf("%d", cycles)
	}
}
