package parsing

import (
	"strings"

	"github.com/NoCritics/succinct-tesseract/internal/types"
	"github.com/PuerkitoBio/goquery"
)

// ExpectedCells is the column count of the explorer's requests table:
// status, request id, requester, prover, gas, time, created.
const ExpectedCells = 7

// Extraction is the latest row pulled from a rendered page.
type Extraction struct {
	Row      types.RawRow
	Strategy string // name of the row strategy that matched
	Cells    int    // cells found in the row
	Degraded bool   // true when fewer than ExpectedCells were found and the row text was split instead
}

// rowStrategy selects candidate data rows from a document. An empty selection means no match.
type rowStrategy struct {
	name string
	rows func(doc *goquery.Document) *goquery.Selection
}

// rowStrategies are tried in order; the first non-empty selection wins.
var rowStrategies = []rowStrategy{
	{
		name: "tbody",
		rows: func(doc *goquery.Document) *goquery.Selection {
			return doc.Find("tbody tr")
		},
	},
	{
		name: "table",
		rows: func(doc *goquery.Document) *goquery.Selection {
			rows := doc.Find("table tr")
			if rows.Length() < 2 {
				// Only a header (or nothing) is present.
				return rows.Slice(0, 0)
			}
			return rows.Slice(1, goquery.ToEnd)
		},
	},
}

// cellSelectors are tried in order against the chosen row.
var cellSelectors = []string{"td", `[role="cell"]`}

// ExtractLatestRow finds the first data row of the proof table in html and
// returns its cells as a RawRow. Rows with fewer than ExpectedCells cells are
// recovered by splitting the row text on whitespace.
func ExtractLatestRow(html string) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ExtractionError{
			Kind:    KindInvalidHTML,
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	var (
		row      *goquery.Selection
		strategy string
	)
	for _, s := range rowStrategies {
		if rows := s.rows(doc); rows.Length() > 0 {
			row = rows.First()
			strategy = s.name
			break
		}
	}
	if row == nil {
		return nil, &ExtractionError{
			Kind:    KindNoRowsFound,
			Message: "no table rows in rendered page",
		}
	}

	cells := findCells(row)
	if cells.Length() < ExpectedCells {
		fields := strings.Fields(row.Text())
		for i := range fields {
			fields[i] = SanitizeText(fields[i])
		}
		return &Extraction{
			Row:      types.RawRowFromFields(fields),
			Strategy: strategy,
			Cells:    cells.Length(),
			Degraded: true,
		}, nil
	}

	fields := make([]string, 0, ExpectedCells)
	cells.Slice(0, ExpectedCells).Each(func(_ int, cell *goquery.Selection) {
		fields = append(fields, SanitizeText(cellText(cell)))
	})

	return &Extraction{
		Row:      types.RawRowFromFields(fields),
		Strategy: strategy,
		Cells:    cells.Length(),
	}, nil
}

func findCells(row *goquery.Selection) *goquery.Selection {
	var cells *goquery.Selection
	for _, sel := range cellSelectors {
		cells = row.Find(sel)
		if cells.Length() > 0 {
			return cells
		}
	}
	return cells
}

// cellText prefers the text of the first link in the cell, since ids and
// addresses are rendered as links next to copy buttons and icons.
func cellText(cell *goquery.Selection) string {
	if link := cell.Find("a").First(); link.Length() > 0 {
		return strings.TrimSpace(link.Text())
	}
	return strings.TrimSpace(cell.Text())
}
