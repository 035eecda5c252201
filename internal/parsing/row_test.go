package parsing

import (
	"testing"

	"github.com/NoCritics/succinct-tesseract/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const explorerTableHTML = `
<html><body>
<table>
	<thead><tr><th>Status</th><th>Request</th><th>Requester</th><th>Prover</th><th>Gas</th><th>Time</th><th>Created</th></tr></thead>
	<tbody>
		<tr>
			<td><svg></svg> Fulfilled</td>
			<td><a href="/request/0x7f3a">0x7f3a...91bc</a><button>copy</button></td>
			<td><a href="/requester/0x002f">0x002f...ee80</a></td>
			<td><a href="/prover/0x111d">0x111d...df47</a></td>
			<td>1.2M</td>
			<td>37s</td>
			<td>1 minute ago</td>
		</tr>
		<tr>
			<td>Assigned</td><td>0xolder</td><td>0xr</td><td>0xp</td><td>500K</td><td>12s</td><td>3 minutes ago</td>
		</tr>
	</tbody>
</table>
</body></html>`

func TestExtractLatestRow_TBody(t *testing.T) {
	ext, err := ExtractLatestRow(explorerTableHTML)
	require.NoError(t, err)

	assert.Equal(t, "tbody", ext.Strategy)
	assert.Equal(t, 7, ext.Cells)
	assert.False(t, ext.Degraded)
	assert.Equal(t, types.RawRow{
		Status:     "Fulfilled",
		ID:         "0x7f3a...91bc",
		Requester:  "0x002f...ee80",
		Prover:     "0x111d...df47",
		Gas:        "1.2M",
		Duration:   "37s",
		CreatedAgo: "1 minute ago",
	}, ext.Row)
}

func TestExtractLatestRow_TableWithoutBodySkipsHeader(t *testing.T) {
	// Rows kept inside thead never get a tbody, so the header row is skipped positionally.
	html := `
	<table><thead>
		<tr><th>Status</th><th>Request</th><th>Requester</th><th>Prover</th><th>Gas</th><th>Time</th><th>Created</th></tr>
		<tr><td>Assigned</td><td>0xabc</td><td>0xreq</td><td>0xprov</td><td>500K</td><td>12s</td><td>2 hours ago</td></tr>
	</thead></table>`

	ext, err := ExtractLatestRow(html)
	require.NoError(t, err)
	assert.Equal(t, "table", ext.Strategy)
	assert.Equal(t, "Assigned", ext.Row.Status)
	assert.Equal(t, "0xabc", ext.Row.ID)
	assert.Equal(t, "2 hours ago", ext.Row.CreatedAgo)
}

func TestExtractLatestRow_HeaderOnlyTable(t *testing.T) {
	html := `<table><thead><tr><th>Status</th><th>Request</th></tr></thead></table>`

	_, err := ExtractLatestRow(html)
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, KindNoRowsFound, extErr.Kind)
}

func TestExtractLatestRow_RoleCells(t *testing.T) {
	html := `
	<table><tbody>
		<tr>
			<th role="cell">Fulfilled</th>
			<th role="cell"><a>0xabc</a></th>
			<th role="cell">0xreq</th>
			<th role="cell">0xprov</th>
			<th role="cell">2.5K</th>
			<th role="cell">4s</th>
			<th role="cell">just now</th>
		</tr>
	</tbody></table>`

	ext, err := ExtractLatestRow(html)
	require.NoError(t, err)
	assert.False(t, ext.Degraded)
	assert.Equal(t, "0xabc", ext.Row.ID)
	assert.Equal(t, "2.5K", ext.Row.Gas)
	assert.Equal(t, "just now", ext.Row.CreatedAgo)
}

func TestExtractLatestRow_DegradedPositionalSplit(t *testing.T) {
	html := `
	<table><tbody>
		<tr><td>Fulfilled 0xabc 0xreq 0xprov 1.2M</td></tr>
	</tbody></table>`

	ext, err := ExtractLatestRow(html)
	require.NoError(t, err)
	assert.True(t, ext.Degraded)
	assert.Equal(t, 1, ext.Cells)
	assert.Equal(t, types.RawRow{
		Status:     "Fulfilled",
		ID:         "0xabc",
		Requester:  "0xreq",
		Prover:     "0xprov",
		Gas:        "1.2M",
		Duration:   "0s",
		CreatedAgo: "recently",
	}, ext.Row)
}

func TestExtractLatestRow_NoRows(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"empty document", ""},
		{"no table", "<html><body><p>Loading...</p></body></html>"},
		{"empty tbody", "<table><thead></thead><tbody></tbody></table>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractLatestRow(tt.html)
			require.Error(t, err)

			var extErr *ExtractionError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, KindNoRowsFound, extErr.Kind)
		})
	}
}

func TestExtractLatestRow_SanitizesMarkupInText(t *testing.T) {
	html := `
	<table><tbody><tr>
		<td>Fulfilled</td><td>&lt;script&gt;alert(1)&lt;/script&gt;0xabc</td><td>r</td><td>p</td><td>1K</td><td>1s</td><td>just now</td>
	</tr></tbody></table>`

	ext, err := ExtractLatestRow(html)
	require.NoError(t, err)
	assert.NotContains(t, ext.Row.ID, "<script>")
	assert.Contains(t, ext.Row.ID, "0xabc")
}

func TestExtractLatestRow_KeepsDisplayedText(t *testing.T) {
	html := `
	<table><tbody><tr>
		<td>Fulfilled</td><td>0xabc</td><td>Foo &amp; Bar's</td><td>p</td><td>&lt;1K</td><td>&lt;1s</td><td>just now</td>
	</tr></tbody></table>`

	ext, err := ExtractLatestRow(html)
	require.NoError(t, err)
	assert.Equal(t, "Foo & Bar's", ext.Row.Requester)
	assert.Equal(t, "<1K", ext.Row.Gas)
	assert.Equal(t, "<1s", ext.Row.Duration)
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0xabc'&x", "0xabc'&x"},
		{"<1s", "<1s"},
		{"  1.2M ", "1.2M"},
		{"<b>bold</b> text", "bold text"},
		{"<script>alert(1)</script>0xabc", "0xabc"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeText(tt.input))
		})
	}
}
