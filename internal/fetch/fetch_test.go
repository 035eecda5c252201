package fetch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/NoCritics/succinct-tesseract/internal/parsing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRenderer returns canned HTML or an error and records the requested URL.
type stubRenderer struct {
	html string
	err  error
	urls []string
}

func (s *stubRenderer) Render(_ context.Context, pageURL string) (string, error) {
	s.urls = append(s.urls, pageURL)
	return s.html, s.err
}

const latestRowHTML = `<table><tbody><tr>
	<td>Fulfilled</td><td><a>0xabc</a></td><td>0xreq</td><td>0xprov</td><td>1.2M</td><td>37s</td><td>1 minute ago</td>
</tr></tbody></table>`

func TestProverURL(t *testing.T) {
	tests := []struct {
		base     string
		prover   string
		expected string
	}{
		{"https://explorer.succinct.xyz", "0x111d", "https://explorer.succinct.xyz/prover/0x111d"},
		{"https://explorer.succinct.xyz/", "0x111d", "https://explorer.succinct.xyz/prover/0x111d"},
		{"http://localhost:9999", "a/b", "http://localhost:9999/prover/a%2Fb"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProverURL(tt.base, tt.prover))
		})
	}
}

func TestPageFetcher_FetchLatestRow(t *testing.T) {
	stub := &stubRenderer{html: latestRowHTML}
	f := NewPageFetcher(stub, "https://explorer.example", nil)

	ext, err := f.FetchLatestRow(context.Background(), "0xprov")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://explorer.example/prover/0xprov"}, stub.urls)
	assert.Equal(t, "0xabc", ext.Row.ID)
	assert.Equal(t, "1.2M", ext.Row.Gas)
}

func TestPageFetcher_RenderErrorPassesThrough(t *testing.T) {
	renderErr := &Error{URL: "u", Kind: KindTableNotFound, Message: "no proof table rendered"}
	f := NewPageFetcher(&stubRenderer{err: renderErr}, "https://explorer.example", nil)

	_, err := f.FetchLatestRow(context.Background(), "0xprov")
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, KindTableNotFound, fetchErr.Kind)
}

func TestPageFetcher_NoRows(t *testing.T) {
	f := NewPageFetcher(&stubRenderer{html: "<p>nothing yet</p>"}, "https://explorer.example", nil)

	_, err := f.FetchLatestRow(context.Background(), "0xprov")
	var extErr *parsing.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, parsing.KindNoRowsFound, extErr.Kind)
}

func TestNavigationError(t *testing.T) {
	timeout := navigationError("u", fmt.Errorf("%w: navigate", context.DeadlineExceeded))
	assert.Equal(t, KindNavigationTimeout, timeout.Kind)
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)

	failed := navigationError("u", errors.New("net::ERR_NAME_NOT_RESOLVED"))
	assert.Equal(t, KindNavigation, failed.Kind)
	assert.Contains(t, failed.Error(), "navigation_failed")
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer(EngineChromedp, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &ChromedpRenderer{}, r)

	r, err = NewRenderer(EngineRod, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &RodRenderer{}, r)

	_, err = NewRenderer("firefox", nil, nil)
	assert.Error(t, err)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 30*time.Second, opts.NavigationTimeout)
	assert.Equal(t, 15*time.Second, opts.TableTimeout)
	assert.Equal(t, 10*time.Second, opts.FallbackTableTimeout)
	assert.Equal(t, 5*time.Second, opts.RenderGrace)
	assert.Equal(t, 1920, opts.ViewportWidth)
	assert.Equal(t, 1080, opts.ViewportHeight)
	assert.Equal(t, "tbody tr", opts.TableSelector)
}
