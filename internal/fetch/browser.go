package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromedpRenderer renders pages with a Chrome process driven by chromedp.
// Each Render launches its own browser and tears it down before returning.
type ChromedpRenderer struct {
	opts   *Options
	logger *slog.Logger
}

// NewChromedpRenderer creates a chromedp-backed renderer. Nil arguments take defaults.
func NewChromedpRenderer(opts *Options, logger *slog.Logger) *ChromedpRenderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromedpRenderer{opts: opts, logger: logger}
}

// Render implements Renderer.
// Requires Chrome/Chromium to be installed on the system.
func (r *ChromedpRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	r.logger.Debug("starting headless browser", "engine", EngineChromedp, "url", pageURL)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-setuid-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(r.opts.UserAgent),
			chromedp.WindowSize(r.opts.ViewportWidth, r.opts.ViewportHeight),
		)...,
	)
	defer cancel()

	// Cancelling the first browser context closes Chrome.
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if err := chromedp.Run(browserCtx); err != nil {
		return "", &Error{URL: pageURL, Kind: KindBrowser, Message: "failed to start browser", Cause: err}
	}

	navCtx, cancelNav := context.WithTimeout(browserCtx, r.opts.NavigationTimeout)
	err := chromedp.Run(navCtx,
		chromedp.EmulateViewport(int64(r.opts.ViewportWidth), int64(r.opts.ViewportHeight)),
		navigateNetworkIdle(pageURL),
	)
	if err != nil {
		if ctxErr := navCtx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		cancelNav()
		return "", navigationError(pageURL, err)
	}
	cancelNav()

	if err := r.waitForTable(browserCtx, pageURL); err != nil {
		return "", err
	}

	var html string
	err = chromedp.Run(browserCtx,
		// Rows are filled in client side after the table shell appears.
		chromedp.Sleep(r.opts.RenderGrace),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", &Error{URL: pageURL, Kind: KindBrowser, Message: "failed to read rendered HTML", Cause: err}
	}

	r.logger.Debug("rendered page", "url", pageURL, "bytes", len(html))
	return html, nil
}

// waitForTable waits for the primary row selector, then the looser fallback.
func (r *ChromedpRenderer) waitForTable(ctx context.Context, pageURL string) error {
	waitCtx, cancel := context.WithTimeout(ctx, r.opts.TableTimeout)
	err := chromedp.Run(waitCtx, chromedp.WaitReady(r.opts.TableSelector, chromedp.ByQuery))
	cancel()
	if err == nil {
		return nil
	}

	r.logger.Warn("table rows not found, trying fallback selector",
		"selector", r.opts.TableSelector, "fallback", r.opts.FallbackTableSelector)

	waitCtx, cancel = context.WithTimeout(ctx, r.opts.FallbackTableTimeout)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitReady(r.opts.FallbackTableSelector, chromedp.ByQuery)); err != nil {
		return &Error{URL: pageURL, Kind: KindTableNotFound, Message: "no proof table rendered", Cause: err}
	}
	return nil
}

// navigateNetworkIdle navigates and waits for the networkIdle lifecycle event
// of the new document, which Chrome fires after 500ms without network activity.
// Events are matched on the loader and frame the navigation returns, since
// enabling lifecycle events replays those of the current about:blank document.
func navigateNetworkIdle(pageURL string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var (
			mu      sync.Mutex
			idle    = make(map[cdp.LoaderID]cdp.FrameID)
			changed = make(chan struct{}, 1)
		)

		listenCtx, stop := context.WithCancel(ctx)
		defer stop()
		chromedp.ListenTarget(listenCtx, func(ev any) {
			e, ok := ev.(*page.EventLifecycleEvent)
			if !ok || e.Name != "networkIdle" {
				return
			}
			mu.Lock()
			idle[e.LoaderID] = e.FrameID
			mu.Unlock()
			select {
			case changed <- struct{}{}:
			default:
			}
		})

		if err := page.SetLifecycleEventsEnabled(true).Do(ctx); err != nil {
			return fmt.Errorf("enable lifecycle events: %w", err)
		}

		var nav page.NavigateReturns
		if err := cdp.Execute(ctx, page.CommandNavigate, page.Navigate(pageURL), &nav); err != nil {
			return err
		}
		if nav.ErrorText != "" {
			return fmt.Errorf("navigate to %s: %s", pageURL, nav.ErrorText)
		}

		for {
			mu.Lock()
			frameID, ok := idle[nav.LoaderID]
			mu.Unlock()
			if ok && frameID == nav.FrameID {
				return nil
			}

			select {
			case <-changed:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
}
