package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodRenderer renders pages with a Chrome process driven by Rod, with the
// stealth evasions applied to the page before navigation.
type RodRenderer struct {
	opts   *Options
	logger *slog.Logger
}

// NewRodRenderer creates a Rod-backed renderer. Nil arguments take defaults.
func NewRodRenderer(opts *Options, logger *slog.Logger) *RodRenderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RodRenderer{opts: opts, logger: logger}
}

// Render implements Renderer.
func (r *RodRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	r.logger.Debug("starting headless browser", "engine", EngineRod, "url", pageURL)

	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true).
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled")

	controlURL, err := l.Launch()
	if err != nil {
		return "", &Error{URL: pageURL, Kind: KindBrowser, Message: "failed to launch browser", Cause: err}
	}
	defer func() {
		l.Kill()
		l.Cleanup()
	}()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", &Error{URL: pageURL, Kind: KindBrowser, Message: "failed to connect to browser", Cause: err}
	}
	defer func() {
		if err := browser.Close(); err != nil {
			r.logger.Debug("browser close", "error", err)
		}
	}()

	p, err := stealth.Page(browser)
	if err != nil {
		return "", &Error{URL: pageURL, Kind: KindBrowser, Message: "failed to open page", Cause: err}
	}
	if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.opts.UserAgent}); err != nil {
		return "", &Error{URL: pageURL, Kind: KindBrowser, Message: "failed to set user agent", Cause: err}
	}
	err = p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             r.opts.ViewportWidth,
		Height:            r.opts.ViewportHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return "", &Error{URL: pageURL, Kind: KindBrowser, Message: "failed to set viewport", Cause: err}
	}

	navCtx, cancel := context.WithTimeout(ctx, r.opts.NavigationTimeout)
	defer cancel()
	if err := navigateNetworkIdleRod(p.Context(navCtx), pageURL); err != nil {
		if ctxErr := navCtx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return "", navigationError(pageURL, err)
	}

	if err := r.waitForTable(ctx, p, pageURL); err != nil {
		return "", err
	}

	// Rows are filled in client side after the table shell appears.
	select {
	case <-time.After(r.opts.RenderGrace):
	case <-ctx.Done():
		return "", &Error{URL: pageURL, Kind: KindBrowser, Message: "cancelled during render grace", Cause: ctx.Err()}
	}

	html, err := p.Context(ctx).HTML()
	if err != nil {
		return "", &Error{URL: pageURL, Kind: KindBrowser, Message: "failed to read rendered HTML", Cause: err}
	}

	r.logger.Debug("rendered page", "url", pageURL, "bytes", len(html))
	return html, nil
}

func (r *RodRenderer) waitForTable(ctx context.Context, p *rod.Page, pageURL string) error {
	waitCtx, cancel := context.WithTimeout(ctx, r.opts.TableTimeout)
	_, err := p.Context(waitCtx).Element(r.opts.TableSelector)
	cancel()
	if err == nil {
		return nil
	}

	r.logger.Warn("table rows not found, trying fallback selector",
		"selector", r.opts.TableSelector, "fallback", r.opts.FallbackTableSelector)

	waitCtx, cancel = context.WithTimeout(ctx, r.opts.FallbackTableTimeout)
	defer cancel()
	if _, err := p.Context(waitCtx).Element(r.opts.FallbackTableSelector); err != nil {
		return &Error{URL: pageURL, Kind: KindTableNotFound, Message: "no proof table rendered", Cause: err}
	}
	return nil
}

// navigateNetworkIdleRod navigates and waits for the networkIdle lifecycle
// event of the loader the navigation created, ignoring the replayed events
// of the blank document the page starts on.
func navigateNetworkIdleRod(p *rod.Page, pageURL string) error {
	if err := (proto.PageSetLifecycleEventsEnabled{Enabled: true}).Call(p); err != nil {
		return fmt.Errorf("enable lifecycle events: %w", err)
	}

	var nav *proto.PageNavigateResult
	wait := p.EachEvent(func(e *proto.PageLifecycleEvent) bool {
		return e.Name == "networkIdle" && e.LoaderID == nav.LoaderID && e.FrameID == nav.FrameID
	})

	nav, err := proto.PageNavigate{URL: pageURL}.Call(p)
	if err != nil {
		return err
	}
	if nav.ErrorText != "" {
		return fmt.Errorf("navigate to %s: %s", pageURL, nav.ErrorText)
	}

	wait()
	return p.GetContext().Err()
}
