package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewPlaywright starts the playwright driver and launches a headless
// chromium instance shared by all sessions.
func NewPlaywright(headless bool) (*PlaywrightManager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	return &PlaywrightManager{pw: pw, browser: browser}, nil
}

// NewSession opens a fresh browser context and tab. The caller owns the
// session for the duration of one harvest pass and must Close it on every
// exit path.
func (pm *PlaywrightManager) NewSession() (Session, error) {
	browserCtx, err := pm.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}

	return &playwrightSession{ctx: browserCtx, page: page}, nil
}

func (pm *PlaywrightManager) Close() error {
	if pm.browser != nil {
		if err := pm.browser.Close(); err != nil {
			return err
		}
	}
	if pm.pw != nil {
		return pm.pw.Stop()
	}
	return nil
}

type playwrightSession struct {
	ctx    playwright.BrowserContext
	page   playwright.Page
	closed bool
}

func (s *playwrightSession) Navigate(url string, timeout time.Duration) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (s *playwrightSession) WaitForSelector(selector string, timeout time.Duration) error {
	_, err := s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (s *playwrightSession) HTML() (string, error) {
	return s.page.Content()
}

func (s *playwrightSession) ScrollBy(px int) error {
	_, err := s.page.Evaluate(fmt.Sprintf("() => window.scrollBy(0, %d)", px))
	return err
}

func (s *playwrightSession) ScrollHeight() (int, error) {
	result, err := s.page.Evaluate("() => document.documentElement.scrollHeight")
	if err != nil {
		return 0, fmt.Errorf("read scrollHeight: %w", err)
	}
	switch v := result.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("unexpected scrollHeight type %T", result)
	}
}

func (s *playwrightSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.page.Close(); err != nil {
		return err
	}
	return s.ctx.Close()
}
