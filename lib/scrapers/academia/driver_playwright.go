package academia

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel/codes"
)

type PlaywrightDriver struct {
	opts Options
}

// InstallPlaywright downloads the playwright driver and chromium if they
// are not already present.
func InstallPlaywright() error {
	return playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	})
}

func (d PlaywrightDriver) FetchAttendancePage(ctx context.Context, creds Credentials) (string, error) {
	ctx, span := tracer.Start(ctx, "PlaywrightDriver:FetchAttendancePage")
	defer span.End()

	pw, err := playwright.Run(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to start playwright")
		return "", fmt.Errorf("start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(!d.opts.Headful),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to launch browser")
		return "", fmt.Errorf("launch browser: %w", err)
	}
	defer browser.Close()

	// playwright calls do not take a context, closing the browser makes
	// any pending call return
	stop := context.AfterFunc(ctx, func() {
		browser.Close()
	})
	defer stop()

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open page")
		return "", fmt.Errorf("open page: %w", err)
	}
	page.SetDefaultTimeout(float64(d.opts.timeout().Milliseconds()))

	session := browserSession{
		snapshot: func() string {
			content, err := page.Content()
			if err != nil {
				return ""
			}
			return content
		},
	}

	err = session.run(ctx, "open portal", func() error {
		_, err := page.Goto(d.opts.baseUrl(), playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateNetworkidle,
		})
		return err
	})
	if err != nil {
		return "", err
	}

	frame := page.FrameLocator(loginFrameSelector)
	err = session.run(ctx, "login: fill login id", func() error {
		return frame.Locator(loginIdSelector).Fill(creds.Email)
	})
	if err != nil {
		return "", err
	}
	err = session.run(ctx, "login: submit login id", func() error {
		return frame.Locator(nextButtonSelector).Click()
	})
	if err != nil {
		return "", err
	}
	err = session.run(ctx, "login: fill password", func() error {
		return frame.Locator(passwordSelector).Fill(creds.Password)
	})
	if err != nil {
		return "", err
	}
	err = session.run(ctx, "login: submit password", func() error {
		return frame.Locator(nextButtonSelector).Click()
	})
	if err != nil {
		return "", err
	}
	err = session.settle(ctx, "login: settle", d.opts.loginSettle())
	if err != nil {
		return "", err
	}

	err = session.run(ctx, "navigate: attendance tab", func() error {
		return page.Locator(attendanceTabSelector).Click()
	})
	if err != nil {
		return "", err
	}
	err = session.run(ctx, "navigate: attendance page", func() error {
		return page.Locator(attendanceLinkSelector).Click()
	})
	if err != nil {
		return "", err
	}

	content := page.Locator(contentSelector)
	err = session.run(ctx, "content: wait", func() error {
		return content.WaitFor(playwright.LocatorWaitForOptions{
			State: playwright.WaitForSelectorStateAttached,
		})
	})
	if err != nil {
		return "", err
	}
	err = session.run(ctx, "content: scroll", func() error {
		return content.ScrollIntoViewIfNeeded()
	})
	if err != nil {
		return "", err
	}
	err = session.settle(ctx, "content: settle", d.opts.pageSettle())
	if err != nil {
		return "", err
	}

	var html string
	err = session.run(ctx, "content: read", func() error {
		var err error
		html, err = content.InnerHTML()
		return err
	})
	if err != nil {
		return "", err
	}
	return html, nil
}
