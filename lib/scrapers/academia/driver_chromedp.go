package academia

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

type ChromedpDriver struct {
	opts Options
}

func (d ChromedpDriver) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.opts.RemoteUrl != "" {
		return chromedp.NewRemoteAllocator(ctx, d.opts.RemoteUrl)
	}
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !d.opts.Headful),
		chromedp.WindowSize(1920, 1080),
	)
	return chromedp.NewExecAllocator(ctx, opts...)
}

func (d ChromedpDriver) FetchAttendancePage(ctx context.Context, creds Credentials) (string, error) {
	ctx, span := tracer.Start(ctx, "ChromedpDriver:FetchAttendancePage")
	defer span.End()

	allocCtx, cancelAlloc := d.allocator(ctx)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeout := d.opts.timeout()
	run := func(actions ...chromedp.Action) error {
		actionCtx, cancel := context.WithTimeout(browserCtx, timeout)
		defer cancel()
		return chromedp.Run(actionCtx, actions...)
	}

	session := browserSession{
		snapshot: func() string {
			snapshotCtx, cancel := context.WithTimeout(browserCtx, 5*time.Second)
			defer cancel()
			var out string
			err := chromedp.Run(snapshotCtx, chromedp.OuterHTML("html", &out, chromedp.ByQuery))
			if err != nil {
				return ""
			}
			return out
		},
	}

	// the first Run allocates the browser and ties it to the context it is
	// given, so it must not be one of the per action timeouts
	err := session.run(ctx, "start browser", func() error {
		return chromedp.Run(browserCtx)
	})
	if err != nil {
		return "", err
	}

	err = session.run(ctx, "open portal", func() error {
		return run(
			chromedp.Navigate(d.opts.baseUrl()),
			chromedp.WaitReady(loginFrameSelector, chromedp.ByQuery),
		)
	})
	if err != nil {
		return "", err
	}

	var frames []*cdp.Node
	err = session.run(ctx, "login: find frame", func() error {
		err := run(chromedp.Nodes(loginFrameSelector, &frames, chromedp.ByQuery))
		if err != nil {
			return err
		}
		if len(frames) == 0 {
			return fmt.Errorf("%w: no login frame", ErrUnexpectedLayout)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	inFrame := chromedp.FromNode(frames[0])

	err = session.run(ctx, "login: fill login id", func() error {
		return run(
			chromedp.WaitVisible(loginIdSelector, chromedp.ByQuery, inFrame),
			chromedp.SendKeys(loginIdSelector, creds.Email, chromedp.ByQuery, inFrame),
		)
	})
	if err != nil {
		return "", err
	}
	err = session.run(ctx, "login: submit login id", func() error {
		return run(chromedp.Click(nextButtonSelector, chromedp.ByQuery, inFrame))
	})
	if err != nil {
		return "", err
	}
	err = session.run(ctx, "login: fill password", func() error {
		return run(
			chromedp.WaitVisible(passwordSelector, chromedp.ByQuery, inFrame),
			chromedp.SendKeys(passwordSelector, creds.Password, chromedp.ByQuery, inFrame),
		)
	})
	if err != nil {
		return "", err
	}
	err = session.run(ctx, "login: submit password", func() error {
		return run(chromedp.Click(nextButtonSelector, chromedp.ByQuery, inFrame))
	})
	if err != nil {
		return "", err
	}
	err = session.settle(ctx, "login: settle", d.opts.loginSettle())
	if err != nil {
		return "", err
	}

	err = session.run(ctx, "navigate: attendance tab", func() error {
		return run(chromedp.Click(attendanceTabSelector, chromedp.ByQuery))
	})
	if err != nil {
		return "", err
	}
	err = session.run(ctx, "navigate: attendance page", func() error {
		return run(chromedp.Click(attendanceLinkSelector, chromedp.ByQuery))
	})
	if err != nil {
		return "", err
	}

	err = session.run(ctx, "content: wait", func() error {
		return run(chromedp.WaitReady(contentSelector, chromedp.ByQuery))
	})
	if err != nil {
		return "", err
	}
	err = session.run(ctx, "content: scroll", func() error {
		return run(chromedp.ScrollIntoView(contentSelector, chromedp.ByQuery))
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
		return run(chromedp.InnerHTML(contentSelector, &html, chromedp.ByQuery))
	})
	if err != nil {
		return "", err
	}
	return html, nil
}
