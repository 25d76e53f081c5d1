package mock

import (
	"context"
	"encoding/base64"
	"sync"

	"gitlab.com/pagevet/pagevet"
)

// Browser is a scripted pagevet.Browser so driver and classifier paths can
// be exercised without chrome. Deliver feeds runtime events into the stream
// exactly the way the CDP adapter would.
type Browser struct {
	NavigateFn     func(ctx context.Context, url string) (string, error)
	NavigateCalled int

	FindByTextFn     func(ctx context.Context, role, text string) (pagevet.ElementPoint, bool, error)
	FindByTextCalled bool

	ClickFn     func(ctx context.Context, pt pagevet.ElementPoint) error
	ClickCalled bool

	EvaluateFn     func(ctx context.Context, script string) (interface{}, error)
	EvaluateCalled bool

	ScreenshotFn     func(ctx context.Context) (string, error)
	ScreenshotCalled bool

	events    chan *pagevet.RuntimeEvent
	closeOnce sync.Once
}

func (b *Browser) Navigate(ctx context.Context, url string) (string, error) {
	b.NavigateCalled++
	return b.NavigateFn(ctx, url)
}

func (b *Browser) FindByText(ctx context.Context, role, text string) (pagevet.ElementPoint, bool, error) {
	b.FindByTextCalled = true
	return b.FindByTextFn(ctx, role, text)
}

func (b *Browser) Click(ctx context.Context, pt pagevet.ElementPoint) error {
	b.ClickCalled = true
	return b.ClickFn(ctx, pt)
}

func (b *Browser) Evaluate(ctx context.Context, script string) (interface{}, error) {
	b.EvaluateCalled = true
	return b.EvaluateFn(ctx, script)
}

func (b *Browser) Screenshot(ctx context.Context) (string, error) {
	b.ScreenshotCalled = true
	return b.ScreenshotFn(ctx)
}

func (b *Browser) Events() <-chan *pagevet.RuntimeEvent {
	return b.events
}

// Deliver an event on the stream, as if the page emitted it
func (b *Browser) Deliver(evt *pagevet.RuntimeEvent) {
	b.events <- evt
}

func (b *Browser) Close() {
	b.closeOnce.Do(func() { close(b.events) })
}

// MakeMockBrowser with benign defaults: navigation echoes the target URL,
// element lookups find nothing, screenshots return a one-byte png stand-in.
func MakeMockBrowser() *Browser {
	b := &Browser{events: make(chan *pagevet.RuntimeEvent, 64)}

	b.NavigateFn = func(ctx context.Context, url string) (string, error) {
		return url, nil
	}
	b.FindByTextFn = func(ctx context.Context, role, text string) (pagevet.ElementPoint, bool, error) {
		return pagevet.ElementPoint{}, false, nil
	}
	b.ClickFn = func(ctx context.Context, pt pagevet.ElementPoint) error {
		return nil
	}
	b.EvaluateFn = func(ctx context.Context, script string) (interface{}, error) {
		return "", nil
	}
	b.ScreenshotFn = func(ctx context.Context) (string, error) {
		return base64.StdEncoding.EncodeToString([]byte{0x89}), nil
	}
	return b
}
