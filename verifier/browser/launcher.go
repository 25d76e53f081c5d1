package browser

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
)

var startupFlags = []string{
	"--enable-automation",
	"--enable-features=NetworkService",
	"--test-type",
	"--disable-client-side-phishing-detection",
	"--disable-component-update",
	"--disable-infobars",
	"--disable-ntp-popular-sites",
	"--disable-ntp-most-likely-favicons-from-server",
	"--disable-sync-app-list",
	"--disable-domain-reliability",
	"--disable-background-networking",
	"--disable-sync",
	"--disable-new-browser-first-run",
	"--disable-default-apps",
	"--disable-popup-blocking",
	"--disable-extensions",
	"--disable-features=TranslateUI",
	"--disable-gpu",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--allow-running-insecure-content",
	"--no-first-run",
	"--window-size=1024,768",
	"--safebrowsing-disable-auto-update",
	"--safebrowsing-disable-download-protection",
	"--password-store=basic",
	"--headless",
	"about:blank",
}

// ErrBrowserLaunch when the chrome process would not start or accept a
// debugger connection. The only fatal error in the whole harness.
var ErrBrowserLaunch = errors.New("unable to launch browser")

// Launcher starts one headless chrome with a throwaway profile and hands
// back an instrumented Tab on its first target. Single browser, single tab;
// the harness never runs sessions in parallel.
type Launcher struct {
	g   *gcd.Gcd
	tmp string
}

// NewLauncher to use
func NewLauncher() *Launcher {
	return &Launcher{}
}

// Launch chrome and connect to its first tab
func (l *Launcher) Launch(ctx context.Context) (*Tab, error) {
	g := gcd.NewChromeDebugger()
	g.DeleteProfileOnExit()

	chrome, tmp := FindChrome()
	if envChrome := os.Getenv("PAGEVET_CHROME"); envChrome != "" {
		chrome = envChrome
	}
	l.tmp = tmp
	profile := randProfile(tmp)
	port := randPort()

	g.AddFlags(startupFlags)
	log.Info().Str("chrome", chrome).Str("port", port).Msg("starting browser")
	if err := g.StartProcess(chrome, profile, port); err != nil {
		return nil, errors.Wrap(ErrBrowserLaunch, err.Error())
	}
	l.g = g

	target, err := g.GetFirstTab()
	if err != nil {
		g.ExitProcess()
		return nil, errors.Wrap(ErrBrowserLaunch, err.Error())
	}
	return NewTab(ctx, g, target), nil
}

// Shutdown the chrome process and clear the temp profile
func (l *Launcher) Shutdown() error {
	if l.g != nil {
		if err := l.g.ExitProcess(); err != nil {
			log.Warn().Err(err).Msg("failed to exit browser process")
		}
		l.g = nil
	}
	return RemoveTmpContents(l.tmp)
}
