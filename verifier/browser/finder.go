package browser

import (
	"io/ioutil"
	"net"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

// FindChrome returns the chrome binary path and temp dir for this OS
func FindChrome() (string, string) {
	switch runtime.GOOS {
	case "windows":
		return "C:\\Program Files (x86)\\Google\\Chrome\\Application\\chrome.exe", "C:\\Temp\\pagevet\\"
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome", "/tmp/pagevet/"
	case "linux":
		return "/usr/bin/chromium-browser", "/tmp/pagevet/"
	}
	return "", "tmp"
}

func randPort() string {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		log.Warn().Err(err).Msg("unable to get port using default 9022")
		return "9022"
	}
	_, port, _ := net.SplitHostPort(l.Addr().String())
	l.Close()
	return port
}

func randProfile(tmp string) string {
	profile, err := ioutil.TempDir(tmp, "pagevet")
	if profile == "" {
		log.Fatal().Msg("profile returned empty which could delete system files on termination")
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to create temporary profile directory")
		return "tmp"
	}
	return profile
}

// RemoveTmpContents that the browser created
func RemoveTmpContents(tmp string) error {
	files, err := filepath.Glob(filepath.Join(tmp, "pagevet*"))
	if err != nil {
		return err
	}
	for _, file := range files {
		if err = os.RemoveAll(file); err != nil {
			return err
		}
	}
	return nil
}
