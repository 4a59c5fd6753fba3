// Package browser hands URLs to the desktop's default browser.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// ErrUnsupportedURL is returned for anything but an absolute http(s) URL.
var ErrUnsupportedURL = errors.New("only http and https links can be opened")

// command is swapped out in tests.
var command = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Validate reports whether raw is an absolute http or https URL.
func Validate(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("browser.Validate: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrUnsupportedURL
	}
	return nil
}

// Open opens the specified URL in the user's default browser.
func Open(raw string) error {
	if err := Validate(raw); err != nil {
		return err
	}
	switch runtime.GOOS {
	case "darwin":
		return command("open", raw)
	case "linux":
		return command("xdg-open", raw)
	case "windows":
		return command("rundll32", "url.dll,FileProtocolHandler", raw)
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}
