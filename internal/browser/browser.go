// Package browser opens article links in the user's web browser.
package browser

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Validate accepts only absolute http(s) URLs.
func Validate(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open URL without a host: %q", rawURL)
	}
	return nil
}

// command picks the launcher. $BROWSER wins when set.
func command(goos, browserEnv, rawURL string) (string, []string) {
	if fields := strings.Fields(browserEnv); len(fields) > 0 {
		return fields[0], append(fields[1:], rawURL)
	}
	switch goos {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		// rundll32 avoids cmd's shell interpretation of the URL
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}

// Open launches the browser on rawURL without waiting for it to exit.
func Open(rawURL string) error {
	if err := Validate(rawURL); err != nil {
		return err
	}
	rawURL = strings.TrimSpace(rawURL)
	name, args := command(runtime.GOOS, os.Getenv("BROWSER"), rawURL)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching %s: %w", name, err)
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}
