//go:build !windows

package download

import (
	"os/exec"
	"runtime"
)

// openURL runs the desktop URL handler: open on macOS, xdg-open elsewhere.
func openURL(url string) error {
	name := "xdg-open"
	if runtime.GOOS == "darwin" {
		name = "open"
	}
	return exec.Command(name, url).Run()
}
