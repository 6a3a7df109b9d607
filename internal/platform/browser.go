package platform

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/lotas/tablink/internal/applog"
	"github.com/lotas/tablink/internal/types"
)

// SystemBrowser hands each address to the desktop's default browser.
// The launcher only confirms the hand-off, so a clean exit counts as opened.
type SystemBrowser struct {
	// command builds the launcher invocation; nil uses the platform default.
	command func(ctx context.Context, url string) *exec.Cmd
}

// NewSystemBrowser returns a SystemBrowser for the current OS.
func NewSystemBrowser() *SystemBrowser {
	return &SystemBrowser{}
}

func (b *SystemBrowser) OpenTab(ctx context.Context, url string) types.Outcome {
	build := b.command
	if build == nil {
		build = launcherCommand
	}
	cmd := build(ctx, url)
	if cmd == nil {
		applog.Error("browser.open", fmt.Errorf("no launcher for %s", runtime.GOOS), "url", url)
		return types.Blocked
	}
	if err := cmd.Run(); err != nil {
		applog.Error("browser.open", err, "url", url)
		return types.Blocked
	}
	return types.Opened
}

func launcherCommand(ctx context.Context, url string) *exec.Cmd {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.CommandContext(ctx, "xdg-open", url)
	case "darwin":
		// -g keeps the browser in the background.
		return exec.CommandContext(ctx, "open", "-g", url)
	case "windows":
		return exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return nil
	}
}
