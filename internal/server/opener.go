package server

import (
	"context"
	"errors"
	"time"

	"github.com/lotas/tablink/internal/applog"
	"github.com/lotas/tablink/internal/types"
)

// DefaultOpenTimeout bounds how long one open request waits for the extension.
const DefaultOpenTimeout = 5 * time.Second

// TabOpener opens tabs through the connected extension, one request per URL.
type TabOpener struct {
	srv     *Server
	timeout time.Duration
}

// NewTabOpener returns a TabOpener that waits up to timeout per tab;
// zero means DefaultOpenTimeout.
func NewTabOpener(srv *Server, timeout time.Duration) *TabOpener {
	if timeout <= 0 {
		timeout = DefaultOpenTimeout
	}
	return &TabOpener{srv: srv, timeout: timeout}
}

// OpenTab asks the extension for a background tab. A refusal is Blocked; no
// connection, no answer, or an answer without a tab id is Indeterminate.
func (o *TabOpener) OpenTab(ctx context.Context, url string) types.Outcome {
	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.srv.Request(reqCtx, OutgoingMsg{
		Action: "open",
		Tabs:   []TabToOpen{{URL: url, Active: false}},
	})
	switch {
	case errors.Is(err, ErrNotConnected), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		applog.Error("ws.open", err, "url", url)
		return types.Indeterminate
	case err != nil:
		applog.Error("ws.open", err, "url", url)
		return types.Blocked
	}
	if resp.OK == nil {
		return types.Indeterminate
	}
	if !*resp.OK {
		applog.Info("ws.open.refused", "url", url, "error", resp.Error)
		return types.Blocked
	}
	if resp.TabID == 0 {
		return types.Indeterminate
	}
	return types.Opened
}
