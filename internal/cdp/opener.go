// Package cdp opens background tabs in a Chromium browser over the Chrome
// DevTools Protocol.
package cdp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	cdpproto "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/lotas/tablink/internal/applog"
	"github.com/lotas/tablink/internal/types"
)

const createTimeout = 10 * time.Second

// Opener creates one background target per address on a browser started
// with --remote-debugging-port.
type Opener struct {
	endpoint string // http://host:port

	mu      sync.Mutex
	exec    cdpproto.Executor
	cancel  context.CancelFunc
	connect func(ctx context.Context, endpoint string) (cdpproto.Executor, context.CancelFunc, error)
}

// NewOpener returns an Opener for the DevTools HTTP endpoint, e.g.
// http://127.0.0.1:9222. The connection is made on first use.
func NewOpener(endpoint string) *Opener {
	return &Opener{
		endpoint: strings.TrimRight(endpoint, "/"),
		connect:  dialBrowser,
	}
}

// OpenTab creates a background target for url.
func (o *Opener) OpenTab(ctx context.Context, url string) types.Outcome {
	exec, err := o.executor(ctx)
	if err != nil {
		applog.Error("cdp.connect", err, "endpoint", o.endpoint)
		return types.Indeterminate
	}

	createCtx, cancel := context.WithTimeout(ctx, createTimeout)
	defer cancel()

	id, err := target.CreateTarget(url).
		WithBackground(true).
		Do(cdpproto.WithExecutor(createCtx, exec))
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		applog.Error("cdp.create", err, "url", url)
		return types.Indeterminate
	case err != nil:
		applog.Error("cdp.create", err, "url", url)
		return types.Blocked
	case id == "":
		return types.Indeterminate
	}
	applog.Info("cdp.created", "url", url, "target", id)
	return types.Opened
}

// Close drops the browser connection. The browser keeps running.
func (o *Opener) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
	o.exec = nil
	o.cancel = nil
}

func (o *Opener) executor(ctx context.Context) (cdpproto.Executor, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.exec != nil {
		return o.exec, nil
	}
	exec, cancel, err := o.connect(ctx, o.endpoint)
	if err != nil {
		return nil, err
	}
	o.exec = exec
	o.cancel = cancel
	return exec, nil
}

// dialBrowser attaches at the browser level so no page target is created as
// a side effect of connecting.
func dialBrowser(ctx context.Context, endpoint string) (cdpproto.Executor, context.CancelFunc, error) {
	wsURL, err := debuggerURL(ctx, endpoint)
	if err != nil {
		return nil, nil, err
	}
	connCtx, cancel := context.WithCancel(context.Background())
	browser, err := chromedp.NewBrowser(connCtx, wsURL)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("connect to browser: %w", err)
	}
	applog.Info("cdp.connected", "ws", wsURL)
	return browser, cancel, nil
}

// debuggerURL reads webSocketDebuggerUrl from /json/version.
func debuggerURL(ctx context.Context, endpoint string) (string, error) {
	if strings.HasPrefix(endpoint, "ws://") || strings.HasPrefix(endpoint, "wss://") {
		return endpoint, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/json/version", nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("devtools endpoint: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("devtools endpoint: HTTP %d", resp.StatusCode)
	}
	var version struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&version); err != nil {
		return "", fmt.Errorf("decode /json/version: %w", err)
	}
	if version.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("devtools endpoint: no webSocketDebuggerUrl")
	}
	return version.WebSocketDebuggerURL, nil
}
