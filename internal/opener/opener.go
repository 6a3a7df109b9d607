package opener

import (
	"context"

	"github.com/lotas/tablink/internal/applog"
	"github.com/lotas/tablink/internal/linkcodec"
	"github.com/lotas/tablink/internal/types"
)

// TabOpener asks a browser to open url in a new background tab.
type TabOpener interface {
	OpenTab(ctx context.Context, url string) types.Outcome
}

// TabOpenerFunc adapts a function to TabOpener.
type TabOpenerFunc func(ctx context.Context, url string) types.Outcome

func (f TabOpenerFunc) OpenTab(ctx context.Context, url string) types.Outcome {
	return f(ctx, url)
}

// State is the opener lifecycle.
type State int

const (
	Idle State = iota
	OpenAttempted
)

// Result is the outcome for one address.
type Result struct {
	URL     string
	Outcome types.Outcome
}

// Report summarizes one OpenAll call.
type Report struct {
	Results []Result
	Blocked bool
}

// Opened returns how many tabs were confirmed.
func (r Report) Opened() int {
	n := 0
	for _, res := range r.Results {
		if !res.Outcome.Failed() {
			n++
		}
	}
	return n
}

// Opener holds a decoded address list and opens it on request.
type Opener struct {
	addresses []string
	tabs      TabOpener
	state     State
	blocked   bool
}

// New returns an Opener in the Idle state.
func New(addresses []string, tabs TabOpener) *Opener {
	addrs := make([]string, len(addresses))
	for i, a := range addresses {
		addrs[i] = linkcodec.Normalize(a)
	}
	return &Opener{addresses: addrs, tabs: tabs}
}

// Addresses returns a copy of the list to open.
func (o *Opener) Addresses() []string {
	out := make([]string, len(o.addresses))
	copy(out, o.addresses)
	return out
}

func (o *Opener) State() State { return o.state }

// Blocked reports whether the latest attempt had any blocked tab.
func (o *Opener) Blocked() bool { return o.blocked }

// OpenAll requests one tab per address in list order. Any blocked or
// indeterminate outcome sets the blocked flag; a fully successful attempt
// clears it. Blocked tabs are not retried.
func (o *Opener) OpenAll(ctx context.Context) Report {
	o.state = OpenAttempted
	report := Report{Results: make([]Result, 0, len(o.addresses))}
	for _, addr := range o.addresses {
		outcome := o.tabs.OpenTab(ctx, addr)
		if outcome.Failed() {
			report.Blocked = true
			applog.Info("opener.blocked", "url", addr, "outcome", outcome)
		}
		report.Results = append(report.Results, Result{URL: addr, Outcome: outcome})
	}
	o.blocked = report.Blocked
	applog.Info("opener.done", "total", len(o.addresses), "opened", report.Opened(), "blocked", report.Blocked)
	return report
}
