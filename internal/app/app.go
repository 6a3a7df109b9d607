// Package app owns the application state shared by the composer and opener
// modes: which mode is active, the current location, and both components.
package app

import (
	"github.com/lotas/tablink/internal/applog"
	"github.com/lotas/tablink/internal/composer"
	"github.com/lotas/tablink/internal/linkcodec"
	"github.com/lotas/tablink/internal/opener"
	"github.com/lotas/tablink/internal/types"
)

// URLReplacer rewrites the visible location without navigating.
type URLReplacer interface {
	ReplaceURL(url string)
}

// URLReplacerFunc adapts a function to URLReplacer.
type URLReplacerFunc func(url string)

func (f URLReplacerFunc) ReplaceURL(url string) { f(url) }

// Deps are the platform capabilities the app needs.
type Deps struct {
	Clipboard composer.Clipboard
	Tabs      opener.TabOpener
	History   URLReplacer // optional
}

// App is the single application store.
type App struct {
	mode     types.Mode
	loc      linkcodec.Location
	deps     Deps
	composer *composer.Composer
	opener   *opener.Opener
}

// Load inspects loc once and picks the mode. A decodable payload starts in
// opener mode; anything else, including a malformed payload, starts in
// composer mode.
func Load(loc linkcodec.Location, deps Deps) *App {
	a := &App{
		loc:      loc,
		deps:     deps,
		composer: composer.New(loc, deps.Clipboard),
	}
	if addrs, ok := linkcodec.DecodeLocation(loc); ok {
		a.mode = types.ModeOpener
		a.opener = opener.New(addrs, deps.Tabs)
		applog.Info("app.load", "mode", a.mode, "addresses", len(addrs))
		return a
	}
	a.mode = types.ModeComposer
	applog.Info("app.load", "mode", a.mode)
	return a
}

func (a *App) Mode() types.Mode { return a.mode }

// Location returns the current visible location.
func (a *App) Location() linkcodec.Location { return a.loc }

// Composer returns the composer. It exists in both modes so that going back
// has a list to reset.
func (a *App) Composer() *composer.Composer { return a.composer }

// Opener returns the opener, nil in composer mode.
func (a *App) Opener() *opener.Opener { return a.opener }

// GoBack leaves opener mode: decoded addresses are dropped, the composer is
// reset to one empty row with no link, and the location loses its payload so
// a reload stays in composer mode. It does nothing in composer mode.
func (a *App) GoBack() {
	if a.mode != types.ModeOpener {
		return
	}
	a.mode = types.ModeComposer
	a.opener = nil
	a.composer.Reset()
	a.loc = linkcodec.Location{Origin: a.loc.Origin, Path: a.loc.Path}
	if a.deps.History != nil {
		a.deps.History.ReplaceURL(a.loc.String())
	}
	applog.Info("app.back", "url", a.loc.String())
}
