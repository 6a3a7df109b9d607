package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lotas/tablink/internal/analyzer"
	"github.com/lotas/tablink/internal/api"
	"github.com/lotas/tablink/internal/app"
	"github.com/lotas/tablink/internal/applog"
	"github.com/lotas/tablink/internal/cdp"
	"github.com/lotas/tablink/internal/config"
	"github.com/lotas/tablink/internal/export"
	"github.com/lotas/tablink/internal/firefox"
	"github.com/lotas/tablink/internal/linkcodec"
	"github.com/lotas/tablink/internal/listfile"
	"github.com/lotas/tablink/internal/opener"
	"github.com/lotas/tablink/internal/platform"
	"github.com/lotas/tablink/internal/server"
	"github.com/lotas/tablink/internal/tui"
	"github.com/lotas/tablink/internal/types"
)

// bridgeWait bounds how long open commands wait for the extension to attach.
const bridgeWait = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	if err := applog.Init(cfg.LogDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer applog.Close()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "encode":
			runEncode(cfg, os.Args[2:])
			return
		case "decode":
			runDecode(os.Args[2:])
			return
		case "open":
			runOpen(cfg, os.Args[2:])
			return
		case "import":
			runImport(cfg, os.Args[2:])
			return
		case "profiles":
			runProfiles()
			return
		case "serve":
			runServe(cfg, os.Args[2:])
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}

	fs := flag.NewFlagSet("tablink", flag.ExitOnError)
	via := fs.String("via", cfg.Opener, "Tab opener: system, cdp or live")
	fs.Parse(reorderArgs(os.Args[1:]))

	loc, err := startLocation(cfg, fs.Arg(0))
	if err != nil {
		fail(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tabs, cleanup, err := newTabOpener(ctx, cfg, *via, false)
	if err != nil {
		fail(err)
	}
	defer cleanup()

	a := app.Load(loc, app.Deps{
		Clipboard: platform.SystemClipboard{},
		Tabs:      tabs,
	})

	// Profiles are optional here; without them the import key reports none.
	profiles, _ := firefox.DiscoverProfiles()

	p := tea.NewProgram(tui.NewModel(ctx, a, profiles), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fail(err)
	}
}

func printHelp() {
	fmt.Print(`tablink: share a list of URLs as a single link

Usage:
  tablink [link]                                     Start the TUI (composer, or opener for a link)
    --via <kind>           Tab opener: system, cdp or live (default: system)

  tablink encode [addr...]                           Print a link carrying the addresses
    --base <url>           Base URL of the link (env: TABLINK_BASE_URL)
    --file <path>          Read addresses from a list file (.txt lines or .yaml sequence)
    --dedupe               Drop addresses that point at the same page

  tablink decode <link>                              Print the addresses a link carries
    --json                 Output as JSON
    --markdown             Output as a markdown list

  tablink open <link>                                Open every address in a background tab
    --via <kind>           Tab opener: system, cdp or live (default: system)

  tablink import                                     Build a link from a Firefox profile's open tabs
    --profile <name>       Firefox profile name (env: TABLINK_PROFILE)
    --base <url>           Base URL of the link
    --dedupe               Drop tabs that point at the same page
    --list                 List the imported tabs (title and URL) on stderr

  tablink profiles                                   List Firefox profiles

  tablink serve                                      Serve the link HTTP API
    --addr <host:port>     Listen address (env: TABLINK_LISTEN_ADDR)

Environment:
  TABLINK_BASE_URL       Base URL for generated links (default: https://tablink.local/)
  TABLINK_OPENER         Default tab opener (default: system)
  TABLINK_CDP_URL        DevTools endpoint for --via cdp (default: http://127.0.0.1:9222)
  TABLINK_BRIDGE_PORT    WebSocket port for --via live (default: 19191)
  TABLINK_LISTEN_ADDR    HTTP API listen address (default: 127.0.0.1:19192)
  TABLINK_LOG_DIR        Log directory (default: ~/.local/share/tablink)
  TABLINK_PROFILE        Default Firefox profile

Exit status of open is 2 when any tab was blocked.
`)
}

func runEncode(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	base := fs.String("base", cfg.BaseURL, "Base URL of the link")
	file := fs.String("file", "", "Read addresses from a list file")
	dedupe := fs.Bool("dedupe", false, "Drop addresses that point at the same page")
	fs.Parse(reorderArgs(args))

	loc, err := linkcodec.ParseLocation(*base)
	if err != nil {
		fail(fmt.Errorf("base URL: %w", err))
	}

	addrs := fs.Args()
	if *file != "" {
		fromFile, err := listfile.Read(*file)
		if err != nil {
			fail(err)
		}
		addrs = append(fromFile, addrs...)
	}
	if *dedupe {
		addrs = dropDuplicates(addrs)
	}

	link := linkcodec.Encode(loc, addrs)
	if link == "" {
		fail(errors.New("no addresses given"))
	}
	fmt.Println(link)
}

func runDecode(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	jsonFlag := fs.Bool("json", false, "Output as JSON")
	mdFlag := fs.Bool("markdown", false, "Output as a markdown list")
	fs.Parse(reorderArgs(args))

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tablink decode <link> [--json|--markdown]")
		os.Exit(1)
	}
	addrs := mustDecode(fs.Arg(0))
	list := export.List{Link: fs.Arg(0), Addresses: addrs}

	switch {
	case *jsonFlag:
		out, err := export.JSON(list)
		if err != nil {
			fail(fmt.Errorf("generating JSON: %w", err))
		}
		fmt.Print(out)
	case *mdFlag:
		fmt.Print(export.Markdown(list))
	default:
		for _, a := range addrs {
			fmt.Println(a)
		}
	}
}

func runOpen(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	via := fs.String("via", cfg.Opener, "Tab opener: system, cdp or live")
	fs.Parse(reorderArgs(args))

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tablink open <link> [--via system|cdp|live]")
		os.Exit(1)
	}
	addrs := mustDecode(fs.Arg(0))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tabs, cleanup, err := newTabOpener(ctx, cfg, *via, true)
	if err != nil {
		fail(err)
	}
	report := opener.New(addrs, tabs).OpenAll(ctx)
	cleanup()

	for _, res := range report.Results {
		fmt.Printf("%-13s %s\n", res.Outcome, res.URL)
	}
	fmt.Printf("Opened %d of %d tabs.\n", report.Opened(), len(report.Results))
	if report.Blocked {
		fmt.Fprintln(os.Stderr, tui.BlockedWarning)
		os.Exit(2)
	}
}

func runImport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	profileName := fs.String("profile", "", "Firefox profile name")
	base := fs.String("base", cfg.BaseURL, "Base URL of the link")
	dedupe := fs.Bool("dedupe", false, "Drop tabs that point at the same page")
	list := fs.Bool("list", false, "List the imported tabs on stderr")
	fs.Parse(args)

	loc, err := linkcodec.ParseLocation(*base)
	if err != nil {
		fail(fmt.Errorf("base URL: %w", err))
	}
	session, err := firefox.LoadProfileTabs(resolveProfileName(cfg, *profileName))
	if err != nil {
		fail(err)
	}
	addrs := session.URLs()
	if *dedupe {
		addrs = dropDuplicates(addrs)
	}
	link := linkcodec.Encode(loc, addrs)
	if link == "" {
		fail(fmt.Errorf("profile %s has no shareable tabs", session.Profile.Name))
	}
	fmt.Fprintf(os.Stderr, "%d tabs from %s\n", len(addrs), session.Profile.Name)
	if *list {
		fmt.Fprint(os.Stderr, tabList(session.Tabs))
	}
	fmt.Println(link)
}

// tabList renders one numbered line per tab: its title, then its URL.
func tabList(tabs []*types.Tab) string {
	var b strings.Builder
	for i, t := range tabs {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, t.Label())
		if t.Label() != t.URL {
			fmt.Fprintf(&b, "     %s\n", t.URL)
		}
	}
	return b.String()
}

func runProfiles() {
	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		fail(fmt.Errorf("discovering Firefox profiles: %w", err))
	}
	if len(profiles) == 0 {
		fmt.Fprintln(os.Stderr, "No Firefox profiles found.")
		os.Exit(1)
	}

	for _, p := range profiles {
		suffix := ""
		if p.IsDefault {
			suffix = " [default]"
		}
		fmt.Printf("%s (%s)%s\n", p.Name, p.Path, suffix)
	}
}

func runServe(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.ListenAddr, "Listen address")
	fs.Parse(args)

	loc, err := linkcodec.ParseLocation(cfg.BaseURL)
	if err != nil {
		fail(fmt.Errorf("base URL: %w", err))
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.NewServer(loc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("api server listening", "addr", *addr)
		applog.Info("api.start", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("api shutdown failed", "error", err)
	}
}

// newTabOpener builds the opener named by kind. For the live bridge, wait
// blocks until the extension attaches. The cleanup func releases whatever
// the opener holds.
func newTabOpener(ctx context.Context, cfg *config.Config, kind string, wait bool) (opener.TabOpener, func(), error) {
	kind = strings.ToLower(kind)
	if err := config.ValidateOpener(kind); err != nil {
		return nil, nil, err
	}

	switch kind {
	case config.OpenerCDP:
		o := cdp.NewOpener(cfg.CDPURL)
		return o, o.Close, nil

	case config.OpenerLive:
		srv := server.New(cfg.BridgePort)
		srvCtx, cancel := context.WithCancel(ctx)
		go func() {
			if err := srv.ListenAndServe(srvCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				applog.Error("server.listen", err)
			}
		}()
		if wait {
			fmt.Fprintf(os.Stderr, "Waiting for browser extension on port %d...\n", cfg.BridgePort)
			waitCtx, waitCancel := context.WithTimeout(srvCtx, bridgeWait)
			defer waitCancel()
			if err := srv.WaitConnected(waitCtx); err != nil {
				cancel()
				return nil, nil, err
			}
			if name := srv.Browser(); name != "" {
				fmt.Fprintf(os.Stderr, "Connected to %s\n", name)
			}
		}
		return server.NewTabOpener(srv, 0), cancel, nil
	}
	return platform.NewSystemBrowser(), func() {}, nil
}

// startLocation is the location the TUI loads: the link given on the
// command line, or the configured base URL.
func startLocation(cfg *config.Config, link string) (linkcodec.Location, error) {
	raw := cfg.BaseURL
	if link != "" {
		raw = link
	}
	loc, err := linkcodec.ParseLocation(raw)
	if err != nil {
		return linkcodec.Location{}, err
	}
	return loc, nil
}

func dropDuplicates(addrs []string) []string {
	kept, dropped := analyzer.Dedupe(addrs)
	if dropped > 0 {
		fmt.Fprintf(os.Stderr, "Dropped %d duplicate addresses\n", dropped)
	}
	return kept
}

func mustDecode(link string) []string {
	loc, err := linkcodec.ParseLocation(link)
	if err != nil {
		fail(err)
	}
	addrs, ok := linkcodec.DecodeLocation(loc)
	if !ok {
		fail(errors.New("link carries no addresses"))
	}
	return addrs
}

// reorderArgs moves flag arguments before positional arguments so that
// flag.Parse handles them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			flags = append(flags, args[i])
			if !isBoolFlag(args[i]) && !strings.Contains(args[i], "=") &&
				i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				flags = append(flags, args[i+1])
				i++
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}

func isBoolFlag(arg string) bool {
	switch strings.TrimLeft(arg, "-") {
	case "json", "markdown", "dedupe", "list":
		return true
	}
	return false
}

// resolveProfileName returns the profile name from the flag if set,
// otherwise the configured TABLINK_PROFILE.
func resolveProfileName(cfg *config.Config, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.Profile
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
