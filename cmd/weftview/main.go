// Package main is the entry point for weftview, a terminal pager built
// on the weft text engine. It demonstrates the full stack: bulk loading
// into a rope-backed buffer, line-oriented rendering, word navigation,
// regex search as spans overlays, and live reloading through incremental
// edits.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/juju/errors"
	"github.com/spf13/pflag"

	"github.com/dshills/weft/buffer"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		flagConfig   = pflag.String("config", "", "Path to configuration file")
		flagTheme    = pflag.String("theme", "", "Theme name from the themes directory")
		flagFollow   = pflag.BoolP("follow", "f", false, "Reload the file when it changes on disk")
		flagTabWidth = pflag.Int("tab-width", 0, "Tab stop width")
		flagWrap     = pflag.Bool("wrap", false, "Wrap long lines instead of scrolling")
		flagLogFile  = pflag.String("log-file", "", "Write logs to this file")
		flagLogLevel = pflag.String("log-level", "", "Log level (debug, info, warn, error)")
		flagVersion  = pflag.BoolP("version", "v", false, "Show version information")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "weftview - terminal pager\n\n")
		fmt.Fprintf(os.Stderr, "Usage: weftview [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys: arrows/hjkl scroll, g/G jump, w/b word jump, / search, n/N next/prev match, q quit\n")
	}
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("weftview %s (%s)\n", version, commit)
		return 0
	}

	cfg, err := loadConfig(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Flags override file values.
	if pflag.CommandLine.Changed("theme") {
		cfg.Theme = *flagTheme
	}
	if pflag.CommandLine.Changed("tab-width") {
		cfg.TabWidth = *flagTabWidth
	}
	if pflag.CommandLine.Changed("wrap") {
		cfg.Wrap = *flagWrap
	}
	if pflag.CommandLine.Changed("log-file") {
		cfg.LogFile = *flagLogFile
	}
	if pflag.CommandLine.Changed("log-level") {
		cfg.LogLevel = *flagLogLevel
	}
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = defaultConfig().TabWidth
	}

	log, err := NewLogger(ParseLogLevel(cfg.LogLevel), cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer log.Close()

	theme, err := loadTheme(cfg.Theme, configDir())
	if err != nil {
		log.Warn("theme %q unusable, using default: %v", cfg.Theme, err)
	}

	buf, name, err := openBuffer(pflag.Args(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		pflag.Usage()
		return 1
	}
	log.Info("opened %s: %d bytes, %d lines, %s endings",
		displayName(name), buf.Len(), buf.LineCount(), buf.LineEnding())

	follow := *flagFollow && name != ""
	if *flagFollow && name == "" {
		log.Warn("follow mode needs a file, ignoring -f for stdin")
	}

	if err := runUI(cfg, theme, buf, name, follow, log); err != nil {
		log.Error("fatal: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// openBuffer loads the document from the named file, or from stdin when
// no file is given and stdin is a pipe.
func openBuffer(args []string, cfg Config) (*buffer.Buffer, string, error) {
	if len(args) > 1 {
		return nil, "", errors.New("expected at most one file")
	}

	if len(args) == 1 {
		name := args[0]
		f, err := os.Open(name)
		if err != nil {
			return nil, "", errors.Annotatef(err, "opening %s", name)
		}
		defer f.Close()
		buf, err := buffer.NewFromReader(f, buffer.WithTabWidth(cfg.TabWidth))
		if err != nil {
			return nil, "", errors.Annotatef(err, "reading %s", name)
		}
		return buf, name, nil
	}

	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return nil, "", errors.New("no file to view")
	}
	buf, err := buffer.NewFromReader(os.Stdin, buffer.WithTabWidth(cfg.TabWidth))
	if err != nil {
		return nil, "", errors.Annotate(err, "reading stdin")
	}
	return buf, "", nil
}

func displayName(name string) string {
	if name == "" {
		return "(stdin)"
	}
	return name
}

// runUI owns the terminal from Init to Fini so error reporting in run
// happens on a restored screen.
func runUI(cfg Config, theme Theme, buf *buffer.Buffer, name string, follow bool, log *Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Annotate(err, "creating terminal")
	}
	if err := screen.Init(); err != nil {
		return errors.Annotate(err, "initializing terminal")
	}
	defer screen.Fini()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		<-signals
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	if follow {
		fl, err := newFollower(buf, name, screen, log)
		if err != nil {
			return errors.Annotate(err, "starting follow mode")
		}
		defer fl.Close()
	}

	v := newViewer(screen, buf, theme.styles(), name, cfg, follow, log)
	return v.run()
}
