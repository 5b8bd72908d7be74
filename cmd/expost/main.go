//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/mattn/go-isatty"
	"github.com/pranshuparmar/expost/internal/config"
	"github.com/pranshuparmar/expost/internal/display"
	"github.com/pranshuparmar/expost/internal/output"
	"github.com/pranshuparmar/expost/internal/proc"
	"github.com/pranshuparmar/expost/internal/sampler"
	"github.com/pranshuparmar/expost/internal/session"
	"github.com/pranshuparmar/expost/internal/target"
	"github.com/pranshuparmar/expost/internal/tui"
	"github.com/pranshuparmar/expost/pkg/model"
	"github.com/sirupsen/logrus"
)

// Exit codes
const (
	ExitSuccess            = 0
	ExitGeneralError       = 1
	ExitInvalidArgs        = 2
	ExitProcessUnavailable = 3
	ExitTrackingFailed     = 4
	ExitInterrupted        = 130
)

var version = "dev"
var commit = ""
var buildDate = ""

type cliArgs struct {
	target      string
	path        string
	configPath  string
	interval    time.Duration
	display     string
	interactive bool
	procRoot    string
	barWidth    int
	logLevel    string
	json        bool
	noColor     bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newApp(a *cliArgs, stderr io.Writer) *kingpin.Application {
	app := kingpin.New("expost", "Show how far a running process has got through a file it already has open.")
	app.Version(versionString())
	app.HelpFlag.Short('h')
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)

	app.Flag("config", "YAML configuration file.").Envar("EXPOST_CONFIG").StringVar(&a.configPath)
	app.Flag("interval", "Time between two samples of a descriptor.").Envar("EXPOST_INTERVAL").DurationVar(&a.interval)
	app.Flag("display", "How progress is drawn.").Envar("EXPOST_DISPLAY").EnumVar(&a.display, display.Modes()...)
	app.Flag("interactive", "Interactive display, same as --display=tui.").Short('i').BoolVar(&a.interactive)
	app.Flag("proc-root", "Mount point of procfs.").Envar("EXPOST_PROC_ROOT").StringVar(&a.procRoot)
	app.Flag("bar-width", "Width of the progress bars.").IntVar(&a.barWidth)
	app.Flag("log-level", "Log level written to stderr.").Envar("EXPOST_LOG_LEVEL").
		EnumVar(&a.logLevel, "panic", "fatal", "error", "warning", "info", "debug", "trace")
	app.Flag("json", "Print the final result as JSON.").BoolVar(&a.json)
	app.Flag("no-color", "Disable colorized output.").BoolVar(&a.noColor)

	app.Arg("process", "PID or name of the process that has the file open.").Required().StringVar(&a.target)
	app.Arg("path", "File being read or written.").Required().StringVar(&a.path)
	return app
}

func versionString() string {
	v := version
	if commit != "" {
		v += " (commit " + commit
		if buildDate != "" {
			v += ", built " + buildDate
		}
		v += ")"
	}
	return v
}

func run(args []string, stdout, stderr io.Writer) int {
	var a cliArgs
	app := newApp(&a, stderr)
	if _, err := app.Parse(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Run 'expost --help' for usage.")
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(a)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	errw := output.NewSafeTerminalWriter(stderr)
	log := logrus.New()
	log.SetOutput(errw)
	log.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			log.WithField("signal", sig).Info("stopping observation")
			cancel()
		case <-ctx.Done():
		}
	}()

	errOut := output.NewPrinter(errw, false)

	path, err := canonicalize(a.path)
	if err != nil {
		errOut.Printf("Error: %v\n", err)
		return ExitInvalidArgs
	}

	resolver, err := proc.NewResolver(cfg.ProcRoot, log)
	if err != nil {
		errOut.Printf("Error: %v\n", err)
		return ExitGeneralError
	}

	pid, err := target.Resolve(resolver, a.target)
	if err != nil {
		var amb *target.AmbiguousError
		switch {
		case errors.As(err, &amb):
			output.RenderAmbiguous(stderr, amb.Matches, path)
			return ExitInvalidArgs
		case errors.Is(err, target.ErrNoSuchProcess):
			errOut.Printf("Error: %v\n", err)
			return ExitProcessUnavailable
		default:
			errOut.Printf("Error: %v\n", err)
			return ExitGeneralError
		}
	}

	fds, err := resolver.Resolve(pid, path)
	if err != nil {
		errOut.Printf("Error: %v\n", err)
		if errors.Is(err, proc.ErrProcessUnavailable) {
			errOut.Printf("The process may have exited, or belongs to another user (try sudo).\n")
			return ExitProcessUnavailable
		}
		return ExitGeneralError
	}

	color := cfg.Color && isTerminal(stdout)
	info := resolver.Describe(pid)

	if len(fds) == 0 {
		if a.json {
			return printJSON(stdout, errOut, model.Result{Target: model.TargetFile{Path: path}, Process: info})
		}
		output.RenderNothing(stdout, pid, path, color)
		return ExitSuccess
	}

	size, err := resolver.Size(pid, fds, path)
	if err != nil {
		errOut.Printf("Error: %v\n", err)
		return ExitGeneralError
	}
	tf := model.TargetFile{Path: path, Size: size}

	// with --json, stdout carries only the document
	progressOut := stdout
	if a.json {
		progressOut = stderr
		color = false
	}
	output.RenderHeader(progressOut, info, tf, fds, color)

	disp := newDisplay(cfg, progressOut, "Watching "+path, cancel)
	smp := sampler.New(resolver.OpenStatus, sampler.WithInterval(cfg.Interval), sampler.WithLogger(log))
	res := session.New(disp, smp, log).Run(ctx, pid, tf, fds)
	res.Process = info

	if a.json {
		if code := printJSON(stdout, errOut, res); code != ExitSuccess {
			return code
		}
	} else {
		output.RenderSummary(stdout, res, color)
	}

	switch {
	case res.OK():
		return ExitSuccess
	case ctx.Err() != nil:
		return ExitInterrupted
	default:
		return ExitTrackingFailed
	}
}

// loadConfig layers the config file and flags over the defaults
func loadConfig(a cliArgs) (config.Config, error) {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(a.configPath); err != nil {
			return config.Config{}, err
		}
	}

	if a.interval != 0 {
		cfg.Interval = a.interval
	}
	if a.display != "" {
		cfg.Display = display.Mode(a.display)
	}
	if a.interactive {
		cfg.Display = display.ModeTUI
	}
	if a.procRoot != "" {
		cfg.ProcRoot = a.procRoot
	}
	if a.barWidth != 0 {
		cfg.BarWidth = a.barWidth
	}
	if a.logLevel != "" {
		level, err := logrus.ParseLevel(a.logLevel)
		if err != nil {
			return config.Config{}, err
		}
		cfg.LogLevel = level
	}
	if a.noColor {
		cfg.Color = false
	}
	return cfg, cfg.Validate()
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return resolved, nil
}

func newDisplay(cfg config.Config, w io.Writer, title string, interrupt func()) display.Display {
	mode := cfg.Display
	if mode == display.ModeAuto {
		mode = display.ModeLines
		if isTerminal(w) {
			mode = display.ModeBars
		}
	}

	switch mode {
	case display.ModeTUI:
		return tui.New(title, tui.WithInterrupt(interrupt), tui.WithOutput(w))
	case display.ModeBars:
		return display.NewBars(w, cfg.BarWidth)
	default:
		return display.NewLines(w)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func printJSON(w io.Writer, errOut output.Printer, r model.Result) int {
	out, err := output.ToJSON(r)
	if err != nil {
		errOut.Printf("Error: %v\n", err)
		return ExitGeneralError
	}
	fmt.Fprintln(w, out)
	return ExitSuccess
}
