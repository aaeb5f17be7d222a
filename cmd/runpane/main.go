// Command runpane runs an external command against a file and shows the
// captured output in a reusable surface.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/term"

	"github.com/deixis/runpane"
	"github.com/deixis/runpane/internal/config"
	"github.com/deixis/runpane/internal/history"
	rpmcp "github.com/deixis/runpane/internal/mcp"
	"github.com/deixis/runpane/internal/pipeline"
	"github.com/deixis/runpane/internal/runner"
	"github.com/deixis/runpane/internal/surface"
)

var logger = newLogger()

func newLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
		NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
	}))
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "run":
		err = runMain(args)
	case "show":
		err = showMain(args)
	case "mcp":
		err = mcpMain(args)
	case "version":
		fmt.Println(runpane.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "runpane: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: runpane <command> [flags] [args]

Commands:
  run <file>      Run the configured command against a file and show its output
  show <run-id>   Re-display a past run's output without re-running
  mcp             Start the MCP server
  version         Print the version
  help            Show this help

Use "runpane <command> -h" for command-specific flags.`)
}

// listFlag collects repeated -arg values in order.
type listFlag []string

func (f *listFlag) String() string { return strings.Join(*f, " ") }

func (f *listFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}

// --- run ---

func runMain(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	commandFlag := fs.String("command", "", "override the configured command")
	surfaceFlag := fs.String("surface", "", "override the configured surface name")
	timeoutFlag := fs.Duration("timeout", 0, "override the configured timeout (e.g. 30s)")
	jsonFlag := fs.Bool("json", false, "print the capture as JSON instead of rendering")
	var extraArgs listFlag
	fs.Var(&extraArgs, "arg", "extra argument inserted before the file (repeatable)")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "runpane run: expected exactly one file argument")
		os.Exit(2)
	}
	target := fs.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// With -json the capture goes to stdout as JSON; keep the rendered
	// surface off the terminal.
	var sink surface.Sink = surface.NewTermSink(os.Stdout)
	if *jsonFlag {
		sink = surface.NewBufferSink()
	}

	eng, err := newEngine(*timeoutFlag, sink)
	if err != nil {
		return err
	}

	out, err := eng.Run(ctx, target, pipeline.Options{
		Command: *commandFlag,
		Args:    extraArgs,
		Surface: *surfaceFlag,
	})
	if err != nil {
		return err
	}

	if *jsonFlag {
		if err := printJSON(out.Capture); err != nil {
			return err
		}
	}

	if !out.Capture.Succeeded() {
		os.Exit(1)
	}
	return nil
}

// --- show ---

func showMain(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	surfaceFlag := fs.String("surface", "", "override the configured surface name")
	jsonFlag := fs.Bool("json", false, "print the capture as JSON instead of rendering")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "runpane show: expected exactly one run-id argument")
		os.Exit(2)
	}

	var sink surface.Sink = surface.NewTermSink(os.Stdout)
	if *jsonFlag {
		sink = surface.NewBufferSink()
	}

	eng, err := newEngine(0, sink)
	if err != nil {
		return err
	}

	out, err := eng.Show(fs.Arg(0), pipeline.Options{Surface: *surfaceFlag})
	if err != nil {
		return err
	}

	if *jsonFlag {
		return printJSON(out.Capture)
	}
	return nil
}

func printJSON(c *runner.Capture) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(history.FromCapture(c))
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(rpmcp.Instructions)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return serve(ctx, *httpAddr)
}

func serve(ctx context.Context, httpAddr string) error {
	workspace, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining workspace: %w", err)
	}

	loaded, err := config.Load(workspace)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config

	if err := pipeline.ResolveCommand(cfg.Command()); err != nil {
		logger.Warn("configured command is not available", "command", cfg.Command())
	}

	store := history.NewLRUStore(cfg.HistorySize(), history.NewDiskStore())

	r := &runner.Runner{
		Workspace: loaded.Root,
		Timeout:   cfg.Timeout(),
		MaxOutput: cfg.MaxOutputBytes(),
	}

	server := rpmcp.NewServer(cfg, r, store, loaded.Root)

	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	logger.Info("listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// --- shared ---

func newEngine(timeoutOverride time.Duration, sink surface.Sink) (*pipeline.Engine, error) {
	workspace, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining workspace: %w", err)
	}

	loaded, err := config.Load(workspace)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config

	timeout := cfg.Timeout()
	if timeoutOverride > 0 {
		timeout = timeoutOverride
	}

	return &pipeline.Engine{
		Config: cfg,
		Runner: &runner.Runner{
			Workspace: workspace,
			Timeout:   timeout,
			MaxOutput: cfg.MaxOutputBytes(),
		},
		Surfaces:  surface.NewRegistry(sink),
		Store:     history.NewLRUStore(cfg.HistorySize(), history.NewDiskStore()),
		Workspace: workspace,
	}, nil
}
