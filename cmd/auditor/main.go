package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/user/html5-auditor/pkg/config"
	"github.com/user/html5-auditor/pkg/logger"
)

// CLI flags structure
type CLI struct {
	LogLevel string `help:"Log level (debug, info, warn, error). Defaults to LOG_LEVEL."`
	LogFile  string `help:"Write logs to this file instead of stderr." type:"path"`

	Audit            AuditCmd            `cmd:"" help:"Audit a single page and print the report."`
	TUI              TUICmd              `cmd:"" name:"tui" help:"Start the interactive terminal UI."`
	InstallValidator InstallValidatorCmd `cmd:"" help:"Download vnu.jar into the validator directory."`
}

// appContext is bound into every command's Run method.
type appContext struct {
	cfg *config.Config
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup happens before exit.
func run(args []string) int {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("auditor"),
		kong.Description("HTML5 and SEO auditor for a single web page."),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cli setup failed:", err)
		return 2
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		return 2
	}

	closeLog, err := setupLogging(&cli, cfg, ctx.Command())
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging setup failed:", err)
		return 2
	}
	defer closeLog()

	if err := ctx.Run(&appContext{cfg: cfg}); err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		ctx.Errorf("%s", err)
		return 1
	}
	return 0
}

// setupLogging installs a console logger. The TUI owns the terminal, so it
// only logs when a log file is given.
func setupLogging(cli *CLI, cfg *config.Config, command string) (func(), error) {
	level := cli.LogLevel
	if level == "" {
		level = cfg.LogLevel
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case cli.LogFile != "":
		f, err := os.OpenFile(cli.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		w = f
		closeFn = func() { f.Close() }
	case command == "tui":
		w = io.Discard
	}

	logger.Init(w, logger.ParseLevel(level), "console")
	slog.Debug("Logger initialized", "level", level)
	return closeFn, nil
}
