// Command surveyctl manages surveys on the backend: list, inspect, approve and
// delete them, author new ones interactively or from a draft document, and
// serve the web UI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/goliatone/go-surveyform/internal/config"
	"github.com/goliatone/go-surveyform/internal/logging"
	"github.com/goliatone/go-surveyform/pkg/client"
	"github.com/goliatone/go-surveyform/pkg/contract"
)

// app carries what every subcommand needs. Tests replace newService.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	cfg        config.Config
	logger     *zap.Logger
	newService func(cfg config.Config, logger *zap.Logger) (client.SurveyService, error)
}

type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"list", "list", "List surveys", runList},
	{"show", "show <id>", "Show one survey", runShow},
	{"approve", "approve <id>", "Approve a draft survey", runApprove},
	{"delete", "delete <id>", "Delete a survey", runDelete},
	{"create", "create [--draft file.yaml] [--preview] [--dry-run] [--save file.yaml]", "Author and create a survey", runCreate},
	{"validate", "validate [--json] <file.yaml>", "Validate a draft document", runValidate},
	{"contract", "contract [--check file.yaml]", "List backend operations or check a draft against them", runContract},
	{"serve", "serve [--addr :8080]", "Serve the web UI", runServe},
}

// errUsage makes run print usage and exit 2.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, defaultService)
	stop()
	os.Exit(code)
}

func defaultService(cfg config.Config, logger *zap.Logger) (client.SurveyService, error) {
	ct, err := contract.Default()
	if err != nil {
		return nil, err
	}
	return client.New(cfg.API.BaseURL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithLogger(logger),
		client.WithContract(ct),
	)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, newService func(config.Config, *zap.Logger) (client.SurveyService, error)) int {
	fs := flag.NewFlagSet("surveyctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file")
	fs.Usage = func() { usage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		usage(stderr)
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "surveyctl: %v\n", err)
		return 1
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(stderr, "surveyctl: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	a := &app{stdout: stdout, stderr: stderr, cfg: cfg, logger: logger, newService: newService}
	name, rest := fs.Arg(0), fs.Args()[1:]
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		err := cmd.run(ctx, a, rest)
		switch {
		case err == nil:
			return 0
		case errors.Is(err, errUsage):
			fmt.Fprintf(stderr, "Usage: %s %s\n", filepath.Base(os.Args[0]), cmd.usage)
			return 2
		case errors.Is(err, errFailed):
			return 1
		default:
			fmt.Fprintf(stderr, "surveyctl %s: %v\n", name, err)
			return 1
		}
	}
	fmt.Fprintf(stderr, "surveyctl: unknown command %q\n", name)
	usage(stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s [--config file] <command> [args]\n\nCommands:\n", filepath.Base(os.Args[0]))
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-52s %s\n", cmd.usage, cmd.summary)
	}
}

func (a *app) service() (client.SurveyService, error) {
	svc, err := a.newService(a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to backend: %w", err)
	}
	return svc, nil
}
