package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/getsentry/sentry-go"

	"github.com/firekit/firekit"
	"github.com/firekit/firekit/middlewares"
	"github.com/firekit/firekit/pkg/activator"
	"github.com/firekit/firekit/pkg/backend"
	"github.com/firekit/firekit/pkg/config"
	"github.com/firekit/firekit/pkg/logger"
	"github.com/firekit/firekit/pkg/services"
)

var (
	version = "dev"
	commit  = "none"
)

// CLI is the root command.
type CLI struct {
	Config   string           `kong:"short='c',env='FIREKIT_CONFIG',default='firekit.yaml',help='Path to the YAML configuration file'"`
	LogLevel string           `kong:"short='l',help='Override log.level from the configuration'"`
	Serve    ServeCmd         `kong:"cmd,default='1',help='Serve the host (default)'"`
	Plugins  PluginsCmd       `kong:"cmd,help='Print the resolved plugin order'"`
	Event    EventCmd         `kong:"cmd,help='Record an analytics event from the client side'"`
	Version  kong.VersionFlag `kong:"short='v',help='Show version and exit.'"`

	out io.Writer
}

func (c *CLI) load() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	return cfg, nil
}

// ServeCmd runs the HTTP host until interrupted.
type ServeCmd struct{}

// Run executes the serve command.
func (s *ServeCmd) Run(cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(cfg.Log, cfg.Sentry,
		middlewares.RequestIDExtractor(),
		backend.SessionExtractor(),
		backend.UserExtractor(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mod, err := backend.Open(ctx, cfg.Backend(), backend.WithLogger(log))
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}

	app, err := newApp(cfg, mod, log)
	if err != nil {
		_ = mod.Close(context.WithoutCancel(ctx))
		return err
	}

	hooks := append(mod.ShutdownHooks(), flushSentry)
	return app.Run(cfg.Server.Address,
		firekit.Logger(log),
		firekit.WithContext(ctx),
		firekit.ShutdownTimeout(cfg.Server.ShutdownTimeout),
		firekit.ShutdownHook(hooks...),
	)
}

// newApp assembles the host from cfg around an opened module.
func newApp(cfg *config.Config, mod *backend.Module, log *slog.Logger) (*firekit.App, error) {
	reg, err := services.NewRegistry()
	if err != nil {
		return nil, err
	}
	act, err := activator.New(cfg.Fire, reg, backend.NewAppFactory(mod), activator.WithLogger(log))
	if err != nil {
		return nil, err
	}

	refs, err := orderRefs(cfg.Plugins.Order, cfg.Plugins.MoveAfterFirekit)
	if err != nil {
		return nil, err
	}
	list, err := buildPlugins(refs)
	if err != nil {
		return nil, err
	}

	return firekit.New(
		firekit.WithCustomLogger(log),
		firekit.WithFire(act),
		firekit.WithPlugins(list...),
		firekit.WithStaticExport(cfg.Server.Static),
		firekit.WithCookieOptions(cookieOptions(cfg.Cookie)...),
		firekit.WithHealthChecks(firekit.WithReadinessChecks(mod.Healthchecks())),
		firekit.WithHandlers(sessionHandler{}),
	), nil
}

func cookieOptions(c config.Cookie) []firekit.CookieOption {
	opts := []firekit.CookieOption{firekit.WithCookieSecure(c.Secure)}
	if c.Name != "" {
		opts = append(opts, firekit.WithAuthCookieName(c.Name))
	}
	if c.Domain != "" {
		opts = append(opts, firekit.WithCookieDomain(c.Domain))
	}
	return opts
}

func flushSentry(context.Context) error {
	sentry.Flush(2 * time.Second)
	return nil
}

// sessionHandler reports the identity of the calling request.
type sessionHandler struct{}

func (sessionHandler) Routes(r firekit.Router) {
	r.GET("/fire/session", func(c firekit.Context) error {
		ns, err := firekit.Fire(c)
		if err != nil {
			return firekit.ErrServiceUnavailable("fire is not active", firekit.WithError(err))
		}
		auth, err := services.GetAuth(c, ns)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{
			"authenticated": auth.IsAuthenticated(),
			"uid":           auth.UID(),
			"services":      ns.Keys(),
		})
	})
}

// PluginsCmd prints the plugin order the host would run.
type PluginsCmd struct{}

// Run executes the plugins command.
func (p *PluginsCmd) Run(cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}
	refs, err := orderRefs(cfg.Plugins.Order, cfg.Plugins.MoveAfterFirekit)
	if err != nil {
		return err
	}
	for i, ref := range refs {
		if _, err := fmt.Fprintf(cli.out, "%d\t%s\n", i+1, ref.Src); err != nil {
			return err
		}
	}
	return nil
}

// EventCmd records one analytics event through a client-side namespace.
type EventCmd struct {
	Name   string            `kong:"arg,help='Event name'"`
	Params map[string]string `kong:"short='p',help='Event parameter as key=value'"`
	Token  string            `kong:"env='FIREKIT_ID_TOKEN',help='ID token attributing the event to a user'"`
}

// Run executes the event command.
func (e *EventCmd) Run(cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log, backend.SessionExtractor(), backend.UserExtractor())

	ctx := context.Background()
	mod, err := backend.Open(ctx, cfg.Backend(), backend.WithLogger(log))
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	defer func() { _ = mod.Close(context.WithoutCancel(ctx)) }()

	reg, err := services.NewRegistry()
	if err != nil {
		return err
	}
	act, err := activator.New(cfg.Fire, reg, backend.NewAppFactory(mod), activator.WithLogger(log))
	if err != nil {
		return err
	}

	ctx, ns, err := firekit.ActivateClient(ctx, act, e.Token)
	if err != nil {
		return err
	}
	events, err := services.GetAnalytics(ctx, ns)
	if err != nil {
		return err
	}

	params := make(map[string]any, len(e.Params))
	for k, v := range e.Params {
		params[k] = v
	}
	id, err := events.LogEvent(ctx, e.Name, params)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cli.out, id)
	return err
}

func run(args []string) error {
	return runWith(args, os.Stdout)
}

func runWith(args []string, out io.Writer) error {
	cli := CLI{out: out}
	parser, err := kong.New(&cli,
		kong.Name("firekit"),
		kong.Description("Serve a firekit host."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": fmt.Sprintf("%s (%s)", version, commit)},
		kong.Writers(out, out),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(&cli)
}
