// Command edgerun runs the multi-tenant edge runtime: it loads the server
// configuration, builds each tenant's bundle, starts a watcher per tenant
// project directory, and serves HTTP traffic until interrupted.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edgerun/edgerun/apperrors"
	"github.com/edgerun/edgerun/build"
	"github.com/edgerun/edgerun/bundle"
	"github.com/edgerun/edgerun/dispatch"
	"github.com/edgerun/edgerun/logging"
	"github.com/edgerun/edgerun/middleware"
	"github.com/edgerun/edgerun/ratelimit"
	"github.com/edgerun/edgerun/registry"
	"github.com/edgerun/edgerun/routeconfig"
	"github.com/edgerun/edgerun/script"
	"github.com/edgerun/edgerun/serverconfig"
	"github.com/edgerun/edgerun/watcher"
	"github.com/spf13/pflag"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: edgerun <init|build|run> [flags]")
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "init":
		err = runInit(args)
	case "build":
		err = runBuild(args)
	case "run":
		err = runServe(args)
	default:
		err = fmt.Errorf("unknown subcommand %q", cmd)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "edgerun:", err)
		os.Exit(1)
	}
}

func runInit(args []string) error {
	flags := pflag.NewFlagSet("init", pflag.ContinueOnError)
	dir := flags.StringP("dir", "d", ".", "project directory to scaffold")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return err
	}

	mainMjs := `({
  hello: async (req) => ({ status: 200, headers: {"content-type": "text/plain"}, body: "hello" }),
});
`
	routesYml := `name: demo
routes:
  /hello:
    - method: GET
      handler: hello
`
	if err := os.WriteFile(fmt.Sprintf("%s/main.mjs", *dir), []byte(mainMjs), 0o644); err != nil {
		return err
	}
	return os.WriteFile(fmt.Sprintf("%s/routes.yml", *dir), []byte(routesYml), 0o644)
}

func runBuild(args []string) error {
	flags := pflag.NewFlagSet("build", pflag.ContinueOnError)
	dir := flags.StringP("dir", "d", ".", "project directory to build")
	if err := flags.Parse(args); err != nil {
		return err
	}

	pipeline := build.NewDevPipeline(nil)
	out, err := pipeline.Build(*dir)
	if err != nil {
		return err
	}

	fmt.Printf("built %d bytes of script, %d bytes of route config\n", len(out.ScriptSource), len(out.RouteConfig))
	return nil
}

func runServe(args []string) error {
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "path to server config file")
	port := flags.IntP("port", "p", 0, "override the configured listen port")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := serverconfig.Load(*configPath)
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.Port = *port
	}

	logger := logging.New(&logging.Config{
		Environment: cfg.Environment,
		Level:       logging.ParseLevel(cfg.LogLevel),
	})
	logging.SetDefault(logger)

	reg := registry.New()
	pools := script.NewPoolRegistry()
	pipeline := build.NewDevPipeline(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, tenant := range cfg.Tenants {
		if err := bootstrapTenant(ctx, tenant, cfg, reg, pools, pipeline, logger); err != nil {
			return fmt.Errorf("tenant %s: %w", tenant.Host, err)
		}
	}

	dispatcher := dispatch.New(reg, pools.Get, logger, cfg.HandlerTimeout)

	limiter := ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst)
	errorHandler := apperrors.NewHandler(apperrors.WithLogger(logger))

	handler := middleware.NewStack(
		middleware.Recovery(errorHandler),
		middleware.CORS(),
		middleware.Logger(logger),
		limiter.Middleware,
	).Then(dispatcher)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", logging.Err(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

func bootstrapTenant(
	ctx context.Context,
	tenant serverconfig.TenantEntry,
	cfg *serverconfig.Config,
	reg *registry.Registry,
	pools *script.PoolRegistry,
	pipeline build.Pipeline,
	logger *logging.Logger,
) error {
	holder, pool, err := buildTenantBundle(tenant.Directory, cfg.PoolSize, pipeline, logger)
	if err != nil {
		return err
	}

	reg.Insert(tenant.Host, holder)
	pools.Insert(tenant.Host, pool)

	w, err := watcher.New(tenant.Directory, cfg.WatchDebounce, func(ctx context.Context) error {
		newHolderBundle, newPool, err := buildTenantBundle(tenant.Directory, cfg.PoolSize, pipeline, logger)
		if err != nil {
			return err
		}
		holder.Store(newHolderBundle.Load())
		pools.Insert(tenant.Host, newPool)
		return nil
	}, logger)
	if err != nil {
		return err
	}

	go w.Run(ctx)
	return nil
}

func buildTenantBundle(dir string, poolSize int, pipeline build.Pipeline, logger *logging.Logger) (*bundle.Holder, *script.Pool, error) {
	out, err := pipeline.Build(dir)
	if err != nil {
		return nil, nil, apperrors.IO(err, "failed to build project")
	}

	routeCfg, err := routeconfig.Parse(out.RouteConfig)
	if err != nil {
		return nil, nil, err
	}

	descriptions, err := routeCfg.RouteDescriptions()
	if err != nil {
		return nil, nil, err
	}

	b, err := bundle.New(out.ScriptSource, descriptions)
	if err != nil {
		return nil, nil, err
	}

	pool, err := script.NewPool(out.ScriptSource, poolSize, logger)
	if err != nil {
		return nil, nil, err
	}

	return bundle.NewHolder(b), pool, nil
}
