package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/whisker/pkg/adapter"
	"github.com/m-mizutani/whisker/pkg/server"
	"github.com/m-mizutani/whisker/pkg/usecase/discovery"
	"github.com/m-mizutani/whisker/pkg/usecase/session"
	"github.com/m-mizutani/whisker/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	var (
		cfg          config
		addr         string
		sessionTTL   time.Duration
		secureCookie bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Aliases:     []string{"a"},
			Usage:       "Listen address",
			Value:       ":8080",
			Sources:     cli.EnvVars("WHISKER_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "session-ttl",
			Usage:       "Stop browser sessions unused for this long",
			Value:       server.DefaultSessionTTL,
			Sources:     cli.EnvVars("WHISKER_SESSION_TTL"),
			Destination: &sessionTTL,
		},
		&cli.BoolFlag{
			Name:        "secure-cookie",
			Usage:       "Set the Secure attribute on the session cookie (use behind HTTPS)",
			Sources:     cli.EnvVars("WHISKER_SECURE_COOKIE"),
			Destination: &secureCookie,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the browser UI",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setup(ctx, c)
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			api := cfg.newCatAPI()
			manager := server.NewManager(newControllerFactory(api), server.WithSessionTTL(sessionTTL))
			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(manager, server.WithSecureCookie(secureCookie)),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(net.Listener) context.Context {
					return ctx
				},
			}

			return runServer(ctx, srv, manager)
		},
	}
}

func newControllerFactory(api adapter.CatAPI) server.ControllerFactory {
	return func() *session.Controller {
		return session.NewController(discovery.New(api))
	}
}

// runServer serves HTTP and reaps sessions until ctx is canceled or the
// listener fails
func runServer(ctx context.Context, srv *http.Server, manager *server.Manager) error {
	logger := logging.From(ctx)
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logger.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return goerr.Wrap(err, "server failed", goerr.V("addr", srv.Addr))
		}
		return nil
	})

	eg.Go(func() error {
		return manager.Run(ctx)
	})

	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return goerr.Wrap(err, "failed to shutdown server")
		}
		return nil
	})

	return eg.Wait()
}
