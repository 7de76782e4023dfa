package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"courier-dispatch/internal/jobs"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/notify"
	"courier-dispatch/internal/service/dispatch"
	"courier-dispatch/internal/transport/kafka"
	"courier-dispatch/internal/transport/mqtt"
)

const shutdownTimeout = 15 * time.Second

// Runner runs the HTTP service together with the background components.
type Runner struct {
	runFn func(*dig.Container) error
	exit  func(int)
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run, exit: os.Exit}
}

// MustRun runs the container and exits the process on an unexpected error.
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	logger := containerLogger(container)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Info("startup aborted: startup timeout exceeded")
	default:
		logger.Error("run error", logx.Err(err))
		if r.exit != nil {
			r.exit(1)
		}
	}
}

func containerLogger(container *dig.Container) logx.Logger {
	var logger logx.Logger
	if err := container.Invoke(func(l logx.Logger) { logger = l }); err != nil || logger == nil {
		return NewLogger()
	}
	return logger
}

// components is everything a process runs and closes, besides HTTP servers.
// Nil components are skipped.
type components struct {
	dig.In
	Ctx        context.Context
	Logger     logx.Logger
	Pool       *pgxpool.Pool
	Redis      redis.UniversalClient `optional:"true"`
	Notifier   notify.Gateway        `optional:"true"`
	Dispatcher *dispatch.Dispatcher  `optional:"true"`
	Consumer   *kafka.Consumer       `optional:"true"`
	Subscriber *mqtt.Subscriber      `optional:"true"`
	Jobs       *jobs.Manager         `optional:"true"`
}

type serversIn struct {
	dig.In
	Main  *http.Server
	Pprof *http.Server `name:"pprof_server" optional:"true"`
}

func run(container *dig.Container) error {
	return container.Invoke(func(rt components, servers serversIn) error {
		rt.Logger.Info("service-dispatch starting")
		return serve(rt, servers.Main, servers.Pprof)
	})
}

// serve blocks until ctx ends or a component fails, then shuts everything
// down. It returns ctx.Err() on a requested shutdown.
func serve(rt components, servers ...*http.Server) error {
	defer closeResources(rt)

	g, gctx := errgroup.WithContext(rt.Ctx)
	for _, srv := range servers {
		if srv != nil {
			startServer(g, srv, rt.Logger)
		}
	}
	startBackground(gctx, g, rt)

	g.Go(func() error {
		<-gctx.Done()
		rt.Logger.Info("shutting down")
		for _, srv := range servers {
			if srv != nil {
				gracefulShutdown(srv, rt.Logger, shutdownTimeout)
			}
		}
		stopBackground(rt, shutdownTimeout)
		return nil
	})

	err := g.Wait()
	if err == nil || errors.Is(err, context.Canceled) {
		if cerr := rt.Ctx.Err(); cerr != nil {
			return cerr
		}
	}
	return err
}

func startServer(g *errgroup.Group, srv *http.Server, logger logx.Logger) {
	g.Go(func() error {
		logger.Info("http server listening", logx.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		return nil
	})
}

func startBackground(ctx context.Context, g *errgroup.Group, rt components) {
	if rt.Jobs != nil {
		rt.Jobs.Start()
	}
	if rt.Consumer != nil {
		g.Go(func() error {
			rt.Logger.Info("orders consumer started")
			return rt.Consumer.Run(ctx)
		})
	}
	if rt.Subscriber != nil {
		g.Go(func() error {
			if err := rt.Subscriber.Start(ctx); err != nil {
				return fmt.Errorf("location feed: %w", err)
			}
			rt.Logger.Info("location feed subscribed")
			<-ctx.Done()
			return nil
		})
	}
}

// stopBackground stops producers of new work first, then waits for running
// flows so their cleanup still reaches the notifier and stores.
func stopBackground(rt components, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if rt.Jobs != nil {
		if err := rt.Jobs.Stop(ctx); err != nil {
			rt.Logger.Warn("jobs stop error", logx.Err(err))
		}
	}
	if rt.Dispatcher != nil {
		if err := rt.Dispatcher.Shutdown(ctx); err != nil {
			rt.Logger.Warn("dispatcher shutdown error", logx.Err(err), logx.Int("active", rt.Dispatcher.Active()))
		}
	}
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Warn("graceful shutdown error", logx.String("addr", srv.Addr), logx.Err(err))
	}
}

func closeResources(rt components) {
	closeAll(rt.Logger,
		named{"kafka consumer", closerOf(rt.Consumer)},
		named{"location feed", closerOf(rt.Subscriber)},
		named{"notifier", closerOf(rt.Notifier)},
		named{"redis", closerOf(rt.Redis)},
	)
	if rt.Pool != nil {
		rt.Pool.Close()
	}
	_ = rt.Logger.Sync()
}

type named struct {
	name string
	c    io.Closer
}

// closerOf returns nil for nil pointers and values that cannot be closed.
func closerOf(v any) io.Closer {
	switch c := v.(type) {
	case *kafka.Consumer:
		if c == nil {
			return nil
		}
		return c
	case *mqtt.Subscriber:
		if c == nil {
			return nil
		}
		return c
	case io.Closer:
		return c
	default:
		return nil
	}
}

func closeAll(logger logx.Logger, items ...named) {
	for _, it := range items {
		if it.c == nil {
			continue
		}
		if err := it.c.Close(); err != nil {
			logger.Error("close error", logx.String("component", it.name), logx.Err(err))
		}
	}
}
