package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdhttp "net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/donmikel/lcpmedia/applications/server/adapters/afs"
	"github.com/donmikel/lcpmedia/applications/server/config"
	"github.com/donmikel/lcpmedia/applications/server/handlers/http"
	"github.com/donmikel/lcpmedia/applications/server/interfaces"
	"github.com/donmikel/lcpmedia/applications/server/services"
)

// exitCode is a process termination code.
type exitCode int

// Possible process termination codes are listed below.
const (
	// exitSuccess is code for successful program termination.
	exitSuccess exitCode = 0
	// exitFailure is code for unsuccessful program termination.
	exitFailure exitCode = 1
)

// Shutdown timeout for http servers.
const shutdownTimeout = 5 * time.Second

var (
	// version is the service version from git tag.
	version = ""
)

func main() {
	os.Exit(int(gracefulMain()))
}

// gracefulMain releases resources gracefully upon termination.
// When we call os.Exit defer statements do not run resulting in unclean process shutdown.
// nolint
func gracefulMain() exitCode {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := fs.String("config", "", "path to the config file")
	v := fs.Bool("v", false, "Show version")

	err := fs.Parse(os.Args[1:])
	if err == flag.ErrHelp {
		return exitSuccess
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "parsing cli flags failed:", err)
		return exitFailure
	}

	if *v {
		if version == "" {
			fmt.Fprintln(os.Stderr, "version not set")
		} else {
			fmt.Println(version)
		}

		return exitSuccess
	}

	cfg, err := config.Parse(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot parse service config:", err)
		return exitFailure
	}

	err = cfg.Validate()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config validation failed:", err)
		return exitFailure
	}

	logger, closeLog := newLogger(cfg.Log)
	defer closeLog()

	logger.Log("configPath", *configPath)

	// It's nice to be able to see panics in Logs, hence we monitor for panics after
	// logger has been bootstrapped.
	defer monitorPanic(logger)
	ctx := context.Background()

	var store interfaces.MediaStore
	{
		store = afs.NewStore(afero.NewOsFs(), cfg.Media.Roots, cfg.Media.CloudRoots, logger)
	}

	svc := http.Services{
		Media: services.NewMediaService(store, services.MediaOptions{
			Scheme:             cfg.Media.Scheme,
			ChunkSize:          cfg.Media.ChunkSize,
			BufferChunks:       cfg.Media.BufferChunks,
			IdleReadTimeout:    cfg.Media.IdleReadTimeout,
			ContentTypes:       cfg.Media.ContentTypes,
			DefaultContentType: cfg.Media.DefaultContentType,
		}, log.With(logger, "component", "media")),
		Scanner: services.NewScanner(store, cfg.Media.Scheme, log.With(logger, "component", "scanner")),
		Session: services.NewPlayerSession(),
	}

	if len(cfg.Media.Roots) == 0 {
		level.Warn(logger).Log("msg", "no media roots configured, any readable path is servable")
	}

	group, ctx := errgroup.WithContext(ctx)

	// Requests derive from the group context so open streams end once shutdown starts.
	hServer := http.NewHTTPServer(ctx, cfg, svc, logger)
	group.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-sig:
			level.Info(logger).Log("msg", fmt.Sprintf("signal received (waiting %v before terminating): %v", cfg.API.PreStopWait, s))
			time.Sleep(cfg.API.PreStopWait)
			level.Info(logger).Log("msg", "terminating...")

			return fmt.Errorf("signal received: %s", s)
		}
	})

	group.Go(func() error {
		level.Info(logger).Log("msg", "media server listening",
			"addr", cfg.API.HTTPAddr,
			"scheme", cfg.Media.Scheme,
		)
		if err := hServer.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return fmt.Errorf("listen and server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()

		level.Info(logger).Log("msg", "graceful shutdown of server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := hServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}

		return ctx.Err()
	})

	if err = group.Wait(); err != nil {
		level.Error(logger).Log("msg", fmt.Sprintf("actors stopped with err: %v", err))
		return exitFailure
	}

	level.Info(logger).Log("msg", "actors stopped without errors")

	return exitSuccess
}

func newLogger(cfg config.Log) (log.Logger, func()) {
	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
	)
	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		w = rotated
		closeFn = func() { _ = rotated.Close() }
	}

	var logger log.Logger
	{
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
		logger = level.NewFilter(logger, levelOption(cfg.Level))
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}

	return logger, closeFn
}

func levelOption(name string) level.Option {
	switch name {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

// monitorPanic monitors panics and reports them somewhere (e.g. logs, ...).
func monitorPanic(logger log.Logger) {
	if rec := recover(); rec != nil {
		err := fmt.Sprintf("panic: %v \n stack trace: %s", rec, debug.Stack())
		level.Error(logger).Log("err", err)
		panic(err)
	}
}
