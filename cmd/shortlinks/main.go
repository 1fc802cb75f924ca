package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/sync/errgroup"

	grpcserver "github.com/emarzona/shortlinks/internal/app/server/grpc"
	"github.com/emarzona/shortlinks/internal/app/service"
	"github.com/emarzona/shortlinks/internal/config"
	"github.com/emarzona/shortlinks/internal/logger"

	_ "net/http/pprof"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

const (
	pprofAddr       = "localhost:6060"
	shutdownTimeout = 10 * time.Second
)

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func main() {
	fmt.Printf("Build version: %s\n", orNA(buildVersion))
	fmt.Printf("Build date: %s\n", orNA(buildDate))
	fmt.Printf("Build commit: %s\n", orNA(buildCommit))

	log := logger.New()
	if err := log.Init("info"); err != nil {
		panic(err)
	}
	defer log.Sync()

	options, err := config.Parse(log.Log)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Log.Fatal("invalid configuration", zap.Error(err))
	}

	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("invalid log level", zap.Error(err))
	}

	if options.IssueToken != "" {
		if options.AuthSecret == "" {
			log.Log.Fatal("an auth secret is required to issue tokens")
		}
		token, err := service.NewAuth(options.AuthSecret).BuildJWTString(options.IssueToken)
		if err != nil {
			log.Log.Fatal("cannot issue token", zap.Error(err))
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, options, log.Log); err != nil {
		stop()
		log.Log.Fatal("service stopped with error", zap.Error(err))
	}
}

// run serves HTTP, and gRPC when configured, until ctx is canceled.
func run(ctx context.Context, opts *config.Options, logger *zap.Logger) error {
	a, err := newApp(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	g, gctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Addr:              opts.ServerAddress,
		Handler:           a.router(opts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if opts.EnableHTTPS {
		manager := &autocert.Manager{
			Cache:      autocert.DirCache("cache-dir"),
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(opts.TLSHosts...),
		}
		httpServer.Addr = ":443"
		httpServer.TLSConfig = manager.TLSConfig()

		g.Go(func() error {
			logger.Info("HTTPS server is running", zap.String("addr", httpServer.Addr), zap.Strings("hosts", opts.TLSHosts))
			return ignoreClosed(httpServer.ListenAndServeTLS("", ""))
		})
	} else {
		g.Go(func() error {
			logger.Info("HTTP server is running", zap.String("addr", httpServer.Addr))
			return ignoreClosed(httpServer.ListenAndServe())
		})
	}

	var grpcServer *grpcserver.Server
	if opts.GRPCAddress != "" {
		grpcServer = grpcserver.New(a.service, a.auth, opts.TrustedSubnet, logger, opts.GRPCAddress)
		g.Go(grpcServer.Start)
	}

	var pprofServer *http.Server
	if opts.EnablePprof {
		pprofServer = &http.Server{Addr: pprofAddr, Handler: http.DefaultServeMux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("pprof server is running", zap.String("addr", pprofAddr))
			return ignoreClosed(pprofServer.ListenAndServe())
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if grpcServer != nil {
			grpcServer.GracefulStop()
		}
		if pprofServer != nil {
			if err := pprofServer.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("pprof shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
