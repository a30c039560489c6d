package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"imprint-viewer/internal/assetd"
	"imprint-viewer/internal/logger"
)

var (
	dir      = flag.String("dir", "meshes", "Directory of generated .stl files")
	addr     = flag.String("addr", ":8000", "HTTP listen address")
	debounce = flag.Duration("debounce", assetd.DefaultDebounce, "Quiet period before a changed mesh is announced")
	logFile  = flag.String("log", "logs/assetd.txt", "Log file (empty for stderr only)")
	verbose  = flag.Bool("v", false, "Debug logging")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := logger.New(*logFile, level)
	defer log.Close()

	if err := os.MkdirAll(*dir, 0755); err != nil {
		log.Error("mesh directory", "dir", *dir, "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := assetd.NewServer(&assetd.Library{Dir: *dir}, log.Logger)
	w := assetd.NewWatcher(*dir, log.Logger)
	w.Debounce = *debounce
	go func() {
		if err := w.Run(ctx, srv.Announce); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("watcher stopped", "err", err)
		}
	}()

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		// streams never finish on their own
		srv.Close()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdown); err != nil {
			log.Warn("shutdown", "err", err)
		}
	}()

	log.Info("serving meshes", "dir", *dir, "addr", *addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
	log.Info("stopped")
}
