package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seojin-dev/chess-arena/internal/arena"
	appcfg "github.com/seojin-dev/chess-arena/internal/config"
	"github.com/seojin-dev/chess-arena/internal/gate"
	"github.com/seojin-dev/chess-arena/internal/match"
	"github.com/seojin-dev/chess-arena/internal/msgcat"
	"github.com/seojin-dev/chess-arena/internal/obslog"
	"github.com/seojin-dev/chess-arena/internal/ops"
	"github.com/seojin-dev/chess-arena/internal/rules"
	"github.com/seojin-dev/chess-arena/internal/session"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = obslog.L().Sync() }()

	cat, err := msgcat.New(cfg.MessageDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	var store session.Store
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := parseRedisURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis url error: %v", err)
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		store = session.NewRedisStore(rdb)
		obslog.L().Info("redis_mirror_enabled", zap.String("addr", opts.Addr))
	}

	manager := arena.NewManager(match.NewQueue(), session.NewRegistry(store), rules.NewLibEngine(), cat)
	g := gate.New(manager, cfg.SendBufferSize)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.ServeWS)
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		obslog.L().Info("arena_listen", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var opsSrv *ops.Server
	if cfg.OpsAddr != "" {
		opsSrv = ops.NewServer(manager)
		go func() {
			if err := opsSrv.ListenAndServe(cfg.OpsAddr); err != nil {
				errCh <- err
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		obslog.L().Info("shutdown_signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		obslog.L().Error("server_error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	if opsSrv != nil {
		_ = opsSrv.Shutdown()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil { return nil, err }
	if u.Scheme != "redis" && u.Scheme != "rediss" { return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme) }
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil { db = n }
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
