package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/counslerai/counslerai/internal/config"
	"github.com/counslerai/counslerai/internal/handler"
	memoryrepo "github.com/counslerai/counslerai/internal/repository/memory"
	mysqlrepo "github.com/counslerai/counslerai/internal/repository/mysql"
	aiservice "github.com/counslerai/counslerai/internal/service/ai"
	chatservice "github.com/counslerai/counslerai/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var store chatservice.Store
	if cfg.Database.DSN != "" {
		db, err := mysqlrepo.Open(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("failed to connect to mysql: %v", err)
		}
		store = mysqlrepo.NewStore(db)
		log.Println("mysql store initialized")
	} else {
		store = memoryrepo.NewStore()
		log.Println("MYSQL_DSN not set, using in-memory store (sessions will not survive restarts)")
	}

	chatSvc := chatservice.NewService(store)

	var adviceSvc *aiservice.Service
	if cfg.AI.Enabled() {
		adviceSvc = aiservice.NewService(cfg.AI)
		log.Printf("advice service initialized, model=%s", cfg.AI.Model)
	} else {
		log.Println("OPENROUTER_API_KEY not set, advice endpoints disabled")
	}

	router := handler.NewRouter(chatSvc, adviceSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("CounslerAI backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
