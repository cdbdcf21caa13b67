package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lavanderia/internal/config"
	"lavanderia/internal/infra"
	"lavanderia/internal/repository"
	"lavanderia/internal/router"
	"lavanderia/internal/service"
	"lavanderia/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in development, JSON in production
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dsn, err := infra.ResolverDSN(ctx, cfg.DatabaseURL, cfg.DBSecretID, cfg.AWSRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve database credentials")
	}
	if cfg.RunMigrations {
		if err := infra.RunMigrations(dsn); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	db, err := infra.NewDatabase(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	revogacao := infra.NewListaRevogacao(rdb)
	revogacao.IniciarLimpeza(ctx, 10*time.Minute)

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	dispatcher := worker.NewDispatcher(rdb)
	mailCB := infra.NewCircuitBreaker("mail", infra.DefaultConfigCB())
	emailWorker := worker.NewEmailWorker(infra.NewMailerFromConfig(cfg), mailCB)

	demandaRepo := repository.NewDemandaRepository(db)
	lavanderiaRepo := repository.NewLavanderiaRepository(db)
	formaRepo := repository.NewFormaPagamentoRepository(db)
	usuarioRepo := repository.NewUsuarioRepository(db)
	notas := service.NewRelatorioService(repository.NewRelatorioRepository(db), demandaRepo, lavanderiaRepo, formaRepo, usuarioRepo)

	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.Handler{
		worker.JobEntrega: worker.NewNotificacaoWorker(notas, emailWorker).Process,
		worker.JobEmail:   emailWorker.Process,
	})
	worker.StartSenhaCron(ctx, worker.SenhaCronConfig{
		Repo:     repository.NewSolicitacaoSenhaRepository(db),
		Email:    emailWorker,
		CB:       mailCB,
		RDB:      rdb,
		ResetURL: cfg.ResetURL,
		Validade: time.Duration(cfg.ResetTokenMinutes) * time.Minute,
	})

	r := router.New(cfg, db, rdb, router.Deps{Revogacao: revogacao, Notificador: dispatcher})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("lavanderia backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
