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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/bookly/bookly/internal/blacklist"
	"github.com/bookly/bookly/internal/config"
	"github.com/bookly/bookly/internal/events"
	"github.com/bookly/bookly/internal/hash"
	"github.com/bookly/bookly/internal/httperr"
	"github.com/bookly/bookly/internal/httpserver"
	"github.com/bookly/bookly/internal/logging"
	"github.com/bookly/bookly/internal/mail"
	"github.com/bookly/bookly/internal/middleware"
	"github.com/bookly/bookly/internal/repo"
	"github.com/bookly/bookly/internal/search"
	"github.com/bookly/bookly/internal/service"
	"github.com/bookly/bookly/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.OpenDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	rdb := config.NewRedis(cfg)
	registry := blacklist.NewRedisRegistry(rdb)

	codec, err := tokens.NewCodec([]byte(cfg.JWTSecret), cfg.JWTAlgorithm, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Fatalf("token codec error: %v", err)
	}
	confirm := tokens.NewConfirmCodec([]byte(cfg.ConfirmSecret), cfg.ConfirmTTL)

	mailer := mail.NewSMTPMailer(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
	}, logger)

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)

	esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
	if err != nil {
		log.Fatalf("elasticsearch init error: %v", err)
	}
	bookIndex := &search.BookIndex{ES: esClient, Index: cfg.BookIndex}

	users := &repo.UserRepo{DB: db}
	books := &repo.BookRepo{DB: db}
	reviews := &repo.ReviewRepo{DB: db}

	hasher := hash.New(cfg.HashWorkers)

	authSvc := &service.AuthService{
		Users:    users,
		Hasher:   hasher,
		Codec:    codec,
		Confirm:  confirm,
		Registry: registry,
		Mailer:   mailer,
		Producer: producer,
		Domain:   cfg.Domain,
	}
	bookSvc := &service.BookService{Books: books, Index: bookIndex}
	reviewSvc := &service.ReviewService{Reviews: reviews, Books: books}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperr.Handler(logger)
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), echomw.CORS())
	e.Use(logging.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth:                 &httpserver.AuthHTTP{Svc: authSvc},
		Books:                &httpserver.BookHTTP{Svc: bookSvc},
		Reviews:              &httpserver.ReviewHTTP{Svc: reviewSvc},
		Guard:                &middleware.TokenGuard{Codec: codec, Registry: registry},
		Users:                users,
		RequireVerifiedEmail: cfg.RequireVerifiedEmail,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()
	logger.Info("server started", "addr", cfg.HTTPAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	mailer.Close()

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}
	if err := rdb.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
