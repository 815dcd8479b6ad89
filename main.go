package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schoolcampus/internal/auth"
	"schoolcampus/internal/config"
	router "schoolcampus/internal/http"
	"schoolcampus/internal/logger"
	"schoolcampus/internal/services"
	"schoolcampus/internal/store"
	"schoolcampus/internal/store/memory"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

func main() {
	env := config.LoadEnv()

	if err := logger.Init(env.LogDir); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	deps, cleanup, err := buildDeps(env)
	if err != nil {
		logger.Error().Fatal("startup failed", zap.Error(err))
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           router.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.App().Info("server listening", zap.String("addr", env.AppAddr), zap.String("env", env.AppEnv))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.App().Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Fatal("shutdown failed", zap.Error(err))
	}

	logger.App().Info("server stopped")
}

// buildDeps wires the services over either Mongo or, when MONGO_URI is the
// literal "memory", the in-memory store (local development without a
// running database).
func buildDeps(env config.Env) (router.Deps, func(), error) {
	deps := router.Deps{
		Env:    env,
		Tokens: auth.NewManager(env),
	}
	cleanup := func() {}

	var collections struct {
		users, students, teachers, organisations store.Collection
	}

	if env.MongoURI == "memory" {
		collections.users = memory.NewCollection("users", "email")
		collections.students = memory.NewCollection("students", "email")
		collections.teachers = memory.NewCollection("teachers", "email")
		collections.organisations = memory.NewCollection("organisations", "slug")
	} else {
		client, err := config.ConnectDB(env)
		if err != nil {
			return router.Deps{}, nil, err
		}
		cleanup = config.CloseDB
		deps.PingStore = config.PingDB

		db := client.Database(env.MongoDB)
		collections.users = store.NewMongoCollection(db.Collection("users"))
		collections.students = store.NewMongoCollection(db.Collection("students"))
		collections.teachers = store.NewMongoCollection(db.Collection("teachers"))
		collections.organisations = store.NewMongoCollection(db.Collection("organisations"))
	}

	deps.Users = services.NewUserService(collections.users)
	deps.Students = services.NewStudentService(collections.students)
	deps.Teachers = services.NewTeacherService(collections.teachers)
	deps.Organisations = services.NewOrganisationService(collections.organisations)
	deps.Reports = services.ReportService{
		Users:         deps.Users,
		Students:      deps.Students,
		Teachers:      deps.Teachers,
		Organisations: deps.Organisations,
	}

	return deps, cleanup, nil
}
