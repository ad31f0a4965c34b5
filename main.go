package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/cannotCSharp4Real/make-coffee-ph/config"
	controller "github.com/cannotCSharp4Real/make-coffee-ph/controllers"
	"github.com/cannotCSharp4Real/make-coffee-ph/events"
	"github.com/cannotCSharp4Real/make-coffee-ph/helper"
	"github.com/cannotCSharp4Real/make-coffee-ph/logger"
	middleware "github.com/cannotCSharp4Real/make-coffee-ph/middlewares"
	"github.com/cannotCSharp4Real/make-coffee-ph/routes"
)

func main() {
	log := logger.New("make-coffee-ph")
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := config.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		log.Error("mongodb connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(disconnectCtx)
	}()
	log.Info("connected to mongodb")

	db := client.Database(cfg.DBName)
	if err := config.EnsureIndexes(ctx, db); err != nil {
		log.Error("index setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tokens := helper.NewTokenManager(cfg.SecretKey)

	// The hub lives exactly as long as the server instance.
	hub := events.NewHub()
	hub.Run()
	defer hub.Close()

	authController := controller.NewAuthController(db, tokens, log)
	productController := controller.NewProductController(db, hub, log)
	cartController := controller.NewCartController(db, log)
	orderController := controller.NewOrderController(db, hub, tokens, log)
	adminController := controller.NewAdminController(db, log)

	router := mux.NewRouter()
	router.Use(logger.Middleware(log))

	// Public routes (no authentication)
	routes.AuthPublicRoutes(router, authController)
	routes.ProductPublicRoutes(router, productController)
	routes.OrderPublicRoutes(router, orderController)

	// Cart routes: authenticated users or cookie-tracked guests
	identityRoutes := router.PathPrefix("/").Subrouter()
	identityRoutes.Use(middleware.Identity(tokens))
	routes.CartRoutes(identityRoutes, cartController)

	// Protected routes require a Bearer token
	securedRoutes := router.PathPrefix("/").Subrouter()
	securedRoutes.Use(middleware.Authentication(tokens))
	routes.AuthProtectedRoutes(securedRoutes, authController)
	routes.OrderProtectedRoutes(securedRoutes, orderController)

	// Admin routes additionally require the admin role
	adminRoutes := securedRoutes.PathPrefix("/").Subrouter()
	adminRoutes.Use(middleware.AdminOnly)
	routes.ProductAdminRoutes(adminRoutes, productController)
	routes.OrderAdminRoutes(adminRoutes, orderController)
	routes.AdminRoutes(adminRoutes, adminController)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("server running", slog.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
}
