package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/credit-engine/internal/config"
	"github.com/fintrack/credit-engine/internal/handler"
	"github.com/fintrack/credit-engine/internal/integrations/cbr"
	"github.com/fintrack/credit-engine/internal/middleware"
	"github.com/fintrack/credit-engine/internal/repository"
	"github.com/fintrack/credit-engine/internal/scheduler"
	"github.com/fintrack/credit-engine/internal/service"
	"github.com/fintrack/credit-engine/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	cbrClient := cbr.NewCBRClient(cfg, logger)
	svc := service.NewService(repo, logger, cfg, cbrClient)
	h := handler.NewHandler(svc)
	sender := email.NewSender(cfg, logger)

	// Start the daily payment reminder scan
	sched := scheduler.NewScheduler(repo, sender, logger, cfg)
	if err := sched.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/accounts", h.CreateAccount).Methods("POST")
	authRouter.HandleFunc("/credits", h.CreateCredit).Methods("POST")
	authRouter.HandleFunc("/credits/{id}/schedule", h.GetSchedule).Methods("GET")
	authRouter.HandleFunc("/credits/{id}/installments/{number}/payments", h.PayInstallment).Methods("POST")
	authRouter.HandleFunc("/credits/{id}/extra-payments", h.ApplyExtraPayment).Methods("POST")
	authRouter.HandleFunc("/credits/{id}/extra-payments", h.ListExtraPayments).Methods("GET")
	authRouter.HandleFunc("/credits/{id}/simulations", h.SimulatePrepayment).Methods("POST")
	authRouter.HandleFunc("/credits/{id}/card-balance", h.CardBalance).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
