package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"salonops-backend/internal/config"
	"salonops-backend/internal/db"
	"salonops-backend/internal/handler"
	"salonops-backend/internal/pdf"
	"salonops-backend/internal/repository"
	"salonops-backend/internal/server"
	"salonops-backend/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	branchRepo := repository.BranchRepository{DB: pg}
	employeeRepo := repository.EmployeeRepository{DB: pg}
	entryRepo := repository.DailyEntryRepository{DB: pg}
	closureRepo := repository.DayClosureRepository{DB: pg}
	ledgerRepo := repository.LedgerRepository{DB: pg}
	advanceRepo := repository.AdvanceRepository{DB: pg, Ledger: ledgerRepo}
	documentRepo := repository.DocumentRepository{DB: pg}
	notificationRepo := repository.NotificationRepository{DB: pg}
	reportRepo := repository.ReportRepository{DB: pg}

	// services
	notifier := service.NotificationService{Repo: notificationRepo}
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Logger: logger}
	entrySvc := service.NewDailyEntryService(entryRepo, employeeRepo, closureRepo)
	closureSvc := service.NewClosureService(closureRepo, pdf.ClosureRenderer{}, notifier, logger)
	ledgerSvc := service.NewLedgerService(ledgerRepo, partyResolver{employees: employeeRepo, branches: branchRepo})
	advanceSvc := service.NewAdvanceService(advanceRepo, employeeRepo, notifier, logger)

	router := server.NewRouter(cfg, logger, server.Handlers{
		Health:        handler.HealthHandler{DB: pg},
		Auth:          handler.AuthHandler{Service: &authSvc},
		DailyEntries:  handler.DailyEntryHandler{Service: entrySvc, Repo: entryRepo},
		DayClosures:   handler.DayClosureHandler{Service: closureSvc, Repo: closureRepo},
		Ledger:        handler.LedgerHandler{Service: ledgerSvc, Repo: ledgerRepo, Employees: employeeRepo, Branches: branchRepo},
		Advances:      handler.AdvanceHandler{Service: advanceSvc, Repo: advanceRepo},
		Employees:     handler.EmployeeHandler{Repo: employeeRepo, Branches: branchRepo},
		Branches:      handler.BranchHandler{Repo: branchRepo},
		Documents:     handler.NewDocumentHandler(documentRepo),
		Notifications: handler.NotificationHandler{Repo: notificationRepo},
		Reports:       handler.NewReportHandler(reportRepo),
	})

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

// partyResolver adapts the employee and branch repositories to the ledger's
// existence checks.
type partyResolver struct {
	employees repository.EmployeeRepository
	branches  repository.BranchRepository
}

func (p partyResolver) EmployeeExists(ctx context.Context, id int64) (bool, error) {
	return p.employees.Exists(ctx, id)
}

func (p partyResolver) BranchExists(ctx context.Context, id int64) (bool, error) {
	return p.branches.Exists(ctx, id)
}
