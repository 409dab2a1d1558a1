package app

import (
	"context"
	"fmt"
	"syscall"

	"github.com/andy/bizhaven/internal/config"
	"github.com/andy/bizhaven/internal/crypto"
	"github.com/andy/bizhaven/internal/db"
	"github.com/andy/bizhaven/internal/logger"
	"github.com/andy/bizhaven/internal/repository"
	"github.com/andy/bizhaven/internal/service"
	"golang.org/x/term"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB

	// Repositories
	ClientRepo   repository.ClientRepository
	ProjectRepo  repository.ProjectRepository
	JobRepo      repository.JobRepository
	InvoiceRepo  repository.InvoiceRepository
	PaymentRepo  repository.PaymentRepository
	ExpenseRepo  repository.ExpenseRepository
	ReminderRepo repository.ReminderRepository

	// Services
	InvoiceService    service.InvoiceService
	RecurrenceService service.RecurrenceService
	ReportService     service.ReportService
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config
// 2. Setting up logging
// 3. Getting the encryption key from keyring
// 4. Opening the database and running migrations
// 5. Creating repositories and services
func New(ctx context.Context) (*App, error) {
	// Load config from default path
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	// Ensure all necessary directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	if err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	// Get keyring for secure password storage
	keyring := crypto.NewKeyring()

	// Try to get existing encryption key
	password, err := keyring.GetKey()
	if err != nil {
		// No key exists, prompt user to set one
		fmt.Println("Setting up database encryption for the first time...")
		password, err = promptForPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to set password: %w", err)
		}

		// Store the key in keyring
		if err := keyring.SetKey(password); err != nil {
			return nil, fmt.Errorf("failed to store encryption key: %w", err)
		}
	}

	// Open the database with encryption
	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations to ensure schema is up to date
	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create repositories
	clientRepo := repository.NewClientRepo(database)
	projectRepo := repository.NewProjectRepo(database)
	jobRepo := repository.NewJobRepo(database)
	invoiceRepo := repository.NewInvoiceRepo(database)
	paymentRepo := repository.NewPaymentRepo(database)
	expenseRepo := repository.NewExpenseRepo(database)
	reminderRepo := repository.NewReminderRepo(database)

	// Create services with their dependencies
	invoiceService := service.NewInvoiceService(invoiceRepo, paymentRepo, clientRepo, projectRepo, jobRepo)
	recurrenceService := service.NewRecurrenceService(invoiceRepo, invoiceService, logger.Get())
	reportService := service.NewReportService(invoiceRepo, paymentRepo, expenseRepo, reminderRepo)

	return &App{
		Config:            cfg,
		DB:                database,
		ClientRepo:        clientRepo,
		ProjectRepo:       projectRepo,
		JobRepo:           jobRepo,
		InvoiceRepo:       invoiceRepo,
		PaymentRepo:       paymentRepo,
		ExpenseRepo:       expenseRepo,
		ReminderRepo:      reminderRepo,
		InvoiceService:    invoiceService,
		RecurrenceService: recurrenceService,
		ReportService:     reportService,
	}, nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}

// promptForPassword prompts user for a new database password (first run)
// This should be called when keyring has no stored key
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your business data will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	// Read password securely (no echo)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	// Confirm password
	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after confirmation
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	// Check if passwords match
	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}
