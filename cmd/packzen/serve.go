package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/packzen/internal/api"
	"github.com/erazemk/packzen/internal/auth"
	"github.com/erazemk/packzen/internal/catalog"
	"github.com/erazemk/packzen/internal/db"
	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/ratelimit"
	"github.com/erazemk/packzen/internal/store"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, dbPath, adminUser, catalogPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if dbPath != "" {
				a.cfg.Database.Path = dbPath
			}
			return serve(cmd.Context(), a, adminUser, catalogPath)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides PACKZEN_ADDR)")
	cmd.Flags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (overrides PACKZEN_DB)")
	cmd.Flags().StringVarP(&adminUser, "user", "u", "admin", "admin username on first run")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML file replacing the built-in item catalog")
	return cmd
}

func serve(ctx context.Context, a *app, adminUser, catalogPath string) error {
	cfg := a.cfg

	cat := catalog.Default()
	if catalogPath != "" {
		data, err := os.ReadFile(catalogPath)
		if err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}
		if cat, err = catalog.Parse(data); err != nil {
			return fmt.Errorf("parse catalog %s: %w", catalogPath, err)
		}
		slog.Info("catalog loaded", "path", catalogPath, "templates", len(cat.All()))
	}

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(cfg.Database.Path); os.IsNotExist(err) {
		database, password, err := initDatabase(cfg.Database.Path, adminUser)
		if err != nil {
			slog.Error("failed to initialize database", "error", err)
			return err
		}
		database.Close()

		printInitResult(cfg.Database.Path, adminUser, password)
		fmt.Println()
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return err
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.Migrate(database); err != nil {
		slog.Error("failed to migrate database", "error", err)
		return err
	}
	slog.Info("database ready", "path", cfg.Database.Path)

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		slog.Error("failed to get JWT secret", "error", err)
		return err
	}

	limiter := ratelimit.New(cfg.Auth.LoginRate, cfg.Auth.LoginBurst)
	defer limiter.Stop()

	handler := api.NewRouter(database, api.Options{
		Issuer:       auth.NewIssuer(jwtSecret, cfg.Auth.TokenTTL),
		Catalog:      cat,
		LoginLimiter: limiter,
		CORSOrigins:  cfg.Server.AllowedOrigins(),
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCtx, stop := signalContext(ctx)
	defer stop()

	go func() {
		<-sigCtx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}

// initDatabase creates a new database, migrates it, and creates the admin user.
func initDatabase(path, adminUsername string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	if err := db.Migrate(database); err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("running migrations: %w", err)
	}

	password, err := generatePassword(16)
	if err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	_, err = store.CreateUser(context.Background(), database, adminUsername, string(hash), model.RoleAdmin)
	if err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("creating admin user: %w", err)
	}

	return database, password, nil
}

func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
