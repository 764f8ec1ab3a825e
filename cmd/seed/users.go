package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicpulse/civic-server/internal/auth"
	"github.com/civicpulse/civic-server/internal/config"
	"github.com/civicpulse/civic-server/internal/database"
	"github.com/civicpulse/civic-server/internal/logging"
	"github.com/civicpulse/civic-server/internal/models"
	"github.com/civicpulse/civic-server/internal/store"
)

var (
	seedPassword string
	seedTokenTTL time.Duration
	seedDomain   string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Create the demo accounts (existing emails are left untouched)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUsers(cmd.Context())
	},
}

func init() {
	usersCmd.Flags().StringVar(&seedPassword, "password", "civic123", "Password for every demo account")
	usersCmd.Flags().DurationVar(&seedTokenTTL, "token-ttl", 24*time.Hour, "Validity of the printed tokens (0 skips printing)")
	usersCmd.Flags().StringVar(&seedDomain, "domain", "civic.local", "Email domain of the demo accounts")
	rootCmd.AddCommand(usersCmd)
}

var seededDepartments = []models.Department{
	models.DepartmentPWD,
	models.DepartmentNagarNigam,
	models.DepartmentPHED,
	models.DepartmentElectricity,
}

func slug(d models.Department) string {
	return strings.ToLower(strings.ReplaceAll(string(d), " ", ""))
}

// demoUsers lists the accounts to create, without password hashes.
func demoUsers(domain string) []models.User {
	users := []models.User{
		{Name: "Demo Citizen", Email: "citizen@" + domain, Role: models.RoleCitizen},
		{Name: "Super Admin", Email: "super@" + domain, Role: models.RoleSuperAdmin},
	}
	for _, d := range seededDepartments {
		dept := d
		users = append(users,
			models.User{Name: string(d) + " Worker", Email: "worker." + slug(d) + "@" + domain, Role: models.RoleWorker, Department: &dept},
			models.User{Name: string(d) + " Admin", Email: "admin." + slug(d) + "@" + domain, Role: models.RoleDeptAdmin, Department: &dept},
		)
	}
	return users
}

func runUsers(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Dev: cfg.LogDev})
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}
	st := store.NewPostgresStore(db, logger.Sugar())

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	for _, u := range demoUsers(seedDomain) {
		u := u
		u.PasswordHash = string(hash)
		created, err := st.CreateUser(ctx, &u)
		if err != nil {
			return fmt.Errorf("create %s: %w", u.Email, err)
		}
		status := "exists"
		if created {
			status = "created"
		}
		fmt.Printf("%-8s %-12s %s\n", status, u.Role, u.Email)

		if seedTokenTTL > 0 {
			tok, err := auth.NewToken(&u, cfg.JWTSecret, seedTokenTTL)
			if err != nil {
				return fmt.Errorf("sign token for %s: %w", u.Email, err)
			}
			fmt.Printf("         token: %s\n", tok)
		}
	}
	return nil
}
