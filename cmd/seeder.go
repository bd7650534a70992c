package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/pass-management/internal/auth"
	"github.com/frahmantamala/pass-management/internal/core/events"
	"github.com/frahmantamala/pass-management/internal/pass"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

const demoPassword = "password123"

type demoAccount struct {
	dto   auth.RegisterDTO
	admin bool
}

var demoAccounts = []demoAccount{
	{dto: auth.RegisterDTO{Username: "alice", Password: demoPassword, FullName: "Alice Smith", Email: "alice@example.com", Department: "Engineering"}},
	{dto: auth.RegisterDTO{Username: "carol", Password: demoPassword, FullName: "Carol White", Email: "carol@example.com", Department: "Finance"}},
	{dto: auth.RegisterDTO{Username: "bob", Password: demoPassword, FullName: "Bob Jones", Email: "bob@example.com", Department: "Security"}, admin: true},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with demo employees, an administrator and a few pass requests in every status.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies(configPath)
		if err != nil {
			log.Fatalf("failed to initialize dependencies: %v", err)
		}
		defer deps.DB.Close()

		ctx := context.Background()
		if clearData {
			if err := clearTables(ctx, deps.DB); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared passes and users")
		}

		svcs := NewServices(deps, events.Sync)
		users := make(map[string]*auth.User, len(demoAccounts))
		for _, acc := range demoAccounts {
			u, err := seedAccount(ctx, deps.DB, svcs.Auth, acc)
			if err != nil {
				log.Fatalf("failed to seed user %s: %v", acc.dto.Username, err)
			}
			users[acc.dto.Username] = u
		}

		if err := seedPasses(ctx, deps.DB, svcs.Pass, users["alice"], users["carol"], users["bob"]); err != nil {
			log.Fatalf("failed to seed passes: %v", err)
		}
		fmt.Printf("Demo accounts use password %q\n", demoPassword)
	},
}

func clearTables(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{"DELETE FROM passes", "DELETE FROM users"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return tx.Commit()
}

// seedAccount creates acc unless its username exists, and returns the principal either way.
func seedAccount(ctx context.Context, db *sqlx.DB, svc *auth.Service, acc demoAccount) (*auth.User, error) {
	var row struct {
		ID   int64  `db:"id"`
		Role string `db:"role"`
	}
	err := db.GetContext(ctx, &row, db.Rebind("SELECT id, role FROM users WHERE username = ?"), acc.dto.Username)
	if err == nil {
		fmt.Println("user already exists:", acc.dto.Username)
		return &auth.User{ID: row.ID, Username: acc.dto.Username, FullName: acc.dto.FullName, Role: auth.Role(row.Role)}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var u *auth.User
	if acc.admin {
		u, err = svc.ProvisionAdmin(ctx, acc.dto)
	} else {
		u, err = svc.Register(ctx, acc.dto)
	}
	if err != nil {
		return nil, err
	}
	fmt.Printf("Seeded %s user: %s\n", u.Role, u.Username)
	return u, nil
}

func seedPasses(ctx context.Context, db *sqlx.DB, svc *pass.Service, alice, carol, admin *auth.User) error {
	var existing int
	if err := db.GetContext(ctx, &existing, "SELECT COUNT(*) FROM passes"); err != nil {
		return err
	}
	if existing > 0 {
		fmt.Println("passes already present; skipping")
		return nil
	}

	day := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	at := func(offsetDays, hour int) string {
		return day.AddDate(0, 0, offsetDays).Add(time.Duration(hour) * time.Hour).Format(time.RFC3339)
	}

	requests := []struct {
		owner *auth.User
		dto   pass.CreatePassDTO
	}{
		{alice, pass.CreatePassDTO{Type: "VISITOR_PASS", Purpose: "Vendor demo for the build pipeline", Location: "Building A, lobby", StartDate: at(0, 9), EndDate: at(0, 17)}},
		{alice, pass.CreatePassDTO{Type: "AFTER_HOURS_ACCESS", Purpose: "Release weekend", Location: "Server room", StartDate: at(2, 18), EndDate: at(3, 2), Notes: "On-call rotation"}},
		{carol, pass.CreatePassDTO{Type: "VEHICLE_PASS", Purpose: "Quarter-end parking", StartDate: at(0, 7), EndDate: at(5, 20)}},
		{carol, pass.CreatePassDTO{Type: "EQUIPMENT_PASS", Purpose: "Move archive boxes", Location: "Loading dock", StartDate: at(1, 10), EndDate: at(1, 12)}},
	}

	created := make([]*pass.Pass, 0, len(requests))
	for _, req := range requests {
		p, err := svc.CreatePass(ctx, req.owner, req.dto)
		if err != nil {
			return fmt.Errorf("create %s for %s: %w", req.dto.Type, req.owner.Username, err)
		}
		created = append(created, p)
	}

	if _, err := svc.ApprovePass(ctx, admin, created[0].ID); err != nil {
		return err
	}
	if _, err := svc.RejectPass(ctx, admin, created[3].ID, "Loading dock closed for maintenance"); err != nil {
		return err
	}

	fmt.Printf("Seeded %d passes\n", len(created))
	return nil
}
