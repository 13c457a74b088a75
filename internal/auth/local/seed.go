package local

import (
	"context"
	"time"

	"github.com/google/uuid"

	"milsabores/internal/auth/models"
	"milsabores/internal/migrate"
	"milsabores/internal/persist"
	id "milsabores/pkg/domain"
	"milsabores/pkg/email"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "password123"

// DemoAccount is a seeded account with its plaintext password.
type DemoAccount struct {
	Name      string
	Email     string
	Role      models.Role
	BirthDate *models.Date
}

func birth(y int, m time.Month, d int) *models.Date {
	return &models.Date{Year: y, Month: m, Day: d}
}

// DemoAccounts covers one account per discount class.
var DemoAccounts = []DemoAccount{
	{Name: "Usuario Mayor", Email: "mayor@gmail.com", Role: models.RoleCustomer, BirthDate: birth(1950, time.January, 1)},
	{Name: "Estudiante Duoc", Email: "estudiante@duoc.cl", Role: models.RoleCustomer, BirthDate: birth(2000, time.January, 1)},
	{Name: "Usuario Regular", Email: "usuario@gmail.com", Role: models.RoleCustomer, BirthDate: birth(1995, time.January, 1)},
	{Name: "Nicolás Fonseca", Email: "nico@example.com", Role: models.RoleAdmin},
}

var demoNamespace = uuid.MustParse("6f1c2a4e-30a8-4d5e-9a55-7d1b8e0c9f21")

// demoUserID is stable per email so reseeding never mints a second identity.
func demoUserID(addr string) id.UserID {
	return id.UserID(uuid.NewSHA1(demoNamespace, []byte(email.Normalize(addr))))
}

// SeedDemoUsers merges DemoAccounts into the directory by email. Existing
// entries, demo or not, are left untouched.
func SeedDemoUsers(hashCost int) migrate.Migration {
	return migrate.Migration{
		Version: 1,
		Name:    "seed_demo_users",
		Up: func(ctx context.Context, backend persist.Backend) error {
			users, err := loadUsers(ctx, backend)
			if err != nil && !isCorrupt(err) {
				return err
			}

			known := make(map[string]bool, len(users))
			for _, u := range users {
				known[email.Normalize(u.Email)] = true
			}

			changed := false
			for _, acct := range DemoAccounts {
				key := email.Normalize(acct.Email)
				if known[key] {
					continue
				}
				hash, err := hashPassword(DemoPassword, hashCost)
				if err != nil {
					return err
				}
				users = append(users, userRecord{
					ID:           demoUserID(key),
					Name:         acct.Name,
					Email:        key,
					Role:         acct.Role,
					BirthDate:    acct.BirthDate,
					PasswordHash: hash,
				})
				known[key] = true
				changed = true
			}
			if !changed {
				return nil
			}
			return saveUsers(ctx, backend, users)
		},
	}
}
