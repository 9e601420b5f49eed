// cmd/addadmin/main.go
// Creates or updates a back-office account.
//
// Usage:
//
//	go run ./cmd/addadmin -email ops@korprirun.app -nama "Race Ops" -role staff -password testing
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/fatimahgelora/korpri/config"
	bundb "github.com/fatimahgelora/korpri/db"
	"github.com/fatimahgelora/korpri/models"
)

func main() {
	email := flag.String("email", "", "email (required)")
	nama := flag.String("nama", "", "display name (required)")
	role := flag.String("role", models.RoleStaff, "role: admin or staff")
	password := flag.String("password", "", "plain-text password (required)")
	flag.Parse()

	if *email == "" || *nama == "" || *password == "" {
		log.Fatal("-email, -nama and -password are required")
	}
	if *role != models.RoleAdmin && *role != models.RoleStaff {
		log.Fatalf("role must be %s or %s", models.RoleAdmin, models.RoleStaff)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("bcrypt:", err)
	}

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	admin := &models.AdminUser{
		Email:    strings.ToLower(strings.TrimSpace(*email)),
		Nama:     *nama,
		Role:     *role,
		Password: string(hash),
	}

	_, err = db.NewInsert().Model(admin).
		On("CONFLICT (email) DO UPDATE SET nama = EXCLUDED.nama, role = EXCLUDED.role, password = EXCLUDED.password").
		Exec(context.Background())
	if err != nil {
		log.Fatal("insert admin:", err)
	}

	fmt.Printf("admin %q saved with role %s\n", admin.Email, admin.Role)
}
