// cmd/migrate/main.go
// Imports participants and registrations from the legacy MySQL registration
// database into the local PostgreSQL database.
//
// Usage:
//
//	MYSQL_DSN="user:pass@tcp(host:3306)/korpri_legacy?parseTime=true" \
//	DB_PASS="pgpass" \
//	go run ./cmd/migrate
package main

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/fatimahgelora/korpri/config"
	bundb "github.com/fatimahgelora/korpri/db"
	"github.com/fatimahgelora/korpri/models"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()

	// --- MySQL ---
	if cfg.MySQLDSN == "" {
		log.Fatal("MYSQL_DSN required, e.g.: user:pass@tcp(host:3306)/korpri_legacy?parseTime=true")
	}
	myDB, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("open mysql: %v", err)
	}
	defer myDB.Close()
	myDB.SetMaxOpenConns(4)
	if err := myDB.PingContext(ctx); err != nil {
		log.Fatalf("ping mysql: %v", err)
	}
	log.Println("connected to MySQL")

	// --- PostgreSQL ---
	pgDB := bundb.Setup(cfg)
	defer pgDB.Close()
	log.Println("connected to PostgreSQL")

	// Create tables (idempotent)
	if err := bundb.CreateTables(ctx, pgDB); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	userIDs, err := migrateUsers(ctx, myDB, pgDB)
	if err != nil {
		log.Fatalf("migrate users: %v", err)
	}
	log.Printf("users          %d rows migrated", len(userIDs))

	n, err := migrateRegistrations(ctx, myDB, pgDB, userIDs)
	if err != nil {
		log.Fatalf("migrate registrations: %v", err)
	}
	log.Printf("registrations  %d rows migrated", n)

	log.Println("migration complete")
}

// migrateUsers copies the legacy participant table and returns email -> new id.
func migrateUsers(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (map[string]uuid.UUID, error) {
	rows, err := myDB.QueryContext(ctx, `
		SELECT email, nama, nik, nomer_hp, alamat, user_type, jenis_tiket
		FROM participants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]uuid.UUID)
	for rows.Next() {
		u := &models.User{ID: uuid.New()}
		if err := rows.Scan(&u.Email, &u.Nama, &u.NIK, &u.NomerHP, &u.Alamat, &u.UserType, &u.JenisTiket); err != nil {
			return nil, err
		}
		u.Email = strings.ToLower(strings.TrimSpace(u.Email))

		// Skip rows that already exist so re-runs are idempotent.
		_, err := pgDB.NewInsert().Model(u).
			On("CONFLICT (email) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return nil, err
		}

		existing := &models.User{}
		if err := pgDB.NewSelect().Model(existing).Where("email = ?", u.Email).Scan(ctx); err != nil {
			return nil, err
		}
		ids[u.Email] = existing.ID
	}
	return ids, rows.Err()
}

// migrateRegistrations copies legacy registrations, resolving prices from the
// current fare table and minting fresh ticket numbers where the legacy row
// has none.
func migrateRegistrations(ctx context.Context, myDB *sql.DB, pgDB *bun.DB, userIDs map[string]uuid.UUID) (int, error) {
	rows, err := myDB.QueryContext(ctx, `
		SELECT email, user_type, nik, nama, nomer_hp, alamat, jenis_tiket, kab_kota,
		       payment_status, ticket_number, created_at
		FROM registrations`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			email        string
			ticketNumber sql.NullString
			createdAt    time.Time
		)
		reg := &models.Registration{ID: uuid.New(), UpdatedAt: time.Now()}
		err := rows.Scan(&email, &reg.UserType, &reg.NIK, &reg.Nama, &reg.NomerHP,
			&reg.Alamat, &reg.JenisTiket, &reg.KabKota, &reg.PaymentStatus,
			&ticketNumber, &createdAt)
		if err != nil {
			return count, err
		}

		userID, ok := userIDs[strings.ToLower(strings.TrimSpace(email))]
		if !ok {
			log.Printf("skipping registration for unknown user %s", email)
			continue
		}
		reg.UserID = userID
		reg.CreatedAt = createdAt

		price, err := models.TicketPrice(reg.UserType, reg.JenisTiket)
		if err != nil {
			log.Printf("skipping registration nik=%s: %v", reg.NIK, err)
			continue
		}
		reg.TicketPrice = price

		if ticketNumber.Valid && ticketNumber.String != "" {
			reg.TicketNumber = ticketNumber.String
		} else {
			reg.TicketNumber = models.NewTicketNumber()
		}

		res, err := pgDB.NewInsert().Model(reg).
			On("CONFLICT (nik) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return count, err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			count++
		}
	}
	return count, rows.Err()
}
