// Command seed migrates the schema, loads the YAML catalog and makes sure
// the configured admin account exists.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/catalog"
	"github.com/ariefcatur/evn-storefront/internal/config"
	"github.com/ariefcatur/evn-storefront/internal/postgres"
	"github.com/ariefcatur/evn-storefront/internal/users"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	file := flag.String("file", cfg.SeedFile, "YAML catalog to load")
	skipCatalog := flag.Bool("admin-only", false, "only bootstrap the admin account")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("%v", err)
	}

	if err := bootstrapAdmin(ctx, &users.Repo{DB: db}, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("admin: %v", err)
	}

	if *skipCatalog {
		return
	}
	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("open seed: %v", err)
	}
	defer f.Close()
	inputs, err := catalog.ParseSeed(f)
	if err != nil {
		log.Fatalf("%v", err)
	}
	n, err := catalog.NewService(&catalog.Repo{DB: db}).Seed(ctx, inputs)
	if err != nil {
		log.Fatalf("seeded %d of %d products: %v", n, len(inputs), err)
	}
	log.Printf("seeded %d products from %s", n, *file)
}

// bootstrapAdmin creates the admin once; an existing account is left alone.
func bootstrapAdmin(ctx context.Context, store users.Store, email, password string) error {
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin")
		return nil
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := store.GetByEmail(ctx, email); err == nil {
		log.Printf("admin %s already exists", email)
		return nil
	} else if !errors.Is(err, users.ErrNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	err = store.Create(ctx, users.User{
		ID:            uuid.NewString(),
		Email:         email,
		Name:          "Admin",
		PasswordHash:  string(hash),
		Role:          users.RoleAdmin,
		IsActive:      true,
		EmailVerified: true,
		Addresses:     []users.Address{},
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err == nil {
		log.Printf("admin %s created", email)
	}
	return err
}
