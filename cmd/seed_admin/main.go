// seed_admin crea (o completa) la cuenta de administrador del portal.
//
// Uso: go run ./cmd/seed_admin -email admin@bfp.gov.ph [-password ...] [-first Juan -last Dela Cruz]
// También lee ADMIN_EMAIL y ADMIN_PASSWORD. Sin contraseña se genera una temporal, se imprime una
// sola vez y la cuenta queda obligada a cambiarla en el primer ingreso.
// Es idempotente: volver a ejecutarlo no duplica usuario, perfil ni rol.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/fsic-portal/internal/domain/entity"
	"github.com/jhoicas/fsic-portal/internal/infrastructure/postgres"
	"github.com/jhoicas/fsic-portal/pkg/config"
	"github.com/jhoicas/fsic-portal/pkg/names"
	"github.com/jhoicas/fsic-portal/pkg/secret"
)

func main() {
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "email del administrador")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "contraseña (vacía = temporal generada)")
	first := flag.String("first", "Portal", "nombre")
	last := flag.String("last", "Administrator", "apellido")
	flag.Parse()

	if err := run(*email, *password, *first, *last); err != nil {
		fmt.Fprintf(os.Stderr, "seed_admin: %v\n", err)
		os.Exit(1)
	}
}

func run(email, password, first, last string) error {
	email = names.Email(email)
	if email == "" {
		return fmt.Errorf("falta -email o ADMIN_EMAIL")
	}
	temporary := password == ""
	if temporary {
		generated, err := secret.TemporaryPassword(16)
		if err != nil {
			return fmt.Errorf("generar contraseña: %w", err)
		}
		password = generated
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	if cfg.DB.Driver == config.DriverMemory {
		return fmt.Errorf("DB_DRIVER=memory no persiste; use postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	if cfg.DB.AutoMigrate {
		if err := postgres.ApplySchema(ctx, pool); err != nil {
			return fmt.Errorf("aplicar esquema: %w", err)
		}
	}

	authRepo := postgres.NewAuthUserRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	now := time.Now().UTC()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	user := &entity.AuthUser{
		ID:               uuid.New().String(),
		Email:            email,
		PasswordHash:     string(hash),
		EmailConfirmedAt: &now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	created, err := authRepo.CreateIfAbsent(ctx, user)
	if err != nil {
		return fmt.Errorf("crear usuario: %w", err)
	}
	if !created {
		existing, err := authRepo.GetByEmail(ctx, email)
		if err != nil || existing == nil {
			return fmt.Errorf("releer usuario %s: %w", email, err)
		}
		user = existing
		temporary = false // la contraseña existente no se toca
	}

	if _, err := accountRepo.CreateIfAbsent(ctx, &entity.ApprovedAccount{
		ID:              user.ID,
		FirstName:       names.Clean(first),
		LastName:        names.Clean(last),
		Status:          entity.AccountActive,
		PasswordChanged: !temporary,
		CreatedAt:       now,
		UpdatedAt:       now,
	}); err != nil {
		return fmt.Errorf("crear perfil: %w", err)
	}
	if _, err := roleRepo.GrantIfAbsent(ctx, &entity.RoleGrant{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Role:      entity.RoleAdmin,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("asignar rol admin: %w", err)
	}

	fmt.Printf("Administrador listo: %s (%s)\n", email, user.ID)
	if created && temporary {
		fmt.Printf("Contraseña temporal: %s\n", password)
	}
	if !created {
		fmt.Println("El usuario ya existía; su contraseña no se modificó.")
	}
	return nil
}
