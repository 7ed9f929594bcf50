package repository

import (
	"context"
	"database/sql"
	"log"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	// Create the schema the repositories run against
	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(255) NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT users_username_key UNIQUE (username),
			CONSTRAINT users_email_key UNIQUE (email)
		);

		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			price NUMERIC(10, 2) NOT NULL,
			stock INTEGER NOT NULL DEFAULT 0,
			category VARCHAR(100),
			user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT products_stock_nonnegative CHECK (stock >= 0)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			description TEXT,
			total_price NUMERIC(10, 2) NOT NULL,
			status VARCHAR(50) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			order_id UUID NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
			product_id UUID NOT NULL REFERENCES products (id) ON DELETE CASCADE,
			quantity INTEGER NOT NULL DEFAULT 1,
			unit_price NUMERIC(10, 2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (order_id, product_id)
		);
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

// createTestUser inserts a user row and returns its id. Usernames and
// emails are derived from a fresh UUID so tests never collide.
func createTestUser(t *testing.T) uuid.UUID {
	t.Helper()

	id := uuid.New()
	user := &domain.User{
		ID:           id,
		Username:     "u" + id.String()[:8],
		Email:        id.String()[:13] + "@example.com",
		PasswordHash: "x",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
	}

	if err := NewUserRepository(testDB).Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return id
}

func TestProperty_RegistrationStoresHashedPasswords(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("passwords are stored as bcrypt hashes, never plaintext", prop.ForAll(
		func(username string, email string, password string) bool {
			_, _ = testDB.Exec("DELETE FROM users WHERE email = $1 OR username = $2", email, username)

			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				t.Logf("Failed to hash password: %v", err)
				return false
			}

			user := &domain.User{
				ID:           uuid.New(),
				Username:     username,
				Email:        email,
				PasswordHash: string(hashedPassword),
				Role:         domain.RoleUser,
				CreatedAt:    time.Now(),
			}

			if err := repo.Create(ctx, user); err != nil {
				t.Logf("Failed to create user: %v", err)
				return false
			}

			retrieved, err := repo.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("Failed to find user: %v", err)
				return false
			}

			if retrieved.PasswordHash == password {
				t.Logf("Password was stored as plaintext!")
				return false
			}

			if err := bcrypt.CompareHashAndPassword([]byte(retrieved.PasswordHash), []byte(password)); err != nil {
				t.Logf("Stored password is not a valid bcrypt hash: %v", err)
				return false
			}

			_, _ = testDB.Exec("DELETE FROM users WHERE email = $1", email)

			return true
		},
		gen.RegexMatch(`[a-z]{8,16}[0-9]{4}`),
		gen.RegexMatch(`[a-z]{5,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Duplicate email registration must fail regardless of which request
// lands first; the unique constraint is the source of truth.
func TestCreate_DuplicateEmailRejected(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	email := uuid.New().String()[:13] + "@example.com"

	first := &domain.User{
		ID:           uuid.New(),
		Username:     "first" + uuid.New().String()[:8],
		Email:        email,
		PasswordHash: "x",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	second := &domain.User{
		ID:           uuid.New(),
		Username:     "second" + uuid.New().String()[:8],
		Email:        email,
		PasswordHash: "x",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, second); err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCreate_DuplicateUsernameRejected(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	username := "taken" + uuid.New().String()[:8]

	first := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        uuid.New().String()[:13] + "@example.com",
		PasswordHash: "x",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	second := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        uuid.New().String()[:13] + "@example.com",
		PasswordHash: "x",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, second); err != ErrUsernameTaken {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestFindByUsernameOrEmail(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	id := createTestUser(t)
	user, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find by id failed: %v", err)
	}

	byUsername, err := repo.FindByUsernameOrEmail(ctx, user.Username, "nobody@example.com")
	if err != nil {
		t.Fatalf("find by username failed: %v", err)
	}
	if byUsername.ID != id {
		t.Fatalf("expected user %s, got %s", id, byUsername.ID)
	}

	byEmail, err := repo.FindByUsernameOrEmail(ctx, "nobody", user.Email)
	if err != nil {
		t.Fatalf("find by email failed: %v", err)
	}
	if byEmail.ID != id {
		t.Fatalf("expected user %s, got %s", id, byEmail.ID)
	}

	if _, err := repo.FindByUsernameOrEmail(ctx, "nobody", "nobody@example.com"); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
