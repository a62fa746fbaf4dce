package services

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/perfectism-co/easyBuy/catalog"
	"github.com/perfectism-co/easyBuy/locks"
	"github.com/perfectism-co/easyBuy/logger"
	"github.com/perfectism-co/easyBuy/models"
	"github.com/perfectism-co/easyBuy/repository"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	logger.Initialize("development")
	os.Exit(m.Run())
}

type testEnv struct {
	repo    *repository.MemoryUserRepository
	gateway *catalog.StaticGateway
	locks   *locks.KeyedMutex
	tokens  *TokenService
}

func newTestEnv() *testEnv {
	repo := repository.NewMemoryUserRepository()
	userLocks := locks.NewKeyedMutex()
	return &testEnv{
		repo:    repo,
		gateway: catalog.NewStaticGateway(),
		locks:   userLocks,
		tokens:  NewTokenService(testSecret, repo, userLocks),
	}
}

// seedUser stores a user with a bcrypt-hashed password and returns it.
func (e *testEnv) seedUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.NewUser(uuid.NewString(), email, string(hashed), "Test User")
	if err := e.repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// seedUserWithOrder stores a user holding one order and returns both ids.
func (e *testEnv) seedUserWithOrder(t *testing.T, order models.Order) (*models.User, string) {
	t.Helper()
	user := e.seedUser(t, uuid.NewString()+"@example.com", "password123")
	user.Orders = append(user.Orders, order)
	if err := e.repo.Save(context.Background(), user); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return user, order.ID
}
