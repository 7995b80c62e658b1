package service

import (
	"context"
	"path/filepath"
	"testing"

	"marketplace/internal/config"
	"marketplace/internal/entity"
	"marketplace/internal/model"
	"marketplace/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	repo        model.Repository
	store       *storage.LocalStorage
	credentials *CredentialService
	catalog     *CatalogService
	orders      *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		DBType: model.DBTypeSQLite,
		DBPath: filepath.Join(dir, "marketplace.db"),
	}
	repo, err := model.InitRepository(&cfg)
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	store, err := storage.NewLocalStorage(filepath.Join(dir, "media"))
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}
	return &testEnv{
		repo:        repo,
		store:       store,
		credentials: NewCredentialService(repo, store, bcrypt.MinCost),
		catalog:     NewCatalogService(repo, store, 64),
		orders:      NewOrderService(repo),
	}
}

func (e *testEnv) register(t *testing.T, username, email, role string) *entity.DbUser {
	t.Helper()
	user, err := e.credentials.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    email,
		Password: "pw123456",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}
