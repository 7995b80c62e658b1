package sql

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"marketplace/internal/entity"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) *GormRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repo.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.DbUser{}, &entity.DbProduct{}, &entity.DbOrder{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewGormRepository(db)
}

func createUser(t *testing.T, repo *GormRepository, username, email string, role entity.Role) *entity.DbUser {
	t.Helper()
	user := &entity.DbUser{Username: username, PasswordHash: "hash", Role: role, IsActive: true}
	if email != "" {
		user.Email = &email
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createProduct(t *testing.T, repo *GormRepository, ownerID uint, name string) *entity.DbProduct {
	t.Helper()
	product := &entity.DbProduct{Name: name, Price: decimal.RequireFromString("9.99"), OwnerID: ownerID}
	if err := repo.CreateProduct(context.Background(), product); err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return product
}

func TestNilRepository(t *testing.T) {
	var repo *GormRepository
	if err := repo.Ping(context.Background()); err == nil {
		t.Fatal("expected error from nil repository")
	}
	if _, err := repo.CountUsers(context.Background()); err == nil {
		t.Fatal("expected error from nil repository")
	}
}

func TestUserLookups(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bob := createUser(t, repo, "bob", "bob@example.com", entity.RoleSeller)
	createUser(t, repo, "carol", "", entity.RoleCustomer)
	createUser(t, repo, "dave", "", entity.RoleCustomer)

	tests := []struct {
		name       string
		identifier string
		wantID     uint
	}{
		{name: "username", identifier: "bob", wantID: bob.ID},
		{name: "email", identifier: "bob@example.com", wantID: bob.ID},
		{name: "case insensitive", identifier: "  BOB ", wantID: bob.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetUserByIdentifier(ctx, tt.identifier)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != tt.wantID {
				t.Errorf("expected id %d, got %d", tt.wantID, got.ID)
			}
		})
	}

	if _, err := repo.GetUserByIdentifier(ctx, "nobody"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := repo.GetUserByEmail(ctx, ""); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound for empty email, got %v", err)
	}
	if _, err := repo.GetUserByID(ctx, 0); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound for id 0, got %v", err)
	}

	count, err := repo.CountUsers(ctx)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 users, got %d", count)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	repo := newTestRepository(t)
	createUser(t, repo, "bob", "bob@example.com", entity.RoleSeller)

	dup := &entity.DbUser{Username: "bob", PasswordHash: "hash", Role: entity.RoleCustomer, IsActive: true}
	err := repo.CreateUser(context.Background(), dup)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}
}

func TestUpdateAndListUsers(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bob := createUser(t, repo, "bob", "bob@example.com", entity.RoleCustomer)
	createUser(t, repo, "carol", "carol@example.com", entity.RoleCustomer)

	role := entity.RoleSeller
	inactive := false
	if err := repo.UpdateUser(ctx, bob.ID, entity.UserUpdates{Role: &role, IsActive: &inactive}); err != nil {
		t.Fatalf("update user: %v", err)
	}
	if err := repo.UpdateUser(ctx, 999, entity.UserUpdates{Role: &role}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}

	reloaded, err := repo.GetUserByID(ctx, bob.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Role != entity.RoleSeller || reloaded.IsActive {
		t.Errorf("update not applied: role=%s active=%v", reloaded.Role, reloaded.IsActive)
	}

	users, meta, err := repo.ListUsers(ctx, &entity.UserQuery{Role: "seller"})
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || users[0].ID != bob.ID {
		t.Errorf("expected only bob, got %+v", users)
	}
	if meta.Total != 1 || meta.Page != 1 || meta.PageSize != 20 {
		t.Errorf("unexpected meta %+v", meta)
	}

	users, _, err = repo.ListUsers(ctx, &entity.UserQuery{Keyword: "CAR"})
	if err != nil {
		t.Fatalf("list users by keyword: %v", err)
	}
	if len(users) != 1 || users[0].Username != "carol" {
		t.Errorf("expected carol, got %+v", users)
	}

	users, meta, err = repo.ListUsers(ctx, &entity.UserQuery{BaseParams: entity.BaseParams{Page: 2, PageSize: 1}})
	if err != nil {
		t.Fatalf("list users page 2: %v", err)
	}
	if len(users) != 1 || users[0].Username != "carol" || meta.Total != 2 {
		t.Errorf("unexpected page 2: %+v %+v", users, meta)
	}
}

func TestDeleteUserCascade(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bob := createUser(t, repo, "bob", "", entity.RoleSeller)
	carol := createUser(t, repo, "carol", "", entity.RoleSeller)
	createProduct(t, repo, bob.ID, "Cheese")
	createProduct(t, repo, bob.ID, "Bread")
	kept := createProduct(t, repo, carol.ID, "Wine")

	if err := repo.DeleteUserCascade(ctx, bob.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetUserByID(ctx, bob.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected bob gone, got %v", err)
	}
	products, err := repo.ListProducts(ctx, nil)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 1 || products[0].ID != kept.ID {
		t.Errorf("expected only carol's product, got %+v", products)
	}

	if err := repo.DeleteUserCascade(ctx, bob.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound on second delete, got %v", err)
	}
}

func TestProductLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bob := createUser(t, repo, "bob", "", entity.RoleSeller)
	carol := createUser(t, repo, "carol", "", entity.RoleSeller)
	first := createProduct(t, repo, bob.ID, "Cheese")
	second := createProduct(t, repo, carol.ID, "Bread")

	all, err := repo.ListProducts(ctx, &entity.ProductQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != first.ID || all[1].ID != second.ID {
		t.Fatalf("expected insertion order, got %+v", all)
	}

	owned, err := repo.ListProducts(ctx, &entity.ProductQuery{OwnerID: carol.ID})
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != second.ID {
		t.Errorf("expected carol's product only, got %+v", owned)
	}

	name := "Aged Cheese"
	price := decimal.RequireFromString("12.50")
	paths := entity.StringArray{"products/1/a.png"}
	if err := repo.UpdateProduct(ctx, first.ID, entity.ProductUpdates{Name: &name, Price: &price, MediaPaths: &paths}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetProduct(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != name || !got.Price.Equal(price) || !got.MediaPaths.Contains("products/1/a.png") {
		t.Errorf("update not applied: %+v", got)
	}

	if err := repo.DeleteProduct(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetProduct(ctx, first.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
	if err := repo.DeleteProduct(ctx, first.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound on second delete, got %v", err)
	}
}

func TestCreateOrder(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bob := createUser(t, repo, "bob", "", entity.RoleSeller)
	carol := createUser(t, repo, "carol", "", entity.RoleCustomer)
	product := createProduct(t, repo, bob.ID, "Cheese")

	order := &entity.DbOrder{UserID: carol.ID, ProductID: product.ID, Status: entity.OrderStatusPaid}
	if err := repo.CreateOrder(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID == 0 {
		t.Fatal("expected order id to be assigned")
	}

	missing := &entity.DbOrder{UserID: carol.ID, ProductID: 999, Status: entity.OrderStatusPaid}
	if err := repo.CreateOrder(ctx, missing); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	orders, err := repo.ListOrdersByUser(ctx, carol.ID)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 || orders[0].ProductID != product.ID || orders[0].Status != entity.OrderStatusPaid {
		t.Errorf("unexpected orders %+v", orders)
	}

	none, err := repo.ListOrdersByUser(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no orders for bob, got %+v", none)
	}
}
