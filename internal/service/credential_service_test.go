package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marketplace/internal/entity"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bob := env.register(t, "Bob", "Bob@Example.com", "seller")
	if bob.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	if bob.Username != "bob" || bob.EmailValue() != "bob@example.com" {
		t.Errorf("expected lower-cased identity, got %q %q", bob.Username, bob.EmailValue())
	}
	if bob.PasswordHash == "" || bob.PasswordHash == "pw123456" {
		t.Error("password must be stored hashed")
	}
	if bob.Role != entity.RoleSeller || !bob.IsActive {
		t.Errorf("unexpected role/state %s %v", bob.Role, bob.IsActive)
	}

	carol := env.register(t, "carol", "", "")
	if carol.Role != entity.RoleCustomer {
		t.Errorf("expected default customer role, got %s", carol.Role)
	}
	env.register(t, "dave", "", "guest")

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{name: "duplicate username", input: RegisterInput{Username: "BOB", Password: "pw123456"}, wantErr: ErrDuplicateIdentity},
		{name: "duplicate email", input: RegisterInput{Username: "bobby", Email: "bob@example.com", Password: "pw123456"}, wantErr: ErrDuplicateIdentity},
		{name: "unknown role", input: RegisterInput{Username: "eve", Password: "pw123456", Role: "root"}, wantErr: ErrInvalidInput},
		{name: "admin after first user", input: RegisterInput{Username: "mallory", Password: "pw123456", Role: "admin"}, wantErr: ErrForbidden},
		{name: "username with at sign", input: RegisterInput{Username: "a@b", Password: "pw123456"}, wantErr: ErrInvalidInput},
		{name: "blank username", input: RegisterInput{Username: "  ", Password: "pw123456"}, wantErr: ErrInvalidInput},
		{name: "blank password", input: RegisterInput{Username: "frank", Password: "   "}, wantErr: ErrInvalidInput},
		{name: "password over bcrypt limit", input: RegisterInput{Username: "grace", Password: strings.Repeat("a", 80)}, wantErr: ErrInvalidInput},
		{name: "multibyte password over bcrypt limit", input: RegisterInput{Username: "heidi", Password: strings.Repeat("é", 40)}, wantErr: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.credentials.Register(ctx, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRegisterFirstAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin := env.register(t, "root", "", "admin")
	if admin.Role != entity.RoleAdmin {
		t.Fatalf("expected first user to become admin, got %s", admin.Role)
	}
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.register(t, "bob", "bob@example.com", "seller")

	for _, identifier := range []string{"bob", "BOB@example.com"} {
		user, err := env.credentials.Authenticate(ctx, identifier, "pw123456")
		if err != nil {
			t.Fatalf("authenticate %q: %v", identifier, err)
		}
		if user.ID != bob.ID {
			t.Errorf("expected bob, got %d", user.ID)
		}
	}

	_, wrongPassword := env.credentials.Authenticate(ctx, "bob", "nope")
	_, unknownUser := env.credentials.Authenticate(ctx, "nobody", "pw123456")
	if !errors.Is(wrongPassword, ErrInvalidCredentials) || !errors.Is(unknownUser, ErrInvalidCredentials) {
		t.Fatalf("expected uniform ErrInvalidCredentials, got %v / %v", wrongPassword, unknownUser)
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Errorf("failure messages must not differ: %q vs %q", wrongPassword, unknownUser)
	}

	inactive := false
	if err := env.repo.UpdateUser(ctx, bob.ID, entity.UserUpdates{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := env.credentials.Authenticate(ctx, "bob", "pw123456"); !errors.Is(err, ErrUserDisabled) {
		t.Errorf("expected ErrUserDisabled, got %v", err)
	}
	if _, err := env.credentials.Authenticate(ctx, "bob", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("disabled account with wrong password should still be invalid credentials, got %v", err)
	}
}

func TestLookups(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.register(t, "bob", "bob@example.com", "seller")

	if got, err := env.credentials.GetByID(ctx, bob.ID); err != nil || got.Username != "bob" {
		t.Errorf("GetByID: %v %+v", err, got)
	}
	if got, err := env.credentials.GetByEmail(ctx, "bob@example.com"); err != nil || got.ID != bob.ID {
		t.Errorf("GetByEmail: %v %+v", err, got)
	}
	if got, err := env.credentials.GetByUsername(ctx, "bob"); err != nil || got.ID != bob.ID {
		t.Errorf("GetByUsername: %v %+v", err, got)
	}
	if _, err := env.credentials.GetByID(ctx, 999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "root", "", "admin")
	bob := env.register(t, "bob", "", "customer")
	carol := env.register(t, "carol", "", "seller")

	if _, _, err := env.credentials.ListUsers(ctx, bob, entity.UserQuery{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-admin list: expected ErrForbidden, got %v", err)
	}
	users, meta, err := env.credentials.ListUsers(ctx, admin, entity.UserQuery{})
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 3 || meta.Total != 3 {
		t.Errorf("expected 3 users, got %d (meta %+v)", len(users), meta)
	}

	seller := "seller"
	promoted, err := env.credentials.UpdateUser(ctx, admin, bob.ID, entity.UserUpdateRequest{Role: &seller})
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted.Role != entity.RoleSeller {
		t.Errorf("expected seller, got %s", promoted.Role)
	}

	inactive := false
	customer := "customer"
	bogus := "overlord"
	tests := []struct {
		name      string
		requester *entity.DbUser
		id        uint
		req       entity.UserUpdateRequest
		wantErr   error
	}{
		{name: "non-admin", requester: bob, id: carol.ID, req: entity.UserUpdateRequest{IsActive: &inactive}, wantErr: ErrForbidden},
		{name: "self deactivate", requester: admin, id: admin.ID, req: entity.UserUpdateRequest{IsActive: &inactive}, wantErr: ErrCannotModifySelf},
		{name: "self demote", requester: admin, id: admin.ID, req: entity.UserUpdateRequest{Role: &customer}, wantErr: ErrCannotModifySelf},
		{name: "unknown role", requester: admin, id: bob.ID, req: entity.UserUpdateRequest{Role: &bogus}, wantErr: ErrInvalidInput},
		{name: "missing user", requester: admin, id: 999, req: entity.UserUpdateRequest{IsActive: &inactive}, wantErr: ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.credentials.UpdateUser(ctx, tt.requester, tt.id, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if err := env.credentials.DeleteUser(ctx, admin, admin.ID); !errors.Is(err, ErrCannotModifySelf) {
		t.Errorf("self delete: expected ErrCannotModifySelf, got %v", err)
	}
	if err := env.credentials.DeleteUser(ctx, bob, carol.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-admin delete: expected ErrForbidden, got %v", err)
	}
	if err := env.credentials.DeleteUser(ctx, admin, carol.ID); err != nil {
		t.Fatalf("delete carol: %v", err)
	}
	if err := env.credentials.DeleteUser(ctx, admin, carol.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("second delete: expected ErrUserNotFound, got %v", err)
	}
}

func TestDeleteUserRemovesProductMedia(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "root", "", "admin")
	carol := env.register(t, "carol", "", "seller")

	product, err := env.catalog.Create(ctx, carol, entity.ProductCreateRequest{Name: "Lamp", Price: priceOf("20")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	withMedia, err := env.catalog.AttachMedia(ctx, carol, product.ID, []byte("\x89PNG\r\n\x1a\nlamp"), "png")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	stored := filepath.Join(env.store.LocalBaseDir(), filepath.FromSlash(withMedia.MediaPaths[0]))
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("expected stored media: %v", err)
	}

	if err := env.credentials.DeleteUser(ctx, admin, carol.ID); err != nil {
		t.Fatalf("delete carol: %v", err)
	}
	if _, err := env.catalog.Get(ctx, product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected product removed with owner, got %v", err)
	}
	if _, err := os.Stat(stored); !os.IsNotExist(err) {
		t.Errorf("expected media removed with owner, stat err=%v", err)
	}
}
