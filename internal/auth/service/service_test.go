package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"angebot_backend/internal/auth/repository"
	"angebot_backend/internal/auth/transport"
	"angebot_backend/platform/apperr"
	"angebot_backend/platform/logger"
)

type fakeStore struct {
	users map[uuid.UUID]*repository.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[uuid.UUID]*repository.User{}}
}

func (f *fakeStore) addUser(email, password, role string, active bool) *repository.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &repository.User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  "Test User",
		PasswordHash: string(hash),
		Role:         role,
		Active:       active,
		CreatedAt:    time.Now(),
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeStore) Create(ctx context.Context, user *repository.User) error {
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperr.Conflict("a user with this email already exists")
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeStore) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) List(ctx context.Context) ([]repository.User, error) {
	var out []repository.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.Role = role
	return nil
}

func (f *fakeStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.Active = false
	return nil
}

func (f *fakeStore) CountActiveAdmins(ctx context.Context) (int, error) {
	count := 0
	for _, u := range f.users {
		if u.Role == "admin" && u.Active {
			count++
		}
	}
	return count, nil
}

type fakeConfig struct{}

func (fakeConfig) GetJWTAccessSecret() string       { return "test-secret" }
func (fakeConfig) GetAccessTokenTTL() time.Duration { return time.Hour }
func (fakeConfig) GetAppBaseURL() string            { return "http://localhost:5173" }

func newTestService(store *fakeStore) *Service {
	return New(store, fakeConfig{}, nil, logger.New("development"))
}

func TestLogin_IssuesAccessTokenWithClaims(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("admin@example.com", "correct horse battery", "admin", true)
	svc := newTestService(store)

	resp, err := svc.Login(context.Background(), transport.LoginRequest{
		Email:    "admin@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.User.ID != user.ID {
		t.Fatalf("user id = %s, want %s", resp.User.ID, user.ID)
	}
	if resp.ExpiresIn != 3600 {
		t.Fatalf("expiresIn = %d, want 3600", resp.ExpiresIn)
	}

	parsed, err := jwt.Parse(resp.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != user.ID.String() {
		t.Fatalf("sub = %v", claims["sub"])
	}
	if claims["type"] != "access" {
		t.Fatalf("type = %v", claims["type"])
	}
	if claims["role"] != "admin" {
		t.Fatalf("role = %v", claims["role"])
	}
}

func TestLogin_RejectsWrongPasswordAndUnknownEmailAlike(t *testing.T) {
	store := newFakeStore()
	store.addUser("user@example.com", "right password!", "user", true)
	svc := newTestService(store)

	_, errWrong := svc.Login(context.Background(), transport.LoginRequest{
		Email:    "user@example.com",
		Password: "wrong password!",
	})
	_, errUnknown := svc.Login(context.Background(), transport.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	if !apperr.Is(errWrong, apperr.KindUnauthorized) {
		t.Fatalf("wrong password: %v", errWrong)
	}
	if !apperr.Is(errUnknown, apperr.KindUnauthorized) {
		t.Fatalf("unknown email: %v", errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Fatalf("error messages differ: %q vs %q", errWrong, errUnknown)
	}
}

func TestLogin_RejectsDeactivatedAccount(t *testing.T) {
	store := newFakeStore()
	store.addUser("former@example.com", "still remembers it", "user", false)
	svc := newTestService(store)

	_, err := svc.Login(context.Background(), transport.LoginRequest{
		Email:    "former@example.com",
		Password: "still remembers it",
	})
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestUpdateRole_RefusesDemotingLastAdmin(t *testing.T) {
	store := newFakeStore()
	admin := store.addUser("admin@example.com", "password12", "admin", true)
	svc := newTestService(store)

	err := svc.UpdateRole(context.Background(), admin.ID, "user")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	store.addUser("second@example.com", "password12", "admin", true)
	if err := svc.UpdateRole(context.Background(), admin.ID, "user"); err != nil {
		t.Fatalf("demote with second admin present: %v", err)
	}
}

func TestDeactivate_RefusesLastAdmin(t *testing.T) {
	store := newFakeStore()
	admin := store.addUser("admin@example.com", "password12", "admin", true)
	svc := newTestService(store)

	if err := svc.DeactivateUser(context.Background(), admin.ID); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestChangePassword_RequiresCurrentPassword(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("user@example.com", "old password!", "user", true)
	svc := newTestService(store)

	err := svc.ChangePassword(context.Background(), user.ID, transport.ChangePasswordRequest{
		CurrentPassword: "not the old one",
		NewPassword:     "brand new password",
	})
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	err = svc.ChangePassword(context.Background(), user.ID, transport.ChangePasswordRequest{
		CurrentPassword: "old password!",
		NewPassword:     "brand new password",
	})
	if err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := svc.Login(context.Background(), transport.LoginRequest{
		Email:    "user@example.com",
		Password: "brand new password",
	}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestCreateUser_NormalizesEmail(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	resp, err := svc.CreateUser(context.Background(), transport.CreateUserRequest{
		Email:       "  New.User@Example.COM ",
		DisplayName: "New User",
		Password:    "a long password",
		Role:        "user",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if resp.Email != "new.user@example.com" {
		t.Fatalf("email = %q", resp.Email)
	}
	if !resp.Active {
		t.Fatalf("new users should be active")
	}
}
