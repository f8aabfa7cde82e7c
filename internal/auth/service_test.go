package auth

import (
	"context"
	"testing"

	"github.com/dexxrat/gamestore-backend/internal/users"
	pkgauth "github.com/dexxrat/gamestore-backend/pkg/auth"
	"github.com/dexxrat/gamestore-backend/pkg/auth/session"
	"github.com/dexxrat/gamestore-backend/pkg/config"
	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	"github.com/dexxrat/gamestore-backend/pkg/enums"
	pkgerrors "github.com/dexxrat/gamestore-backend/pkg/errors"
	"github.com/dexxrat/gamestore-backend/pkg/pagination"
	"github.com/dexxrat/gamestore-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubUsersRepo struct {
	users map[uuid.UUID]*models.User
	roles map[enums.RoleName]*models.Role
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{
		users: make(map[uuid.UUID]*models.User),
		roles: map[enums.RoleName]*models.Role{
			enums.RoleAdmin: {ID: uuid.New(), Name: enums.RoleAdmin},
			enums.RoleUser:  {ID: uuid.New(), Name: enums.RoleUser},
		},
	}
}

func (s *stubUsersRepo) WithTx(tx *gorm.DB) users.Repository { return s }

func (s *stubUsersRepo) List(ctx context.Context, params pagination.Params) (*users.List, error) {
	return &users.List{}, nil
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUsersRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) ExistsByUsername(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	for _, user := range s.users {
		if user.Username == username && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubUsersRepo) ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	for _, user := range s.users {
		if user.Email == email && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *stubUsersRepo) Update(ctx context.Context, user *models.User) (*models.User, error) {
	s.users[user.ID] = user
	return user, nil
}

func (s *stubUsersRepo) ReplaceRoles(ctx context.Context, user *models.User, roles []models.Role) error {
	user.Roles = roles
	return nil
}

func (s *stubUsersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *stubUsersRepo) FindRoleByName(ctx context.Context, name enums.RoleName) (*models.Role, error) {
	role, ok := s.roles[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return role, nil
}

type stubCarts struct {
	created []uuid.UUID
}

func (s *stubCarts) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	s.created = append(s.created, cart.UserID)
	return cart, nil
}

type stubSessions struct {
	tokens  map[string]string
	revoked []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{tokens: make(map[string]string)}
}

func (s *stubSessions) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.tokens, oldAccessID)
	newID := session.NewAccessID()
	newToken := "refresh-" + newID
	s.tokens[newID] = newToken
	return newID, newToken, nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	delete(s.tokens, accessID)
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "gamestore",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func authFixture(t *testing.T) (Service, *stubUsersRepo, *stubCarts, *stubSessions) {
	t.Helper()

	repo := newStubUsersRepo()
	carts := &stubCarts{}
	sessions := newStubSessions()
	svc, err := NewService(repo, carts, sessions, fakeTxRunner{}, testJWTConfig(), testPasswordConfig())
	require.NoError(t, err)
	return svc, repo, carts, sessions
}

func seedAccount(t *testing.T, repo *stubUsersRepo, username, password string, active bool) *models.User {
	t.Helper()

	hash, err := security.HashPassword(password, testPasswordConfig())
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		IsActive:     active,
		Roles:        []models.Role{*repo.roles[enums.RoleUser]},
	}
	repo.users[user.ID] = user
	return user
}

func TestRegisterOpensSession(t *testing.T) {
	svc, repo, carts, sessions := authFixture(t)

	got, err := svc.Register(context.Background(), RegisterInput{
		Username: "newcomer",
		Email:    "Newcomer@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", got.TokenType)
	assert.Equal(t, int64(15*60), got.ExpiresIn)
	assert.Equal(t, "newcomer", got.User.Username)
	assert.Equal(t, "newcomer@example.com", got.User.Email)
	assert.Equal(t, []string{"USER"}, got.User.Roles)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), got.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, enums.RoleUser, claims.Role)
	assert.Equal(t, sessions.tokens[claims.ID], got.RefreshToken)

	stored, err := repo.FindByUsername(context.Background(), "newcomer")
	require.NoError(t, err)
	ok, err := security.VerifyPassword("password123", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, carts.created, 1)
	assert.Equal(t, stored.ID, carts.created[0])
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, repo, _, _ := authFixture(t)
	seedAccount(t, repo, "taken", "password123", true)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "taken",
		Email:    "fresh@example.com",
		Password: "password123",
	})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "fresh",
		Email:    "taken@example.com",
		Password: "password123",
	})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestRegisterValidatesInput(t *testing.T) {
	svc, _, _, _ := authFixture(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "ab",
		Email:    "short@example.com",
		Password: "password123",
	})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "valid_name",
		Email:    "not-an-email",
		Password: "password123",
	})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "valid_name",
		Email:    "valid@example.com",
		Password: "short",
	})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestLogin(t *testing.T) {
	svc, repo, _, _ := authFixture(t)
	seedAccount(t, repo, "player", "password123", true)

	got, err := svc.Login(context.Background(), Credentials{Username: "player", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, got.AccessToken)
	assert.NotEmpty(t, got.RefreshToken)
	assert.Equal(t, "player", got.User.Username)
}

func TestLoginRejections(t *testing.T) {
	svc, repo, _, _ := authFixture(t)
	seedAccount(t, repo, "player", "password123", true)
	seedAccount(t, repo, "banned", "password123", false)

	_, err := svc.Login(context.Background(), Credentials{Username: "player", Password: "wrong-pass"})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = svc.Login(context.Background(), Credentials{Username: "ghost", Password: "password123"})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = svc.Login(context.Background(), Credentials{Username: "banned", Password: "password123"})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = svc.Login(context.Background(), Credentials{Username: "", Password: ""})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, repo, _, sessions := authFixture(t)
	seedAccount(t, repo, "player", "password123", true)

	first, err := svc.Login(context.Background(), Credentials{Username: "player", Password: "password123"})
	require.NoError(t, err)

	second, err := svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  first.AccessToken,
		RefreshToken: first.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// old pair is burned after rotation
	_, err = svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  first.AccessToken,
		RefreshToken: first.RefreshToken,
	})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	require.Len(t, sessions.tokens, 1)
}

func TestRefreshRejectsDisabledAccount(t *testing.T) {
	svc, repo, _, _ := authFixture(t)
	user := seedAccount(t, repo, "player", "password123", true)

	first, err := svc.Login(context.Background(), Credentials{Username: "player", Password: "password123"})
	require.NoError(t, err)

	user.IsActive = false

	_, err = svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  first.AccessToken,
		RefreshToken: first.RefreshToken,
	})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, repo, _, sessions := authFixture(t)
	seedAccount(t, repo, "player", "password123", true)

	got, err := svc.Login(context.Background(), Credentials{Username: "player", Password: "password123"})
	require.NoError(t, err)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), got.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims.ID))
	assert.Empty(t, sessions.tokens)
	assert.Equal(t, []string{claims.ID}, sessions.revoked)
}

func TestAvailabilityChecks(t *testing.T) {
	svc, repo, _, _ := authFixture(t)
	seedAccount(t, repo, "player", "password123", true)

	exists, err := svc.UsernameExists(context.Background(), "player")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.EmailExists(context.Background(), "free@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}
