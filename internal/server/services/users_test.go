package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"filedrop/internal/common"
	"filedrop/internal/dbx"
	"filedrop/internal/server/auth"
	"filedrop/internal/server/config"
	"filedrop/internal/server/models"
	filesrepo "filedrop/internal/server/repositories/files"
	usersrepo "filedrop/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AccessTokenTTL = time.Hour
	cfg.ShareTokenTTL = 2 * time.Hour
	return cfg
}

// fakeUsersRepo stores users in memory with auto-assigned ids.
type fakeUsersRepo struct {
	users     map[string]*models.User
	nextID    int64
	createErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{users: make(map[string]*models.User), nextID: 1}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, exists := f.users[u.Username]; exists {
		return nil, common.ErrDuplicateUser
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Now()
	f.users[u.Username] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	f *fakeFilesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Files(db dbx.DBTX) filesrepo.Repository       { return m.f }

func newUserService(t *testing.T, db *sql.DB, rm *fakeRepoManager, signer *auth.Signer) *UserService {
	t.Helper()
	return NewUserService(db, rm, signer, testConfig())
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	db := newSQLMockDB(t)
	defer db.Close()

	signer := auth.NewSigner([]byte("k"))
	s := newUserService(t, db, &fakeRepoManager{u: newFakeUsersRepo()}, signer)

	token, user, err := s.Register(context.Background(), "alice", "pw123456", "a@x.com")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.ID == 0 || user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw123456")) != nil {
		t.Fatalf("stored hash does not verify")
	}

	claims, err := signer.VerifyAccess(token)
	if err != nil {
		t.Fatalf("VerifyAccess error: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "alice" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestRegister_EmptyFields(t *testing.T) {
	db := newSQLMockDB(t)
	defer db.Close()

	s := newUserService(t, db, &fakeRepoManager{u: newFakeUsersRepo()}, auth.NewSigner([]byte("k")))

	for _, args := range [][3]string{
		{"", "pw", "a@x.com"},
		{"alice", "", "a@x.com"},
		{"alice", "pw", ""},
	} {
		_, _, err := s.Register(context.Background(), args[0], args[1], args[2])
		if !errors.Is(err, common.ErrValidation) {
			t.Fatalf("args %v: want ErrValidation, got %v", args, err)
		}
	}
}

func TestRegister_Duplicate(t *testing.T) {
	db := newSQLMockDB(t)
	defer db.Close()

	s := newUserService(t, db, &fakeRepoManager{u: newFakeUsersRepo()}, auth.NewSigner([]byte("k")))

	if _, _, err := s.Register(context.Background(), "alice", "pw123456", "a@x.com"); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	_, _, err := s.Register(context.Background(), "alice", "other", "b@x.com")
	if !errors.Is(err, common.ErrDuplicateUser) {
		t.Fatalf("want ErrDuplicateUser, got %v", err)
	}
}

func TestRegisterThenLogin_Roundtrip(t *testing.T) {
	db := newSQLMockDB(t)
	defer db.Close()

	signer := auth.NewSigner([]byte("k"))
	s := newUserService(t, db, &fakeRepoManager{u: newFakeUsersRepo()}, signer)

	_, registered, err := s.Register(context.Background(), "alice", "pw123456", "a@x.com")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	token, loggedIn, err := s.Login(context.Background(), "alice", "pw123456")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if loggedIn.ID != registered.ID {
		t.Fatalf("id mismatch: %d vs %d", loggedIn.ID, registered.ID)
	}

	claims, err := signer.VerifyAccess(token)
	if err != nil {
		t.Fatalf("VerifyAccess error: %v", err)
	}
	if claims.UserID != registered.ID {
		t.Fatalf("claims user id mismatch: %d vs %d", claims.UserID, registered.ID)
	}
}

func TestLogin_WrongPasswordIndistinguishableFromMissingUser(t *testing.T) {
	db := newSQLMockDB(t)
	defer db.Close()

	s := newUserService(t, db, &fakeRepoManager{u: newFakeUsersRepo()}, auth.NewSigner([]byte("k")))

	if _, _, err := s.Register(context.Background(), "alice", "pw123456", "a@x.com"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, _, errWrongPw := s.Login(context.Background(), "alice", "wrong")
	_, _, errNoUser := s.Login(context.Background(), "ghost", "pw123456")

	if !errors.Is(errWrongPw, common.ErrInvalidCredentials) {
		t.Fatalf("wrong password: want ErrInvalidCredentials, got %v", errWrongPw)
	}
	if !errors.Is(errNoUser, common.ErrInvalidCredentials) {
		t.Fatalf("missing user: want ErrInvalidCredentials, got %v", errNoUser)
	}
	if errWrongPw.Error() != errNoUser.Error() {
		t.Fatalf("errors must be indistinguishable: %q vs %q", errWrongPw, errNoUser)
	}
}
