package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/solarauth/internal/common"
	"github.com/dmitrijs2005/solarauth/internal/dbx"
	"github.com/dmitrijs2005/solarauth/internal/server/auth"
	"github.com/dmitrijs2005/solarauth/internal/server/hasher"
	"github.com/dmitrijs2005/solarauth/internal/server/models"
	permissionsrepo "github.com/dmitrijs2005/solarauth/internal/server/repositories/permissions"
	"github.com/dmitrijs2005/solarauth/internal/server/repositories/repomanager"
	usersrepo "github.com/dmitrijs2005/solarauth/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newHasher(t *testing.T) *hasher.Hasher {
	t.Helper()
	h, err := hasher.New("pepper", hasher.WithParams(hasher.Params{Time: 1, Memory: 1024, Threads: 1}))
	require.NoError(t, err)
	return h
}

func newCodec(t *testing.T) *auth.Codec {
	t.Helper()
	c, err := auth.NewCodec([]byte("k"), auth.WithTTL(time.Hour))
	require.NoError(t, err)
	return c
}

func newUserService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *UserService {
	t.Helper()
	return NewUserService(db, rm, newHasher(t), newCodec(t))
}

// fakeUsersRepo is an in-memory users table. Injected errors take
// precedence over stored state.
type fakeUsersRepo struct {
	mu     sync.Mutex
	rows   []*models.User
	nextID int64

	findErr   error
	createErr error
	getErr    error

	creates int
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, r := range f.rows {
		if r.Login == u.Login {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.nextID++
	row := *u
	row.ID = f.nextID
	f.rows = append(f.rows, &row)
	return &row, nil
}

func (f *fakeUsersRepo) FindByLogin(_ context.Context, login string) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*models.User
	for _, r := range f.rows {
		if r.Login == login {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeRepoManager struct {
	u *fakeUsersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error       { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository               { return m.u }
func (m *fakeRepoManager) Permissions(dbx.DBTX) permissionsrepo.Repository { return nil }

func expectCommit(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := &fakeUsersRepo{}
	s := newUserService(t, db, &fakeRepoManager{u: repo})
	expectCommit(mock)

	res, err := s.Register(context.Background(), "alice", "secret1", "Alice")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.ErrorMessage)

	id, err := s.codec.Decode(res.TokenData)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.Len(t, repo.rows, 1)
	stored := repo.rows[0]
	assert.Equal(t, "Alice", stored.Title)
	assert.NotEqual(t, "secret1", stored.Password)
	assert.True(t, s.hasher.Matches("secret1", stored.Password))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_EmptyTitleDefaultsToLogin(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := &fakeUsersRepo{}
	s := newUserService(t, db, &fakeRepoManager{u: repo})
	expectCommit(mock)

	res, err := s.Register(context.Background(), "alice", "secret1", "")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "alice", repo.rows[0].Title)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name            string
		login, password string
		ok              bool
	}{
		{"short login", "ab", "secret1", false},
		{"short password", "alice", "pw", false},
		{"empty both", "", "", false},
		{"exactly three", "abc", "xyz", true},
		{"three multibyte runes", "жук", "ёжи", true},
		{"two multibyte runes", "жу", "secret1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newSQLMockDB(t)
			repo := &fakeUsersRepo{}
			s := newUserService(t, db, &fakeRepoManager{u: repo})
			if tt.ok {
				expectCommit(mock)
			}

			res, err := s.Register(context.Background(), tt.login, tt.password, "")
			require.NoError(t, err)
			assert.Equal(t, tt.ok, res.Success)
			if !tt.ok {
				assert.Equal(t, MsgBadRequest, res.ErrorMessage)
				assert.Empty(t, res.TokenData)
				assert.Zero(t, repo.creates, "store must not be touched")
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegister_DuplicateLogin(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := &fakeUsersRepo{}
	s := newUserService(t, db, &fakeRepoManager{u: repo})
	expectCommit(mock)
	expectRollback(mock)

	_, err := s.Register(context.Background(), "alice", "secret1", "")
	require.NoError(t, err)

	res, err := s.Register(context.Background(), "alice", "other-pass", "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgLoginTaken, res.ErrorMessage)
	assert.Empty(t, res.TokenData)
	assert.Equal(t, 1, repo.creates)
	assert.Len(t, repo.rows, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_UniqueViolationOnInsert(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := &fakeUsersRepo{createErr: common.ErrorAlreadyExists}
	s := newUserService(t, db, &fakeRepoManager{u: repo})
	expectRollback(mock)

	res, err := s.Register(context.Background(), "alice", "secret1", "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgLoginTaken, res.ErrorMessage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_StoreFailures(t *testing.T) {
	tests := []struct {
		name string
		repo *fakeUsersRepo
	}{
		{"find fails", &fakeUsersRepo{findErr: errBoom}},
		{"create fails", &fakeUsersRepo{createErr: errBoom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newSQLMockDB(t)
			s := newUserService(t, db, &fakeRepoManager{u: tt.repo})
			expectRollback(mock)

			res, err := s.Register(context.Background(), "alice", "secret1", "")
			assert.Nil(t, res)
			assert.ErrorIs(t, err, common.ErrorInternal)
			assert.ErrorIs(t, err, errBoom)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegister_CommitFailure(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{}})
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errBoom)

	res, err := s.Register(context.Background(), "alice", "secret1", "")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := &fakeUsersRepo{}
	s := newUserService(t, db, &fakeRepoManager{u: repo})
	repo.rows = []*models.User{
		{ID: 5, Login: "alice", Password: s.hasher.Hash("secret1"), Title: "Alice"},
	}
	expectCommit(mock)

	tok, err := s.Login(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	require.False(t, tok.Empty())

	id, err := s.codec.Decode(tok.Data)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_PicksMatchingRowAmongDuplicates(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := &fakeUsersRepo{}
	s := newUserService(t, db, &fakeRepoManager{u: repo})
	repo.rows = []*models.User{
		{ID: 1, Login: "alice", Password: s.hasher.Hash("first")},
		{ID: 2, Login: "alice", Password: s.hasher.Hash("second")},
	}
	expectCommit(mock)

	tok, err := s.Login(context.Background(), "alice", "second")
	require.NoError(t, err)
	id, err := s.codec.Decode(tok.Data)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestLogin_WrongCredentials(t *testing.T) {
	tests := []struct {
		name, login, password string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown login", "ghost", "secret1"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newSQLMockDB(t)
			repo := &fakeUsersRepo{}
			s := newUserService(t, db, &fakeRepoManager{u: repo})
			repo.rows = []*models.User{{ID: 1, Login: "alice", Password: s.hasher.Hash("secret1")}}
			expectCommit(mock)

			tok, err := s.Login(context.Background(), tt.login, tt.password)
			require.NoError(t, err)
			require.NotNil(t, tok)
			assert.True(t, tok.Empty())
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLogin_StoreFailure(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{findErr: errBoom}})
	expectRollback(mock)

	tok, err := s.Login(context.Background(), "alice", "secret1")
	assert.Nil(t, tok)
	assert.ErrorIs(t, err, common.ErrorInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}

// --- GetUserByID ---

func TestGetUserByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newSQLMockDB(t)
		repo := &fakeUsersRepo{rows: []*models.User{{ID: 3, Login: "alice"}}}
		s := newUserService(t, db, &fakeRepoManager{u: repo})
		expectCommit(mock)

		u, err := s.GetUserByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Login)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newSQLMockDB(t)
		s := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{}})
		expectRollback(mock)

		u, err := s.GetUserByID(context.Background(), 3)
		assert.Nil(t, u)
		assert.ErrorIs(t, err, common.ErrorNotFound)
		assert.NotErrorIs(t, err, common.ErrorInternal)
	})

	t.Run("store failure", func(t *testing.T) {
		db, mock := newSQLMockDB(t)
		s := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{getErr: errBoom}})
		expectRollback(mock)

		u, err := s.GetUserByID(context.Background(), 3)
		assert.Nil(t, u)
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}

// --- end to end over the fake store ---

func TestRegisterThenLogin(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := &fakeUsersRepo{}
	s := newUserService(t, db, &fakeRepoManager{u: repo})
	ctx := context.Background()

	expectCommit(mock)
	reg, err := s.Register(ctx, "alice", "secret1", "Alice")
	require.NoError(t, err)
	require.True(t, reg.Success)

	expectCommit(mock)
	tok, err := s.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.False(t, tok.Empty())

	regID, err := s.codec.Decode(reg.TokenData)
	require.NoError(t, err)
	loginID, err := s.codec.Decode(tok.Data)
	require.NoError(t, err)
	assert.Equal(t, regID, loginID)

	expectCommit(mock)
	u, err := s.GetUserByID(ctx, loginID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Title)

	expectCommit(mock)
	bad, err := s.Login(ctx, "alice", "secret2")
	require.NoError(t, err)
	assert.True(t, bad.Empty())

	require.NoError(t, mock.ExpectationsWereMet())
}
