package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"finance-manager/internal/accounting"
	"finance-manager/internal/auth"
	"finance-manager/internal/models"
	"finance-manager/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type IdentityTestSuite struct {
	suite.Suite
	db  *storage.DB
	svc *Service
	ctx context.Context
}

func (suite *IdentityTestSuite) SetupSuite() {
	auth.Cost = bcrypt.MinCost
}

func (suite *IdentityTestSuite) SetupTest() {
	db, err := storage.NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
	suite.svc = NewService(db, nil)
	suite.ctx = context.Background()
}

func (suite *IdentityTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *IdentityTestSuite) TestRegisterAndAuthenticate() {
	user, err := suite.svc.Register(suite.ctx, "alice", "secret")
	require.NoError(suite.T(), err)
	assert.NotZero(suite.T(), user.ID)
	assert.Equal(suite.T(), "alice", user.Username)
	assert.NotEqual(suite.T(), "secret", user.PasswordHash, "password must not be stored in clear")

	got, err := suite.svc.Authenticate(suite.ctx, "alice", "secret")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, got.ID)
}

func (suite *IdentityTestSuite) TestRegisterDuplicate() {
	_, err := suite.svc.Register(suite.ctx, "alice", "secret")
	require.NoError(suite.T(), err)

	_, err = suite.svc.Register(suite.ctx, "alice", "other")
	assert.ErrorIs(suite.T(), err, ErrDuplicateUsername)

	count, err := suite.db.UserCount(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)
}

func (suite *IdentityTestSuite) TestRegisterMapsStoreDuplicate() {
	// The pre-check passes but the insert hits the unique index.
	svc := NewService(&racingStore{DB: suite.db}, nil)
	_, err := suite.db.CreateUser(suite.ctx, "bob", "digest")
	require.NoError(suite.T(), err)

	_, err = svc.Register(suite.ctx, "bob", "secret")
	assert.ErrorIs(suite.T(), err, ErrDuplicateUsername)
}

func (suite *IdentityTestSuite) TestRegisterValidation() {
	var verr *accounting.ValidationError

	_, err := suite.svc.Register(suite.ctx, "  ", "secret")
	require.True(suite.T(), errors.As(err, &verr))
	assert.Equal(suite.T(), "username", verr.Field)

	_, err = suite.svc.Register(suite.ctx, "carol", "")
	require.True(suite.T(), errors.As(err, &verr))
	assert.Equal(suite.T(), "password", verr.Field)

	_, err = suite.svc.Register(suite.ctx, "carol", strings.Repeat("x", 100))
	require.True(suite.T(), errors.As(err, &verr))
	assert.Equal(suite.T(), "password", verr.Field)

	count, err := suite.db.UserCount(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), count)
}

func (suite *IdentityTestSuite) TestAuthenticateWrongPassword() {
	_, err := suite.svc.Register(suite.ctx, "alice", "secret")
	require.NoError(suite.T(), err)

	_, err = suite.svc.Authenticate(suite.ctx, "alice", "wrong")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *IdentityTestSuite) TestAuthenticateUnknownUser() {
	_, err := suite.svc.Authenticate(suite.ctx, "nobody", "secret")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *IdentityTestSuite) TestDeleteAccount() {
	user, err := suite.svc.Register(suite.ctx, "u3", "pw")
	require.NoError(suite.T(), err)

	accounts := accounting.NewService(suite.db, nil)
	_, err = accounts.RecordTransaction(suite.ctx, accounting.Entry{
		UserID:   user.ID,
		Category: "Food",
		Amount:   decimal.NewFromInt(10),
		Date:     models.NewDate(2024, 11, 1),
		Kind:     models.KindExpense,
	})
	require.NoError(suite.T(), err)
	_, err = accounts.SetBudget(suite.ctx, user.ID, "Food", decimal.NewFromInt(100))
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.svc.DeleteAccount(suite.ctx, user.ID))

	_, err = suite.svc.Authenticate(suite.ctx, "u3", "pw")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)

	txns, err := suite.db.ListTransactions(suite.ctx, user.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), txns)

	_, err = suite.db.GetBudget(suite.ctx, user.ID, "Food")
	assert.ErrorIs(suite.T(), err, storage.ErrNotFound)

	err = suite.svc.DeleteAccount(suite.ctx, user.ID)
	assert.ErrorIs(suite.T(), err, storage.ErrNotFound)
}

func TestIdentitySuite(t *testing.T) {
	suite.Run(t, new(IdentityTestSuite))
}

// racingStore hides existing users from the pre-check.
type racingStore struct {
	*storage.DB
}

func (s *racingStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, storage.ErrNotFound
}
