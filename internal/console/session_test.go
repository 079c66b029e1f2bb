package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"finance-manager/internal/accounting"
	"finance-manager/internal/auth"
	"finance-manager/internal/identity"
	"finance-manager/internal/reporting"
	"finance-manager/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

func script(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

type SessionTestSuite struct {
	suite.Suite
	db  *storage.DB
	svc Services
	ctx context.Context
}

func (suite *SessionTestSuite) SetupSuite() {
	auth.Cost = bcrypt.MinCost
}

func (suite *SessionTestSuite) SetupTest() {
	db, err := storage.NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
	suite.ctx = context.Background()

	today := time.Date(2024, time.November, 20, 9, 0, 0, 0, time.UTC)
	suite.svc = Services{
		Identity:   identity.NewService(db, nil),
		Accounting: accounting.NewService(db, nil, accounting.WithClock(func() time.Time { return today })),
		Reporting:  reporting.NewService(db, nil),
	}
}

func (suite *SessionTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *SessionTestSuite) run(input string) string {
	var out bytes.Buffer
	s := NewSession(strings.NewReader(input), &out, suite.svc, nil)
	require.NoError(suite.T(), s.Run(suite.ctx))
	return out.String()
}

func (suite *SessionTestSuite) TestBudgetAlertSession() {
	out := suite.run(script(
		"1", "u1", "pw",
		"2", "u1", "pw",
		"3", "Food", "100",
		"2", "Food", "60", "2024-11-01", "",
		"2", "Food", "50", "2024-11-15", "lunch",
		"1", "Salary", "3000", "", "November pay",
		"6",
		"3",
	))

	assert.Contains(suite.T(), out, "Welcome to the Personal Finance Manager")
	assert.Contains(suite.T(), out, "User u1 registered successfully.")
	assert.Contains(suite.T(), out, "Login successful.")
	assert.Contains(suite.T(), out, "Welcome, u1")
	assert.Contains(suite.T(), out, "Budget for Food set to 100.00.")
	assert.Contains(suite.T(), out, "Your Food budget is under control. You have spent 60.00 out of 100.00 this month.")
	assert.Contains(suite.T(), out, "Alert: You have exceeded your budget for Food. Total expenses: 110.00, Budget: 100.00.")
	assert.Contains(suite.T(), out, "Expense of 50.00 added successfully.")
	assert.Contains(suite.T(), out, "Income of 3000.00 added successfully.")
	assert.Contains(suite.T(), out, "Logging out...")
	assert.True(suite.T(), strings.HasSuffix(out, "Goodbye.\n"))

	user, err := suite.db.GetUserByUsername(suite.ctx, "u1")
	require.NoError(suite.T(), err)
	txns, err := suite.db.ListTransactions(suite.ctx, user.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), txns, 3)
	assert.Equal(suite.T(), "No description provided", txns[0].Description)
	assert.Equal(suite.T(), "2024-11-20", txns[2].Date.String(), "blank date means today")
}

func (suite *SessionTestSuite) TestNoBudgetAndUpdate() {
	out := suite.run(script(
		"1", "u2", "pw",
		"2", "u2", "pw",
		"2", "Rent", "800", "2024-11-01", "",
		"3", "Rent", "900",
		"3", "Rent", "750.5",
		"6",
		"3",
	))

	assert.Contains(suite.T(), out, "No budget set for Rent.")
	assert.Contains(suite.T(), out, "Budget for Rent set to 900.00.")
	assert.Contains(suite.T(), out, "Budget for Rent updated to 750.50.")
}

func (suite *SessionTestSuite) TestReports() {
	out := suite.run(script(
		"1", "u1", "pw",
		"2", "u1", "pw",
		"1", "Salary", "3000", "2024-11-01", "",
		"2", "Food", "110", "2024-11-02", "groceries",
		"2", "Rent", "800.50", "2024-10-31", "",
		"4", "2024-11", "2024",
		"4", "2024-13", "2024",
		"4", "",
		"6",
		"3",
	))

	assert.Contains(suite.T(), out, "Total transactions in 2024-11: 3110.00")
	assert.Contains(suite.T(), out, "Total transactions in 2024: 3910.50")
	assert.Contains(suite.T(), out, "Net (income - expense) in 2024-11: 2890.00")
	assert.Contains(suite.T(), out, "Net (income - expense) in 2024: 2089.50")
	assert.Contains(suite.T(), out, "Transaction history:")
	assert.Contains(suite.T(), out, "groceries")
	assert.Contains(suite.T(), out, `Error: "2024-13" is not a YYYY-MM month or YYYY year.`)
	assert.Contains(suite.T(), out, "Month is required for generating a report.")
}

func (suite *SessionTestSuite) TestDuplicateAndBadLogin() {
	out := suite.run(script(
		"1", "alice", "secret",
		"1", "alice", "other",
		"1", "", "",
		"2", "alice", "wrong",
		"2", "ghost", "secret",
		"9",
		"3",
	))

	assert.Contains(suite.T(), out, "Username alice is already taken.")
	assert.Contains(suite.T(), out, "Username and password are required to register.")
	assert.Equal(suite.T(), 2, strings.Count(out, "Invalid credentials."))
	assert.Equal(suite.T(), 2, strings.Count(out, "Login failed."))
	assert.Contains(suite.T(), out, "Invalid choice. Please try again.")

	count, err := suite.db.UserCount(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)
}

func (suite *SessionTestSuite) TestInvalidInputKeepsSessionAlive() {
	out := suite.run(script(
		"1", "u1", "pw",
		"2", "u1", "pw",
		"2", "Food", "",
		"2", "Food", "-5",
		"2", "Food", "abc",
		"2", "Food", "5", "15/11/2024",
		"2", "", "5",
		"3", "Food", "",
		"7",
		"6",
		"3",
	))

	assert.Contains(suite.T(), out, "Amount is required for expense.")
	assert.Contains(suite.T(), out, "Error: amount must be a non-negative number.")
	assert.Contains(suite.T(), out, "Error: amount must be a number.")
	assert.Contains(suite.T(), out, `Error: invalid date "15/11/2024": want YYYY-MM-DD.`)
	assert.Contains(suite.T(), out, "Category, amount, and transaction type are required for adding a transaction.")
	assert.Contains(suite.T(), out, "Amount is required to set a budget.")
	assert.Contains(suite.T(), out, "Logging out...")

	user, err := suite.db.GetUserByUsername(suite.ctx, "u1")
	require.NoError(suite.T(), err)
	txns, err := suite.db.ListTransactions(suite.ctx, user.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), txns)
}

func (suite *SessionTestSuite) TestDeleteAccount() {
	out := suite.run(script(
		"1", "u3", "pw",
		"2", "u3", "pw",
		"5", "n",
		"5", "Y",
		"2", "u3", "pw",
		"3",
	))

	assert.Contains(suite.T(), out, "Cancelled the delete process.")
	assert.Contains(suite.T(), out, "Account deleted successfully.")
	assert.Contains(suite.T(), out, "Invalid credentials.")

	count, err := suite.db.UserCount(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), count)
}

func (suite *SessionTestSuite) TestEOFEndsSession() {
	out := suite.run(script("1", "u1", "pw", "2", "u1", "pw", "2", "Food"))
	assert.Contains(suite.T(), out, "Login successful.")
	assert.True(suite.T(), strings.HasSuffix(out, "Goodbye.\n"))

	out = suite.run("")
	assert.True(suite.T(), strings.HasSuffix(out, "Goodbye.\n"))
}

func (suite *SessionTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(suite.ctx)
	cancel()

	var out bytes.Buffer
	s := NewSession(strings.NewReader(script("3")), &out, suite.svc, nil)
	assert.ErrorIs(suite.T(), s.Run(ctx), context.Canceled)
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}
