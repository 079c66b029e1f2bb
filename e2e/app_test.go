package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite drives the built binaries through their standard streams.
type E2ETestSuite struct {
	suite.Suite
	dbPath string
}

// SetupTest gives every test a fresh database with one provisioned user.
func (suite *E2ETestSuite) SetupTest() {
	suite.dbPath = filepath.Join(suite.T().TempDir(), "finance.db")

	out, err := suite.exec(adduserBin, "", "-user", "testuser", "-password", "testpass123")
	require.NoError(suite.T(), err, "adduser failed: %s", out)
	require.Contains(suite.T(), out, "User testuser created successfully")
}

func (suite *E2ETestSuite) env() []string {
	env := []string{"DB_PATH=" + suite.dbPath, "FINANCE_LOG_LEVEL=disabled"}
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "FINANCE_") || strings.HasPrefix(kv, "DB_PATH=") {
			continue
		}
		env = append(env, kv)
	}
	return env
}

func (suite *E2ETestSuite) exec(bin, stdin string, args ...string) (string, error) {
	cmd := exec.Command(bin, args...)
	cmd.Env = suite.env()
	cmd.Dir = suite.T().TempDir()
	cmd.Stdin = strings.NewReader(stdin)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stdout
	err := cmd.Run()
	return stdout.String(), err
}

func (suite *E2ETestSuite) session(lines ...string) string {
	out, err := suite.exec(financeBin, strings.Join(lines, "\n")+"\n", "-quiet")
	require.NoError(suite.T(), err, "session failed: %s", out)
	return out
}

func (suite *E2ETestSuite) TestLoginAndBudgetAlert() {
	out := suite.session(
		"2", "testuser", "testpass123",
		"3", "Food", "100",
		"2", "Food", "60", "2024-11-01", "",
		"2", "Food", "50", "2024-11-15", "",
		"6", "3",
	)

	assert.Contains(suite.T(), out, "Login successful.")
	assert.Contains(suite.T(), out, "Budget for Food set to 100.00.")
	assert.Contains(suite.T(), out, "Your Food budget is under control. You have spent 60.00 out of 100.00 this month.")
	assert.Contains(suite.T(), out, "Alert: You have exceeded your budget for Food. Total expenses: 110.00, Budget: 100.00.")
}

func (suite *E2ETestSuite) TestReportAcrossSessions() {
	suite.session(
		"2", "testuser", "testpass123",
		"1", "Salary", "2500", "2024-11-01", "",
		"2", "Rent", "900", "2024-11-02", "November rent",
		"6", "3",
	)

	out := suite.session(
		"2", "testuser", "testpass123",
		"4", "2024-11", "2024",
		"6", "3",
	)
	assert.Contains(suite.T(), out, "Total transactions in 2024-11: 3400.00")
	assert.Contains(suite.T(), out, "Net (income - expense) in 2024: 1600.00")
	assert.Contains(suite.T(), out, "November rent")
}

func (suite *E2ETestSuite) TestDeleteAccount() {
	out := suite.session(
		"2", "testuser", "testpass123",
		"5", "Y",
		"2", "testuser", "testpass123",
		"3",
	)
	assert.Contains(suite.T(), out, "Account deleted successfully.")
	assert.Contains(suite.T(), out, "Invalid credentials.")

	out, err := suite.exec(adduserBin, "", "-user", "testuser", "-password", "again")
	require.NoError(suite.T(), err, "re-adding a deleted user should work: %s", out)
}

func (suite *E2ETestSuite) TestDuplicateAddUser() {
	out, err := suite.exec(adduserBin, "", "-user", "testuser", "-password", "x")
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), out, "already exists")
}

func (suite *E2ETestSuite) TestClosedStdinExitsCleanly() {
	out := suite.session("2", "testuser")
	assert.Contains(suite.T(), out, "Goodbye.")
}

func TestE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end tests in short mode")
	}
	suite.Run(t, new(E2ETestSuite))
}
