// Package console runs the interactive text menu of the finance manager.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"finance-manager/internal/accounting"
	"finance-manager/internal/identity"
	"finance-manager/internal/logging"
	"finance-manager/internal/models"
	"finance-manager/internal/reporting"
	"finance-manager/internal/storage"

	"github.com/shopspring/decimal"
)

// Services are the operations the menu dispatches to.
type Services struct {
	Identity   *identity.Service
	Accounting *accounting.Service
	Reporting  *reporting.Service
}

// Session is one run of the menu loop over a single input stream.
type Session struct {
	in     *lineReader
	out    io.Writer
	svc    Services
	logger *logging.Logger
	user   *models.User
}

// NewSession creates a Session reading answers from in and writing
// prompts and results to out.
func NewSession(in io.Reader, out io.Writer, svc Services, logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.NewSilent()
	}
	return &Session{
		in:     newLineReader(in),
		out:    out,
		svc:    svc,
		logger: logger.Component("console"),
	}
}

func (s *Session) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Session) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func (s *Session) ask(prompt string) (string, error) {
	s.printf("%s", prompt)
	return s.in.line()
}

func (s *Session) askPassword(prompt string) (string, error) {
	s.printf("%s", prompt)
	pw, err := s.in.password()
	if err == nil && s.in.interactive() {
		s.println()
	}
	return pw, err
}

// Run shows the menu until the user exits, stdin is exhausted or ctx is
// cancelled. Failed operations are reported and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	s.println("Welcome to the Personal Finance Manager")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.println()
		s.println("1. Register")
		s.println("2. Login")
		s.println("3. Exit")
		choice, err := s.ask("Select an option: ")
		if err != nil {
			return s.finish(err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = s.register(ctx)
		case "2":
			err = s.login(ctx)
			if err == nil && s.user != nil {
				err = s.userMenu(ctx)
			}
		case "3":
			s.println("Goodbye.")
			return nil
		default:
			s.println("Invalid choice. Please try again.")
		}
		if err != nil {
			return s.finish(err)
		}
	}
}

// finish turns end of input into a clean exit.
func (s *Session) finish(err error) error {
	if errors.Is(err, errClosed) {
		s.println()
		s.println("Goodbye.")
		return nil
	}
	return err
}

func (s *Session) register(ctx context.Context) error {
	username, err := s.ask("Enter a username: ")
	if err != nil {
		return err
	}
	password, err := s.askPassword("Enter a password: ")
	if err != nil {
		return err
	}

	if strings.TrimSpace(username) == "" || password == "" {
		s.println("Username and password are required to register.")
		return nil
	}

	user, err := s.svc.Identity.Register(ctx, username, password)
	switch {
	case err == nil:
		s.printf("User %s registered successfully.\n", user.Username)
	case errors.Is(err, identity.ErrDuplicateUsername):
		s.printf("Username %s is already taken.\n", strings.TrimSpace(username))
	default:
		s.report("register", err)
	}
	return nil
}

func (s *Session) login(ctx context.Context) error {
	username, err := s.ask("Enter your username: ")
	if err != nil {
		return err
	}
	password, err := s.askPassword("Enter your password: ")
	if err != nil {
		return err
	}

	if strings.TrimSpace(username) == "" || password == "" {
		s.println("Both username and password are required for login.")
		s.println("Login failed.")
		return nil
	}

	user, err := s.svc.Identity.Authenticate(ctx, username, password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		s.println("Invalid credentials.")
		s.println("Login failed.")
		return nil
	}
	if err != nil {
		s.fail("login", err)
		s.println("Login failed.")
		return nil
	}

	s.println("Login successful.")
	s.printf("Welcome, %s\n", user.Username)
	s.user = user
	return nil
}

func (s *Session) userMenu(ctx context.Context) error {
	for s.user != nil {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.println()
		s.println("1. Add Income")
		s.println("2. Add Expense")
		s.println("3. Set Budget")
		s.println("4. Generate Reports")
		s.println("5. Delete Account")
		s.println("6. Logout")
		choice, err := s.ask("Select an option: ")
		if err != nil {
			return err
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = s.addTransaction(ctx, models.KindIncome)
		case "2":
			err = s.addTransaction(ctx, models.KindExpense)
		case "3":
			err = s.setBudget(ctx)
		case "4":
			err = s.reports(ctx)
		case "5":
			err = s.deleteAccount(ctx)
		case "6":
			s.println("Logging out...")
			s.user = nil
		default:
			s.println("Invalid choice. Please try again.")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) addTransaction(ctx context.Context, kind models.Kind) error {
	category, err := s.ask(fmt.Sprintf("Enter %s category: ", kind))
	if err != nil {
		return err
	}
	rawAmount, err := s.ask("Enter amount: ")
	if err != nil {
		return err
	}
	if strings.TrimSpace(rawAmount) == "" {
		s.printf("Amount is required for %s.\n", kind)
		return nil
	}
	amount, err := accounting.ParseAmount(rawAmount)
	if err != nil {
		s.report("add "+string(kind), err)
		return nil
	}
	if strings.TrimSpace(category) == "" {
		s.println("Category, amount, and transaction type are required for adding a transaction.")
		return nil
	}

	rawDate, err := s.ask("Enter date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	date, err := accounting.ParseDateOrToday(rawDate)
	if err != nil {
		s.report("add "+string(kind), err)
		return nil
	}
	description, err := s.ask("Enter description: ")
	if err != nil {
		return err
	}

	out, err := s.svc.Accounting.RecordTransaction(ctx, accounting.Entry{
		UserID:      s.user.ID,
		Category:    category,
		Amount:      amount,
		Date:        date,
		Description: description,
		Kind:        kind,
	})
	if err != nil {
		s.report("add "+string(kind), err)
		return nil
	}

	switch out.Status {
	case accounting.BudgetExceeded:
		s.printf("Alert: You have exceeded your budget for %s. Total expenses: %s, Budget: %s.\n",
			out.Category, money(out.Spent), money(out.Budget))
	case accounting.WithinBudget:
		s.printf("Your %s budget is under control. You have spent %s out of %s this month.\n",
			out.Category, money(out.Spent), money(out.Budget))
	case accounting.NoBudgetSet:
		s.printf("No budget set for %s.\n", out.Category)
	}
	s.printf("%s of %s added successfully.\n", kind.Title(), money(out.Transaction.Amount))
	return nil
}

func (s *Session) setBudget(ctx context.Context) error {
	category, err := s.ask("Enter category to set budget for: ")
	if err != nil {
		return err
	}
	rawAmount, err := s.ask("Enter budget amount: ")
	if err != nil {
		return err
	}
	if strings.TrimSpace(rawAmount) == "" {
		s.println("Amount is required to set a budget.")
		return nil
	}
	amount, err := accounting.ParseAmount(rawAmount)
	if err != nil {
		s.report("set budget", err)
		return nil
	}

	out, err := s.svc.Accounting.SetBudget(ctx, s.user.ID, category, amount)
	if err != nil {
		s.report("set budget", err)
		return nil
	}
	if out.Status == accounting.Created {
		s.printf("Budget for %s set to %s.\n", out.Budget.Category, money(out.Budget.Amount))
	} else {
		s.printf("Budget for %s updated to %s.\n", out.Budget.Category, money(out.Budget.Amount))
	}
	return nil
}

func (s *Session) reports(ctx context.Context) error {
	month, err := s.ask("Enter month (YYYY-MM): ")
	if err != nil {
		return err
	}
	month = strings.TrimSpace(month)
	if month == "" {
		s.println("Month is required for generating a report.")
		return nil
	}
	year, err := s.ask("Enter year (YYYY): ")
	if err != nil {
		return err
	}
	year = strings.TrimSpace(year)
	if year == "" {
		s.println("Year is required for generating a report.")
		return nil
	}

	r, err := s.svc.Reporting.Generate(ctx, s.user.ID, month, year)
	if err != nil {
		s.report("generate report", err)
		return nil
	}

	s.printf("Total transactions in %s: %s\n", r.Month.Token, money(r.MonthGross))
	s.printf("Total transactions in %s: %s\n", r.Year.Token, money(r.YearGross))
	s.printf("Net (income - expense) in %s: %s\n", r.Month.Token, money(r.MonthNet))
	s.printf("Net (income - expense) in %s: %s\n", r.Year.Token, money(r.YearNet))
	s.printCategories(r)
	s.printHistory(r.History)
	return nil
}

func (s *Session) printCategories(r *reporting.Report) {
	if len(r.ByCategory) == 0 {
		return
	}
	s.println()
	s.printf("By category in %s:\n", r.Month.Token)
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	for _, c := range r.ByCategory {
		fmt.Fprintf(w, "  %s\t%s\t%s\t(%d)\n", c.Category, c.Kind.Title(), money(c.Total), c.Count)
	}
	w.Flush()
}

func (s *Session) printHistory(history []models.Transaction) {
	s.println()
	if len(history) == 0 {
		s.println("No transactions recorded.")
		return
	}
	s.println("Transaction history:")
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tKIND\tCATEGORY\tAMOUNT\tDESCRIPTION\tID")
	for _, t := range history {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Date, t.Kind, t.Category, money(t.Amount), t.Description, t.ID)
	}
	w.Flush()
}

func (s *Session) deleteAccount(ctx context.Context) error {
	answer, err := s.ask("Are you sure you want to delete? (Y/N): ")
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(answer), "y") {
		s.println("Cancelled the delete process.")
		return nil
	}

	if err := s.svc.Identity.DeleteAccount(ctx, s.user.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.println("Account no longer exists.")
			s.user = nil
			return nil
		}
		s.fail("delete account", err)
		return nil
	}
	s.println("Account deleted successfully.")
	s.user = nil
	return nil
}

// report prints a validation problem as-is and anything else as a failure.
func (s *Session) report(op string, err error) {
	var verr *accounting.ValidationError
	if errors.As(err, &verr) {
		s.printf("Error: %s.\n", verr.Reason)
		return
	}
	s.fail(op, err)
}

func (s *Session) fail(op string, err error) {
	s.logger.Error().Err(err).Str("op", op).Msg("Operation failed")
	s.printf("Error: %v\n", err)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
