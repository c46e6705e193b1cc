package core

import (
	"strings"
	"time"
)

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

type (
	// Period is a budget recurrence frequency.
	Period string

	// Date is a calendar date at UTC midnight. Budget windows and expense
	// dates operate on dates, never on instants.
	Date struct {
		time.Time
	}

	// Money is an exact amount in cents. All arithmetic stays in int64 so
	// totals never accumulate floating-point drift.
	Money struct {
		Cents int64
	}

	User struct {
		ID         int64
		Username   string
		Email      string
		Credential string // opaque hash supplied by the auth collaborator
		Active     bool
		CreatedAt  time.Time
	}

	Category struct {
		ID          int64
		Name        string
		Description string
		Icon        string
		Color       string
	}

	Tag struct {
		ID    int64
		Name  string
		Color string
	}

	Expense struct {
		ID          int64
		UserID      int64
		CategoryID  *int64 // nil = uncategorized
		Description string
		Amount      Money
		Date        Date
		ReceiptPath string // opaque reference, no file I/O here
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// ExpenseTag is one row of the expense/tag association. The pair is the
	// identity; attaching the same pair twice is a no-op.
	ExpenseTag struct {
		ExpenseID int64
		TagID     int64
		CreatedAt time.Time
	}

	Budget struct {
		ID         int64
		UserID     int64
		CategoryID *int64 // nil = applies across all of the user's categories
		Amount     Money  // the limit, always positive
		Period     Period
		StartDate  Date
	}
)

// ParsePeriod validates a period string from an external caller.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Daily, Weekly, Monthly, Yearly:
		return p, nil
	default:
		return "", ErrUnknownPeriod
	}
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD, the storage and wire layout.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if strings.TrimSpace(u.Email) == "" || !strings.Contains(u.Email, "@") {
		return ErrEmptyEmail
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (t Tag) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (e Expense) Validate() error {
	if e.UserID == 0 {
		return ErrMissingUser
	}
	// Zero is allowed; only negative amounts are rejected.
	if e.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (b Budget) Validate() error {
	if b.UserID == 0 {
		return ErrMissingUser
	}
	if b.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	switch b.Period {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return ErrUnknownPeriod
	}
	if b.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	return nil
}
