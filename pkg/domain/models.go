package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Transaction represents one sale in the ledger. Rows are written by ingestion
// only and are never mutated by the query service.
type Transaction struct {
	ID              int64           `json:"id" db:"id"`
	TransactionID   string          `json:"transactionId" db:"transaction_id" validate:"required,max=50"`
	Date            Date            `json:"date" db:"date" validate:"required"`
	CustomerID      string          `json:"customerId" db:"customer_id" validate:"required,max=50"`
	CustomerName    string          `json:"customerName" db:"customer_name" validate:"required,max=100"`
	PhoneNumber     *string         `json:"phoneNumber" db:"phone_number" validate:"omitempty,max=20"`
	Gender          *string         `json:"gender" db:"gender" validate:"omitempty,max=20"`
	Age             *int            `json:"age" db:"age" validate:"omitempty,gte=0"`
	ProductCategory *string         `json:"productCategory" db:"product_category" validate:"omitempty,max=100"`
	Quantity        int             `json:"quantity" db:"quantity" validate:"gte=1"`
	TotalAmount     decimal.Decimal `json:"totalAmount" db:"total_amount" validate:"gte=0"`
	CustomerRegion  *string         `json:"customerRegion" db:"customer_region" validate:"omitempty,max=50"`
	ProductID       *string         `json:"productId" db:"product_id" validate:"omitempty,max=50"`
	EmployeeName    *string         `json:"employeeName" db:"employee_name" validate:"omitempty,max=100"`
}

// FilterOptions lists the distinct non-null values present for each filterable dimension.
type FilterOptions struct {
	Regions    []string `json:"regions"`
	Genders    []string `json:"genders"`
	Categories []string `json:"categories"`
}

// Date is a calendar date without a time of day or location.
type Date struct {
	civil.Date
}

// NewDate builds a Date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{civil.Date{Year: year, Month: month, Day: day}}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, err
	}
	return Date{d}, nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date{civil.DateOf(t)}
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.Date == civil.Date{}
}

// Compare returns -1, 0 or +1 when d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Before(other.Date):
		return -1
	case d.After(other.Date):
		return 1
	}
	return 0
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		return fmt.Errorf("cannot scan %T into domain.Date", value)
	}
}

// scanText accepts both bare dates and RFC3339 timestamps some drivers return for DATE columns.
func (d *Date) scanText(s string) error {
	if len(s) > 10 {
		s = s[:10]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
