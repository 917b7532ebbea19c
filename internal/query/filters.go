// Package query turns untrusted filter, sort and paging parameters into a
// predicate, an order and a page window over the sales ledger, and computes
// page results and aggregate statistics from one shared predicate.
package query

import (
	"salesledger/pkg/domain"
)

// Field names a record attribute the engine can filter or sort on.
// Stores map fields to their own storage (columns, struct fields).
type Field string

const (
	FieldTransactionID Field = "transaction_id"
	FieldDate          Field = "date"
	FieldCustomerID    Field = "customer_id"
	FieldCustomerName  Field = "customer_name"
	FieldGender        Field = "gender"
	FieldAge           Field = "age"
	FieldCategory      Field = "product_category"
	FieldQuantity      Field = "quantity"
	FieldAmount        Field = "total_amount"
	FieldRegion        Field = "customer_region"
)

// Filters is the normalized filter set. A nil slice, nil pointer or empty
// search means no constraint on that dimension.
type Filters struct {
	Regions    []string
	Genders    []string
	Categories []string
	AgeMin     *int
	AgeMax     *int
	DateStart  *domain.Date
	DateEnd    *domain.Date
	Search     string
}

// IsEmpty reports whether no dimension is constrained.
func (f Filters) IsEmpty() bool {
	return len(f.Regions) == 0 && len(f.Genders) == 0 && len(f.Categories) == 0 &&
		f.AgeMin == nil && f.AgeMax == nil &&
		f.DateStart == nil && f.DateEnd == nil &&
		f.Search == ""
}

// stringField returns the value of a text attribute; ok is false when the
// attribute is NULL or is not a text attribute.
func stringField(t *domain.Transaction, f Field) (string, bool) {
	switch f {
	case FieldTransactionID:
		return t.TransactionID, true
	case FieldCustomerID:
		return t.CustomerID, true
	case FieldCustomerName:
		return t.CustomerName, true
	case FieldGender:
		return deref(t.Gender)
	case FieldCategory:
		return deref(t.ProductCategory)
	case FieldRegion:
		return deref(t.CustomerRegion)
	}
	return "", false
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}
