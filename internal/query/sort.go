package query

import (
	"strings"

	"salesledger/pkg/domain"
)

// SortKey is a recognised sortBy token.
type SortKey string

const (
	SortDateDesc     SortKey = "date_desc"
	SortDateAsc      SortKey = "date_asc"
	SortQuantityDesc SortKey = "quantity_desc"
	SortQuantityAsc  SortKey = "quantity_asc"
	SortCustomerAsc  SortKey = "customer_asc"
	SortCustomerDesc SortKey = "customer_desc"
	SortAmountDesc   SortKey = "amount_desc"
	SortAmountAsc    SortKey = "amount_asc"

	DefaultSort = SortDateDesc
)

// Order is a total order over records: the primary field in the given
// direction, then transaction id ascending for equal primary values.
type Order struct {
	Key   SortKey
	Field Field
	Desc  bool
}

// TieBreaker orders records whose primary sort values are equal.
const TieBreaker = FieldTransactionID

var orders = map[SortKey]Order{
	SortDateDesc:     {Key: SortDateDesc, Field: FieldDate, Desc: true},
	SortDateAsc:      {Key: SortDateAsc, Field: FieldDate},
	SortQuantityDesc: {Key: SortQuantityDesc, Field: FieldQuantity, Desc: true},
	SortQuantityAsc:  {Key: SortQuantityAsc, Field: FieldQuantity},
	SortCustomerAsc:  {Key: SortCustomerAsc, Field: FieldCustomerName},
	SortCustomerDesc: {Key: SortCustomerDesc, Field: FieldCustomerName, Desc: true},
	SortAmountDesc:   {Key: SortAmountDesc, Field: FieldAmount, Desc: true},
	SortAmountAsc:    {Key: SortAmountAsc, Field: FieldAmount},
}

// ResolveSort maps a sortBy token to its Order; unknown tokens get the default.
func ResolveSort(token string) Order {
	if o, ok := orders[SortKey(strings.TrimSpace(token))]; ok {
		return o
	}
	return orders[DefaultSort]
}

// Less reports whether a sorts before b.
func (o Order) Less(a, b *domain.Transaction) bool {
	cmp := comparePrimary(o.Field, a, b)
	if o.Desc {
		cmp = -cmp
	}
	if cmp != 0 {
		return cmp < 0
	}
	return a.TransactionID < b.TransactionID
}

func comparePrimary(f Field, a, b *domain.Transaction) int {
	switch f {
	case FieldDate:
		return a.Date.Compare(b.Date)
	case FieldQuantity:
		return compareInts(a.Quantity, b.Quantity)
	case FieldCustomerName:
		return strings.Compare(a.CustomerName, b.CustomerName)
	case FieldAmount:
		return a.TotalAmount.Cmp(b.TotalAmount)
	}
	return 0
}
