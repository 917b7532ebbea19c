package query

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"salesledger/pkg/domain"
)

func strPtr(s string) *string {
	return &s
}

func record(id, name string, age *int, region, category, gender string, date domain.Date) *domain.Transaction {
	return &domain.Transaction{
		TransactionID:   id,
		Date:            date,
		CustomerID:      "CUST-" + id,
		CustomerName:    name,
		Gender:          strPtr(gender),
		Age:             age,
		ProductCategory: strPtr(category),
		Quantity:        1,
		TotalAmount:     decimal.NewFromInt(100),
		CustomerRegion:  strPtr(region),
	}
}

func TestBuild_EmptyFiltersMatchEverything(t *testing.T) {
	p := Build(Filters{})

	assert.True(t, p.IsEmpty())
	assert.Equal(t, "all", p.String())
	assert.True(t, p.Match(&domain.Transaction{}))
}

func TestBuild_EmptySetsAreNoConstraint(t *testing.T) {
	p := Build(Filters{Regions: []string{}, Genders: nil, Categories: []string{}})
	assert.True(t, p.IsEmpty())
}

func TestBuild_IsReferentiallyTransparent(t *testing.T) {
	f := Filters{Regions: []string{"North"}, AgeMin: intPtr(20), Search: "ne"}

	a, b := Build(f), Build(f)
	assert.Equal(t, a, b)
	assert.Equal(t, a.String(), b.String())

	// Mutating the input afterwards must not leak into the built predicate.
	f.Regions[0] = "South"
	assert.Equal(t, []string{"North"}, a.Clauses()[0].Values)
}

func TestPredicate_Membership(t *testing.T) {
	day := domain.NewDate(2023, time.May, 5)
	rec := record("TXN1", "Neha Yadav", intPtr(30), "South", "Electronics", "Female", day)

	assert.True(t, Build(Filters{Regions: []string{"North", "South"}}).Match(rec))
	assert.False(t, Build(Filters{Regions: []string{"North"}}).Match(rec))
	assert.True(t, Build(Filters{Genders: []string{"Female"}}).Match(rec))
	assert.False(t, Build(Filters{Genders: []string{"female"}}).Match(rec))
	assert.True(t, Build(Filters{Categories: []string{"Electronics"}}).Match(rec))

	rec.CustomerRegion = nil
	assert.False(t, Build(Filters{Regions: []string{"South"}}).Match(rec))
}

func TestPredicate_AgeBoundsExcludeMissingAge(t *testing.T) {
	day := domain.NewDate(2023, time.May, 5)
	aged := record("TXN1", "A", intPtr(30), "North", "Beauty", "Male", day)
	ageless := record("TXN2", "B", nil, "North", "Beauty", "Male", day)

	tests := []struct {
		name        string
		filters     Filters
		aged, empty bool
	}{
		{"min below", Filters{AgeMin: intPtr(18)}, true, false},
		{"min equal", Filters{AgeMin: intPtr(30)}, true, false},
		{"min above", Filters{AgeMin: intPtr(31)}, false, false},
		{"max above", Filters{AgeMax: intPtr(40)}, true, false},
		{"max equal", Filters{AgeMax: intPtr(30)}, true, false},
		{"max below", Filters{AgeMax: intPtr(29)}, false, false},
		{"range", Filters{AgeMin: intPtr(25), AgeMax: intPtr(35)}, true, false},
		{"no bound", Filters{}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Build(tt.filters)
			assert.Equal(t, tt.aged, p.Match(aged))
			assert.Equal(t, tt.empty, p.Match(ageless))
		})
	}
}

func TestClause_NullPassesPolicy(t *testing.T) {
	c := Clause{Kind: KindAtLeast, Field: FieldAge, Bound: 20, Nulls: NullPasses}
	assert.True(t, c.Match(&domain.Transaction{}))

	c.Nulls = NullFails
	assert.False(t, c.Match(&domain.Transaction{}))
}

func TestPredicate_DateRangeIsInclusive(t *testing.T) {
	start := domain.NewDate(2023, time.March, 1)
	end := domain.NewDate(2023, time.March, 31)
	p := Build(Filters{DateStart: &start, DateEnd: &end})

	at := func(d domain.Date) *domain.Transaction {
		return record("TXN", "X", nil, "North", "Beauty", "Male", d)
	}
	assert.False(t, p.Match(at(domain.NewDate(2023, time.February, 28))))
	assert.True(t, p.Match(at(start)))
	assert.True(t, p.Match(at(domain.NewDate(2023, time.March, 15))))
	assert.True(t, p.Match(at(end)))
	assert.False(t, p.Match(at(domain.NewDate(2023, time.April, 1))))
}

func TestPredicate_Search(t *testing.T) {
	day := domain.NewDate(2023, time.May, 5)
	neha := record("TXN000123", "Neha Yadav", nil, "South", "Clothing", "Female", day)
	rahul := record("TXN000456", "Rahul Sharma", nil, "North", "Food", "Male", day)

	p := Build(Filters{Search: "Neha"})
	assert.True(t, p.Match(neha))
	assert.False(t, p.Match(rahul))

	assert.True(t, Build(Filters{Search: "neha yad"}).Match(neha), "case-insensitive")
	assert.True(t, Build(Filters{Search: "000456"}).Match(rahul), "transaction id")
	assert.True(t, Build(Filters{Search: "cust-txn000123"}).Match(neha), "customer id")
	assert.False(t, Build(Filters{Search: "%"}).Match(neha), "wildcards are literal")
	assert.True(t, Build(Filters{Search: " yadav"}).Match(neha), "whitespace is part of the text")
	assert.False(t, Build(Filters{Search: " neha"}).Match(neha), "whitespace is part of the text")
}

func TestPredicate_AllClausesMustHold(t *testing.T) {
	day := domain.NewDate(2023, time.May, 5)
	rec := record("TXN1", "Neha Yadav", intPtr(30), "South", "Electronics", "Female", day)

	p := Build(Filters{Regions: []string{"South"}, Search: "Rahul"})
	assert.False(t, p.Match(rec))

	p = Build(Filters{Regions: []string{"South"}, Categories: []string{"Electronics"}, AgeMax: intPtr(35), Search: "neha"})
	assert.True(t, p.Match(rec))
	assert.Len(t, p.Clauses(), 4)
	assert.Equal(t, `customer_region in [South] AND product_category in [Electronics] AND age lte 35 AND (customer_name|transaction_id|customer_id) contains "neha"`, p.String())
}
