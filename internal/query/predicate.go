package query

import (
	"fmt"
	"strings"

	"salesledger/pkg/domain"
)

// Kind tags a Clause.
type Kind int

const (
	// KindIn: the field's value is one of Values.
	KindIn Kind = iota + 1
	// KindAtLeast: the field's value is >= Bound.
	KindAtLeast
	// KindAtMost: the field's value is <= Bound.
	KindAtMost
	// KindContains: any of Fields contains Text, case-insensitively.
	KindContains
)

func (k Kind) String() string {
	switch k {
	case KindIn:
		return "in"
	case KindAtLeast:
		return "gte"
	case KindAtMost:
		return "lte"
	case KindContains:
		return "contains"
	}
	return "unknown"
}

// NullPolicy decides how a range clause treats a record whose field is NULL.
type NullPolicy int

const (
	// NullFails excludes records with a NULL value from a set bound.
	NullFails NullPolicy = iota
	// NullPasses lets records with a NULL value through a set bound.
	NullPasses
)

// AgeNulls is the policy applied to age bounds: a record without an age never
// satisfies ageMin or ageMax.
const AgeNulls = NullFails

// Clause is one conjunct of a Predicate.
type Clause struct {
	Kind   Kind
	Field  Field
	Fields []Field
	Values []string
	// Bound holds an int for FieldAge and a domain.Date for FieldDate.
	Bound interface{}
	Nulls NullPolicy
	Text  string
}

// SearchFields are matched by the free-text search, OR-combined.
var SearchFields = []Field{FieldCustomerName, FieldTransactionID, FieldCustomerID}

// Predicate is an AND of clauses. The zero Predicate matches every record.
type Predicate struct {
	clauses []Clause
}

// Build converts a normalized filter set into a Predicate. The same filter
// set always yields an equal predicate.
func Build(f Filters) Predicate {
	var clauses []Clause

	in := func(field Field, values []string) {
		if len(values) == 0 {
			return
		}
		clauses = append(clauses, Clause{Kind: KindIn, Field: field, Values: append([]string(nil), values...)})
	}
	in(FieldRegion, f.Regions)
	in(FieldGender, f.Genders)
	in(FieldCategory, f.Categories)

	if f.AgeMin != nil {
		clauses = append(clauses, Clause{Kind: KindAtLeast, Field: FieldAge, Bound: *f.AgeMin, Nulls: AgeNulls})
	}
	if f.AgeMax != nil {
		clauses = append(clauses, Clause{Kind: KindAtMost, Field: FieldAge, Bound: *f.AgeMax, Nulls: AgeNulls})
	}
	if f.DateStart != nil {
		clauses = append(clauses, Clause{Kind: KindAtLeast, Field: FieldDate, Bound: *f.DateStart})
	}
	if f.DateEnd != nil {
		clauses = append(clauses, Clause{Kind: KindAtMost, Field: FieldDate, Bound: *f.DateEnd})
	}
	if f.Search != "" {
		clauses = append(clauses, Clause{Kind: KindContains, Fields: SearchFields, Text: f.Search})
	}

	return Predicate{clauses: clauses}
}

// Clauses returns a copy of the predicate's conjuncts in build order.
func (p Predicate) Clauses() []Clause {
	return append([]Clause(nil), p.clauses...)
}

// IsEmpty reports whether the predicate matches every record.
func (p Predicate) IsEmpty() bool {
	return len(p.clauses) == 0
}

// Match evaluates the predicate against one record.
func (p Predicate) Match(t *domain.Transaction) bool {
	for _, c := range p.clauses {
		if !c.Match(t) {
			return false
		}
	}
	return true
}

// String renders a stable description used as a log field.
func (p Predicate) String() string {
	if len(p.clauses) == 0 {
		return "all"
	}
	parts := make([]string, 0, len(p.clauses))
	for _, c := range p.clauses {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " AND ")
}

func (c Clause) String() string {
	switch c.Kind {
	case KindIn:
		return fmt.Sprintf("%s in [%s]", c.Field, strings.Join(c.Values, ","))
	case KindAtLeast, KindAtMost:
		return fmt.Sprintf("%s %s %v", c.Field, c.Kind, c.Bound)
	case KindContains:
		names := make([]string, 0, len(c.Fields))
		for _, f := range c.Fields {
			names = append(names, string(f))
		}
		return fmt.Sprintf("(%s) contains %q", strings.Join(names, "|"), c.Text)
	}
	return c.Kind.String()
}

// Match evaluates a single clause.
func (c Clause) Match(t *domain.Transaction) bool {
	switch c.Kind {
	case KindIn:
		v, ok := stringField(t, c.Field)
		if !ok {
			return false
		}
		for _, allowed := range c.Values {
			if v == allowed {
				return true
			}
		}
		return false
	case KindAtLeast, KindAtMost:
		cmp, ok := compareBound(t, c.Field, c.Bound)
		if !ok {
			return c.Nulls == NullPasses
		}
		if c.Kind == KindAtLeast {
			return cmp >= 0
		}
		return cmp <= 0
	case KindContains:
		needle := strings.ToLower(c.Text)
		for _, f := range c.Fields {
			if v, ok := stringField(t, f); ok && strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
		return false
	}
	return false
}

// compareBound compares the record's field with bound; ok is false when the
// field is NULL or the bound has the wrong type for the field.
func compareBound(t *domain.Transaction, f Field, bound interface{}) (int, bool) {
	switch f {
	case FieldAge:
		b, isInt := bound.(int)
		if !isInt || t.Age == nil {
			return 0, false
		}
		return compareInts(*t.Age, b), true
	case FieldDate:
		b, isDate := bound.(domain.Date)
		if !isDate || t.Date.IsZero() {
			return 0, false
		}
		return t.Date.Compare(b), true
	}
	return 0, false
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
