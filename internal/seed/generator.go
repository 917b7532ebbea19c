// Package seed generates sample sales transactions for local databases and demos.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"salesledger/pkg/domain"
)

type customer struct {
	id    string
	name  string
	phone string
}

type product struct {
	id       string
	category string
}

var customers = []customer{
	{"CUST12016", "Neha Yadav", "+91 9123456789"},
	{"CUST12017", "Rahul Sharma", "+91 9234567890"},
	{"CUST12018", "Priya Singh", "+91 9345678901"},
	{"CUST12019", "Amit Patel", "+91 9456789012"},
	{"CUST12020", "Sneha Gupta", "+91 9567890123"},
	{"CUST12021", "Vikram Reddy", "+91 9678901234"},
	{"CUST12022", "Anjali Nair", "+91 9789012345"},
	{"CUST12023", "Karthik Kumar", "+91 9890123456"},
	{"CUST12024", "Divya Menon", "+91 9901234567"},
	{"CUST12025", "Arjun Kapoor", "+91 9012345678"},
	{"CUST12026", "Meera Krishnan", "+91 9112345678"},
	{"CUST12027", "Suresh Iyer", "+91 9223456789"},
	{"CUST12028", "Lakshmi Prasad", "+91 9334567890"},
	{"CUST12029", "Ravi Verma", "+91 9445678901"},
	{"CUST12030", "Pooja Desai", "+91 9556789012"},
}

var products = []product{
	{"PROD0001", "Electronics"},
	{"PROD0002", "Electronics"},
	{"PROD0003", "Clothing"},
	{"PROD0004", "Clothing"},
	{"PROD0005", "Food & Beverages"},
	{"PROD0006", "Home & Garden"},
	{"PROD0007", "Sports & Outdoors"},
	{"PROD0008", "Beauty"},
	{"PROD0009", "Beauty"},
}

var (
	regions   = []string{"North", "South", "East", "West", "Central"}
	genders   = []string{"Male", "Female"}
	employees = []string{
		"Harsh Agrawal",
		"Priya Sharma",
		"Rohan Mehta",
		"Deepa Iyer",
		"Suresh Kumar",
		"Anita Joshi",
		"Vikram Malhotra",
		"Kavita Reddy",
	}
)

var (
	periodStart = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	periodDays  = 365
)

// Generate returns n transactions drawn from rng. Ids are TXN000000 upward;
// dates fall within 2023; quantity is 1..5 and the unit price 500..5499.
func Generate(n int, rng *rand.Rand) []*domain.Transaction {
	txs := make([]*domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		c := customers[rng.Intn(len(customers))]
		p := products[rng.Intn(len(products))]
		quantity := rng.Intn(5) + 1
		unitPrice := rng.Intn(5000) + 500
		age := rng.Intn(45) + 18

		txs = append(txs, &domain.Transaction{
			TransactionID:   fmt.Sprintf("TXN%06d", i),
			Date:            domain.DateOf(periodStart.AddDate(0, 0, rng.Intn(periodDays))),
			CustomerID:      c.id,
			CustomerName:    c.name,
			PhoneNumber:     strPtr(c.phone),
			Gender:          strPtr(genders[rng.Intn(len(genders))]),
			Age:             &age,
			ProductCategory: strPtr(p.category),
			Quantity:        quantity,
			TotalAmount:     decimal.NewFromInt(int64(unitPrice * quantity)),
			CustomerRegion:  strPtr(regions[rng.Intn(len(regions))]),
			ProductID:       strPtr(p.id),
			EmployeeName:    strPtr(employees[rng.Intn(len(employees))]),
		})
	}
	return txs
}

// Batches splits records into consecutive chunks of at most size records.
func Batches(records []*domain.Transaction, size int) [][]*domain.Transaction {
	if size <= 0 {
		size = len(records)
	}
	var out [][]*domain.Transaction
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		out = append(out, records[start:end])
	}
	return out
}

func strPtr(s string) *string {
	return &s
}
