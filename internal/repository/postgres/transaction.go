package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"salesledger/internal/query"
	"salesledger/pkg/domain"
	"salesledger/pkg/errors"
)

// TransactionRepository reads the sales ledger with plain SQL that runs on
// both Postgres and SQLite: `?` placeholders rebound per driver, LOWER/LIKE
// instead of ILIKE, and dates compared as YYYY-MM-DD.
//
// Search folds case with the database LOWER. On SQLite that covers ASCII
// only, so "émile" does not find "Émile"; the memory store and Postgres fold
// Unicode. Schemas for both live under migrations/<driver>.
type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
	id, transaction_id, date, customer_id, customer_name, phone_number, gender, age,
	product_category, quantity, total_amount, customer_region, product_id, employee_name`

var columns = map[query.Field]string{
	query.FieldTransactionID: "transaction_id",
	query.FieldDate:          "date",
	query.FieldCustomerID:    "customer_id",
	query.FieldCustomerName:  "customer_name",
	query.FieldGender:        "gender",
	query.FieldAge:           "age",
	query.FieldCategory:      "product_category",
	query.FieldQuantity:      "quantity",
	query.FieldAmount:        "total_amount",
	query.FieldRegion:        "customer_region",
}

func column(f query.Field) (string, error) {
	col, ok := columns[f]
	if !ok {
		return "", errors.Wrap(errors.ErrUnknownField, string(f))
	}
	return col, nil
}

// whereClause renders the predicate with `?` placeholders. IN clauses carry
// their values as a slice argument for sqlx.In to expand.
func whereClause(pred query.Predicate) (string, []interface{}, error) {
	var (
		conds []string
		args  []interface{}
	)

	for _, c := range pred.Clauses() {
		switch c.Kind {
		case query.KindIn:
			col, err := column(c.Field)
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, col+" IN (?)")
			args = append(args, c.Values)

		case query.KindAtLeast, query.KindAtMost:
			col, err := column(c.Field)
			if err != nil {
				return "", nil, err
			}
			op := ">="
			if c.Kind == query.KindAtMost {
				op = "<="
			}
			cond := fmt.Sprintf("%s %s ?", col, op)
			// SQL comparisons with NULL are never true, which is NullFails.
			if c.Nulls == query.NullPasses {
				cond = fmt.Sprintf("(%s IS NULL OR %s)", col, cond)
			}
			conds = append(conds, cond)
			args = append(args, c.Bound)

		case query.KindContains:
			pattern := "%" + escapeLike(strings.ToLower(c.Text)) + "%"
			ors := make([]string, 0, len(c.Fields))
			for _, f := range c.Fields {
				col, err := column(f)
				if err != nil {
					return "", nil, err
				}
				ors = append(ors, fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col))
				args = append(args, pattern)
			}
			conds = append(conds, "("+strings.Join(ors, " OR ")+")")

		default:
			return "", nil, fmt.Errorf("unsupported clause kind %d", c.Kind)
		}
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func orderClause(order query.Order) (string, error) {
	col, err := column(order.Field)
	if err != nil {
		return "", err
	}
	tie, err := column(query.TieBreaker)
	if err != nil {
		return "", err
	}
	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, %s ASC", col, dir, tie), nil
}

// bind expands slice arguments and rewrites placeholders for the driver.
func (r *TransactionRepository) bind(q string, args []interface{}) (string, []interface{}, error) {
	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return "", nil, err
	}
	return r.db.Rebind(q), args, nil
}

func (r *TransactionRepository) Select(ctx context.Context, pred query.Predicate, order query.Order, offset, limit int) ([]*domain.Transaction, error) {
	where, args, err := whereClause(pred)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build transaction filter")
	}
	orderBy, err := orderClause(order)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build transaction order")
	}

	q := "SELECT " + transactionColumns + " FROM transactions" + where + orderBy + " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	q, args, err = r.bind(q, args)
	if err != nil {
		return nil, errors.Wrap(err, "failed to bind transaction query")
	}

	txs := []*domain.Transaction{}
	if err := r.db.SelectContext(ctx, &txs, q, args...); err != nil {
		return nil, errors.Wrap(err, "failed to select transactions")
	}
	return txs, nil
}

func (r *TransactionRepository) Count(ctx context.Context, pred query.Predicate) (int, error) {
	where, args, err := whereClause(pred)
	if err != nil {
		return 0, errors.Wrap(err, "failed to build transaction filter")
	}

	q, args, err := r.bind("SELECT COUNT(*) FROM transactions"+where, args)
	if err != nil {
		return 0, errors.Wrap(err, "failed to bind count query")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, q, args...); err != nil {
		return 0, errors.Wrap(err, "failed to count transactions")
	}
	return total, nil
}

func (r *TransactionRepository) Sum(ctx context.Context, pred query.Predicate) (query.Totals, error) {
	where, args, err := whereClause(pred)
	if err != nil {
		return query.Totals{}, errors.Wrap(err, "failed to build transaction filter")
	}

	q := `
		SELECT
			COALESCE(SUM(quantity), 0) AS total_units,
			COALESCE(SUM(total_amount), 0) AS total_amount,
			COUNT(*) AS transaction_count
		FROM transactions` + where

	q, args, err = r.bind(q, args)
	if err != nil {
		return query.Totals{}, errors.Wrap(err, "failed to bind stats query")
	}

	var totals query.Totals
	if err := r.db.GetContext(ctx, &totals, q, args...); err != nil {
		return query.Totals{}, errors.Wrap(err, "failed to aggregate transactions")
	}
	return totals, nil
}

func (r *TransactionRepository) Distinct(ctx context.Context, field query.Field) ([]string, error) {
	col, err := column(field)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		SELECT DISTINCT %[1]s
		FROM transactions
		WHERE %[1]s IS NOT NULL AND %[1]s <> ''
		ORDER BY %[1]s ASC`, col)

	values := []string{}
	if err := r.db.SelectContext(ctx, &values, q); err != nil {
		return nil, errors.Wrap(err, "failed to list distinct "+col)
	}
	return values, nil
}

func (r *TransactionRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return errors.Wrap(errors.ErrStoreUnavailable, err.Error())
	}
	return nil
}

const insertTransactionQuery = `
	INSERT INTO transactions (
		transaction_id, date, customer_id, customer_name, phone_number, gender, age,
		product_category, quantity, total_amount, customer_region, product_id, employee_name
	) VALUES (
		:transaction_id, :date, :customer_id, :customer_name, :phone_number, :gender, :age,
		:product_category, :quantity, :total_amount, :customer_region, :product_id, :employee_name
	)`

// InsertBatch writes records in one multi-row insert inside a transaction.
// Only ingestion tooling calls it.
func (r *TransactionRepository) InsertBatch(ctx context.Context, records []*domain.Transaction) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin insert")
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertTransactionQuery, records); err != nil {
		return errors.Wrap(err, "failed to insert transactions")
	}

	return errors.Wrap(tx.Commit(), "failed to commit insert")
}

func (r *TransactionRepository) CountAll(ctx context.Context) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM transactions`)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count transactions")
	}
	return total, nil
}
