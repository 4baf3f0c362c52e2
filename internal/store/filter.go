package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shopadmin/internal/model"
)

// Clause is one typed predicate over products. Clauses are accumulated on
// a ProductQuery and compiled to SQL once, so each branch of the filter
// surface is independently testable.
type Clause interface {
	compile() (cond string, args []any)
}

// PriceRange constrains the price to [Min, Max]; either bound may be nil.
// Min > Max is accepted and simply matches nothing.
type PriceRange struct {
	Min, Max *decimal.Decimal
}

func (c PriceRange) compile() (string, []any) {
	var conds []string
	var args []any
	if c.Min != nil {
		conds = append(conds, "p.price >= ?")
		args = append(args, c.Min.InexactFloat64())
	}
	if c.Max != nil {
		conds = append(conds, "p.price <= ?")
		args = append(args, c.Max.InexactFloat64())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return strings.Join(conds, " AND "), args
}

// CategoryIn constrains products to the given category IDs. An empty set
// matches nothing: the caller resolved names and found none, which is an
// empty result, not an error.
type CategoryIn struct {
	IDs []int64
}

func (c CategoryIn) compile() (string, []any) {
	if len(c.IDs) == 0 {
		return "1 = 0", nil
	}
	args := make([]any, len(c.IDs))
	for i, id := range c.IDs {
		args[i] = id
	}
	return "p.category_id IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(c.IDs)), ", ") + ")", args
}

// TextMatch matches the text case-insensitively as a substring of the
// product name or description. Blank text compiles to no condition.
type TextMatch struct {
	Text string
}

func (c TextMatch) compile() (string, []any) {
	text := strings.ToLower(strings.TrimSpace(c.Text))
	if text == "" {
		return "", nil
	}
	// instr instead of LIKE so the text needs no wildcard escaping.
	return "(instr(lower(p.name), ?) > 0 OR instr(lower(p.description), ?) > 0)", []any{text, text}
}

// Sort directions for ProductQuery, by price.
type SortDirection string

const (
	SortNone      SortDirection = ""
	SortPriceAsc  SortDirection = "asc"
	SortPriceDesc SortDirection = "desc"
)

// ProductQuery accumulates filter clauses and a sort direction.
type ProductQuery struct {
	clauses []Clause
	sort    SortDirection
}

func NewProductQuery() *ProductQuery {
	return &ProductQuery{}
}

// Where adds a clause. Clauses combine with AND.
func (q *ProductQuery) Where(c Clause) *ProductQuery {
	q.clauses = append(q.clauses, c)
	return q
}

// SortByPrice sets the price sort direction. SortNone keeps store order.
func (q *ProductQuery) SortByPrice(d SortDirection) *ProductQuery {
	q.sort = d
	return q
}

// Compile renders the accumulated clauses to a WHERE fragment (without the
// keyword, empty when unconstrained), its arguments, and an ORDER BY
// fragment.
func (q *ProductQuery) Compile() (where string, args []any, orderBy string) {
	var conds []string
	for _, c := range q.clauses {
		cond, clauseArgs := c.compile()
		if cond == "" {
			continue
		}
		conds = append(conds, cond)
		args = append(args, clauseArgs...)
	}
	where = strings.Join(conds, " AND ")

	switch q.sort {
	case SortPriceAsc:
		orderBy = "ORDER BY p.price ASC, p.id"
	case SortPriceDesc:
		orderBy = "ORDER BY p.price DESC, p.id"
	default:
		orderBy = "ORDER BY p.id"
	}
	return where, args, orderBy
}

// FilterProducts runs a compiled query and returns matching products with
// categories and image refs resolved. No matches is a valid empty result.
func FilterProducts(ctx context.Context, db *sql.DB, q *ProductQuery) ([]model.Product, error) {
	where, args, orderBy := q.Compile()

	query := `SELECT ` + productColumns + `
	 FROM products p JOIN categories c ON c.id = p.category_id`
	if where != "" {
		query += " WHERE " + where
	}
	query += " " + orderBy

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filtering products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p := model.Product{Category: &model.Category{}}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID,
			&p.Category.Name, &p.Category.CreatedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		p.Category.ID = p.CategoryID
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range products {
		refs, err := getImageRefs(ctx, db, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].ImageRefs = refs
	}
	return products, nil
}
