// Package warehouse provides read-only access to the HR datawarehouse over a
// connection separate from the application database. All queries are built by
// the whitelisting query builder in this package; nothing here ever writes.
package warehouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lookup matches no collaborator.
var ErrNotFound = errors.New("collaborator not found")

// CollaboratorColumns is the set of columns exposed by the passthrough
// endpoints. Anything outside this set is rejected before the query is built.
var CollaboratorColumns = map[string]bool{
	"user_id":                    true,
	"national_id":                true,
	"first_name":                 true,
	"last_name":                  true,
	"empl_status":                true,
	"corporate_email":            true,
	"cost_center":                true,
	"external_cod_position":      true,
	"external_cod_contract_type": true,
	"leader_name":                true,
	"accrued_leave_days":         true,
}

const collaboratorsTable = "collaborators"

type Client struct {
	pool   *pgxpool.Pool
	schema string
}

// Connect opens a pooled connection to the datawarehouse and verifies it.
func Connect(ctx context.Context, dsn, schema string) (*Client, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("warehouse connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("warehouse ping: %w", err)
	}
	if err := ValidateIdentifier(schema, "schema"); err != nil {
		pool.Close()
		return nil, err
	}
	return &Client{pool: pool, schema: schema}, nil
}

func (c *Client) Close() {
	c.pool.Close()
}

// CollaboratorQuery narrows a collaborator listing. Filter keys and the
// order-by column must appear in CollaboratorColumns.
type CollaboratorQuery struct {
	Columns []string
	Filters map[string]interface{}
	OrderBy string
	Limit   int
	Offset  int
}

// Collaborators runs a whitelisted listing query and returns rows as maps.
func (c *Client) Collaborators(ctx context.Context, q CollaboratorQuery) ([]map[string]interface{}, error) {
	for _, col := range q.Columns {
		if !CollaboratorColumns[col] {
			return nil, fmt.Errorf("unknown column %q", col)
		}
	}
	for col := range q.Filters {
		if !CollaboratorColumns[col] {
			return nil, fmt.Errorf("unknown filter column %q", col)
		}
	}
	if q.OrderBy != "" && !CollaboratorColumns[q.OrderBy] {
		return nil, fmt.Errorf("unknown order column %q", q.OrderBy)
	}

	sql, args, err := Query{
		Schema:  c.schema,
		Table:   collaboratorsTable,
		Columns: q.Columns,
		Filters: q.Filters,
		OrderBy: q.OrderBy,
		Limit:   q.Limit,
		Offset:  q.Offset,
	}.Build()
	if err != nil {
		return nil, err
	}

	rows, err := c.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("warehouse query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var result []map[string]interface{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("warehouse scan: %w", err)
		}
		record := make(map[string]interface{}, len(fields))
		for i, fd := range fields {
			record[string(fd.Name)] = values[i]
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

// CollaboratorByUserID returns a single collaborator record.
func (c *Client) CollaboratorByUserID(ctx context.Context, userID int) (map[string]interface{}, error) {
	records, err := c.Collaborators(ctx, CollaboratorQuery{
		Filters: map[string]interface{}{"user_id": userID},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records[0], nil
}

// AccruedLeaveDays reports the accrued vacation days for an employee. It
// satisfies services.AccruedLeaveSource so the warehouse can back the
// redemption eligibility policy.
func (c *Client) AccruedLeaveDays(ctx context.Context, userID int) (int, error) {
	sql, args, err := Query{
		Schema:  c.schema,
		Table:   collaboratorsTable,
		Columns: []string{"accrued_leave_days"},
		Filters: map[string]interface{}{"user_id": userID},
		Limit:   1,
	}.Build()
	if err != nil {
		return 0, err
	}

	var days int
	if err := c.pool.QueryRow(ctx, sql, args...).Scan(&days); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("warehouse query: %w", err)
	}
	return days, nil
}
