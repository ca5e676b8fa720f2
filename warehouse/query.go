package warehouse

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// MaxResults is the hard cap on rows returned by a passthrough query.
const MaxResults = 1000

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier rejects anything that is not a plain SQL identifier.
// Identifiers are interpolated into query text, so this is the only gate
// between caller input and the warehouse.
func ValidateIdentifier(name, kind string) error {
	if name == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}
	if len(name) > 63 {
		return fmt.Errorf("%s too long (maximum 63 characters)", kind)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%s may only contain letters, digits and underscores", kind)
	}
	return nil
}

// Query describes a read-only table query. Filter values travel as positional
// parameters; every identifier is validated before it reaches the SQL text.
type Query struct {
	Schema  string
	Table   string
	Columns []string
	Filters map[string]interface{}
	OrderBy string
	Limit   int
	Offset  int
}

// Build renders the query to SQL with positional placeholders and the
// matching argument slice. Only SELECT statements are ever produced.
func (q Query) Build() (string, []interface{}, error) {
	if err := ValidateIdentifier(q.Schema, "schema"); err != nil {
		return "", nil, err
	}
	if err := ValidateIdentifier(q.Table, "table"); err != nil {
		return "", nil, err
	}

	columns := "*"
	if len(q.Columns) > 0 {
		for _, col := range q.Columns {
			if err := ValidateIdentifier(col, "column"); err != nil {
				return "", nil, err
			}
		}
		columns = strings.Join(q.Columns, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s.%s", columns, q.Schema, q.Table)

	var args []interface{}
	if len(q.Filters) > 0 {
		// Deterministic order keeps the SQL stable for identical inputs.
		keys := make([]string, 0, len(q.Filters))
		for k := range q.Filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		conditions := make([]string, 0, len(keys))
		for _, col := range keys {
			if err := ValidateIdentifier(col, "filter column"); err != nil {
				return "", nil, err
			}
			args = append(args, q.Filters[col])
			conditions = append(conditions, fmt.Sprintf("%s = $%d", col, len(args)))
		}
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	if q.OrderBy != "" {
		if err := ValidateIdentifier(q.OrderBy, "order column"); err != nil {
			return "", nil, err
		}
		fmt.Fprintf(&sb, " ORDER BY %s", q.OrderBy)
	}

	limit := q.Limit
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}
	fmt.Fprintf(&sb, " LIMIT %d", limit)

	if q.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", q.Offset)
	}

	return sb.String(), args, nil
}
