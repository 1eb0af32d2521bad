package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition renders one predicate of a WHERE clause with $n placeholders.
type Condition interface {
	appendSQL(buf *strings.Builder, args *[]any)
}

type compareCondition struct {
	column string
	op     string
	value  any
}

func Eq(column string, value any) Condition {
	return compareCondition{column: column, op: "=", value: value}
}

func Lt(column string, value any) Condition {
	return compareCondition{column: column, op: "<", value: value}
}

func Gte(column string, value any) Condition {
	return compareCondition{column: column, op: ">=", value: value}
}

func Lte(column string, value any) Condition {
	return compareCondition{column: column, op: "<=", value: value}
}

func (c compareCondition) appendSQL(buf *strings.Builder, args *[]any) {
	*args = append(*args, c.value)
	buf.WriteString(c.column)
	buf.WriteString(" ")
	buf.WriteString(c.op)
	buf.WriteString(" ")
	buf.WriteString(placeholder(len(*args)))
}

type inCondition struct {
	column string
	values []any
}

func In[T any](column string, values []T) Condition {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return inCondition{column: column, values: out}
}

func (c inCondition) appendSQL(buf *strings.Builder, args *[]any) {
	if len(c.values) == 0 {
		buf.WriteString("1=0")
		return
	}
	buf.WriteString(c.column)
	buf.WriteString(" IN (")
	for i, v := range c.values {
		if i > 0 {
			buf.WriteString(", ")
		}
		*args = append(*args, v)
		buf.WriteString(placeholder(len(*args)))
	}
	buf.WriteString(")")
}

type notNullCondition struct {
	column string
}

func NotNull(column string) Condition {
	return notNullCondition{column: column}
}

func (c notNullCondition) appendSQL(buf *strings.Builder, _ *[]any) {
	buf.WriteString(c.column)
	buf.WriteString(" IS NOT NULL")
}

type SelectBuilder struct {
	columns  []string
	table    string
	where    []Condition
	distinct bool
	orderBy  []string
	limit    int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func SelectDistinct(columns ...string) *SelectBuilder {
	b := Select(columns...)
	b.distinct = true
	return b
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var buf strings.Builder
	buf.WriteString("SELECT ")
	if b.distinct {
		buf.WriteString("DISTINCT ")
	}
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(" FROM ")
	buf.WriteString(b.table)

	args := make([]any, 0, len(b.where))
	writeWhere(&buf, b.where, &args)
	if len(b.orderBy) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		buf.WriteString(" LIMIT ")
		buf.WriteString(strconv.Itoa(b.limit))
	}
	return buf.String(), args, nil
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete without where is not allowed")
	}
	var buf strings.Builder
	buf.WriteString("DELETE FROM ")
	buf.WriteString(b.table)
	args := make([]any, 0, len(b.where))
	writeWhere(&buf, b.where, &args)
	return buf.String(), args, nil
}

// UpsertBuilder renders a multi-row INSERT ... ON CONFLICT DO UPDATE where
// every non-key column takes the incoming value.
type UpsertBuilder struct {
	table      string
	columns    []string
	conflict   []string
	keepOnConf map[string]struct{}
	rows       [][]any
}

func Upsert(table string, conflictColumns ...string) *UpsertBuilder {
	return &UpsertBuilder{
		table:      table,
		conflict:   append([]string(nil), conflictColumns...),
		keepOnConf: make(map[string]struct{}),
	}
}

func (b *UpsertBuilder) Columns(columns ...string) *UpsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

// KeepExisting marks columns that are written on insert but left untouched on conflict.
func (b *UpsertBuilder) KeepExisting(columns ...string) *UpsertBuilder {
	for _, c := range columns {
		b.keepOnConf[c] = struct{}{}
	}
	return b
}

func (b *UpsertBuilder) Values(values ...any) *UpsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

func (b *UpsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("upsert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("upsert columns are required")
	}
	if len(b.conflict) == 0 {
		return "", nil, fmt.Errorf("upsert conflict columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("upsert values are required")
	}

	var buf strings.Builder
	buf.WriteString("INSERT INTO ")
	buf.WriteString(b.table)
	buf.WriteString(" (")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(") VALUES ")

	args := make([]any, 0, len(b.rows)*len(b.columns))
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("upsert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				buf.WriteString(", ")
			}
			args = append(args, value)
			buf.WriteString(placeholder(len(args)))
		}
		buf.WriteString(")")
	}

	buf.WriteString(" ON CONFLICT (")
	buf.WriteString(strings.Join(b.conflict, ", "))
	buf.WriteString(")")

	conflictSet := make(map[string]struct{}, len(b.conflict))
	for _, c := range b.conflict {
		conflictSet[c] = struct{}{}
	}
	updates := make([]string, 0, len(b.columns))
	for _, col := range b.columns {
		if _, ok := conflictSet[col]; ok {
			continue
		}
		if _, ok := b.keepOnConf[col]; ok {
			continue
		}
		updates = append(updates, col+" = EXCLUDED."+col)
	}
	if len(updates) == 0 {
		buf.WriteString(" DO NOTHING")
	} else {
		buf.WriteString(" DO UPDATE SET ")
		buf.WriteString(strings.Join(updates, ", "))
	}

	return buf.String(), args, nil
}

func writeWhere(buf *strings.Builder, conditions []Condition, args *[]any) {
	if len(conditions) == 0 {
		return
	}
	buf.WriteString(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			buf.WriteString(" AND ")
		}
		c.appendSQL(buf, args)
	}
}

func placeholder(i int) string {
	return "$" + strconv.Itoa(i)
}
