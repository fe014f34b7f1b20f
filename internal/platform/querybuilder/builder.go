package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// Format selects how bind variables are rendered.
type Format int

const (
	// Question renders "?" (sqlite, mysql).
	Question Format = iota
	// Dollar renders "$1, $2, ..." (postgres).
	Dollar
)

// FormatForDriver maps a database/sql driver name to its bindvar format.
func FormatForDriver(driver string) Format {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "pgx", "cloudsqlpostgres", "cockroach":
		return Dollar
	default:
		return Question
	}
}

type statement struct {
	buf    strings.Builder
	args   []any
	format Format
}

func (s *statement) bind(value any) {
	s.args = append(s.args, value)
	if s.format == Dollar {
		s.buf.WriteString("$" + strconv.Itoa(len(s.args)))
		return
	}
	s.buf.WriteByte('?')
}

// expr writes raw SQL, binding exprArgs to its "?" markers in order.
// Markers beyond the supplied args are written as-is.
func (s *statement) expr(raw string, exprArgs []any) {
	if len(exprArgs) == 0 {
		s.buf.WriteString(raw)
		return
	}
	next := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == '?' && next < len(exprArgs) {
			s.bind(exprArgs[next])
			next++
			continue
		}
		s.buf.WriteByte(raw[i])
	}
}

type Condition interface {
	appendSQL(stmt *statement)
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) appendSQL(stmt *statement) {
	stmt.buf.WriteString(c.column)
	stmt.buf.WriteString(" = ")
	stmt.bind(c.value)
}

type inCondition struct {
	column string
	values []any
}

func In(column string, values []any) Condition {
	return inCondition{column: column, values: values}
}

// InStrings is In for a string slice.
func InStrings(column string, values []string) Condition {
	items := make([]any, 0, len(values))
	for _, v := range values {
		items = append(items, v)
	}
	return In(column, items)
}

func (c inCondition) appendSQL(stmt *statement) {
	if len(c.values) == 0 {
		stmt.buf.WriteString("1=0")
		return
	}

	stmt.buf.WriteString(c.column)
	stmt.buf.WriteString(" IN (")
	for i, v := range c.values {
		if i > 0 {
			stmt.buf.WriteString(", ")
		}
		stmt.bind(v)
	}
	stmt.buf.WriteString(")")
}

type notNullCondition struct {
	column string
}

func IsNotNull(column string) Condition {
	return notNullCondition{column: column}
}

func (c notNullCondition) appendSQL(stmt *statement) {
	stmt.buf.WriteString(c.column)
	stmt.buf.WriteString(" IS NOT NULL")
}

type exprCondition struct {
	expr string
	args []any
}

// Expr embeds a raw predicate; "?" markers bind args in order.
func Expr(expr string, args ...any) Condition {
	return exprCondition{expr: expr, args: args}
}

func (c exprCondition) appendSQL(stmt *statement) {
	stmt.expr(c.expr, c.args)
}

type anyCondition struct {
	conditions []Condition
}

// Or joins conditions with OR inside parentheses.
func Or(conditions ...Condition) Condition {
	return anyCondition{conditions: conditions}
}

func (c anyCondition) appendSQL(stmt *statement) {
	if len(c.conditions) == 0 {
		stmt.buf.WriteString("1=0")
		return
	}
	stmt.buf.WriteString("(")
	for i, cond := range c.conditions {
		if i > 0 {
			stmt.buf.WriteString(" OR ")
		}
		cond.appendSQL(stmt)
	}
	stmt.buf.WriteString(")")
}

type SelectBuilder struct {
	columns []string
	table   string
	joins   []string
	where   []Condition
	orderBy []string
	limit   int
	format  Format
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

// Join appends a raw join clause, e.g. "LEFT JOIN predictions p ON p.match_id = m.match_id".
func (b *SelectBuilder) Join(clause string) *SelectBuilder {
	b.joins = append(b.joins, strings.TrimSpace(clause))
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

func (b *SelectBuilder) Format(format Format) *SelectBuilder {
	b.format = format
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	stmt := &statement{format: b.format}
	stmt.buf.WriteString("SELECT ")
	stmt.buf.WriteString(strings.Join(b.columns, ", "))
	stmt.buf.WriteString(" FROM ")
	stmt.buf.WriteString(b.table)
	for _, join := range b.joins {
		stmt.buf.WriteString(" ")
		stmt.buf.WriteString(join)
	}

	appendWhereClause(stmt, b.where)
	appendListClause(stmt, " ORDER BY ", b.orderBy)
	if b.limit > 0 {
		stmt.buf.WriteString(" LIMIT ")
		stmt.buf.WriteString(strconv.Itoa(b.limit))
	}

	return stmt.buf.String(), stmt.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
	format  Format
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) Format(format Format) *InsertBuilder {
	b.format = format
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	stmt := &statement{format: b.format, args: make([]any, 0, len(b.rows)*len(b.columns))}
	stmt.buf.WriteString("INSERT INTO ")
	stmt.buf.WriteString(b.table)
	stmt.buf.WriteString(" (")
	stmt.buf.WriteString(strings.Join(b.columns, ", "))
	stmt.buf.WriteString(") VALUES ")

	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			stmt.buf.WriteString(", ")
		}
		stmt.buf.WriteString("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				stmt.buf.WriteString(", ")
			}
			stmt.bind(value)
		}
		stmt.buf.WriteString(")")
	}

	if b.suffix != "" {
		stmt.buf.WriteString(" ")
		stmt.buf.WriteString(b.suffix)
	}

	return stmt.buf.String(), stmt.args, nil
}

type setClause struct {
	column string
	value  any
	raw    *exprCondition
}

type UpdateBuilder struct {
	table  string
	sets   []setClause
	where  []Condition
	format Format
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, value: value})
	return b
}

func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, raw: &exprCondition{expr: expr, args: args}})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Format(format Format) *UpdateBuilder {
	b.format = format
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	stmt := &statement{format: b.format}
	stmt.buf.WriteString("UPDATE ")
	stmt.buf.WriteString(b.table)
	stmt.buf.WriteString(" SET ")

	for i, s := range b.sets {
		if i > 0 {
			stmt.buf.WriteString(", ")
		}
		stmt.buf.WriteString(s.column)
		stmt.buf.WriteString(" = ")
		if s.raw != nil {
			s.raw.appendSQL(stmt)
			continue
		}
		stmt.bind(s.value)
	}

	appendWhereClause(stmt, b.where)
	return stmt.buf.String(), stmt.args, nil
}

type DeleteBuilder struct {
	table  string
	where  []Condition
	format Format
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *DeleteBuilder) Format(format Format) *DeleteBuilder {
	b.format = format
	return b
}

func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete without where is not allowed")
	}

	stmt := &statement{format: b.format}
	stmt.buf.WriteString("DELETE FROM ")
	stmt.buf.WriteString(b.table)
	appendWhereClause(stmt, b.where)
	return stmt.buf.String(), stmt.args, nil
}

// OnConflictUpdate renders an upsert suffix understood by both sqlite and postgres.
// With no update columns it degrades to DO NOTHING.
func OnConflictUpdate(conflict []string, update []string) string {
	var buf strings.Builder
	buf.WriteString("ON CONFLICT (")
	buf.WriteString(strings.Join(conflict, ", "))
	buf.WriteString(")")
	if len(update) == 0 {
		buf.WriteString(" DO NOTHING")
		return buf.String()
	}
	buf.WriteString(" DO UPDATE SET ")
	for i, col := range update {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(col)
		buf.WriteString(" = excluded.")
		buf.WriteString(col)
	}
	return buf.String()
}

func appendWhereClause(stmt *statement, conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	stmt.buf.WriteString(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			stmt.buf.WriteString(" AND ")
		}
		c.appendSQL(stmt)
	}
}

func appendListClause(stmt *statement, keyword string, parts []string) {
	if len(parts) == 0 {
		return
	}
	stmt.buf.WriteString(keyword)
	stmt.buf.WriteString(strings.Join(parts, ", "))
}
