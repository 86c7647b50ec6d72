package querybuilder

import (
	"strconv"
	"strings"
)

// Condition renders one predicate, appending its bind values to args.
type Condition interface {
	render(w *writer)
}

// writer accumulates SQL text and numbered postgres placeholders.
type writer struct {
	sql  strings.Builder
	args []any
}

func (w *writer) bind(value any) {
	w.args = append(w.args, value)
	w.sql.WriteString("$")
	w.sql.WriteString(strconv.Itoa(len(w.args)))
}

// expr writes fragment, replacing each ? with the next bind value.
func (w *writer) expr(fragment string, values []any) {
	next := 0
	for i := 0; i < len(fragment); i++ {
		if fragment[i] == '?' && next < len(values) {
			w.bind(values[next])
			next++
			continue
		}
		w.sql.WriteByte(fragment[i])
	}
}

func (w *writer) where(conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.sql.WriteString(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			w.sql.WriteString(" AND ")
		}
		c.render(w)
	}
}

type compareCondition struct {
	column string
	op     string
	value  any
}

func (c compareCondition) render(w *writer) {
	w.sql.WriteString(c.column)
	w.sql.WriteString(" ")
	w.sql.WriteString(c.op)
	w.sql.WriteString(" ")
	w.bind(c.value)
}

func Eq(column string, value any) Condition {
	return compareCondition{column: column, op: "=", value: value}
}

func Gte(column string, value any) Condition {
	return compareCondition{column: column, op: ">=", value: value}
}

type inCondition struct {
	column string
	values []any
}

// In matches any of values. An empty list matches nothing.
func In(column string, values []any) Condition {
	return inCondition{column: column, values: values}
}

func (c inCondition) render(w *writer) {
	if len(c.values) == 0 {
		w.sql.WriteString("1=0")
		return
	}
	w.sql.WriteString(c.column)
	w.sql.WriteString(" IN (")
	for i, v := range c.values {
		if i > 0 {
			w.sql.WriteString(", ")
		}
		w.bind(v)
	}
	w.sql.WriteString(")")
}

type isNullCondition struct {
	column string
}

func IsNull(column string) Condition {
	return isNullCondition{column: column}
}

func (c isNullCondition) render(w *writer) {
	w.sql.WriteString(c.column)
	w.sql.WriteString(" IS NULL")
}

type exprCondition struct {
	fragment string
	args     []any
}

// Expr is a raw predicate using ? for bind values.
func Expr(fragment string, args ...any) Condition {
	return exprCondition{fragment: fragment, args: args}
}

func (c exprCondition) render(w *writer) {
	w.expr(c.fragment, c.args)
}
