package database

import (
	"fmt"
	"strings"
)

// updateBuilder assembles "UPDATE ... SET" statements from the columns a
// caller explicitly sets. Callers iterate their own allow-list, so a column
// never reaches the statement unless the repository names it.
type updateBuilder struct {
	table   string
	updates []string
	args    []interface{}
}

func newUpdateBuilder(table string) *updateBuilder {
	return &updateBuilder{table: table}
}

// set appends "column = $n"
func (b *updateBuilder) set(column string, value interface{}) {
	b.args = append(b.args, value)
	b.updates = append(b.updates, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *updateBuilder) empty() bool {
	return len(b.updates) == 0
}

// build returns the statement and args, keyed by idColumn = idValue.
// touch adds "updated_at = NOW()".
func (b *updateBuilder) build(idColumn string, idValue interface{}, touch bool) (string, []interface{}) {
	updates := b.updates
	if touch {
		updates = append(updates[:len(updates):len(updates)], "updated_at = NOW()")
	}
	args := append(b.args[:len(b.args):len(b.args)], idValue)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d", b.table, strings.Join(updates, ", "), idColumn, len(args))
	return query, args
}

// whereBuilder collects AND-ed filter conditions with positional args
type whereBuilder struct {
	conditions []string
	args       []interface{}
}

// add appends a condition; format must contain a single %d for the placeholder index
func (w *whereBuilder) add(format string, value interface{}) {
	w.args = append(w.args, value)
	w.conditions = append(w.conditions, fmt.Sprintf(format, len(w.args)))
}

func (w *whereBuilder) sql() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the clause with its full arg list
func (w *whereBuilder) page(limit, offset int) (string, []interface{}) {
	args := append(w.args[:len(w.args):len(w.args)], limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}
