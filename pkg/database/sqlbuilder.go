package database

import (
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// Excluded references the proposed row inside an upsert's update clause
func Excluded(column string) string {
	return fmt.Sprintf("EXCLUDED.%s", column)
}

// NewInsertBuilder returns an insert builder using postgres placeholders
func NewInsertBuilder() *sqlbuilder.InsertBuilder {
	return sqlbuilder.PostgreSQL.NewInsertBuilder()
}

func NewSelectBuilder() *sqlbuilder.SelectBuilder {
	return sqlbuilder.PostgreSQL.NewSelectBuilder()
}

func NewDeleteBuilder() *sqlbuilder.DeleteBuilder {
	return sqlbuilder.PostgreSQL.NewDeleteBuilder()
}

// Upsert appends ON CONFLICT (conflict) DO UPDATE SET col = EXCLUDED.col for
// every column in update
func Upsert(ib *sqlbuilder.InsertBuilder, conflict []string, update ...string) *sqlbuilder.InsertBuilder {
	sets := make([]string, len(update))
	for i, col := range update {
		sets[i] = fmt.Sprintf("%s = %s", col, Excluded(col))
	}
	ib.SQL(fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", strings.Join(conflict, ", "), strings.Join(sets, ", ")))
	return ib
}
