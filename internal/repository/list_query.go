package repository

import (
	"fmt"
	"strings"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// listQuery accumulates WHERE conditions with positional arguments.
type listQuery struct {
	conditions []string
	args       []interface{}
}

// where appends a condition. Every %d in cond is replaced by the placeholder of arg.
func (q *listQuery) where(cond string, arg interface{}) {
	q.args = append(q.args, arg)
	n := strings.Count(cond, "%d")
	idx := make([]interface{}, n)
	for i := range idx {
		idx[i] = len(q.args)
	}
	q.conditions = append(q.conditions, fmt.Sprintf(cond, idx...))
}

// search appends a case-insensitive LIKE over every column, matching any of them.
func (q *listQuery) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE $%%d", col)
	}
	q.where("("+strings.Join(parts, " OR ")+")", "%"+strings.ToLower(term)+"%")
}

func (q *listQuery) clause() string {
	if len(q.conditions) == 0 {
		return ""
	}
	return " AND " + strings.Join(q.conditions, " AND ")
}

// orderBy resolves a whitelisted sort column. Unknown columns fall back to fallback, which may
// list several columns.
func orderBy(sortBy, sortOrder string, allowed map[string]string, fallback string) string {
	order := strings.ToUpper(sortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	column, ok := allowed[sortBy]
	if !ok {
		cols := strings.Split(fallback, ",")
		for i, c := range cols {
			cols[i] = strings.TrimSpace(c) + " " + order
		}
		return strings.Join(cols, ", ")
	}
	return column + " " + order
}

// pageBounds normalises page and size into LIMIT and OFFSET.
func pageBounds(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	return size, (page - 1) * size
}
