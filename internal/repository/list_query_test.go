package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListQuerySearchReusesPlaceholder(t *testing.T) {
	var q listQuery
	q.where("is_active = $%d", true)
	q.search("Ann", "first_name", "last_name")

	assert.Equal(t, " AND is_active = $1 AND (LOWER(COALESCE(first_name, '')) LIKE $2 OR LOWER(COALESCE(last_name, '')) LIKE $2)", q.clause())
	assert.Equal(t, []interface{}{true, "%ann%"}, q.args)
}

func TestListQueryIgnoresBlankSearch(t *testing.T) {
	var q listQuery
	q.search("   ", "name")
	assert.Empty(t, q.clause())
	assert.Empty(t, q.args)
}

func TestOrderByWhitelist(t *testing.T) {
	allowed := map[string]string{"name": "c.name"}
	assert.Equal(t, "c.name DESC", orderBy("name", "desc", allowed, "c.class_code"))
	assert.Equal(t, "last_name ASC, first_name ASC", orderBy("password; DROP", "", allowed, "last_name, first_name"))
}

func TestPageBounds(t *testing.T) {
	limit, offset := pageBounds(3, 10)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, offset = pageBounds(0, 1000)
	assert.Equal(t, defaultPageSize, limit)
	assert.Equal(t, 0, offset)
}
