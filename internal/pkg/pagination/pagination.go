package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/postcraft/core/internal/pkg/response"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Query holds parsed limit/offset parameters for incremental loading.
type Query struct {
	Limit  int
	Offset int
}

// FromContext extracts and validates limit/offset params from the request.
func FromContext(c *gin.Context) Query {
	limit := parseIntOr(c.DefaultQuery("limit", "20"), DefaultLimit)
	offset := parseIntOr(c.DefaultQuery("offset", "0"), 0)

	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Query{Limit: limit, Offset: offset}
}

// Meta builds the pagination metadata for a page of a total result set.
func (q Query) Meta(total int64) response.Pagination {
	return response.Pagination{
		Total:   total,
		Limit:   q.Limit,
		Offset:  q.Offset,
		HasMore: int64(q.Offset+q.Limit) < total,
	}
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
