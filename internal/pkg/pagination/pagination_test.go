package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func queryFor(t *testing.T, rawQuery string) Query {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return FromContext(c)
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		raw    string
		limit  int
		offset int
	}{
		{"", DefaultLimit, 0},
		{"limit=5&offset=10", 5, 10},
		{"limit=0", DefaultLimit, 0},
		{"limit=500", MaxLimit, 0},
		{"limit=abc&offset=-3", DefaultLimit, 0},
	}
	for _, tc := range cases {
		q := queryFor(t, tc.raw)
		if q.Limit != tc.limit || q.Offset != tc.offset {
			t.Errorf("FromContext(%q) = %+v, want limit=%d offset=%d", tc.raw, q, tc.limit, tc.offset)
		}
	}
}

func TestMeta(t *testing.T) {
	meta := Query{Limit: 20, Offset: 40}.Meta(100)
	if !meta.HasMore {
		t.Error("expected HasMore with 40 more rows")
	}

	meta = Query{Limit: 20, Offset: 80}.Meta(100)
	if meta.HasMore {
		t.Error("expected HasMore=false on the last page")
	}
	if meta.Total != 100 {
		t.Errorf("Total = %d", meta.Total)
	}
}
