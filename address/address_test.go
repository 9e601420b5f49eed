package address

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 2*time.Second)
}

func regionPayload(items ...string) string {
	out := `{"data":[`
	for i, name := range items {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"id":%d,"value":%q}`, i+1, name)
	}
	return out + `]}`
}

func TestCascadingLookups(t *testing.T) {
	var gotPath, gotAuth string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, regionPayload("Jawa Timur", "Jawa Tengah"))
	})
	ctx := context.Background()

	t.Run("provinces", func(t *testing.T) {
		regions, err := c.Provinces(ctx)
		require.NoError(t, err)
		assert.Equal(t, "/province", gotPath)
		assert.Equal(t, "Bearer test-key", gotAuth)
		require.Len(t, regions, 2)
		assert.Equal(t, Region{ID: 1, Name: "Jawa Timur"}, regions[0])
	})

	t.Run("regencies by province", func(t *testing.T) {
		_, err := c.Regencies(ctx, 35)
		require.NoError(t, err)
		assert.Equal(t, "/city/35", gotPath)
	})

	t.Run("districts by regency", func(t *testing.T) {
		_, err := c.Districts(ctx, 3578)
		require.NoError(t, err)
		assert.Equal(t, "/sub_district/3578", gotPath)
	})

	t.Run("villages by district", func(t *testing.T) {
		_, err := c.Villages(ctx, 357801)
		require.NoError(t, err)
		assert.Equal(t, "/village/357801", gotPath)
	})
}

func TestLookupErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("upstream failure", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		})
		_, err := c.Provinces(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("missing data array", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"message":"ok"}`)
		})
		_, err := c.Provinces(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing data")
	})

	t.Run("invalid json", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `not json`)
		})
		_, err := c.Provinces(ctx)
		require.Error(t, err)
	})

	t.Run("empty list is valid", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":[]}`)
		})
		regions, err := c.Villages(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, regions)
	})
}
