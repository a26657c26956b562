package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/mechanic-shop/internal/repository"
)

func TestPageFromQuery(t *testing.T) {
	var got repository.Page
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = pageFromQuery(c)
		return c.SendStatus(http.StatusNoContent)
	})

	cases := []struct {
		query string
		want  repository.Page
	}{
		{"", repository.Page{Limit: DefaultPerPage, Offset: 0}},
		{"?page=3&per_page=5", repository.Page{Limit: 5, Offset: 10}},
		{"?page=0&per_page=-1", repository.Page{Limit: DefaultPerPage, Offset: 0}},
		{"?per_page=1000", repository.Page{Limit: MaxPerPage, Offset: 0}},
		{"?page=abc", repository.Page{Limit: DefaultPerPage, Offset: 0}},
		{"?page=" + strconv.Itoa(int(^uint(0)>>1)) + "&per_page=100", repository.Page{Limit: MaxPerPage, Offset: (MaxPage - 1) * MaxPerPage}},
		{"?page=" + strconv.Itoa(MaxPage+1), repository.Page{Limit: DefaultPerPage, Offset: (MaxPage - 1) * DefaultPerPage}},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tc.query, nil))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tc.want, got)
			assert.GreaterOrEqual(t, got.Offset, 0)
		})
	}
}
