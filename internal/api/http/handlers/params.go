package handlers

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mechanic-shop/internal/repository"
	apperrors "github.com/spec-kit/mechanic-shop/pkg/util/errorutil"
)

// Pagination bounds for list endpoints. MaxPage keeps the row offset from
// overflowing int.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	MaxPage        = math.MaxInt32 / MaxPerPage
)

// pageFromQuery reads ?page= (1-based) and ?per_page=.
func pageFromQuery(c *fiber.Ctx) repository.Page {
	page := parseInt(c.Query("page"), 1)
	perPage := parseInt(c.Query("per_page"), DefaultPerPage)
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	return repository.Page{Limit: perPage, Offset: (page - 1) * perPage}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

// idParam parses a positive integer path parameter. Anything else cannot
// name a row, so it is reported as resource not found.
func idParam(c *fiber.Ctx, name, resource string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound(resource, nil)
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}
