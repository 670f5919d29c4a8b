package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

var sortClauses = map[string]string{
	"title-asc":  "b.title ASC",
	"title-desc": "b.title DESC",
	"price-asc":  "b.price ASC, b.title ASC",
	"price-desc": "b.price DESC, b.title ASC",
	"sold-asc":   "total_sold ASC, b.title ASC",
	"sold-desc":  "total_sold DESC, b.title ASC",
}

type ListParams struct {
	Page    int
	Limit   int
	GenreID int64
	Search  string
	Sort    string
}

func (p ListParams) offset() int { return (p.Page - 1) * p.Limit }

func (p ListParams) orderBy() string {
	if c, ok := sortClauses[p.Sort]; ok {
		return c
	}
	return sortClauses["title-asc"]
}

// ParseListParams reads page, limit, genre_id, search and sort from a query string.
func ParseListParams(q url.Values) (ListParams, error) {
	p := ListParams{Page: 1, Limit: DefaultLimit, Search: strings.TrimSpace(q.Get("search")), Sort: q.Get("sort")}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return ListParams{}, fmt.Errorf("%w: page must be a positive integer", ErrInvalidInput)
		}
		p.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxLimit {
			return ListParams{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxLimit)
		}
		p.Limit = n
	}
	if v := q.Get("genre_id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return ListParams{}, fmt.Errorf("%w: genre_id must be a positive integer", ErrInvalidInput)
		}
		p.GenreID = n
	}
	if p.Sort != "" {
		if _, ok := sortClauses[p.Sort]; !ok {
			return ListParams{}, fmt.Errorf("%w: unknown sort %q", ErrInvalidInput, p.Sort)
		}
	}
	return p, nil
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// likePattern matches s anywhere, with LIKE wildcards in s taken literally.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func validateNewBook(b NewBook) error {
	switch {
	case strings.TrimSpace(b.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case strings.TrimSpace(b.Writer) == "":
		return fmt.Errorf("%w: writer is required", ErrInvalidInput)
	case strings.TrimSpace(b.Publisher) == "":
		return fmt.Errorf("%w: publisher is required", ErrInvalidInput)
	case b.GenreID < 1:
		return fmt.Errorf("%w: genre_id is required", ErrInvalidInput)
	}
	if err := validateYear(b.PublicationYear); err != nil {
		return err
	}
	if err := validatePrice(b.Price); err != nil {
		return err
	}
	return validateStock(b.StockQuantity)
}

func validatePatch(p BookPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
	}
	if p.Writer != nil && strings.TrimSpace(*p.Writer) == "" {
		return fmt.Errorf("%w: writer must not be empty", ErrInvalidInput)
	}
	if p.Publisher != nil && strings.TrimSpace(*p.Publisher) == "" {
		return fmt.Errorf("%w: publisher must not be empty", ErrInvalidInput)
	}
	if p.GenreID != nil && *p.GenreID < 1 {
		return fmt.Errorf("%w: genre_id must be positive", ErrInvalidInput)
	}
	if p.PublicationYear != nil {
		if err := validateYear(*p.PublicationYear); err != nil {
			return err
		}
	}
	if p.Price != nil {
		if err := validatePrice(*p.Price); err != nil {
			return err
		}
	}
	if p.StockQuantity != nil {
		return validateStock(*p.StockQuantity)
	}
	return nil
}

func validateYear(y int) error {
	if y < 1 || y > time.Now().Year()+1 {
		return fmt.Errorf("%w: publication_year out of range", ErrInvalidInput)
	}
	return nil
}

func validatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if p.Exponent() < -2 && !p.Equal(p.Round(2)) {
		return fmt.Errorf("%w: price has more than two decimal places", ErrInvalidInput)
	}
	return nil
}

func validateStock(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: stock_quantity must not be negative", ErrInvalidInput)
	}
	return nil
}
