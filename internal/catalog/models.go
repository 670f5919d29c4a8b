package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Genre struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GenreRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Book struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Writer          string          `json:"writer"`
	Publisher       string          `json:"publisher"`
	PublicationYear int             `json:"publication_year"`
	Description     *string         `json:"description"`
	Price           decimal.Decimal `json:"price"`
	StockQuantity   int             `json:"stock_quantity"`
	GenreID         int64           `json:"genre_id"`
	Genre           GenreRef        `json:"genre"`
	TotalSold       int64           `json:"total_sold"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type NewBook struct {
	Title           string          `json:"title"`
	Writer          string          `json:"writer"`
	Publisher       string          `json:"publisher"`
	PublicationYear int             `json:"publication_year"`
	Description     *string         `json:"description"`
	Price           decimal.Decimal `json:"price"`
	StockQuantity   int             `json:"stock_quantity"`
	GenreID         int64           `json:"genre_id"`
}

// BookPatch is a partial update. Nil fields are left untouched, so a price edit never
// rewrites stock_quantity.
type BookPatch struct {
	Title           *string          `json:"title"`
	Writer          *string          `json:"writer"`
	Publisher       *string          `json:"publisher"`
	PublicationYear *int             `json:"publication_year"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	StockQuantity   *int             `json:"stock_quantity"`
	GenreID         *int64           `json:"genre_id"`
}

type Page struct {
	Books      []Book `json:"books"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
}
