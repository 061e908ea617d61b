package books

import (
	"encoding/json"

	"github.com/5w1tchy/book-catalog-api/internal/models"
	"github.com/5w1tchy/book-catalog-api/internal/validate"
)

// Pointer fields let "missing" be told apart from zero values.
type createBookRequest struct {
	Title         *string `json:"title" validate:"required,min=1"`
	Author        *string `json:"author" validate:"required,min=1"`
	PublishedYear *int    `json:"published_year" validate:"required,gt=0,notfuture"`
	Summary       *string `json:"summary"`
}

func (r createBookRequest) model() models.BookCreate {
	return models.BookCreate{
		Title:         validate.Normalize(*r.Title),
		Author:        validate.Normalize(*r.Author),
		PublishedYear: *r.PublishedYear,
		Summary:       normalizePtr(r.Summary),
	}
}

// A JSON null leaves a required field untouched; on summary it clears it.
type updateBookRequest struct {
	Title         *string      `json:"title" validate:"omitnil,min=1"`
	Author        *string      `json:"author" validate:"omitnil,min=1"`
	PublishedYear *int         `json:"published_year" validate:"omitnil,gt=0,notfuture"`
	Summary       optionalText `json:"summary"`
}

func (r updateBookRequest) model() models.BookUpdate {
	return models.BookUpdate{
		Title:         normalizePtr(r.Title),
		Author:        normalizePtr(r.Author),
		PublishedYear: r.PublishedYear,
		Summary:       normalizePtr(r.Summary.value),
		ClearSummary:  r.Summary.set && r.Summary.value == nil,
	}
}

// optionalText tells an absent key (set=false) from an explicit null
// (set=true, value=nil).
type optionalText struct {
	set   bool
	value *string
}

func (o *optionalText) UnmarshalJSON(b []byte) error {
	o.set = true
	if string(b) == "null" {
		o.value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.value = &s
	return nil
}

func normalizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	n := validate.Normalize(*s)
	return &n
}
