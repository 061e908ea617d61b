package models

// Book is a persisted catalog entry.
type Book struct {
	ID            int64   `json:"id" db:"id"`
	Title         string  `json:"title" db:"title"`
	Author        string  `json:"author" db:"author"`
	PublishedYear int     `json:"published_year" db:"published_year"`
	Summary       *string `json:"summary" db:"summary"`
}

// BookCreate is the validated input for inserting a book.
type BookCreate struct {
	Title         string
	Author        string
	PublishedYear int
	Summary       *string
}

// BookUpdate carries only the fields a caller supplied; nil means untouched.
// ClearSummary sets the summary to null and wins over Summary.
type BookUpdate struct {
	Title         *string
	Author        *string
	PublishedYear *int
	Summary       *string
	ClearSummary  bool
}

// Empty reports whether the update changes nothing.
func (u BookUpdate) Empty() bool {
	return u.Title == nil && u.Author == nil && u.PublishedYear == nil && u.Summary == nil && !u.ClearSummary
}
