package router

import (
	"net/http"

	"github.com/5w1tchy/book-catalog-api/internal/api/apperr"
	"github.com/5w1tchy/book-catalog-api/internal/api/envelope"
	"github.com/5w1tchy/book-catalog-api/internal/api/handlers"
	"github.com/5w1tchy/book-catalog-api/internal/api/handlers/books"
	"github.com/5w1tchy/book-catalog-api/internal/api/httpx"
	"github.com/julienschmidt/httprouter"
)

// APIPrefix is the version prefix every resource route lives under.
const APIPrefix = "/api/v1"

type Deps struct {
	Translator apperr.Translator
	Books      *books.Handler
	Health     httpx.HandlerFunc
}

func Router(d Deps) http.Handler {
	r := httprouter.New()
	r.RedirectTrailingSlash = true
	r.RedirectFixedPath = false
	r.NotFound = httpx.Handle(d.Translator, notFound)
	r.MethodNotAllowed = httpx.Handle(d.Translator, methodNotAllowed)

	handle := func(method, path string, h httpx.HandlerFunc) {
		r.Handler(method, path, httpx.Handle(d.Translator, h))
	}

	// Root
	handle(http.MethodGet, "/", handlers.Root)
	if d.Health != nil {
		handle(http.MethodGet, "/healthz", d.Health)
	}

	// Books; /api/v1/books redirects to the trailing-slash form
	handle(http.MethodPost, APIPrefix+"/books/", d.Books.Create)
	handle(http.MethodGet, APIPrefix+"/books/", d.Books.List)
	handle(http.MethodGet, APIPrefix+"/books/:book_id", d.Books.Get)
	handle(http.MethodPatch, APIPrefix+"/books/:book_id", d.Books.Update)
	handle(http.MethodDelete, APIPrefix+"/books/:book_id", d.Books.Delete)

	return r
}

func notFound(*http.Request) (envelope.Response, error) {
	return envelope.NotFound("Route"), nil
}

func methodNotAllowed(r *http.Request) (envelope.Response, error) {
	return envelope.Error("Method not allowed", http.StatusMethodNotAllowed,
		envelope.Msg("The "+r.Method+" method is not supported for this resource")), nil
}
