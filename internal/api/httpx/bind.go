package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/5w1tchy/book-catalog-api/internal/validate"
	"github.com/julienschmidt/httprouter"
)

const intParsingMsg = "Input should be a valid integer, unable to parse string as an integer"

// BindJSON decodes the request body into dst and checks its validate tags.
// Decoding and constraint failures come back as *validate.Errors.
func BindJSON(r *http.Request, dst any) error {
	if err := DecodeJSON(r, dst); err != nil {
		return err
	}
	return validate.Struct("", dst)
}

// DecodeJSON reads exactly one JSON object from the body. Keys dst does not
// declare are ignored.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return validate.Fail("body", "Field required", "missing")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return validate.Fail("body", "JSON decode error: body must contain a single JSON value", "json_invalid")
	}
	return nil
}

func decodeError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return err
	case errors.Is(err, io.EOF):
		return validate.Fail("body", "Field required", "missing")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return validate.Fail("body", "JSON decode error", "json_invalid")
	case errors.As(err, &typeErr):
		return typeViolation(typeErr)
	default:
		return validate.Fail("body", "JSON decode error", "json_invalid")
	}
}

func typeViolation(e *json.UnmarshalTypeError) *validate.Errors {
	if e.Field == "" {
		return validate.Fail("body", "Input should be a valid dictionary or object", "model_attributes_type")
	}
	switch e.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return validate.Fail(e.Field, "Input should be a valid integer", "int_type")
	case reflect.String:
		return validate.Fail(e.Field, "Input should be a valid string", "string_type")
	default:
		return validate.Fail(e.Field, "Input should be a valid "+e.Type.String(), "type_error")
	}
}

// PathInt64 reads an integer route parameter.
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := httprouter.ParamsFromContext(r.Context()).ByName(name)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, validate.Fail("path."+name, intParsingMsg, "int_parsing")
	}
	return n, nil
}

// QueryInt reads an optional integer query parameter, def when absent.
func QueryInt(q url.Values, name string, def int) (int, *validate.Errors) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validate.Fail("query."+name, intParsingMsg, "int_parsing")
	}
	return n, nil
}

// Page is an offset window over an ordered listing.
type Page struct {
	Skip  int `json:"skip" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=1,lte=1000"`
}

// DefaultLimit applies when the limit parameter is absent.
const DefaultLimit = 100

// ParsePage reads skip and limit. Out-of-range values are rejected, not
// clamped.
func ParsePage(r *http.Request) (Page, error) {
	q := r.URL.Query()
	skip, skipErr := QueryInt(q, "skip", 0)
	limit, limitErr := QueryInt(q, "limit", DefaultLimit)
	if verr := validate.Merge(skipErr, limitErr); verr != nil {
		return Page{}, verr
	}
	p := Page{Skip: skip, Limit: limit}
	if err := validate.Struct("query", p); err != nil {
		return Page{}, err
	}
	return p, nil
}
