// AngelaMos | 2026
// query.go

package core

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Page     int
	PageSize int
}

func (p *Page) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageFromRequest reads page and page_size, ignoring malformed values.
func PageFromRequest(r *http.Request) Page {
	p := Page{
		Page:     intQuery(r, "page", 1),
		PageSize: intQuery(r, "page_size", DefaultPageSize),
	}
	p.Normalize()
	return p
}

func intQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}

// Filter collects AND-ed WHERE conditions and their positional arguments.
// Each condition is a format string whose %d verbs are all replaced by the
// placeholder number of its single argument.
type Filter struct {
	conds []string
	args  []any
}

func (f *Filter) Add(cond string, arg any) {
	f.args = append(f.args, arg)
	n := len(f.args)
	f.conds = append(f.conds, strings.ReplaceAll(cond, "%d", strconv.Itoa(n)))
}

// Raw adds a condition that takes no argument.
func (f *Filter) Raw(cond string) {
	f.conds = append(f.conds, cond)
}

func (f *Filter) Where() string {
	if len(f.conds) == 0 {
		return "TRUE"
	}
	return strings.Join(f.conds, " AND ")
}

func (f *Filter) Args() []any {
	return f.args
}

// Limit appends LIMIT/OFFSET placeholders for p and returns the clause
// together with the full argument list.
func (f *Filter) Limit(p Page) (string, []any) {
	n := len(f.args)
	args := append(append([]any{}, f.args...), p.PageSize, p.Offset())
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", n+1, n+2), args
}

func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

func Contains(s string) string {
	return "%" + EscapeLike(s) + "%"
}

// PathID returns the named URL parameter when it is a UUID. Anything else
// cannot match a row, so it is answered with 404 for resource.
func PathID(
	w http.ResponseWriter,
	r *http.Request,
	key, resource string,
) (string, bool) {
	id := chi.URLParam(r, key)
	if uuid.Validate(id) != nil {
		NotFound(w, resource)
		return "", false
	}
	return id, true
}

func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}
