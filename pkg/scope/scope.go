// Package scope derives the predicate a caller is allowed to query with.
// Non-admin callers are always pinned to their own records; caller-supplied
// filters can only narrow the result set further.
package scope

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/SuryanshShukla1002/Todo-Backend/pkg/models"
)

// Filters are the caller-supplied list filters. Category is kept as the raw
// wire value: an unknown category simply matches nothing.
type Filters struct {
	Category  string
	Completed *bool
	Search    string
}

// ParseFilters reads ?category=&completed=&search= from a query string.
// A present completed param filters on completed == (value == "true").
func ParseFilters(q url.Values) Filters {
	f := Filters{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	if q.Has("completed") {
		v := q.Get("completed") == "true"
		f.Completed = &v
	}
	return f
}

// Build composes the effective WHERE clause and its positional args for the
// todos table (aliased t). Every bulk-listing entry point goes through this
// one function so owner scoping cannot drift between endpoints.
func Build(role models.Role, callerID string, f Filters) (string, []any) {
	var conds []string
	var args []any
	add := func(expr string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}
	if role != models.RoleAdmin {
		add("t.owner_id = $%d", callerID)
	}
	if f.Category != "" {
		add("t.category = $%d", f.Category)
	}
	if f.Completed != nil {
		add("t.completed = $%d", *f.Completed)
	}
	if f.Search != "" {
		add("t.title ILIKE $%d", "%"+escapeLike(f.Search)+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike neutralizes LIKE metacharacters so a search term is always a
// literal substring match.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
