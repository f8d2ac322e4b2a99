package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/opsdash/internal/metrics"
)

// PageSize is the fixed number of rows per listing page.
const PageSize = 20

// StatusAll disables the status filter.
const StatusAll = "all"

// maxPage is the last page whose offset still fits in an int.
const maxPage = math.MaxInt/PageSize + 1

// likeEscape is the LIKE escape character. A backslash would need doubling
// inside MySQL string literals.
const likeEscape = "!"

var likeReplacer = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// ListQuery is the user-supplied part of a listing request.
type ListQuery struct {
	Search string
	Status string
	Page   int
}

// Normalize trims the inputs and clamps Page to at least 1.
func (q ListQuery) Normalize() ListQuery {
	q.Search = strings.TrimSpace(q.Search)
	q.Status = strings.TrimSpace(q.Status)
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

// Offset is the number of rows skipped before the current page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * PageSize
}

// beyondRange reports whether Page is too large to address any row.
func (q ListQuery) beyondRange() bool {
	return q.Page > maxPage
}

// containsPattern matches s as a literal substring in a LIKE clause.
func containsPattern(s string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(s)) + "%"
}

// Page is one page of a listing. Failed is set when the underlying read
// failed; Items is then empty and Total is 0.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	Failed   bool `json:"-"`
}

// TotalPages returns the number of pages needed for Total rows.
func (p Page[T]) TotalPages() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Total + PageSize - 1) / PageSize
}

// EmptyPage returns a page with no rows.
func EmptyPage[T any](page int) Page[T] {
	if page < 1 {
		page = 1
	}
	return Page[T]{Items: []T{}, Page: page, PageSize: PageSize}
}

// listSpec describes how one resource is listed. Every identifier in it
// comes from code; request input only ever reaches the query as bound args.
type listSpec struct {
	resource      string
	columns       string
	from          string
	searchColumns []string
	statusColumn  string
	orderBy       string
}

// scope is a fixed equality predicate added by the caller, e.g. the
// technician restriction on service orders.
type scope struct {
	column string
	value  any
}

// build returns the page query, the count query and the shared filter args.
// The page query expects PageSize and the offset appended to args.
func (s listSpec) build(q ListQuery, scopes []scope) (selectQ, countQ string, args []any) {
	var conds []string

	if q.Search != "" {
		pattern := containsPattern(q.Search)
		ors := make([]string, 0, len(s.searchColumns))
		for _, col := range s.searchColumns {
			ors = append(ors, fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '%s'", col, likeEscape))
			args = append(args, pattern)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if s.statusColumn != "" && q.Status != "" && q.Status != StatusAll {
		conds = append(conds, s.statusColumn+" = ?")
		args = append(args, q.Status)
	}

	for _, sc := range scopes {
		conds = append(conds, sc.column+" = ?")
		args = append(args, sc.value)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	countQ = "SELECT COUNT(*) " + s.from + where
	selectQ = "SELECT " + s.columns + " " + s.from + where + " ORDER BY " + s.orderBy + " LIMIT ? OFFSET ?"
	return selectQ, countQ, args
}

// listPage runs a listing and never returns an error: failures are logged,
// counted and reported through Page.Failed.
func listPage[T any](ctx context.Context, db *sqlx.DB, spec listSpec, q ListQuery, scopes ...scope) Page[T] {
	q = q.Normalize()
	selectQ, countQ, args := spec.build(q, scopes)

	var total int
	if err := db.GetContext(ctx, &total, db.Rebind(countQ), args...); err != nil {
		return failedPage[T](spec.resource, q, err)
	}

	if q.beyondRange() {
		p := EmptyPage[T](q.Page)
		p.Total = total
		return p
	}

	items := make([]T, 0, PageSize)
	pageArgs := append(append(make([]any, 0, len(args)+2), args...), PageSize, q.Offset())
	if err := db.SelectContext(ctx, &items, db.Rebind(selectQ), pageArgs...); err != nil {
		return failedPage[T](spec.resource, q, err)
	}

	return Page[T]{Items: items, Total: total, Page: q.Page, PageSize: PageSize}
}

func failedPage[T any](resource string, q ListQuery, err error) Page[T] {
	if errors.Is(err, context.Canceled) {
		log.Debug().Str("resource", resource).Msg("List query canceled")
	} else {
		log.Error().Err(err).
			Str("resource", resource).
			Int("page", q.Page).
			Str("status", q.Status).
			Msg("List query failed")
	}
	metrics.ListFailuresTotal.WithLabelValues(resource).Inc()

	p := EmptyPage[T](q.Page)
	p.Failed = true
	return p
}
