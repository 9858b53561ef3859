package database

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/uptrace/bun"

	"github.com/agonsep/21stCentury/pkg/models"
)

// Product list sort keys
const (
	SortCreatedAt    = "createdAt"
	SortName         = "name"
	SortManufacturer = "manufacturer"
	SortCost         = "cost"
	SortRating       = "rating"
	SortEfficiency   = "efficiency"
	SortOrigin       = "origin"
)

// sortColumns maps a sort key to its ORDER BY expression. Rating is free
// text such as "4.5/5" so it sorts by its leading number.
var sortColumns = map[string]string{
	SortCreatedAt:    "created_at",
	SortName:         "LOWER(name)",
	SortManufacturer: "LOWER(manufacturer)",
	SortCost:         "cost",
	SortRating:       "CAST(rating AS REAL)",
	SortEfficiency:   "efficiency",
	SortOrigin:       "LOWER(origin)",
}

// SortKeys lists the accepted sort keys
func SortKeys() []string {
	return []string{SortCreatedAt, SortName, SortManufacturer, SortCost, SortRating, SortEfficiency, SortOrigin}
}

// MaxPageSize caps the limit parameter
const MaxPageSize = 500

// ProductFilter narrows and orders a product listing. Zero values mean
// "no constraint".
type ProductFilter struct {
	Manufacturer string
	Origins      []string
	Category     string
	Search       string
	NEVIEligible *bool
	Sort         string
	Descending   bool
	Limit        int
	Offset       int
}

// DefaultProductFilter lists newest products first
func DefaultProductFilter() ProductFilter {
	return ProductFilter{Sort: SortCreatedAt, Descending: true}
}

// ParseProductFilter reads filter, sort and pagination parameters from a
// query string. Malformed values produce a *models.ValidationError.
func ParseProductFilter(q url.Values) (ProductFilter, error) {
	f := DefaultProductFilter()

	f.Manufacturer = strings.TrimSpace(q.Get("manufacturer"))
	f.Category = strings.TrimSpace(q.Get("category"))
	f.Search = strings.TrimSpace(q.Get("search"))
	for _, o := range q["origin"] {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.Origins = append(f.Origins, part)
			}
		}
	}

	if v := q.Get("neviEligible"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, models.NewValidationError("neviEligible must be true or false", "neviEligible")
		}
		f.NEVIEligible = &b
	}

	if v := q.Get("sort"); v != "" {
		if _, ok := sortColumns[v]; !ok {
			return f, models.NewValidationError(
				fmt.Sprintf("sort must be one of: %s", strings.Join(SortKeys(), ", ")), "sort")
		}
		f.Sort = v
		// explicit sort keys default to ascending
		f.Descending = false
	}

	switch strings.ToLower(q.Get("order")) {
	case "":
	case "asc":
		f.Descending = false
	case "desc":
		f.Descending = true
	default:
		return f, models.NewValidationError("order must be asc or desc", "order")
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxPageSize {
			return f, models.NewValidationError(
				fmt.Sprintf("limit must be an integer between 1 and %d", MaxPageSize), "limit")
		}
		f.Limit = n
	}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, models.NewValidationError("offset must be a non-negative integer", "offset")
		}
		f.Offset = n
	}

	return f, nil
}

// Query encodes the filter back into query parameters, omitting defaults
func (f ProductFilter) Query() url.Values {
	q := url.Values{}
	if f.Manufacturer != "" {
		q.Set("manufacturer", f.Manufacturer)
	}
	for _, o := range f.Origins {
		q.Add("origin", o)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.NEVIEligible != nil {
		q.Set("neviEligible", strconv.FormatBool(*f.NEVIEligible))
	}
	if f.Sort != "" && f.Sort != SortCreatedAt {
		q.Set("sort", f.Sort)
	}
	if f.Sort == SortCreatedAt && !f.Descending {
		q.Set("order", "asc")
	} else if f.Sort != SortCreatedAt && f.Descending {
		q.Set("order", "desc")
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	return q
}

func (f ProductFilter) apply(q *bun.SelectQuery) *bun.SelectQuery {
	if f.Manufacturer != "" {
		q = q.Where("LOWER(manufacturer) = LOWER(?)", f.Manufacturer)
	}
	if f.Category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", f.Category)
	}
	if len(f.Origins) > 0 {
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			for _, o := range f.Origins {
				sq = sq.WhereOr("instr(LOWER(origin), LOWER(?)) > 0", o)
			}
			return sq
		})
	}
	if f.Search != "" {
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				Where("instr(LOWER(name), LOWER(?)) > 0", f.Search).
				WhereOr("instr(LOWER(manufacturer), LOWER(?)) > 0", f.Search)
		})
	}
	if f.NEVIEligible != nil {
		q = q.Where("nevi_eligible = ?", *f.NEVIEligible)
	}

	col, ok := sortColumns[f.Sort]
	if !ok {
		col = sortColumns[SortCreatedAt]
	}
	dir := "ASC"
	if f.Descending {
		dir = "DESC"
	}
	q = q.OrderExpr(col + " " + dir).OrderExpr("id " + dir)

	// SQLite rejects OFFSET without LIMIT; List slices that case instead
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
		if f.Offset > 0 {
			q = q.Offset(f.Offset)
		}
	}
	return q
}
