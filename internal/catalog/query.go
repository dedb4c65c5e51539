package catalog

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultPageSize is the number of products shown per page.
const DefaultPageSize = 4

// SortCriterion selects the order of the product view.
type SortCriterion string

const (
	SortNone      SortCriterion = ""
	SortPriceAsc  SortCriterion = "price-asc"
	SortPriceDesc SortCriterion = "price-desc"
	SortNameAsc   SortCriterion = "name-asc"
	SortNameDesc  SortCriterion = "name-desc"
)

// ParseSortCriterion maps a request value to a SortCriterion.
func ParseSortCriterion(s string) (SortCriterion, error) {
	switch c := SortCriterion(s); c {
	case SortNone, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return c, nil
	case "none":
		return SortNone, nil
	default:
		return SortNone, fmt.Errorf("unknown sort criterion %q", s)
	}
}

// ViewQuery is the input of one product view.
type ViewQuery struct {
	Category string
	Search   string
	Sort     SortCriterion
	Page     int
}

// PageResult is the visible page plus pagination metadata.
type PageResult struct {
	Items      []Product `json:"items"`
	TotalItems int       `json:"total_items"`
	PageCount  int       `json:"page_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}

// QueryEngine filters, sorts and paginates product lists.
// The zero value is not usable; see NewQueryEngine.
type QueryEngine struct {
	pageSize int
	locale   language.Tag
}

// NewQueryEngine returns an engine with the given page size and collation locale
// (BCP 47, e.g. "es"). A non-positive page size falls back to DefaultPageSize.
func NewQueryEngine(pageSize int, locale string) (*QueryEngine, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	tag := language.Und
	if locale != "" {
		var err error
		if tag, err = language.Parse(locale); err != nil {
			return nil, fmt.Errorf("invalid collation locale %q: %w", locale, err)
		}
	}
	return &QueryEngine{pageSize: pageSize, locale: tag}, nil
}

// PageSize returns the configured page size.
func (e *QueryEngine) PageSize() int {
	return e.pageSize
}

// Query computes the page described by q. It never mutates products and never fails:
// a page past the end, or below 1, yields no items. Resetting the page when the
// filter changes is up to the caller.
func (e *QueryEngine) Query(products []Product, q ViewQuery) PageResult {
	list := slices.Clone(products)

	if q.Category != "" && q.Category != AllCategories {
		list = slices.DeleteFunc(list, func(p Product) bool {
			return p.Category != q.Category
		})
	}

	if q.Search != "" {
		fold := cases.Fold()
		term := fold.String(q.Search)
		list = slices.DeleteFunc(list, func(p Product) bool {
			return !strings.Contains(fold.String(p.Name), term)
		})
	}

	e.sort(list, q.Sort)

	total := len(list)
	result := PageResult{
		Items:      []Product{},
		TotalItems: total,
		PageCount:  (total + e.pageSize - 1) / e.pageSize,
		Page:       q.Page,
		PageSize:   e.pageSize,
	}
	// Compare in pages first; (Page-1)*pageSize overflows for huge pages.
	if q.Page < 1 || q.Page > result.PageCount {
		return result
	}
	start := (q.Page - 1) * e.pageSize
	end := min(start+e.pageSize, total)
	result.Items = list[start:end]
	return result
}

func (e *QueryEngine) sort(list []Product, criterion SortCriterion) {
	switch criterion {
	case SortPriceAsc:
		slices.SortStableFunc(list, func(a, b Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(list, func(a, b Product) int { return b.Price.Cmp(a.Price) })
	case SortNameAsc:
		c := collate.New(e.locale)
		slices.SortStableFunc(list, func(a, b Product) int { return c.CompareString(a.Name, b.Name) })
	case SortNameDesc:
		c := collate.New(e.locale)
		slices.SortStableFunc(list, func(a, b Product) int { return c.CompareString(b.Name, a.Name) })
	}
}
