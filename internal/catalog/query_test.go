package catalog

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *QueryEngine {
	t.Helper()
	engine, err := NewQueryEngine(4, "es")
	require.NoError(t, err)
	return engine
}

func names(items []Product) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Name)
	}
	return out
}

func tenProducts() []Product {
	products := make([]Product, 0, 10)
	for i := 1; i <= 10; i++ {
		category := "Perifericos"
		if i%2 == 0 {
			category = "Pantallas"
		}
		products = append(products, product(int64(i), fmt.Sprintf("Item %02d", i), category, int64(i*10), i))
	}
	return products
}

func Test_QueryEngine_Pagination(t *testing.T) {
	testCases := []struct {
		name          string
		page          int
		expectedItems []string
	}{
		{name: "first page", page: 1, expectedItems: []string{"Item 01", "Item 02", "Item 03", "Item 04"}},
		{name: "last page is partial", page: 3, expectedItems: []string{"Item 09", "Item 10"}},
		{name: "page past the end is empty", page: 4, expectedItems: []string{}},
		{name: "page below one is empty", page: 0, expectedItems: []string{}},
		{name: "largest page number is empty", page: math.MaxInt, expectedItems: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			engine := newEngine(t)

			// when
			result := engine.Query(tenProducts(), ViewQuery{Category: AllCategories, Page: tc.page})

			// then
			assert.Equal(t, 10, result.TotalItems)
			assert.Equal(t, 3, result.PageCount)
			assert.Equal(t, tc.page, result.Page)
			assert.Equal(t, tc.expectedItems, names(result.Items))
			assert.LessOrEqual(t, len(result.Items), engine.PageSize())
		})
	}
}

func Test_QueryEngine_EmptyCatalog(t *testing.T) {
	result := newEngine(t).Query(nil, ViewQuery{Category: AllCategories, Page: 1})

	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.TotalItems)
	assert.Equal(t, 0, result.PageCount)
}

func Test_QueryEngine_Filters(t *testing.T) {
	products := []Product{
		product(1, "Cabbage", "Verduras", 3, 10),
		product(2, "Abacate", "Frutas", 5, 10),
		product(3, "Banana", "Frutas", 2, 10),
		product(4, "Zanahoria", "Verduras", 1, 10),
	}
	testCases := []struct {
		name          string
		query         ViewQuery
		expectedItems []string
	}{
		{
			name:          "all categories keeps catalog order",
			query:         ViewQuery{Category: AllCategories, Page: 1},
			expectedItems: []string{"Cabbage", "Abacate", "Banana", "Zanahoria"},
		},
		{
			name:          "empty category behaves like all",
			query:         ViewQuery{Page: 1},
			expectedItems: []string{"Cabbage", "Abacate", "Banana", "Zanahoria"},
		},
		{
			name:          "category is exact and case-sensitive",
			query:         ViewQuery{Category: "Frutas", Page: 1},
			expectedItems: []string{"Abacate", "Banana"},
		},
		{
			name:          "category with different case matches nothing",
			query:         ViewQuery{Category: "frutas", Page: 1},
			expectedItems: []string{},
		},
		{
			name:          "search is a case-insensitive substring match",
			query:         ViewQuery{Category: AllCategories, Search: "AB", Page: 1},
			expectedItems: []string{"Cabbage", "Abacate"},
		},
		{
			name:          "search and category combine",
			query:         ViewQuery{Category: "Verduras", Search: "ab", Page: 1},
			expectedItems: []string{"Cabbage"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := newEngine(t).Query(products, tc.query)
			assert.Equal(t, tc.expectedItems, names(result.Items))
		})
	}
}

func Test_QueryEngine_Sort(t *testing.T) {
	products := []Product{
		product(1, "banana", "Frutas", 30, 1),
		product(2, "Árbol", "Plantas", 10, 1),
		product(3, "cereza", "Frutas", 20, 1),
		product(4, "Durazno", "Frutas", 40, 1),
	}
	testCases := []struct {
		name          string
		sort          SortCriterion
		expectedItems []string
	}{
		{name: "none keeps order", sort: SortNone, expectedItems: []string{"banana", "Árbol", "cereza", "Durazno"}},
		{name: "price ascending", sort: SortPriceAsc, expectedItems: []string{"Árbol", "cereza", "banana", "Durazno"}},
		{name: "price descending", sort: SortPriceDesc, expectedItems: []string{"Durazno", "banana", "cereza", "Árbol"}},
		{name: "name ascending is locale aware", sort: SortNameAsc, expectedItems: []string{"Árbol", "banana", "cereza", "Durazno"}},
		{name: "name descending is locale aware", sort: SortNameDesc, expectedItems: []string{"Durazno", "cereza", "banana", "Árbol"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := newEngine(t).Query(products, ViewQuery{Category: AllCategories, Sort: tc.sort, Page: 1})
			assert.Equal(t, tc.expectedItems, names(result.Items))
		})
	}
}

func Test_QueryEngine_PriceSortIsReversible(t *testing.T) {
	engine, err := NewQueryEngine(100, "es")
	require.NoError(t, err)
	products := tenProducts()

	asc := names(engine.Query(products, ViewQuery{Category: "Pantallas", Sort: SortPriceAsc, Page: 1}).Items)
	desc := names(engine.Query(products, ViewQuery{Category: "Pantallas", Sort: SortPriceDesc, Page: 1}).Items)

	require.Len(t, asc, 5)
	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func Test_QueryEngine_SortIsStable(t *testing.T) {
	products := []Product{
		product(1, "A", "X", 10, 1),
		product(2, "B", "X", 5, 1),
		product(3, "C", "X", 10, 1),
		product(4, "D", "X", 5, 1),
	}

	result := newEngine(t).Query(products, ViewQuery{Sort: SortPriceAsc, Page: 1})

	assert.Equal(t, []string{"B", "D", "A", "C"}, names(result.Items))
}

func Test_QueryEngine_DoesNotMutateInput(t *testing.T) {
	products := tenProducts()
	before := names(products)

	newEngine(t).Query(products, ViewQuery{Category: "Pantallas", Sort: SortPriceDesc, Page: 1})

	assert.Equal(t, before, names(products))
}

func Test_NewQueryEngine(t *testing.T) {
	engine, err := NewQueryEngine(0, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, engine.PageSize())

	_, err = NewQueryEngine(4, "not a locale!")
	assert.Error(t, err)
}

func Test_ParseSortCriterion(t *testing.T) {
	testCases := []struct {
		in          string
		expected    SortCriterion
		expectError bool
	}{
		{in: "", expected: SortNone},
		{in: "none", expected: SortNone},
		{in: "price-asc", expected: SortPriceAsc},
		{in: "name-desc", expected: SortNameDesc},
		{in: "cheapest", expectError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			c, err := ParseSortCriterion(tc.in)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, c)
		})
	}
}
