package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	errs  []error
}

func (c *countingSource) Fetch(context.Context) ([]catalog.Product, error) {
	defer func() { c.calls++ }()
	if c.calls < len(c.errs) && c.errs[c.calls] != nil {
		return nil, c.errs[c.calls]
	}
	return []catalog.Product{{ID: 1, Name: "Mouse", Category: "Perifericos"}}, nil
}

func Test_BreakerSource_Fetch(t *testing.T) {
	errDown := errors.New("connection refused")
	testCases := []struct {
		name          string
		errs          []error
		fetches       int
		expectedCalls int
		expectedState string
		expectOpenErr bool
	}{
		{
			name:          "stays closed on success",
			fetches:       3,
			expectedCalls: 3,
			expectedState: "closed",
		},
		{
			name:          "opens after consecutive failures and rejects without calling",
			errs:          []error{errDown, errDown, errDown, errDown},
			fetches:       4,
			expectedCalls: 2,
			expectedState: "open",
			expectOpenErr: true,
		},
		{
			name:          "success resets the failure count",
			errs:          []error{errDown, nil, errDown},
			fetches:       3,
			expectedCalls: 3,
			expectedState: "closed",
		},
		{
			name:          "cancelled fetches do not trip",
			errs:          []error{context.Canceled, context.Canceled, context.Canceled},
			fetches:       3,
			expectedCalls: 3,
			expectedState: "closed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			next := &countingSource{errs: tc.errs}
			src := NewBreakerSource(next, "catalog-test", 2, time.Minute)

			// when
			var err error
			for range tc.fetches {
				_, err = src.Fetch(context.Background())
			}

			// then
			assert.Equal(t, tc.expectedCalls, next.calls)
			assert.Equal(t, tc.expectedState, src.State())
			if tc.expectOpenErr {
				require.ErrorIs(t, err, gobreaker.ErrOpenState)
			}
		})
	}
}

func Test_BreakerSource_HalfOpenProbe(t *testing.T) {
	// given
	next := &countingSource{errs: []error{errors.New("down")}}
	src := NewBreakerSource(next, "catalog-test", 1, 20*time.Millisecond)
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	require.Equal(t, "open", src.State())

	// when
	time.Sleep(40 * time.Millisecond)
	products, err := src.Fetch(context.Background())

	// then
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "closed", src.State())
}
