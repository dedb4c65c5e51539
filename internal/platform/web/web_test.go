package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func Test_RequestIDInjector(t *testing.T) {
	testCases := []struct {
		name     string
		incoming string
	}{
		{name: "propagates incoming id", incoming: "abc-123"},
		{name: "generates id when missing"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var seen string
			h := RequestIDInjector(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = middleware.GetReqID(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.incoming != "" {
				req.Header.Set(RequestIDHeader, tc.incoming)
			}
			rr := httptest.NewRecorder()

			// when
			h.ServeHTTP(rr, req)

			// then
			require.NotEmpty(t, seen)
			if tc.incoming != "" {
				assert.Equal(t, tc.incoming, seen)
			}
			assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
		})
	}
}

func Test_Recoverer(t *testing.T) {
	// given
	h := Recoverer(discard)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()

	// when
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	// then
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func Test_ParseProductID(t *testing.T) {
	testCases := []struct {
		name       string
		pathValue  string
		expectedID int64
		expectedOK bool
	}{
		{name: "valid", pathValue: "42", expectedID: 42, expectedOK: true},
		{name: "not a number", pathValue: "abc", expectedOK: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.SetPathValue("id", tc.pathValue)
			rr := httptest.NewRecorder()

			id, ok := ParseProductID(rr, req, discard)

			assert.Equal(t, tc.expectedOK, ok)
			assert.Equal(t, tc.expectedID, id)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, rr.Code)
			}
		})
	}
}

func Test_ParseValidateOneOf(t *testing.T) {
	testCases := []struct {
		name       string
		query      string
		expected   int
		expectedOK bool
	}{
		{name: "next", query: "?delta=1", expected: 1, expectedOK: true},
		{name: "previous", query: "?delta=-1", expected: -1, expectedOK: true},
		{name: "out of range", query: "?delta=2"},
		{name: "missing", query: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/"+tc.query, nil)
			rr := httptest.NewRecorder()

			v, ok := ParseValidateOneOf(req, rr, discard, "delta", -1, 1)

			assert.Equal(t, tc.expectedOK, ok)
			assert.Equal(t, tc.expected, v)
		})
	}
}

type payload struct {
	Name string `json:"name" validate:"required"`
}

func Test_DecodeAndValidate(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		expectedOK   bool
		expectedBody string
	}{
		{name: "valid", body: `{"name":"x"}`, expectedOK: true},
		{name: "invalid json", body: `{`, expectedBody: `{"error":"Invalid request body"}`},
		{name: "validation", body: `{}`, expectedBody: `{"validation_errors":{"Name":"failed on rule: required"}}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			var dst payload

			ok := DecodeAndValidate(rr, req, discard, validator.New(), &dst)

			assert.Equal(t, tc.expectedOK, ok)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, rr.Code)
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			}
		})
	}
}
