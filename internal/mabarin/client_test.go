package mabarin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upstream starts a fake API and returns a client pointed at it.
func upstream(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/v1", 2*time.Second)
}

func TestListActivitiesEncodesQuery(t *testing.T) {
	var got *http.Request
	c := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = io.WriteString(w, `{"success":true,"result":{"data":[{"id":7,"title":"Futsal Malam"}],"total":1,"last_page":1}}`)
	})

	page, err := c.ListActivities(context.Background(), ActivityQuery{Search: " futsal ", CategoryID: 2, CityID: 5, Paginate: true, PerPage: 12, Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Futsal Malam", page.Items[0].Title)

	assert.Equal(t, "/api/v1/sport-activities", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "futsal", q.Get("search"))
	assert.Equal(t, "2", q.Get("sport_category_id"))
	assert.Equal(t, "5", q.Get("city_id"))
	assert.Equal(t, "true", q.Get("is_paginate"))
	assert.Equal(t, "12", q.Get("per_page"))
	assert.False(t, q.Has("province_id"))
}

func TestBearerAndBody(t *testing.T) {
	var auth string
	var body map[string]any
	c := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"success":true,"message":"created","data":{"id":"TRX-1","status":"pending"}}`)
	})

	tx, msg, err := c.CreateTransaction(context.Background(), "tok-1", 9, 3)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", auth)
	assert.EqualValues(t, 9, body["sport_activity_id"])
	assert.EqualValues(t, 3, body["payment_method_id"])
	assert.Equal(t, "TRX-1", tx.ID.String())
	assert.Equal(t, "created", msg)
}

func TestAPIErrorCarriesMessage(t *testing.T) {
	c := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"success":false,"message":"Slot penuh"}`)
	})

	_, _, err := c.CreateTransaction(context.Background(), "tok", 1, 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "Slot penuh", UserMessage(err, "fallback"))
}

func TestUnauthorizedIsMatchable(t *testing.T) {
	c := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Unauthenticated."}`)
	})

	_, err := c.Me(context.Background(), "expired")
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestNonJSONErrorFallsBackToStatus(t *testing.T) {
	c := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := c.Categories(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "fallback", UserMessage(err, "fallback"))
}

func TestDecodeErrorOnWrongShape(t *testing.T) {
	c := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{"unexpected":true}}`)
	})

	_, err := c.Provinces(context.Background())
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "GET /location/provinces", decErr.Endpoint)
}

func TestDecodeErrorOnGarbage200(t *testing.T) {
	c := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	})

	_, err := c.PaymentMethods(context.Background())
	var decErr *DecodeError
	assert.ErrorAs(t, err, &decErr)
}

func TestLoginRequiresToken(t *testing.T) {
	c := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{"email":"a@b.c","name":"A"}}`)
	})

	_, err := c.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "x"})
	var decErr *DecodeError
	assert.ErrorAs(t, err, &decErr)
}

func TestLoginAndCities(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":4,"token":"abc","email":"rani@mail.id","name":"Rani"}}`)
	})
	mux.HandleFunc("/api/v1/location/cities/12", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"result":[{"id":120,"city_name":"Bandung","province_id":12}]}`)
	})
	c := upstream(t, mux.ServeHTTP)

	u, err := c.Login(context.Background(), LoginRequest{Email: "rani@mail.id", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "abc", u.Token)
	assert.Equal(t, "4", u.ID.String())

	cities, err := c.Cities(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, "Bandung", cities[0].Name)
}

func TestTransportErrorIsWrapped(t *testing.T) {
	c := NewClient("http://127.0.0.1:1/api/v1", 200*time.Millisecond)
	_, err := c.Categories(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
