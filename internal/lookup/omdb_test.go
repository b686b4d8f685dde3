package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOMDBSearchWithoutKeyReturnsEmpty(t *testing.T) {
	c := NewOMDBClient("")
	c.BaseURL = "http://127.0.0.1:1" // must never be contacted

	results, err := c.Search(context.Background(), "Parasite", "2019")
	require.NoError(t, err)
	assert.Empty(t, results)

	details, err := c.Details(context.Background(), "tt6751668")
	require.NoError(t, err)
	assert.Nil(t, details)
}

func TestOMDBSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("apikey"))
		assert.Equal(t, "Parasite", r.URL.Query().Get("s"))
		assert.Equal(t, "2019", r.URL.Query().Get("y"))
		w.Write([]byte(`{"Response":"True","Search":[
			{"Title":"Parasite","Year":"2019","imdbID":"tt6751668","Poster":"https://img/p.jpg"},
			{"Title":"Parasite Doll","Year":"2019","imdbID":"tt0000001","Poster":"N/A"}
		]}`))
	}))
	defer srv.Close()

	c := NewOMDBClient("secret")
	c.BaseURL = srv.URL

	results, err := c.Search(context.Background(), "Parasite", "2019")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "tt6751668", results[0].IMDBID)
	assert.Equal(t, "https://img/p.jpg", results[0].PosterURL)
	assert.Equal(t, "", results[1].PosterURL, "N/A poster should map to empty")
}

func TestOMDBSearchNoMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	}))
	defer srv.Close()

	c := NewOMDBClient("secret")
	c.BaseURL = srv.URL

	results, err := c.Search(context.Background(), "zzzzzz", "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestOMDBDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tt6751668", r.URL.Query().Get("i"))
		w.Write([]byte(`{"Response":"True","Title":"Parasite","Year":"2019","Runtime":"132 min",
			"Rated":"15","Genre":"Drama, Thriller","Language":"Korean","Country":"South Korea",
			"Plot":"Greed and class discrimination.","Poster":"https://img/p.jpg","imdbID":"tt6751668"}`))
	}))
	defer srv.Close()

	c := NewOMDBClient("secret")
	c.BaseURL = srv.URL

	d, err := c.Details(context.Background(), "tt6751668")
	require.NoError(t, err)
	require.NotNil(t, d)
	require.NotNil(t, d.Year)
	assert.Equal(t, 2019, *d.Year)
	require.NotNil(t, d.RuntimeMinutes)
	assert.Equal(t, 132, *d.RuntimeMinutes)
	assert.Equal(t, "15", d.Rated)
	assert.Equal(t, "South Korea", d.Country)
}

func TestOMDBDetailsUnknownID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
	}))
	defer srv.Close()

	c := NewOMDBClient("secret")
	c.BaseURL = srv.URL

	d, err := c.Details(context.Background(), "tt0000000")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestParseOMDBRuntime(t *testing.T) {
	assert.Nil(t, parseOMDBRuntime("N/A"))
	assert.Nil(t, parseOMDBRuntime(""))

	m := parseOMDBRuntime("95 min")
	require.NotNil(t, m)
	assert.Equal(t, 95, *m)
}
