package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressByPostcodeWithKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/find/GU511AA", r.URL.Path)
		assert.Equal(t, "key123", r.URL.Query().Get("api-key"))
		w.Write([]byte(`{"postcode":"GU51 1AA","addresses":[
			{"line_1":"1 High Street","line_2":"","town_or_city":"Fleet","county":"Hampshire"},
			{"line_1":"2 High Street","line_2":"Flat B","town_or_city":"Fleet","county":"Hampshire"}
		]}`))
	}))
	defer srv.Close()

	c := NewAddressClient("key123")
	c.GetAddressBase = srv.URL
	c.PostcodesBase = "http://127.0.0.1:1" // fallback must not be reached

	addrs, err := c.ByPostcode(context.Background(), "gu51 1aa")
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	assert.Equal(t, "1 High Street", addrs[0].Line1)
	assert.Equal(t, "Fleet", addrs[0].Town)
	assert.Equal(t, "GU51 1AA", addrs[0].Postcode)
	assert.Equal(t, "Flat B", addrs[1].Line2)
}

func TestAddressFallsBackToPostcodesIO(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/postcodes/GU511AA", r.URL.Path)
		w.Write([]byte(`{"status":200,"result":{"postcode":"GU51 1AA","admin_district":"Hart","admin_county":"Hampshire"}}`))
	}))
	defer fallback.Close()

	c := NewAddressClient("expired-key")
	c.GetAddressBase = primary.URL
	c.PostcodesBase = fallback.URL

	addrs, err := c.ByPostcode(context.Background(), "GU51 1AA")
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.Equal(t, "", addrs[0].Line1, "fallback has no house-level data")
	assert.Equal(t, "Hart", addrs[0].Town)
	assert.Equal(t, "Hampshire", addrs[0].County)
}

func TestAddressWithoutKeyUsesPostcodesIO(t *testing.T) {
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":200,"result":{"postcode":"SW1A 1AA","admin_district":"Westminster","admin_county":""}}`))
	}))
	defer fallback.Close()

	c := NewAddressClient("")
	c.GetAddressBase = "http://127.0.0.1:1"
	c.PostcodesBase = fallback.URL

	addrs, err := c.ByPostcode(context.Background(), "SW1A1AA")
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.Equal(t, "Westminster", addrs[0].Town)
}

func TestAddressUnknownPostcode(t *testing.T) {
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer fallback.Close()

	c := NewAddressClient("")
	c.PostcodesBase = fallback.URL

	addrs, err := c.ByPostcode(context.Background(), "ZZ99 9ZZ")
	require.NoError(t, err)
	assert.Empty(t, addrs)
}

func TestAddressEmptyPostcode(t *testing.T) {
	c := NewAddressClient("")
	addrs, err := c.ByPostcode(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, addrs)
}
