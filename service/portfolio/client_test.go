package portfolio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medaverse/meda-api/service/persist"
)

var testWallet = persist.MustAddress("0xab5801a7d398351b8be11c439e05c5b3259aec9b")

func TestClientSendsAPIKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key", http.DefaultClient)
	_, err := c.ERC20Balances(context.Background(), testWallet, "polygon")
	require.NoError(t, err)
	assert.Equal(t, "secret-key", gotKey)
}

func TestClientErrorTaxonomy(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(`upstream said no`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", http.DefaultClient)

	status = http.StatusTooManyRequests
	_, err := c.ERC20Balances(context.Background(), testWallet, "polygon")
	assert.ErrorIs(t, err, ErrRateLimited{})

	status = http.StatusUnauthorized
	_, err = c.TokenPrice(context.Background(), "0xdead", "polygon")
	assert.ErrorIs(t, err, ErrUnauthorized{})

	status = http.StatusBadGateway
	_, err = c.WalletNFTs(context.Background(), testWallet, "polygon")
	var upstream ErrUpstream
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.Status)
	assert.Contains(t, upstream.Body, "upstream said no")
}

func TestClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, "k", http.DefaultClient)
	_, err := c.ERC20Balances(context.Background(), testWallet, "polygon")
	var transport ErrTransport
	assert.ErrorAs(t, err, &transport)
}

func TestClientQueryShape(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"result":[],"cursor":""}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", http.DefaultClient)
	_, err := c.WalletNFTs(context.Background(), testWallet, "polygon")
	require.NoError(t, err)
	assert.Equal(t, "/"+testWallet.String()+"/nft", gotPath)
	assert.Contains(t, gotQuery, "chain=polygon")
	assert.Contains(t, gotQuery, "format=decimal")
	assert.Contains(t, gotQuery, "exclude_spam=true")
}
