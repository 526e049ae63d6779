package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/medaverse/meda-api/service/persist"
	"github.com/medaverse/meda-api/util"
)

const (
	requestTimeout = 15 * time.Second
	pricePoolSize  = 8
)

// Client is the raw indexer REST client. Responses come back in the
// indexer's own shapes; the Gateway normalises and caches them.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client against the given indexer base URL. The API
// key travels as a header on every request.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	c := *httpClient
	c.Transport = &authMiddleware{t: c.Transport, apiKey: apiKey}
	c.Timeout = requestTimeout
	return &Client{baseURL: baseURL, httpClient: &c}
}

type authMiddleware struct {
	t      http.RoundTripper
	apiKey string
}

func (a *authMiddleware) RoundTrip(r *http.Request) (*http.Response, error) {
	r.Header.Add("X-API-Key", a.apiKey)
	t := a.t
	if t == nil {
		t = http.DefaultTransport
	}
	return t.RoundTrip(r)
}

// erc20Balance is the indexer's per-token balance row.
type erc20Balance struct {
	TokenAddress string `json:"token_address"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Logo         string `json:"logo"`
	Decimals     int    `json:"decimals"`
	Balance      string `json:"balance"`
}

// tokenPrice is the indexer's price quote for one token.
type tokenPrice struct {
	USDPrice float64 `json:"usdPrice"`
}

// nftPage is the indexer's paginated NFT listing.
type nftPage struct {
	Result []nftItem `json:"result"`
	Cursor string    `json:"cursor"`
}

// nftItem is one NFT row as the indexer returns it. Metadata is a
// JSON-encoded string, parsed once by the gateway.
type nftItem struct {
	TokenAddress string `json:"token_address"`
	TokenID      string `json:"token_id"`
	Amount       string `json:"amount"`
	ContractType string `json:"contract_type"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	TokenURI     string `json:"token_uri"`
	Metadata     string `json:"metadata"`
}

// ERC20Balances lists the wallet's fungible token balances on one chain.
func (c *Client) ERC20Balances(ctx context.Context, wallet persist.Address, chain string) ([]erc20Balance, error) {
	u := fmt.Sprintf("%s/%s/erc20?%s", c.baseURL, wallet, url.Values{"chain": {chain}}.Encode())
	var out []erc20Balance
	if err := c.getInto(ctx, u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TokenPrice quotes one token's USD price.
func (c *Client) TokenPrice(ctx context.Context, token string, chain string) (float64, error) {
	u := fmt.Sprintf("%s/erc20/%s/price?%s", c.baseURL, token, url.Values{"chain": {chain}}.Encode())
	var out tokenPrice
	if err := c.getInto(ctx, u, &out); err != nil {
		return 0, err
	}
	return out.USDPrice, nil
}

// WalletNFTs lists the wallet's NFTs on one chain, decimal token ids, spam
// filtered upstream.
func (c *Client) WalletNFTs(ctx context.Context, wallet persist.Address, chain string) ([]nftItem, error) {
	query := url.Values{
		"chain":        {chain},
		"format":       {"decimal"},
		"exclude_spam": {"true"},
	}
	u := fmt.Sprintf("%s/%s/nft?%s", c.baseURL, wallet, query.Encode())
	var page nftPage
	if err := c.getInto(ctx, u, &page); err != nil {
		return nil, err
	}
	return page.Result, nil
}

func (c *Client) getInto(ctx context.Context, rawURL string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrTransport{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited{}
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized{}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(resp.Body)
		return ErrUpstream{Status: resp.StatusCode, Body: util.TruncateWithEllipsis(string(body), 200)}
	}

	return json.NewDecoder(resp.Body).Decode(into)
}
