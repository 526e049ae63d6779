package portfolio

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/medaverse/meda-api/service/logger"
	"github.com/medaverse/meda-api/service/memstore"
	"github.com/medaverse/meda-api/service/persist"
	"github.com/medaverse/meda-api/service/redis"
)

const snapshotTTL = 5 * time.Minute

// ChainPurger invalidates the contract gateway's hot-cache entries for one
// wallet so an explicit refresh reaches chain. *rpc.Gateway satisfies it.
type ChainPurger interface {
	PurgeWallet(wallet persist.Address)
}

// ERC20Token is the normalised per-token portfolio entry. Price fields are
// nil when the price quote failed; such tokens are excluded from the total.
type ERC20Token struct {
	Address    string   `json:"address"`
	Name       string   `json:"name"`
	Symbol     string   `json:"symbol"`
	Logo       string   `json:"logo,omitempty"`
	Decimals   int      `json:"decimals"`
	BalanceWei string   `json:"balance_wei"`
	Balance    float64  `json:"balance"`
	USDPrice   *float64 `json:"usd_price"`
	USDValue   *float64 `json:"usd_value"`
}

// ERC20Portfolio is the full portfolio snapshot for one (wallet, chain).
type ERC20Portfolio struct {
	Wallet        string       `json:"wallet"`
	Chain         string       `json:"chain"`
	Tokens        []ERC20Token `json:"tokens"`
	TotalTokens   int          `json:"total_tokens"`
	TotalUSDValue float64      `json:"total_usd_value"`
	LastUpdated   time.Time    `json:"last_updated"`
	Cached        bool         `json:"cached"`
}

// NFT is one normalised NFT entry. Metadata is the parsed object; an
// unparseable metadata string degrades to an empty object.
type NFT struct {
	TokenID  string         `json:"token_id"`
	Amount   string         `json:"amount"`
	Name     string         `json:"name"`
	TokenURI string         `json:"token_uri,omitempty"`
	Metadata map[string]any `json:"metadata"`
}

// NFTCollection groups a wallet's NFTs by contract.
type NFTCollection struct {
	ContractAddress string `json:"contract_address"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	ContractType    string `json:"contract_type"`
	NFTs            []NFT  `json:"nfts"`
	TotalCount      int    `json:"total_count"`
}

// NFTListing is the full NFT snapshot for one (wallet, chain).
type NFTListing struct {
	Wallet      string          `json:"wallet"`
	Chain       string          `json:"chain"`
	Collections []NFTCollection `json:"collections"`
	TotalCount  int             `json:"total_count"`
	LastUpdated time.Time       `json:"last_updated"`
	Cached      bool            `json:"cached"`
}

// RefreshResult reports per-kind success of an explicit refresh.
type RefreshResult struct {
	Portfolio *ERC20Portfolio `json:"portfolio,omitempty"`
	NFTs      *NFTListing     `json:"nfts,omitempty"`
	Errors    struct {
		Portfolio string `json:"portfolio,omitempty"`
		NFTs      string `json:"nfts,omitempty"`
	} `json:"errors"`
}

// Gateway wraps the indexer client with per-(wallet, chain) snapshot
// caching. With redis available snapshots are shared across replicas;
// without it they fall back to the process-local hot cache.
type Gateway struct {
	client        *Client
	portfolioSnap *redis.Cache
	nftSnap       *redis.Cache
	chainPurger   ChainPurger

	localPortfolio *memstore.Cache[[]byte]
	localNFTs      *memstore.Cache[[]byte]
}

// NewGateway builds a gateway. Either redis cache and the chain purger may
// be nil.
func NewGateway(client *Client, portfolioSnap, nftSnap *redis.Cache, chainPurger ChainPurger) *Gateway {
	return &Gateway{
		client:         client,
		portfolioSnap:  portfolioSnap,
		nftSnap:        nftSnap,
		chainPurger:    chainPurger,
		localPortfolio: memstore.New[[]byte]("portfolioSnapshots", 1024, snapshotTTL),
		localNFTs:      memstore.New[[]byte]("nftSnapshots", 1024, snapshotTTL),
	}
}

// ERC20Portfolio returns the wallet's fungible portfolio, served from the
// snapshot cache when fresh.
func (g *Gateway) ERC20Portfolio(ctx context.Context, wallet persist.Address, chain string) (ERC20Portfolio, error) {
	key := memstore.Key(wallet.String(), chain)

	var cached ERC20Portfolio
	if g.snapshotGet(ctx, g.portfolioSnap, g.localPortfolio, key, &cached) {
		cached.Cached = true
		return cached, nil
	}

	balances, err := g.client.ERC20Balances(ctx, wallet, chain)
	if err != nil {
		return ERC20Portfolio{}, err
	}

	tokens := make([]ERC20Token, len(balances))
	wp := pool.New().WithMaxGoroutines(pricePoolSize).WithContext(ctx)
	for i, b := range balances {
		i, b := i, b
		wp.Go(func(ctx context.Context) error {
			tokens[i] = g.normalizeToken(ctx, b, chain)
			return nil
		})
	}
	wp.Wait()

	out := ERC20Portfolio{
		Wallet:      wallet.String(),
		Chain:       chain,
		Tokens:      tokens,
		TotalTokens: len(tokens),
		LastUpdated: time.Now().UTC(),
	}
	for _, t := range tokens {
		if t.USDValue != nil {
			out.TotalUSDValue += *t.USDValue
		}
	}

	g.snapshotSet(ctx, g.portfolioSnap, g.localPortfolio, key, out)
	return out, nil
}

// NFTs returns the wallet's NFT holdings grouped by contract, served from
// the snapshot cache when fresh.
func (g *Gateway) NFTs(ctx context.Context, wallet persist.Address, chain string) (NFTListing, error) {
	key := memstore.Key(wallet.String(), chain)

	var cached NFTListing
	if g.snapshotGet(ctx, g.nftSnap, g.localNFTs, key, &cached) {
		cached.Cached = true
		return cached, nil
	}

	items, err := g.client.WalletNFTs(ctx, wallet, chain)
	if err != nil {
		return NFTListing{}, err
	}

	byContract := map[string]*NFTCollection{}
	var order []string
	total := 0
	for _, item := range items {
		coll, ok := byContract[item.TokenAddress]
		if !ok {
			coll = &NFTCollection{
				ContractAddress: item.TokenAddress,
				Name:            item.Name,
				Symbol:          item.Symbol,
				ContractType:    item.ContractType,
			}
			byContract[item.TokenAddress] = coll
			order = append(order, item.TokenAddress)
		}
		coll.NFTs = append(coll.NFTs, NFT{
			TokenID:  item.TokenID,
			Amount:   item.Amount,
			Name:     item.Name,
			TokenURI: item.TokenURI,
			Metadata: parseMetadata(item.Metadata),
		})
		coll.TotalCount++
		total++
	}

	collections := make([]NFTCollection, len(order))
	for i, addr := range order {
		collections[i] = *byContract[addr]
	}

	out := NFTListing{
		Wallet:      wallet.String(),
		Chain:       chain,
		Collections: collections,
		TotalCount:  total,
		LastUpdated: time.Now().UTC(),
	}

	g.snapshotSet(ctx, g.nftSnap, g.localNFTs, key, out)
	return out, nil
}

// Refresh purges both snapshots plus the wallet's contract gateway entries
// and re-issues both calls. Each kind succeeds or fails independently.
func (g *Gateway) Refresh(ctx context.Context, wallet persist.Address, chain string) RefreshResult {
	g.Purge(ctx, wallet, chain)
	if g.chainPurger != nil {
		g.chainPurger.PurgeWallet(wallet)
	}

	var result RefreshResult
	if p, err := g.ERC20Portfolio(ctx, wallet, chain); err != nil {
		result.Errors.Portfolio = err.Error()
	} else {
		result.Portfolio = &p
	}
	if n, err := g.NFTs(ctx, wallet, chain); err != nil {
		result.Errors.NFTs = err.Error()
	} else {
		result.NFTs = &n
	}
	return result
}

// Purge drops both snapshot entries for one (wallet, chain).
func (g *Gateway) Purge(ctx context.Context, wallet persist.Address, chain string) {
	key := memstore.Key(wallet.String(), chain)
	g.localPortfolio.Delete(key)
	g.localNFTs.Delete(key)
	for _, snap := range []*redis.Cache{g.portfolioSnap, g.nftSnap} {
		if snap == nil {
			continue
		}
		if err := snap.Delete(ctx, key); err != nil {
			logger.For(ctx).WithError(err).Warn("failed to purge snapshot")
		}
	}
}

func (g *Gateway) normalizeToken(ctx context.Context, b erc20Balance, chain string) ERC20Token {
	token := ERC20Token{
		Address:    b.TokenAddress,
		Name:       b.Name,
		Symbol:     b.Symbol,
		Logo:       b.Logo,
		Decimals:   b.Decimals,
		BalanceWei: b.Balance,
		Balance:    scaleBalance(b.Balance, b.Decimals),
	}
	price, err := g.client.TokenPrice(ctx, b.TokenAddress, chain)
	if err != nil {
		logger.For(ctx).WithError(err).Warnf("price quote failed for %s", b.TokenAddress)
		return token
	}
	value := price * token.Balance
	token.USDPrice = &price
	token.USDValue = &value
	return token
}

func scaleBalance(wei string, decimals int) float64 {
	raw, ok := new(big.Float).SetString(wei)
	if !ok {
		return 0
	}
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	out, _ := new(big.Float).Quo(raw, divisor).Float64()
	return out
}

func parseMetadata(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// snapshotGet reads a snapshot from redis when available, falling back to
// the process-local cache.
func (g *Gateway) snapshotGet(ctx context.Context, snap *redis.Cache, local *memstore.Cache[[]byte], key string, into any) bool {
	var bs []byte
	if snap != nil {
		got, err := snap.Get(ctx, key)
		if err != nil {
			if _, miss := err.(redis.ErrKeyNotFound); !miss {
				logger.For(ctx).WithError(err).Warn("snapshot read failed")
			}
			return false
		}
		bs = got
	} else if got, ok := local.Get(key); ok {
		bs = got
	} else {
		return false
	}
	return json.Unmarshal(bs, into) == nil
}

func (g *Gateway) snapshotSet(ctx context.Context, snap *redis.Cache, local *memstore.Cache[[]byte], key string, value any) {
	bs, err := json.Marshal(value)
	if err != nil {
		return
	}
	if snap != nil {
		if err := snap.Set(ctx, key, bs, snapshotTTL); err != nil {
			logger.For(ctx).WithError(err).Warn("snapshot write failed")
		}
		return
	}
	local.Set(key, bs)
}
