// Package rpc holds the chain-side plumbing: a pool of JSON-RPC endpoints
// with lazy health checks, and the typed contract gateway built on top.
package rpc

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/medaverse/meda-api/service/logger"
)

// ErrNoHealthyEndpoint is returned by Acquire when every configured
// endpoint is quarantined or failing its probe.
var ErrNoHealthyEndpoint = errors.New("no healthy rpc endpoint")

const (
	probeTimeout     = 3 * time.Second
	healthyFreshness = 30 * time.Second
	unhealthyCooldown = time.Minute
)

// Client is the slice of ethclient.Client the pool and gateway need.
// It exists so tests can stand in fake chain backends.
type Client interface {
	CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Endpoint is one chain endpoint plus its health state. Health timestamps
// are unix nanos mutated with compare-and-set; probes race benignly.
type Endpoint struct {
	URL    string
	client Client

	lastOK    atomic.Int64
	downUntil atomic.Int64
}

func (e *Endpoint) Client() Client {
	return e.client
}

// MarkUnhealthy quarantines the endpoint for the cooldown window.
func (e *Endpoint) MarkUnhealthy() {
	e.downUntil.Store(time.Now().Add(unhealthyCooldown).UnixNano())
}

func (e *Endpoint) markHealthy() {
	e.lastOK.Store(time.Now().UnixNano())
	e.downUntil.Store(0)
}

func (e *Endpoint) quarantined(now time.Time) bool {
	return now.UnixNano() < e.downUntil.Load()
}

func (e *Endpoint) fresh(now time.Time) bool {
	return now.Sub(time.Unix(0, e.lastOK.Load())) < healthyFreshness
}

// Pool holds an ordered list of chain endpoints and hands out the first
// currently-responsive one. There is no sticky affinity between requests.
type Pool struct {
	endpoints []*Endpoint
}

// NewPool dials each URL. Dialing is lazy for HTTP transports, so a dead
// endpoint is only discovered (and quarantined) on first acquire.
func NewPool(urls []string) (*Pool, error) {
	if len(urls) == 0 {
		return nil, errors.New("rpc: no endpoints configured")
	}
	endpoints := make([]*Endpoint, 0, len(urls))
	for _, u := range urls {
		ec, err := ethclient.Dial(u)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, &Endpoint{URL: u, client: ec})
	}
	return &Pool{endpoints: endpoints}, nil
}

func newPoolWithClients(endpoints []*Endpoint) *Pool {
	return &Pool{endpoints: endpoints}
}

// Acquire returns the first endpoint whose most recent probe succeeded
// within the freshness window, probing lazily otherwise.
func (p *Pool) Acquire(ctx context.Context) (*Endpoint, error) {
	now := time.Now()
	for _, e := range p.endpoints {
		if e.quarantined(now) {
			continue
		}
		if e.fresh(now) {
			return e, nil
		}
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		_, err := e.client.BlockNumber(probeCtx)
		cancel()
		if err != nil {
			logger.For(ctx).WithError(err).Warnf("rpc endpoint %s failed probe, cooling down", e.URL)
			e.MarkUnhealthy()
			continue
		}
		e.markHealthy()
		return e, nil
	}
	return nil, ErrNoHealthyEndpoint
}

// EndpointStatus is one endpoint's health snapshot for the health surface.
type EndpointStatus struct {
	URL         string    `json:"url"`
	Healthy     bool      `json:"healthy"`
	LastOK      time.Time `json:"last_ok"`
	Quarantined bool      `json:"quarantined"`
}

// Statuses reports per-endpoint health without probing.
func (p *Pool) Statuses() []EndpointStatus {
	now := time.Now()
	out := make([]EndpointStatus, len(p.endpoints))
	for i, e := range p.endpoints {
		lastOK := time.Unix(0, e.lastOK.Load())
		out[i] = EndpointStatus{
			URL:         e.URL,
			Healthy:     e.fresh(now),
			LastOK:      lastOK,
			Quarantined: e.quarantined(now),
		}
	}
	return out
}
