package rpc

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is a scriptable chain backend.
type fakeClient struct {
	blockErr error
	callErr  error
	callOut  []byte

	probes atomic.Int64
	calls  atomic.Int64
}

func (f *fakeClient) BlockNumber(ctx context.Context) (uint64, error) {
	f.probes.Add(1)
	if f.blockErr != nil {
		return 0, f.blockErr
	}
	return 100, nil
}

func (f *fakeClient) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x01}, nil
}

func (f *fakeClient) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.calls.Add(1)
	if f.callErr != nil {
		return nil, f.callErr
	}
	return f.callOut, nil
}

func TestAcquireFailsOverToHealthyEndpoint(t *testing.T) {
	bad := &fakeClient{blockErr: errors.New("503 service unavailable")}
	good := &fakeClient{}
	pool := newPoolWithClients([]*Endpoint{
		{URL: "http://bad", client: bad},
		{URL: "http://good", client: good},
	})

	e, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://good", e.URL)

	statuses := pool.Statuses()
	assert.True(t, statuses[0].Quarantined)
	assert.False(t, statuses[0].Healthy)
	assert.True(t, statuses[1].Healthy)

	// the quarantined endpoint is skipped without another probe
	e, err = pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://good", e.URL)
	assert.EqualValues(t, 1, bad.probes.Load())
}

func TestAcquireAllEndpointsDown(t *testing.T) {
	pool := newPoolWithClients([]*Endpoint{
		{URL: "http://a", client: &fakeClient{blockErr: errors.New("refused")}},
		{URL: "http://b", client: &fakeClient{blockErr: errors.New("refused")}},
	})

	_, err := pool.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrNoHealthyEndpoint)
}

func TestAcquireFreshEndpointSkipsProbe(t *testing.T) {
	c := &fakeClient{}
	pool := newPoolWithClients([]*Endpoint{{URL: "http://a", client: c}})

	_, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	_, err = pool.Acquire(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 1, c.probes.Load())
}

func TestQuarantineExpiryReprobes(t *testing.T) {
	c := &fakeClient{blockErr: errors.New("refused")}
	e := &Endpoint{URL: "http://a", client: c}
	pool := newPoolWithClients([]*Endpoint{e})

	_, err := pool.Acquire(context.Background())
	require.ErrorIs(t, err, ErrNoHealthyEndpoint)

	// endpoint recovers and the cooldown lapses
	c.blockErr = nil
	e.downUntil.Store(time.Now().Add(-time.Second).UnixNano())

	got, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://a", got.URL)
	assert.EqualValues(t, 2, c.probes.Load())
}

func TestRetryClassification(t *testing.T) {
	assert.True(t, retryable(errors.New("connection reset by peer")))
	assert.True(t, retryable(errors.New("502 bad gateway")))

	assert.False(t, retryable(errors.New("execution reverted: nonexistent token")))
	assert.False(t, retryable(errors.New("abi: cannot unmarshal")))
	assert.False(t, retryable(context.Canceled))
	assert.False(t, retryable(context.DeadlineExceeded))
	assert.False(t, retryable(ErrNoHealthyEndpoint))
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, isRevert(errors.New("execution reverted")))
	assert.False(t, isRevert(errors.New("connection refused")))

	assert.True(t, isMalformedResponse(errors.New("abi: cannot unmarshal *big.Int")))
	assert.True(t, isMalformedResponse(errors.New("length insufficient 32 require 96")))
	assert.False(t, isMalformedResponse(errors.New("connection refused")))

	assert.True(t, isTransportError(errors.New("i/o timeout")))
	assert.False(t, isTransportError(errors.New("execution reverted")))
}
