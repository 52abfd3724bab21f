package launch

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apifund/libapifund-go/currency"
	"github.com/apifund/libapifund-go/registry"
	"github.com/apifund/libapifund-go/schedule"
)

func makeAddr(seed byte) common.Address {
	var addr common.Address
	for i := range addr {
		addr[i] = seed
	}
	return addr
}

var (
	orchestratorAt = makeAddr(0x05)
	operator       = makeAddr(0x01)
	poolAt         = makeAddr(0x60)
)

// fixedNow pins the orchestrator clock for window validation.
func fixedNow() time.Time { return time.Unix(1_700_000_000, 0) }

func makeParams(t *testing.T) LaunchParams {
	t.Helper()
	sched, err := schedule.Linear(3600)
	require.NoError(t, err)

	var salt [32]byte
	salt[0] = 0xAB

	return LaunchParams{
		Name:             "weather-api",
		Symbol:           "WTHR",
		TotalSupply:      1_000_000,
		OperatorShareBps: 2000,
		Operator:         operator,
		AuctionStart:     fixedNow().Unix() + 60,
		AuctionEnd:       fixedNow().Unix() + 86400,
		TickSize:         100,
		FloorPrice:       1 << 31, // 0.5 in Q32.32
		MinRaise:         10_000,
		Schedule:         sched,
		Salt:             salt,
		Category:         "data",
		Endpoint:         "https://api.example.com/v1/weather",
	}
}

func newOrchestrator(t *testing.T, auction AuctionService, index ServiceIndex) *Orchestrator {
	t.Helper()
	o, err := New(Config{
		Address:  orchestratorAt,
		Currency: currency.NewMemToken(),
		Auction:  auction,
		Index:    index,
		Now:      fixedNow,
	})
	require.NoError(t, err)
	return o
}

func acceptingAuction() *MockAuctionService {
	return &MockAuctionService{
		DistributeFn: func(ledger common.Address, amount uint64, config []byte, salt [32]byte) (Handle, error) {
			return Handle{Pool: poolAt}, nil
		},
	}
}

// --- Validation ---

func TestLaunch_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LaunchParams)
		wantErr error
	}{
		{"empty name", func(p *LaunchParams) { p.Name = "" }, ErrInvalidParameter},
		{"zero supply", func(p *LaunchParams) { p.TotalSupply = 0 }, ErrInvalidParameter},
		{"bps over 100%", func(p *LaunchParams) { p.OperatorShareBps = 10001 }, ErrInvalidParameter},
		{"zero operator", func(p *LaunchParams) { p.Operator = common.Address{} }, ErrInvalidAddress},
		{"auction end in the past", func(p *LaunchParams) { p.AuctionEnd = fixedNow().Unix() - 1 }, ErrInvalidParameter},
		{"auction end is now", func(p *LaunchParams) { p.AuctionEnd = fixedNow().Unix() }, ErrInvalidParameter},
		{"empty window", func(p *LaunchParams) { p.AuctionStart = p.AuctionEnd }, ErrInvalidParameter},
		{"empty schedule", func(p *LaunchParams) { p.Schedule = nil }, ErrInvalidParameter},
		{"misaligned schedule", func(p *LaunchParams) { p.Schedule = []byte{1, 2, 3} }, ErrInvalidParameter},
		{"zero tick", func(p *LaunchParams) { p.TickSize = 0 }, ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrchestrator(t, acceptingAuction(), nil)
			p := makeParams(t)
			tt.mutate(&p)

			_, err := o.Launch(p)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, o.Services())
		})
	}
}

func TestLaunch_ScheduleChecksSkippedWithoutAuction(t *testing.T) {
	// With a 100% operator share no auction is attempted, so schedule and
	// tick are not validated.
	o := newOrchestrator(t, acceptingAuction(), nil)
	p := makeParams(t)
	p.OperatorShareBps = 10000
	p.Schedule = nil
	p.TickSize = 0

	_, err := o.Launch(p)
	require.NoError(t, err)
}

// --- Share splits ---

func TestLaunch_OperatorAuctionSplit(t *testing.T) {
	// Worked example: 1,000,000 supply at 2000 bps.
	called := false
	auction := &MockAuctionService{
		DistributeFn: func(ledger common.Address, amount uint64, config []byte, salt [32]byte) (Handle, error) {
			called = true
			assert.Equal(t, uint64(800_000), amount)
			return Handle{Pool: poolAt}, nil
		},
	}
	o := newOrchestrator(t, auction, nil)

	svc, err := o.Launch(makeParams(t))
	require.NoError(t, err)
	require.True(t, called)

	assert.Equal(t, uint64(200_000), svc.Ledger.BalanceOf(operator))
	assert.Equal(t, uint64(800_000), svc.Ledger.BalanceOf(poolAt))
	assert.Zero(t, svc.Ledger.BalanceOf(orchestratorAt))
	require.NotNil(t, svc.Auction)
	assert.Equal(t, poolAt, svc.Auction.Pool)
}

func TestLaunch_FullOperatorShare_NoAuction(t *testing.T) {
	auction := &MockAuctionService{
		DistributeFn: func(common.Address, uint64, []byte, [32]byte) (Handle, error) {
			t.Fatal("auction must not be attempted at 10000 bps")
			return Handle{}, nil
		},
	}
	o := newOrchestrator(t, auction, nil)
	p := makeParams(t)
	p.OperatorShareBps = 10000

	svc, err := o.Launch(p)
	require.NoError(t, err)
	assert.Equal(t, p.TotalSupply, svc.Ledger.BalanceOf(operator))
	assert.Nil(t, svc.Auction)
}

func TestLaunch_ZeroOperatorShare(t *testing.T) {
	o := newOrchestrator(t, acceptingAuction(), nil)
	p := makeParams(t)
	p.OperatorShareBps = 0

	svc, err := o.Launch(p)
	require.NoError(t, err)
	assert.Zero(t, svc.Ledger.BalanceOf(operator))
	assert.Equal(t, p.TotalSupply, svc.Ledger.BalanceOf(poolAt))
}

// --- Auction fallback ---

func TestLaunch_AuctionFailureFallsBackToOperator(t *testing.T) {
	auction := &MockAuctionService{
		DistributeFn: func(common.Address, uint64, []byte, [32]byte) (Handle, error) {
			return Handle{}, errors.New("auction service unauthorized")
		},
	}
	o := newOrchestrator(t, auction, nil)
	p := makeParams(t)

	svc, err := o.Launch(p)
	require.NoError(t, err) // launch still succeeds

	assert.Equal(t, p.TotalSupply, svc.Ledger.BalanceOf(operator))
	assert.Nil(t, svc.Auction)
	assert.NotNil(t, svc.Ledger)
	assert.NotNil(t, svc.Collector)

	var skipped []Event
	for _, ev := range o.Events() {
		if ev.Kind == EventAuctionSkipped {
			skipped = append(skipped, ev)
		}
	}
	require.Len(t, skipped, 1)
	assert.Equal(t, uint64(800_000), skipped[0].Amount)
	assert.Contains(t, skipped[0].Reason, "unauthorized")
}

func TestLaunch_NoAuctionServiceConfigured(t *testing.T) {
	o := newOrchestrator(t, nil, nil)

	svc, err := o.Launch(makeParams(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), svc.Ledger.BalanceOf(operator))
	assert.Nil(t, svc.Auction)
}

func TestLaunch_ZeroPoolHandleTriggersFallback(t *testing.T) {
	// A handle pointing at the zero address cannot receive shares; the
	// orchestrator treats it as an auction failure.
	auction := &MockAuctionService{
		DistributeFn: func(common.Address, uint64, []byte, [32]byte) (Handle, error) {
			return Handle{}, nil
		},
	}
	o := newOrchestrator(t, auction, nil)

	svc, err := o.Launch(makeParams(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), svc.Ledger.BalanceOf(operator))
	assert.Nil(t, svc.Auction)
}

func TestLaunch_HandOffFailureReasonNamesAcceptedDistribution(t *testing.T) {
	// The auction service accepted the distribution, so it believes an
	// auction is live even though the shares never moved. The skip event
	// must single out this case and carry the accepted handle for
	// reconciliation, distinct from a plain service refusal.
	handleID := uuid.New()
	auction := &MockAuctionService{
		DistributeFn: func(common.Address, uint64, []byte, [32]byte) (Handle, error) {
			return Handle{ID: handleID}, nil // accepted, but pool is unusable
		},
	}
	o := newOrchestrator(t, auction, nil)

	svc, err := o.Launch(makeParams(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), svc.Ledger.BalanceOf(operator))

	var skipped []Event
	for _, ev := range o.Events() {
		if ev.Kind == EventAuctionSkipped {
			skipped = append(skipped, ev)
		}
	}
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Reason, "accepted but share hand-off failed")
	assert.Contains(t, skipped[0].Reason, handleID.String())
}

// --- Registry ---

func TestLaunch_RegistersService(t *testing.T) {
	idx := registry.NewIndex()
	o := newOrchestrator(t, acceptingAuction(), idx)

	svc, err := o.Launch(makeParams(t))
	require.NoError(t, err)

	rec, err := idx.ByLedger(svc.LedgerAddr)
	require.NoError(t, err)
	assert.Equal(t, "weather-api", rec.Name)
	assert.Equal(t, "data", rec.Category)
	assert.Equal(t, svc.CollectorAddr, rec.Collector)
	assert.Equal(t, uint32(2000), rec.OperatorShareBps)
}

func TestLaunch_RegistryFailureIsNonFatal(t *testing.T) {
	idx := failingIndex{}
	o := newOrchestrator(t, acceptingAuction(), idx)

	svc, err := o.Launch(makeParams(t))
	require.NoError(t, err)
	require.NotNil(t, svc)

	var skipped []Event
	for _, ev := range o.Events() {
		if ev.Kind == EventRegistrySkipped {
			skipped = append(skipped, ev)
		}
	}
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Reason, "registry down")
}

type failingIndex struct{}

func (failingIndex) Register(registry.Record) (int, error) {
	return 0, errors.New("registry down")
}

// --- Records and addressing ---

func TestGetService(t *testing.T) {
	o := newOrchestrator(t, acceptingAuction(), nil)

	svc, err := o.Launch(makeParams(t))
	require.NoError(t, err)

	got, err := o.GetService(svc.LedgerAddr)
	require.NoError(t, err)
	assert.Equal(t, svc.ID, got.ID)
	assert.Equal(t, operator, got.Operator)
	assert.Equal(t, fixedNow(), got.CreatedAt)

	_, err = o.GetService(makeAddr(0x7E))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLaunch_DeterministicAddressing(t *testing.T) {
	o := newOrchestrator(t, acceptingAuction(), nil)
	p := makeParams(t)

	svc, err := o.Launch(p)
	require.NoError(t, err)
	assert.NotEqual(t, svc.LedgerAddr, svc.CollectorAddr)

	// Same salt and parameters collide.
	_, err = o.Launch(p)
	assert.ErrorIs(t, err, ErrDuplicateLaunch)

	// A different salt yields fresh addresses.
	p.Salt[0] ^= 0xFF
	svc2, err := o.Launch(p)
	require.NoError(t, err)
	assert.NotEqual(t, svc.LedgerAddr, svc2.LedgerAddr)
}

// --- Config encoding ---

func TestEncodeDistributeConfig_Layout(t *testing.T) {
	p := makeParams(t)
	config := EncodeDistributeConfig(p)
	require.Len(t, config, configFixedSize+len(p.Schedule))

	assert.Equal(t, p.Operator.Bytes(), config[0:20])
	assert.Equal(t, uint64(p.AuctionStart), binary.BigEndian.Uint64(config[20:28]))
	assert.Equal(t, uint64(p.AuctionEnd), binary.BigEndian.Uint64(config[28:36]))
	assert.Equal(t, p.TickSize, binary.BigEndian.Uint64(config[36:44]))
	assert.Equal(t, p.FloorPrice, binary.BigEndian.Uint64(config[44:52]))
	assert.Equal(t, p.MinRaise, binary.BigEndian.Uint64(config[52:60]))

	// Schedule bytes are always the trailing field.
	assert.Equal(t, p.Schedule, config[configFixedSize:])
}

func TestLaunch_PassesConfigAndSaltToAuction(t *testing.T) {
	p := makeParams(t)
	var gotConfig []byte
	var gotSalt [32]byte
	auction := &MockAuctionService{
		DistributeFn: func(ledger common.Address, amount uint64, config []byte, salt [32]byte) (Handle, error) {
			gotConfig = config
			gotSalt = salt
			return Handle{Pool: poolAt}, nil
		},
	}
	o := newOrchestrator(t, auction, nil)

	_, err := o.Launch(p)
	require.NoError(t, err)
	assert.Equal(t, EncodeDistributeConfig(p), gotConfig)
	assert.Equal(t, p.Salt, gotSalt)
}
