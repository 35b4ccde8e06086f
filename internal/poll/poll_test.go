package poll

import (
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	authority = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	stranger  = common.HexToAddress("0x00000000000000000000000000000000000000ee")
	nft1      = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	nft2      = common.HexToAddress("0x00000000000000000000000000000000000000f2")
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func validRequest(now time.Time) CreateRequest {
	return CreateRequest{
		Authority:  authority,
		Title:      "Which outcome wins?",
		ClosesAt:   now.Add(time.Hour).Unix(),
		NFT1:       nft1,
		NFT2:       nft2,
		NFT1Shares: 1_000_000_000,
		NFT2Shares: 1_000_000_000,
	}
}

func TestCreatePoll(t *testing.T) {
	now := time.Now()
	m := NewManager()
	m.SetClock(fixedClock(now))

	p, err := m.Create(validRequest(now))
	require.NoError(t, err)
	require.Equal(t, StatusActive, p.Status)
	require.Equal(t, authority, p.Authority)
	require.Nil(t, p.WinningNFT)

	// k is the creation-time product of the reserves
	want := new(uint256.Int).Mul(
		uint256.NewInt(1_000_000_000),
		uint256.NewInt(1_000_000_000),
	)
	require.Equal(t, want, p.K)
	require.Equal(t, "1000000000000000000", p.K.Dec())

	got, ok := m.Get(p.ID)
	require.True(t, ok)
	require.Same(t, p, got)
}

func TestCreatePollValidation(t *testing.T) {
	now := time.Now()
	m := NewManager()
	m.SetClock(fixedClock(now))

	req := validRequest(now)
	req.NFT1Shares = 0
	_, err := m.Create(req)
	require.ErrorIs(t, err, ErrInvalidShares)

	req = validRequest(now)
	req.NFT2Shares = 0
	_, err = m.Create(req)
	require.ErrorIs(t, err, ErrInvalidShares)

	req = validRequest(now)
	req.NFT2 = req.NFT1
	_, err = m.Create(req)
	require.ErrorIs(t, err, ErrDuplicateOutcome)

	req = validRequest(now)
	req.ClosesAt = now.Unix() // not strictly future
	_, err = m.Create(req)
	require.ErrorIs(t, err, ErrClosesAtPast)

	req = validRequest(now)
	req.ClosesAt = now.Add(-time.Hour).Unix()
	_, err = m.Create(req)
	require.ErrorIs(t, err, ErrClosesAtPast)

	// Nothing was allocated
	require.Empty(t, m.List())
}

func TestCreatePollTruncatesTitle(t *testing.T) {
	now := time.Now()
	m := NewManager()
	m.SetClock(fixedClock(now))

	req := validRequest(now)
	req.Title = strings.Repeat("x", 200)
	p, err := m.Create(req)
	require.NoError(t, err)
	require.Len(t, p.Title, TitleCapacity)
}

func TestResolvePoll(t *testing.T) {
	now := time.Now()
	m := NewManager()
	m.SetClock(fixedClock(now))
	p, err := m.Create(validRequest(now))
	require.NoError(t, err)

	resolved, err := m.Resolve(ResolveRequest{
		PollID:     p.ID,
		Caller:     authority,
		WinningNFT: nft1,
	})
	require.NoError(t, err)
	require.Equal(t, StatusResolved, resolved.Status)
	require.NotNil(t, resolved.WinningNFT)
	require.Equal(t, nft1, *resolved.WinningNFT)
}

func TestResolvePollAuthorization(t *testing.T) {
	now := time.Now()
	m := NewManager()
	m.SetClock(fixedClock(now))
	p, err := m.Create(validRequest(now))
	require.NoError(t, err)

	// Wrong caller
	_, err = m.Resolve(ResolveRequest{PollID: p.ID, Caller: stranger, WinningNFT: nft1})
	require.ErrorIs(t, err, ErrUnauthorized)

	// Right caller, mismatched admin identity
	_, err = m.Resolve(ResolveRequest{PollID: p.ID, Caller: authority, Admin: &stranger, WinningNFT: nft1})
	require.ErrorIs(t, err, ErrUnauthorized)

	// Right caller, matching admin identity
	admin := authority
	resolved, err := m.Resolve(ResolveRequest{PollID: p.ID, Caller: authority, Admin: &admin, WinningNFT: nft1})
	require.NoError(t, err)
	require.Equal(t, StatusResolved, resolved.Status)
}

func TestResolvePollExactlyOnce(t *testing.T) {
	now := time.Now()
	m := NewManager()
	m.SetClock(fixedClock(now))
	p, err := m.Create(validRequest(now))
	require.NoError(t, err)

	_, err = m.Resolve(ResolveRequest{PollID: p.ID, Caller: authority, WinningNFT: nft2})
	require.NoError(t, err)

	_, err = m.Resolve(ResolveRequest{PollID: p.ID, Caller: authority, WinningNFT: nft1})
	require.ErrorIs(t, err, ErrAlreadyResolved)

	// The winning outcome did not change
	require.Equal(t, nft2, *p.WinningNFT)
}

func TestResolvePollInvalidOutcome(t *testing.T) {
	now := time.Now()
	m := NewManager()
	m.SetClock(fixedClock(now))
	p, err := m.Create(validRequest(now))
	require.NoError(t, err)

	other := common.HexToAddress("0x00000000000000000000000000000000000000f9")
	_, err = m.Resolve(ResolveRequest{PollID: p.ID, Caller: authority, WinningNFT: other})
	require.ErrorIs(t, err, ErrInvalidOutcome)
	require.Equal(t, StatusActive, p.Status)
}

func TestResolveClosedPoll(t *testing.T) {
	now := time.Now()
	m := NewManager()
	m.SetClock(fixedClock(now))
	p, err := m.Create(validRequest(now))
	require.NoError(t, err)

	require.NoError(t, m.Close(p.ID))
	require.Equal(t, StatusClosed, p.Status)

	// A closed (deadline-passed) poll is still resolvable by its authority
	_, err = m.Resolve(ResolveRequest{PollID: p.ID, Caller: authority, WinningNFT: nft1})
	require.NoError(t, err)
}

func TestCancelPoll(t *testing.T) {
	now := time.Now()
	m := NewManager()
	m.SetClock(fixedClock(now))
	p, err := m.Create(validRequest(now))
	require.NoError(t, err)

	_, err = m.Cancel(CancelRequest{PollID: p.ID, Caller: stranger})
	require.ErrorIs(t, err, ErrUnauthorized)

	canceled, err := m.Cancel(CancelRequest{PollID: p.ID, Caller: authority})
	require.NoError(t, err)
	require.Equal(t, StatusCanceled, canceled.Status)

	// Canceled polls never resolve
	_, err = m.Resolve(ResolveRequest{PollID: p.ID, Caller: authority, WinningNFT: nft1})
	require.ErrorIs(t, err, ErrPollCanceled)

	_, err = m.Cancel(CancelRequest{PollID: p.ID, Caller: authority})
	require.ErrorIs(t, err, ErrPollCanceled)
}

func TestCancelResolvedPoll(t *testing.T) {
	now := time.Now()
	m := NewManager()
	m.SetClock(fixedClock(now))
	p, err := m.Create(validRequest(now))
	require.NoError(t, err)

	_, err = m.Resolve(ResolveRequest{PollID: p.ID, Caller: authority, WinningNFT: nft1})
	require.NoError(t, err)

	_, err = m.Cancel(CancelRequest{PollID: p.ID, Caller: authority})
	require.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestLifecycleClosesExpiredPolls(t *testing.T) {
	now := time.Now()
	m := NewManager()
	m.SetClock(fixedClock(now))

	p, err := m.Create(validRequest(now))
	require.NoError(t, err)

	lm := NewLifecycleManager(m, time.Second)

	// Deadline not reached: stays active
	lm.CheckAndClosePolls()
	require.Equal(t, StatusActive, p.Status)

	// Move the clock past the deadline
	m.SetClock(fixedClock(now.Add(2 * time.Hour)))
	lm.CheckAndClosePolls()
	require.Equal(t, StatusClosed, p.Status)

	// Idempotent on a second sweep
	lm.CheckAndClosePolls()
	require.Equal(t, StatusClosed, p.Status)
}

func TestAuthorizedGuard(t *testing.T) {
	p := &Poll{Authority: authority}

	require.True(t, Authorized(authority, nil, p))
	require.False(t, Authorized(stranger, nil, p))

	admin := authority
	require.True(t, Authorized(authority, &admin, p))
	require.False(t, Authorized(authority, &stranger, p))
	require.False(t, Authorized(stranger, &admin, p))
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "active", StatusActive.String())
	require.Equal(t, "closed", StatusClosed.String())
	require.Equal(t, "resolved", StatusResolved.String())
	require.Equal(t, "canceled", StatusCanceled.String())
	require.Equal(t, "unknown", Status(42).String())
}
