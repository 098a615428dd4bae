package tokenclient

import (
	"context"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/flexvote-io/flexvote/internal/checkpoints"
)

// MemoryLedger is an in-process votes-token ledger: balances, one-level
// delegation, and checkpointed voting power per delegate, all keyed by the
// same logical height. It doubles as the clock for everything downstream:
// the governor and the pool read the current time index from here.
//
// Mint and Burn are the external-effect hooks: interest accrual, lending
// returns, or rebasing show up as mints/burns against an address (typically
// the pool), moving its actual balance away from its raw deposit total.
type MemoryLedger struct {
	mu sync.Mutex

	height     uint64
	balances   map[string]sdkmath.Uint
	delegateOf map[string]string
	votes      *checkpoints.Store
	supply     *checkpoints.Sequence
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances:   make(map[string]sdkmath.Uint),
		delegateOf: make(map[string]string),
		votes:      checkpoints.NewStore(),
		supply:     checkpoints.NewSequence(),
	}
}

// CurrentTimeIndex returns the ledger's logical height.
func (l *MemoryLedger) CurrentTimeIndex() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.height
}

// AdvanceToHeight moves the ledger clock forward. Moving backwards is
// rejected so checkpoint time indexes stay monotonic.
func (l *MemoryLedger) AdvanceToHeight(height uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if height < l.height {
		return fmt.Errorf("height %d is behind current height %d", height, l.height)
	}
	l.height = height
	return nil
}

func (l *MemoryLedger) BalanceOf(_ context.Context, address string) (sdkmath.Uint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceOf(address), nil
}

// GetPastVotes returns the address's checkpointed voting power as of
// timeIndex: its own balance plus everything delegated to it, as recorded
// when the transfers and delegations happened.
func (l *MemoryLedger) GetPastVotes(_ context.Context, address string, timeIndex uint64) (sdkmath.Uint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.votes.Sequence(address).ValueAt(timeIndex), nil
}

// Delegate redirects owner's voting power to delegatee. Owners self-delegate
// by default the first time they receive tokens.
func (l *MemoryLedger) Delegate(_ context.Context, owner, delegatee string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	previous := l.delegate(owner)
	if previous == delegatee {
		return nil
	}
	balance := l.balanceOf(owner)
	if err := l.moveVotes(previous, delegatee, balance); err != nil {
		return err
	}
	l.delegateOf[owner] = delegatee
	return nil
}

func (l *MemoryLedger) Transfer(_ context.Context, from, to string, amount sdkmath.Uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balanceOf(from)
	if amount.GT(balance) {
		return fmt.Errorf("transfer of %s exceeds balance %s of %s", amount, balance, from)
	}
	l.balances[from] = balance.Sub(amount)
	l.balances[to] = l.balanceOf(to).Add(amount)
	return l.moveVotes(l.delegate(from), l.delegate(to), amount)
}

// Mint credits amount to an address out of thin air.
func (l *MemoryLedger) Mint(address string, amount sdkmath.Uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.supply.Add(l.height, amount); err != nil {
		return err
	}
	l.balances[address] = l.balanceOf(address).Add(amount)
	return l.votes.Sequence(l.delegate(address)).Add(l.height, amount)
}

// Burn debits amount from an address.
func (l *MemoryLedger) Burn(address string, amount sdkmath.Uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balanceOf(address)
	if amount.GT(balance) {
		return fmt.Errorf("burn of %s exceeds balance %s of %s", amount, balance, address)
	}
	if err := l.supply.Sub(l.height, amount); err != nil {
		return err
	}
	l.balances[address] = balance.Sub(amount)
	return l.votes.Sequence(l.delegate(address)).Sub(l.height, amount)
}

// TotalSupplyAt returns the checkpointed total supply as of timeIndex.
func (l *MemoryLedger) TotalSupplyAt(timeIndex uint64) sdkmath.Uint {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.supply.ValueAt(timeIndex)
}

func (l *MemoryLedger) balanceOf(address string) sdkmath.Uint {
	if b, ok := l.balances[address]; ok {
		return b
	}
	return sdkmath.ZeroUint()
}

func (l *MemoryLedger) delegate(owner string) string {
	if d, ok := l.delegateOf[owner]; ok {
		return d
	}
	return owner
}

func (l *MemoryLedger) moveVotes(from, to string, amount sdkmath.Uint) error {
	if from == to || amount.IsZero() {
		return nil
	}
	if err := l.votes.Sequence(from).Sub(l.height, amount); err != nil {
		return err
	}
	return l.votes.Sequence(to).Add(l.height, amount)
}
