package memory

import (
	"context"
	"fmt"
	"sync"

	domainerrors "gavel/contexts/trading/auction-engine/domain/errors"

	"github.com/shopspring/decimal"
)

// PaymentLedger is an in-memory payment adapter. It tracks per-account asset
// balances and moves funds between accounts and the engine vault. Failures can
// be injected per asset to exercise transfer rollback paths.
type PaymentLedger struct {
	mu       sync.Mutex
	balances map[string]map[string]decimal.Decimal
	failing  map[string]bool
}

const vaultAccount = "vault"

func NewPaymentLedger() *PaymentLedger {
	return &PaymentLedger{
		balances: make(map[string]map[string]decimal.Decimal),
		failing:  make(map[string]bool),
	}
}

// Credit seeds an account balance. Test helper.
func (p *PaymentLedger) Credit(account, asset string, amount decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.credit(account, asset, amount)
}

// FailTransfers toggles injected transfer failures for one asset.
func (p *PaymentLedger) FailTransfers(asset string, fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failing[asset] = fail
}

func (p *PaymentLedger) Balance(account, asset string) decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	byAsset, ok := p.balances[account]
	if !ok {
		return decimal.Zero
	}
	balance, ok := byAsset[asset]
	if !ok {
		return decimal.Zero
	}
	return balance
}

func (p *PaymentLedger) Custody(_ context.Context, asset, from string, amount decimal.Decimal) error {
	return p.move(asset, from, vaultAccount, amount)
}

func (p *PaymentLedger) Release(_ context.Context, asset, to string, amount decimal.Decimal) error {
	return p.move(asset, vaultAccount, to, amount)
}

func (p *PaymentLedger) Pull(_ context.Context, asset, from string, amount decimal.Decimal) error {
	return p.move(asset, from, vaultAccount, amount)
}

func (p *PaymentLedger) move(asset, from, to string, amount decimal.Decimal) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failing[asset] {
		return fmt.Errorf("%w: transfers disabled for asset %s", domainerrors.ErrTransferFailed, asset)
	}
	if amount.IsNegative() {
		return domainerrors.ErrInvalidAmount
	}
	current := decimal.Zero
	if byAsset, ok := p.balances[from]; ok {
		current = byAsset[asset]
	}
	if current.LessThan(amount) {
		return fmt.Errorf("%w: insufficient %s balance for %s", domainerrors.ErrTransferFailed, asset, from)
	}
	if _, ok := p.balances[from]; !ok {
		p.balances[from] = make(map[string]decimal.Decimal)
	}
	p.balances[from][asset] = current.Sub(amount)
	p.credit(to, asset, amount)
	return nil
}

func (p *PaymentLedger) credit(account, asset string, amount decimal.Decimal) {
	byAsset, ok := p.balances[account]
	if !ok {
		byAsset = make(map[string]decimal.Decimal)
		p.balances[account] = byAsset
	}
	byAsset[asset] = byAsset[asset].Add(amount)
}
