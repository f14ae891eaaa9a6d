package market

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"nftmarket/core/events"
	"nftmarket/core/types"
	nativecommon "nftmarket/native/common"
)

const marketModuleName = "market"

type engineState interface {
	ListingPut(*Listing) error
	ListingGet(ListingKey) (*Listing, bool)
	ListingDelete(ListingKey) error
	OfferPut(*Offer) error
	OfferGet(ListingKey) (*Offer, bool)
	OfferDelete(ListingKey) error
	CollectionGet(addr [20]byte) (*Collection, bool)
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

type marketEvent struct {
	evt *types.Event
}

func (e marketEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e marketEvent) Event() *types.Event { return e.evt }

// Engine is the marketplace state machine. It keeps the listing and offer
// books and orchestrates asset registries and the credit ledger so that a
// sale either fully applies its asset and value effects or none of them.
//
// Operations are serialized by a single mutex and mutate book state before
// performing external transfers, so a transfer callback can never observe a
// stale listing or offer for the key being settled.
type Engine struct {
	mu       sync.Mutex
	state    engineState
	emitter  events.Emitter
	resolver RegistryResolver
	credit   CreditLedger
	operator [20]byte
	nowFn    func() int64
	pauses   nativecommon.PauseView
}

// NewEngine creates a marketplace engine with a no-op emitter. The operator
// address identifies the marketplace for approval and allowance checks.
func NewEngine(operator [20]byte) *Engine {
	return &Engine{
		emitter:  events.NoopEmitter{},
		operator: operator,
		nowFn:    func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetResolver configures the lookup used to bind collection addresses to
// their asset registries.
func (e *Engine) SetResolver(resolver RegistryResolver) { e.resolver = resolver }

// SetCreditLedger configures the fungible-currency binding used by bidding.
func (e *Engine) SetCreditLedger(credit CreditLedger) { e.credit = credit }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPauses configures the operator pause switch consulted by every
// mutating operation.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetNowFunc overrides the time source, primarily used in tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// Operator returns the marketplace operator address the engine checks
// approvals and allowances against.
func (e *Engine) Operator() [20]byte { return e.operator }

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(marketEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) registry(collection [20]byte) (AssetRegistry, error) {
	if e.resolver == nil {
		return nil, errNilResolver
	}
	reg, ok := e.resolver.Registry(collection)
	if !ok {
		return nil, errUnknownRegistry
	}
	return reg, nil
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func ensureAccount(acc *types.Account) *types.Account {
	if acc == nil {
		return &types.Account{Balance: big.NewInt(0)}
	}
	if acc.Balance == nil {
		acc.Balance = big.NewInt(0)
	}
	return acc
}

// moveNative moves amount of the native value unit between accounts. The
// caller is responsible for having validated the sender balance.
func (e *Engine) moveNative(from, to [20]byte, amount *big.Int) error {
	amt := cloneBigInt(amount)
	if amt.Sign() == 0 {
		return nil
	}
	if amt.Sign() < 0 {
		return fmt.Errorf("market: negative transfer amount")
	}
	fromAcc, err := e.state.GetAccount(from[:])
	if err != nil {
		return err
	}
	toAcc, err := e.state.GetAccount(to[:])
	if err != nil {
		return err
	}
	fromAcc = ensureAccount(fromAcc)
	toAcc = ensureAccount(toAcc)
	if fromAcc.Balance.Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	fromAcc.Balance = new(big.Int).Sub(fromAcc.Balance, amt)
	toAcc.Balance = new(big.Int).Add(toAcc.Balance, amt)
	if err := e.state.PutAccount(from[:], fromAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(to[:], toAcc); err != nil {
		return err
	}
	return nil
}

// ListFixedPrice writes a fixed-price listing for the asset. The seller must
// own the asset and the marketplace must currently be an approved operator
// for it. An existing listing for the key is overwritten.
func (e *Engine) ListFixedPrice(seller [20]byte, price *big.Int, assetID uint64, collection [20]byte) error {
	return e.list(seller, price, assetID, collection, SaleModeFixed)
}

// ListBidding writes a bidding listing for the asset under the same
// ownership and approval preconditions as ListFixedPrice.
func (e *Engine) ListBidding(seller [20]byte, price *big.Int, assetID uint64, collection [20]byte) error {
	return e.list(seller, price, assetID, collection, SaleModeBidding)
}

func (e *Engine) list(seller [20]byte, price *big.Int, assetID uint64, collection [20]byte, mode SaleMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, marketModuleName); err != nil {
		return err
	}
	reg, err := e.registry(collection)
	if err != nil {
		return err
	}
	owner, err := reg.OwnerOf(assetID)
	if err != nil {
		return err
	}
	if owner != seller {
		return ErrNotOwner
	}
	approved, err := reg.IsApprovedFor(assetID, e.operator)
	if err != nil {
		return err
	}
	if !approved {
		return ErrNotApproved
	}
	listing, err := SanitizeListing(&Listing{
		Collection: collection,
		AssetID:    assetID,
		Seller:     seller,
		Price:      price,
		Mode:       mode,
		CreatedAt:  e.now(),
	})
	if err != nil {
		return err
	}
	if err := e.state.ListingPut(listing); err != nil {
		return err
	}
	e.emit(NewListedEvent(listing))
	return nil
}

// Cancel removes the listing for the key. Any caller may cancel any listing;
// authorization is not restricted to the seller. Cancelling a non-existent
// listing is a hard failure rather than a silent no-op.
func (e *Engine) Cancel(caller [20]byte, assetID uint64, collection [20]byte) error {
	_ = caller
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, marketModuleName); err != nil {
		return err
	}
	key := ListingKey{Collection: collection, AssetID: assetID}
	if _, ok := e.state.ListingGet(key); !ok {
		return ErrNoListing
	}
	if err := e.state.ListingDelete(key); err != nil {
		return err
	}
	e.emit(NewCancelListingEvent(assetID, collection))
	return nil
}

// BuyFixedPrice settles a fixed-price listing. The buyer tenders native
// value; the seller receives exactly the listing price and any excess is
// returned to the buyer. The listing is cleared before the external asset
// transfer so reentrant callers cannot observe it, and every failure path
// restores the books and balances exactly as they were.
func (e *Engine) BuyFixedPrice(buyer [20]byte, assetID uint64, collection [20]byte, tendered *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, marketModuleName); err != nil {
		return err
	}
	key := ListingKey{Collection: collection, AssetID: assetID}
	listing, ok := e.state.ListingGet(key)
	if !ok || listing.Mode != SaleModeFixed {
		return ErrNoFixedListing
	}
	tender := cloneBigInt(tendered)
	if tender.Cmp(listing.Price) < 0 {
		return ErrInsufficientPayment
	}
	reg, err := e.registry(collection)
	if err != nil {
		return err
	}
	// The approval granted at listing time must still hold; a seller who
	// revoked it since then fails the purchase before anything moves.
	approved, err := reg.IsApprovedFor(assetID, e.operator)
	if err != nil {
		return err
	}
	if !approved {
		return ErrNotApproved
	}
	buyerAcc, err := e.state.GetAccount(buyer[:])
	if err != nil {
		return err
	}
	if ensureAccount(buyerAcc).Balance.Cmp(tender) < 0 {
		return ErrInsufficientBalance
	}
	if err := e.state.ListingDelete(key); err != nil {
		return err
	}
	// The net movement is the listing price: the tender is debited and the
	// change credited back within the same operation.
	if err := e.moveNative(buyer, listing.Seller, listing.Price); err != nil {
		if putErr := e.state.ListingPut(listing); putErr != nil {
			return fmt.Errorf("market: restore listing after failed payment: %w", putErr)
		}
		return err
	}
	if err := reg.Transfer(listing.Seller, buyer, assetID); err != nil {
		if backErr := e.moveNative(listing.Seller, buyer, listing.Price); backErr != nil {
			return fmt.Errorf("market: reverse payment after failed transfer: %w", backErr)
		}
		if putErr := e.state.ListingPut(listing); putErr != nil {
			return fmt.Errorf("market: restore listing after failed transfer: %w", putErr)
		}
		return fmt.Errorf("%w: %v", ErrNotApproved, err)
	}
	e.emit(NewBoughtEvent(assetID, collection, buyer))
	return nil
}

// MakeOffer records the buyer's bid as the new best offer for the key. No
// funds move; the buyer's balance and allowance are only validated, and are
// re-validated at acceptance time. Offers against unlisted assets are legal:
// only an existing fixed-price listing blocks bidding.
func (e *Engine) MakeOffer(buyer [20]byte, amount *big.Int, assetID uint64, collection [20]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	if e.credit == nil {
		return errNilCredit
	}
	if err := nativecommon.Guard(e.pauses, marketModuleName); err != nil {
		return err
	}
	key := ListingKey{Collection: collection, AssetID: assetID}
	if listing, ok := e.state.ListingGet(key); ok && listing.Mode == SaleModeFixed {
		return ErrBiddingUnavailable
	}
	amt := cloneBigInt(amount)
	if amt.Sign() <= 0 {
		return ErrPriceTooLow
	}
	if best, ok := e.state.OfferGet(key); ok && amt.Cmp(best.Amount) <= 0 {
		return ErrPriceTooLow
	}
	if e.credit.BalanceOf(buyer).Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	if e.credit.AllowanceOf(buyer, e.operator).Cmp(amt) < 0 {
		return ErrInsufficientAllowance
	}
	offer, err := SanitizeOffer(&Offer{
		Collection: collection,
		AssetID:    assetID,
		Buyer:      buyer,
		Amount:     amt,
		CreatedAt:  e.now(),
	})
	if err != nil {
		return err
	}
	if err := e.state.OfferPut(offer); err != nil {
		return err
	}
	e.emit(NewOfferEvent(offer))
	return nil
}

// AcceptOffer settles the best standing offer for the key: the offered
// amount of credit currency is pulled from the bidder to the asset's current
// owner and the asset is transferred to the bidder. Both book entries are
// cleared first; a failure in either transfer restores all prior state.
// Acceptance does not require a listing, matching offer submission.
func (e *Engine) AcceptOffer(seller [20]byte, assetID uint64, collection [20]byte) error {
	// The asset moves from whoever currently owns it; the caller is not
	// required to be the owner, matching the cancellation authorization.
	_ = seller
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	if e.credit == nil {
		return errNilCredit
	}
	if err := nativecommon.Guard(e.pauses, marketModuleName); err != nil {
		return err
	}
	key := ListingKey{Collection: collection, AssetID: assetID}
	listing, hasListing := e.state.ListingGet(key)
	if hasListing && listing.Mode == SaleModeFixed {
		return ErrNotForBidSale
	}
	offer, ok := e.state.OfferGet(key)
	if !ok {
		return ErrNoOffer
	}
	reg, err := e.registry(collection)
	if err != nil {
		return err
	}
	owner, err := reg.OwnerOf(assetID)
	if err != nil {
		return err
	}
	// Approval may have been granted long after the offer, or revoked since
	// listing; it is checked now, not assumed from submission time.
	approved, err := reg.IsApprovedFor(assetID, e.operator)
	if err != nil {
		return err
	}
	if !approved {
		return ErrNotApproved
	}
	if e.credit.BalanceOf(offer.Buyer).Cmp(offer.Amount) < 0 {
		return ErrInsufficientBalance
	}
	if e.credit.AllowanceOf(offer.Buyer, e.operator).Cmp(offer.Amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := e.state.OfferDelete(key); err != nil {
		return err
	}
	if hasListing {
		if err := e.state.ListingDelete(key); err != nil {
			if putErr := e.state.OfferPut(offer); putErr != nil {
				return fmt.Errorf("market: restore offer after failed delist: %w", putErr)
			}
			return err
		}
	}
	restoreBooks := func() error {
		if err := e.state.OfferPut(offer); err != nil {
			return err
		}
		if hasListing {
			return e.state.ListingPut(listing)
		}
		return nil
	}
	if err := reg.Transfer(owner, offer.Buyer, assetID); err != nil {
		if restoreErr := restoreBooks(); restoreErr != nil {
			return fmt.Errorf("market: restore books after failed transfer: %w", restoreErr)
		}
		return fmt.Errorf("%w: %v", ErrNotApproved, err)
	}
	if err := e.credit.TransferFrom(offer.Buyer, owner, offer.Amount); err != nil {
		// Return the asset to its previous owner before surfacing the error.
		if backErr := reg.Transfer(offer.Buyer, owner, assetID); backErr != nil {
			return fmt.Errorf("market: reverse transfer after failed payment: %w", backErr)
		}
		if restoreErr := restoreBooks(); restoreErr != nil {
			return fmt.Errorf("market: restore books after failed payment: %w", restoreErr)
		}
		return err
	}
	e.emit(NewBoughtEvent(assetID, collection, offer.Buyer))
	return nil
}

// ListingFor returns a copy of the listing for the key, if any.
func (e *Engine) ListingFor(assetID uint64, collection [20]byte) (*Listing, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, false
	}
	listing, ok := e.state.ListingGet(ListingKey{Collection: collection, AssetID: assetID})
	if !ok {
		return nil, false
	}
	return listing.Clone(), true
}

// OfferFor returns a copy of the best standing offer for the key, if any.
func (e *Engine) OfferFor(assetID uint64, collection [20]byte) (*Offer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, false
	}
	offer, ok := e.state.OfferGet(ListingKey{Collection: collection, AssetID: assetID})
	if !ok {
		return nil, false
	}
	return offer.Clone(), true
}
