package market

import "errors"

// Authorization failures: the caller or the asset state does not satisfy an
// operation precondition.
var (
	ErrUnauthorizedCollection = errors.New("market: collection not created by factory")
	ErrNotOwner               = errors.New("market: caller is not the asset owner")
	ErrNotApproved            = errors.New("market: marketplace is not approved for the asset")
)

// Listing-state mismatches: the operation targeted a listing of the wrong
// mode, or a book entry that does not exist.
var (
	ErrNoFixedListing     = errors.New("market: no fixed-price listing for asset")
	ErrNotForBidSale      = errors.New("market: listing is not open for bidding")
	ErrBiddingUnavailable = errors.New("market: bidding unavailable for fixed-price listing")
	ErrNoListing          = errors.New("market: no listing for asset")
	ErrNoOffer            = errors.New("market: no standing offer for asset")
)

// Value failures.
var (
	ErrInsufficientPayment   = errors.New("market: tendered value below listing price")
	ErrInsufficientBalance   = errors.New("market: insufficient balance")
	ErrInsufficientAllowance = errors.New("market: insufficient allowance")
	ErrPriceTooLow           = errors.New("market: offer does not beat the standing offer")
)

var (
	errNilState         = errors.New("market engine: state not configured")
	errNilCredit        = errors.New("market engine: credit ledger not configured")
	errNilResolver      = errors.New("market engine: registry resolver not configured")
	errUnknownRegistry  = errors.New("market engine: no registry bound for collection")
	errNilFactoryState  = errors.New("collection factory: state not configured")
	errNilFactoryDeploy = errors.New("collection factory: deployer not configured")
)
