package market

import (
	"fmt"
	"math/big"
	"strings"
)

// SaleMode distinguishes the two listing flavours supported by the
// marketplace.
type SaleMode uint8

const (
	SaleModeFixed SaleMode = iota + 1
	SaleModeBidding
)

// Valid reports whether the mode value is within the supported range.
func (m SaleMode) Valid() bool {
	switch m {
	case SaleModeFixed, SaleModeBidding:
		return true
	default:
		return false
	}
}

// String returns the canonical wire label for the mode.
func (m SaleMode) String() string {
	switch m {
	case SaleModeFixed:
		return "fixed"
	case SaleModeBidding:
		return "bidding"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// ParseSaleMode converts a wire label back to a SaleMode.
func ParseSaleMode(label string) (SaleMode, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "fixed":
		return SaleModeFixed, nil
	case "bidding":
		return SaleModeBidding, nil
	default:
		return 0, fmt.Errorf("market: unknown sale mode %q", label)
	}
}

// ListingKey identifies the single listing/offer slot an asset may occupy.
type ListingKey struct {
	Collection [20]byte
	AssetID    uint64
}

// Listing records a seller's standing intent to sell one asset. At most one
// listing exists per key; relisting overwrites the previous record.
type Listing struct {
	Collection [20]byte
	AssetID    uint64
	Seller     [20]byte
	Price      *big.Int
	Mode       SaleMode
	CreatedAt  int64
}

// Key returns the book slot the listing occupies.
func (l *Listing) Key() ListingKey {
	if l == nil {
		return ListingKey{}
	}
	return ListingKey{Collection: l.Collection, AssetID: l.AssetID}
}

// Clone returns a deep copy of the listing so callers can safely mutate the
// copy without affecting the stored instance.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	clone := *l
	if l.Price != nil {
		clone.Price = new(big.Int).Set(l.Price)
	} else {
		clone.Price = big.NewInt(0)
	}
	return &clone
}

// SanitizeListing validates and normalises the supplied listing, returning a
// cloned instance with a non-nil price. The original value is not mutated.
func SanitizeListing(l *Listing) (*Listing, error) {
	if l == nil {
		return nil, fmt.Errorf("market: nil listing")
	}
	clone := l.Clone()
	if clone.Price.Sign() < 0 {
		return nil, fmt.Errorf("market: listing price must be non-negative")
	}
	if !clone.Mode.Valid() {
		return nil, fmt.Errorf("market: invalid sale mode %d", clone.Mode)
	}
	if clone.Seller == ([20]byte{}) {
		return nil, fmt.Errorf("market: listing seller not set")
	}
	return clone, nil
}

// Offer is the current best standing bid against an asset. Only the best
// offer is retained; a strictly greater bid replaces it.
type Offer struct {
	Collection [20]byte
	AssetID    uint64
	Buyer      [20]byte
	Amount     *big.Int
	CreatedAt  int64
}

// Key returns the book slot the offer occupies.
func (o *Offer) Key() ListingKey {
	if o == nil {
		return ListingKey{}
	}
	return ListingKey{Collection: o.Collection, AssetID: o.AssetID}
}

// Clone returns a deep copy of the offer.
func (o *Offer) Clone() *Offer {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Amount != nil {
		clone.Amount = new(big.Int).Set(o.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	return &clone
}

// SanitizeOffer validates and normalises the supplied offer. The original
// value is not mutated.
func SanitizeOffer(o *Offer) (*Offer, error) {
	if o == nil {
		return nil, fmt.Errorf("market: nil offer")
	}
	clone := o.Clone()
	if clone.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("market: offer amount must be positive")
	}
	if clone.Buyer == ([20]byte{}) {
		return nil, fmt.Errorf("market: offer buyer not set")
	}
	return clone, nil
}

// Collection is the factory's record of a deployed asset collection. The
// record is immutable once written and is never deleted; minting is only
// permitted against collections the factory created.
type Collection struct {
	Address          [20]byte
	Name             string
	Symbol           string
	BaseMetadataRef  string
	CreatedByFactory bool
	CreatedAt        int64
}

// Clone returns a copy of the collection record.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
