package market

import (
	"math/big"
	"testing"
)

func TestParseSaleMode(t *testing.T) {
	cases := []struct {
		label string
		want  SaleMode
	}{
		{"fixed", SaleModeFixed},
		{"Fixed", SaleModeFixed},
		{" bidding ", SaleModeBidding},
	}
	for _, tc := range cases {
		got, err := ParseSaleMode(tc.label)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.label, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q = %v, want %v", tc.label, got, tc.want)
		}
	}
	if _, err := ParseSaleMode("dutch"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if SaleMode(0).Valid() || SaleMode(9).Valid() {
		t.Fatal("out-of-range modes must be invalid")
	}
}

func TestSanitizeListing(t *testing.T) {
	seller := newTestAddress(0x01)
	listing := &Listing{
		Collection: newTestAddress(0xAA),
		AssetID:    3,
		Seller:     seller,
		Mode:       SaleModeFixed,
	}
	sanitized, err := SanitizeListing(listing)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if sanitized.Price == nil || sanitized.Price.Sign() != 0 {
		t.Fatalf("nil price must normalise to zero, got %v", sanitized.Price)
	}
	// The input is untouched.
	if listing.Price != nil {
		t.Fatal("sanitize mutated its input")
	}

	if _, err := SanitizeListing(nil); err == nil {
		t.Fatal("expected error for nil listing")
	}
	listing.Price = big.NewInt(-1)
	if _, err := SanitizeListing(listing); err == nil {
		t.Fatal("expected error for negative price")
	}
	listing.Price = big.NewInt(1)
	listing.Mode = SaleMode(9)
	if _, err := SanitizeListing(listing); err == nil {
		t.Fatal("expected error for invalid mode")
	}
	listing.Mode = SaleModeFixed
	listing.Seller = [20]byte{}
	if _, err := SanitizeListing(listing); err == nil {
		t.Fatal("expected error for unset seller")
	}
}

func TestSanitizeOffer(t *testing.T) {
	offer := &Offer{
		Collection: newTestAddress(0xAA),
		AssetID:    3,
		Buyer:      newTestAddress(0x02),
		Amount:     big.NewInt(5),
	}
	sanitized, err := SanitizeOffer(offer)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	sanitized.Amount.SetInt64(99)
	if offer.Amount.Cmp(big.NewInt(5)) != 0 {
		t.Fatal("sanitize must return an independent copy")
	}

	offer.Amount = big.NewInt(0)
	if _, err := SanitizeOffer(offer); err == nil {
		t.Fatal("expected error for zero amount")
	}
	offer.Amount = big.NewInt(5)
	offer.Buyer = [20]byte{}
	if _, err := SanitizeOffer(offer); err == nil {
		t.Fatal("expected error for unset buyer")
	}
}

func TestListingClone(t *testing.T) {
	listing := &Listing{
		Collection: newTestAddress(0xAA),
		AssetID:    1,
		Seller:     newTestAddress(0x01),
		Price:      big.NewInt(10),
		Mode:       SaleModeBidding,
		CreatedAt:  42,
	}
	clone := listing.Clone()
	clone.Price.SetInt64(77)
	if listing.Price.Cmp(big.NewInt(10)) != 0 {
		t.Fatal("clone shares price with original")
	}
	if clone.Key() != listing.Key() {
		t.Fatal("clone changed the book key")
	}
}
