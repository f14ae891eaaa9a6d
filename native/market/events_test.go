package market

import (
	"math/big"
	"testing"

	"nftmarket/crypto"
)

func TestNewListedEventAttributes(t *testing.T) {
	seller := newTestAddress(0x01)
	collection := newTestAddress(0xAA)
	evt := NewListedEvent(&Listing{
		Collection: collection,
		AssetID:    7,
		Seller:     seller,
		Price:      big.NewInt(125),
		Mode:       SaleModeBidding,
	})
	if evt.Type != EventTypeListedNFT {
		t.Fatalf("unexpected type %s", evt.Type)
	}
	if evt.Attributes["assetId"] != "7" {
		t.Fatalf("assetId = %s", evt.Attributes["assetId"])
	}
	if evt.Attributes["price"] != "125" {
		t.Fatalf("price = %s", evt.Attributes["price"])
	}
	if evt.Attributes["mode"] != "bidding" {
		t.Fatalf("mode = %s", evt.Attributes["mode"])
	}
	wantOwner := crypto.MustNewAddress(crypto.MarketPrefix, seller[:]).String()
	if evt.Attributes["owner"] != wantOwner {
		t.Fatalf("owner = %s, want %s", evt.Attributes["owner"], wantOwner)
	}
}

func TestNewOfferEventAttributes(t *testing.T) {
	evt := NewOfferEvent(&Offer{
		Collection: newTestAddress(0xAA),
		AssetID:    3,
		Buyer:      newTestAddress(0x02),
		Amount:     big.NewInt(40),
	})
	if evt.Type != EventTypeMakeOffer {
		t.Fatalf("unexpected type %s", evt.Type)
	}
	if evt.Attributes["offerAmount"] != "40" || evt.Attributes["assetId"] != "3" {
		t.Fatalf("unexpected attributes %v", evt.Attributes)
	}
	if evt.Attributes["buyer"] == "" {
		t.Fatal("buyer attribute missing")
	}
}

func TestEventConstructorsTolerateBadInput(t *testing.T) {
	if evt := NewListedEvent(nil); len(evt.Attributes) != 0 {
		t.Fatalf("nil listing should yield empty attributes, got %v", evt.Attributes)
	}
	if evt := NewOfferEvent(&Offer{Amount: big.NewInt(-1)}); len(evt.Attributes) != 0 {
		t.Fatalf("invalid offer should yield empty attributes, got %v", evt.Attributes)
	}
}
