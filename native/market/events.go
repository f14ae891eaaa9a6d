package market

import (
	"strconv"

	"nftmarket/core/types"
	"nftmarket/crypto"
)

// Canonical event type names consumed by callers and indexers.
const (
	EventTypeCollectionCreated = "CollectionCreated"
	EventTypeListedNFT         = "ListedNFT"
	EventTypeMakeOffer         = "MakeOffer"
	EventTypeNFTBought         = "NFTBought"
	EventTypeCancelListing     = "CancelListing"
)

func renderAddress(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.MarketPrefix, addr[:]).String()
}

// NewCollectionCreatedEvent returns the payload emitted when the factory
// deploys a new collection. Fields: collectionName, collectionAddress.
func NewCollectionCreatedEvent(name string, addr [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeCollectionCreated,
		Attributes: map[string]string{
			"collectionName":    name,
			"collectionAddress": renderAddress(addr),
		},
	}
}

// NewListedEvent returns the payload emitted when an asset is listed.
// Fields: assetId, owner, collectionAddress, mode, price.
func NewListedEvent(l *Listing) *types.Event {
	attrs := make(map[string]string)
	if l == nil {
		return &types.Event{Type: EventTypeListedNFT, Attributes: attrs}
	}
	sanitized, err := SanitizeListing(l)
	if err != nil {
		return &types.Event{Type: EventTypeListedNFT, Attributes: attrs}
	}
	attrs["assetId"] = strconv.FormatUint(sanitized.AssetID, 10)
	attrs["owner"] = renderAddress(sanitized.Seller)
	attrs["collectionAddress"] = renderAddress(sanitized.Collection)
	attrs["mode"] = sanitized.Mode.String()
	attrs["price"] = sanitized.Price.String()
	return &types.Event{Type: EventTypeListedNFT, Attributes: attrs}
}

// NewOfferEvent returns the payload emitted when a bid becomes the best
// standing offer. Fields: assetId, collectionAddress, offerAmount, buyer.
func NewOfferEvent(o *Offer) *types.Event {
	attrs := make(map[string]string)
	if o == nil {
		return &types.Event{Type: EventTypeMakeOffer, Attributes: attrs}
	}
	sanitized, err := SanitizeOffer(o)
	if err != nil {
		return &types.Event{Type: EventTypeMakeOffer, Attributes: attrs}
	}
	attrs["assetId"] = strconv.FormatUint(sanitized.AssetID, 10)
	attrs["collectionAddress"] = renderAddress(sanitized.Collection)
	attrs["offerAmount"] = sanitized.Amount.String()
	attrs["buyer"] = renderAddress(sanitized.Buyer)
	return &types.Event{Type: EventTypeMakeOffer, Attributes: attrs}
}

// NewBoughtEvent returns the payload emitted when a sale settles, in either
// sale mode. Fields: assetId, collectionAddress, newOwner.
func NewBoughtEvent(assetID uint64, collection [20]byte, newOwner [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeNFTBought,
		Attributes: map[string]string{
			"assetId":           strconv.FormatUint(assetID, 10),
			"collectionAddress": renderAddress(collection),
			"newOwner":          renderAddress(newOwner),
		},
	}
}

// NewCancelListingEvent returns the payload emitted when a listing is
// cancelled. Fields: assetId, collectionAddress.
func NewCancelListingEvent(assetID uint64, collection [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeCancelListing,
		Attributes: map[string]string{
			"assetId":           strconv.FormatUint(assetID, 10),
			"collectionAddress": renderAddress(collection),
		},
	}
}
