// Package state persists the marketplace books and native accounts over a
// key-value database so a node can restart without losing them. Records are
// RLP encoded under prefixed keys; an in-memory map state remains the usual
// harness for engine tests.
package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"nftmarket/core/types"
	"nftmarket/native/market"
	"nftmarket/storage"
)

var (
	listingPrefix    = []byte("market/listing/")
	offerPrefix      = []byte("market/offer/")
	collectionPrefix = []byte("market/collection/")
	accountPrefix    = []byte("market/account/")
)

// Manager implements the marketplace engine and factory state interfaces on
// top of a storage.Database.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func assetKey(prefix []byte, key market.ListingKey) []byte {
	buf := make([]byte, len(prefix)+len(key.Collection)+8)
	copy(buf, prefix)
	copy(buf[len(prefix):], key.Collection[:])
	binary.BigEndian.PutUint64(buf[len(prefix)+len(key.Collection):], key.AssetID)
	return buf
}

func addressKey(prefix []byte, addr []byte) []byte {
	buf := make([]byte, len(prefix)+len(addr))
	copy(buf, prefix)
	copy(buf[len(prefix):], addr)
	return buf
}

// ListingPut writes the listing record, overwriting any previous record for
// the same key.
func (m *Manager) ListingPut(l *market.Listing) error {
	sanitized, err := market.SanitizeListing(l)
	if err != nil {
		return err
	}
	encoded, err := rlp.EncodeToBytes(&rlpListing{
		Collection: sanitized.Collection,
		AssetID:    sanitized.AssetID,
		Seller:     sanitized.Seller,
		Price:      sanitized.Price,
		Mode:       uint8(sanitized.Mode),
		CreatedAt:  uint64(sanitized.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("state: encode listing: %w", err)
	}
	return m.db.Put(assetKey(listingPrefix, sanitized.Key()), encoded)
}

// ListingGet loads the listing record for the key.
func (m *Manager) ListingGet(key market.ListingKey) (*market.Listing, bool) {
	data, err := m.db.Get(assetKey(listingPrefix, key))
	if err != nil {
		return nil, false
	}
	stored := new(rlpListing)
	if err := rlp.DecodeBytes(data, stored); err != nil {
		return nil, false
	}
	return &market.Listing{
		Collection: stored.Collection,
		AssetID:    stored.AssetID,
		Seller:     stored.Seller,
		Price:      stored.Price,
		Mode:       market.SaleMode(stored.Mode),
		CreatedAt:  int64(stored.CreatedAt),
	}, true
}

// ListingDelete removes the listing record for the key.
func (m *Manager) ListingDelete(key market.ListingKey) error {
	return m.db.Delete(assetKey(listingPrefix, key))
}

// OfferPut writes the best-offer record, overwriting any previous record for
// the same key.
func (m *Manager) OfferPut(o *market.Offer) error {
	sanitized, err := market.SanitizeOffer(o)
	if err != nil {
		return err
	}
	encoded, err := rlp.EncodeToBytes(&rlpOffer{
		Collection: sanitized.Collection,
		AssetID:    sanitized.AssetID,
		Buyer:      sanitized.Buyer,
		Amount:     sanitized.Amount,
		CreatedAt:  uint64(sanitized.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("state: encode offer: %w", err)
	}
	return m.db.Put(assetKey(offerPrefix, sanitized.Key()), encoded)
}

// OfferGet loads the best-offer record for the key.
func (m *Manager) OfferGet(key market.ListingKey) (*market.Offer, bool) {
	data, err := m.db.Get(assetKey(offerPrefix, key))
	if err != nil {
		return nil, false
	}
	stored := new(rlpOffer)
	if err := rlp.DecodeBytes(data, stored); err != nil {
		return nil, false
	}
	return &market.Offer{
		Collection: stored.Collection,
		AssetID:    stored.AssetID,
		Buyer:      stored.Buyer,
		Amount:     stored.Amount,
		CreatedAt:  int64(stored.CreatedAt),
	}, true
}

// OfferDelete removes the best-offer record for the key.
func (m *Manager) OfferDelete(key market.ListingKey) error {
	return m.db.Delete(assetKey(offerPrefix, key))
}

// CollectionPut writes the factory's collection record. Records are never
// deleted.
func (m *Manager) CollectionPut(c *market.Collection) error {
	if c == nil {
		return fmt.Errorf("state: nil collection")
	}
	encoded, err := rlp.EncodeToBytes(&rlpCollection{
		Address:          c.Address,
		Name:             c.Name,
		Symbol:           c.Symbol,
		BaseMetadataRef:  c.BaseMetadataRef,
		CreatedByFactory: c.CreatedByFactory,
		CreatedAt:        uint64(c.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("state: encode collection: %w", err)
	}
	return m.db.Put(addressKey(collectionPrefix, c.Address[:]), encoded)
}

// CollectionGet loads the collection record for the address.
func (m *Manager) CollectionGet(addr [20]byte) (*market.Collection, bool) {
	data, err := m.db.Get(addressKey(collectionPrefix, addr[:]))
	if err != nil {
		return nil, false
	}
	stored := new(rlpCollection)
	if err := rlp.DecodeBytes(data, stored); err != nil {
		return nil, false
	}
	return &market.Collection{
		Address:          stored.Address,
		Name:             stored.Name,
		Symbol:           stored.Symbol,
		BaseMetadataRef:  stored.BaseMetadataRef,
		CreatedByFactory: stored.CreatedByFactory,
		CreatedAt:        int64(stored.CreatedAt),
	}, true
}

// GetAccount loads the native account for the address. Unknown addresses
// yield a fresh zero-balance account, never an error.
func (m *Manager) GetAccount(addr []byte) (*types.Account, error) {
	data, err := m.db.Get(addressKey(accountPrefix, addr))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return &types.Account{}, nil
		}
		return nil, err
	}
	account := new(rlpAccount)
	if err := rlp.DecodeBytes(data, account); err != nil {
		return nil, fmt.Errorf("state: decode account: %w", err)
	}
	return &types.Account{Nonce: account.Nonce, Balance: account.Balance}, nil
}

// PutAccount writes the native account for the address.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("state: nil account")
	}
	clone := account.Clone()
	encoded, err := rlp.EncodeToBytes(&rlpAccount{Nonce: clone.Nonce, Balance: clone.Balance})
	if err != nil {
		return fmt.Errorf("state: encode account: %w", err)
	}
	return m.db.Put(addressKey(accountPrefix, addr), encoded)
}

// The rlp* mirrors pin the wire layout of persisted records. RLP has no
// signed integer support, so timestamps are stored as uint64.

type rlpListing struct {
	Collection [20]byte
	AssetID    uint64
	Seller     [20]byte
	Price      *big.Int
	Mode       uint8
	CreatedAt  uint64
}

type rlpOffer struct {
	Collection [20]byte
	AssetID    uint64
	Buyer      [20]byte
	Amount     *big.Int
	CreatedAt  uint64
}

type rlpCollection struct {
	Address          [20]byte
	Name             string
	Symbol           string
	BaseMetadataRef  string
	CreatedByFactory bool
	CreatedAt        uint64
}

type rlpAccount struct {
	Nonce   uint64
	Balance *big.Int
}
