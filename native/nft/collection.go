// Package nft implements the per-collection asset registry deployed by the
// collection factory: a monotonically minted set of uniquely owned tokens
// with per-token operator approvals.
package nft

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownAsset is returned when the asset id has never been minted.
	ErrUnknownAsset = errors.New("nft: unknown asset")
	// ErrNotOwner is returned when a transfer or approval names the wrong
	// current owner.
	ErrNotOwner = errors.New("nft: caller is not the owner")
)

// Collection is an in-process asset registry. Ownership and approval state
// for a collection live here and nowhere else; the marketplace reads them
// through the registry at every decision point.
type Collection struct {
	mu              sync.RWMutex
	address         [20]byte
	name            string
	symbol          string
	baseMetadataRef string
	nextID          uint64
	owners          map[uint64][20]byte
	metadataRefs    map[uint64]string
	approvals       map[uint64]map[[20]byte]bool
}

// NewCollection constructs an empty registry for the given address.
func NewCollection(address [20]byte, name, symbol, baseMetadataRef string) *Collection {
	return &Collection{
		address:         address,
		name:            name,
		symbol:          symbol,
		baseMetadataRef: baseMetadataRef,
		owners:          make(map[uint64][20]byte),
		metadataRefs:    make(map[uint64]string),
		approvals:       make(map[uint64]map[[20]byte]bool),
	}
}

// Address returns the collection's marketplace address.
func (c *Collection) Address() [20]byte { return c.address }

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Symbol returns the collection symbol.
func (c *Collection) Symbol() string { return c.symbol }

// Mint creates the next asset id and assigns it to the recipient. Ids start
// at zero and advance by one per mint.
func (c *Collection) Mint(to [20]byte, metadataRef string) (uint64, error) {
	if to == ([20]byte{}) {
		return 0, fmt.Errorf("nft: mint to zero address")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.owners[id] = to
	c.metadataRefs[id] = metadataRef
	return id, nil
}

// OwnerOf returns the current owner of the asset.
func (c *Collection) OwnerOf(assetID uint64) ([20]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	owner, ok := c.owners[assetID]
	if !ok {
		return [20]byte{}, ErrUnknownAsset
	}
	return owner, nil
}

// MetadataRef returns the metadata reference recorded at mint time.
func (c *Collection) MetadataRef(assetID uint64) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.metadataRefs[assetID]
	if !ok {
		return "", ErrUnknownAsset
	}
	return ref, nil
}

// Approve grants the operator transfer rights over one asset. Only the
// current owner may grant approval.
func (c *Collection) Approve(caller [20]byte, operator [20]byte, assetID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	owner, ok := c.owners[assetID]
	if !ok {
		return ErrUnknownAsset
	}
	if owner != caller {
		return ErrNotOwner
	}
	grants, ok := c.approvals[assetID]
	if !ok {
		grants = make(map[[20]byte]bool)
		c.approvals[assetID] = grants
	}
	grants[operator] = true
	return nil
}

// Revoke withdraws a previously granted approval. Only the current owner may
// revoke.
func (c *Collection) Revoke(caller [20]byte, operator [20]byte, assetID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	owner, ok := c.owners[assetID]
	if !ok {
		return ErrUnknownAsset
	}
	if owner != caller {
		return ErrNotOwner
	}
	delete(c.approvals[assetID], operator)
	return nil
}

// IsApprovedFor reports whether the operator currently holds transfer rights
// over the asset.
func (c *Collection) IsApprovedFor(assetID uint64, operator [20]byte) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.owners[assetID]; !ok {
		return false, ErrUnknownAsset
	}
	return c.approvals[assetID][operator], nil
}

// Transfer moves the asset to a new owner and clears all standing approvals
// for it. The from address must be the current owner; operator authority is
// checked by the caller holding this capability, not re-derived here.
func (c *Collection) Transfer(from, to [20]byte, assetID uint64) error {
	if to == ([20]byte{}) {
		return fmt.Errorf("nft: transfer to zero address")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	owner, ok := c.owners[assetID]
	if !ok {
		return ErrUnknownAsset
	}
	if owner != from {
		return ErrNotOwner
	}
	c.owners[assetID] = to
	delete(c.approvals, assetID)
	return nil
}

// Minted returns the number of assets minted so far.
func (c *Collection) Minted() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nextID
}
