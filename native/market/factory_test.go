package market

import (
	"errors"
	"testing"

	"nftmarket/core/events"
	nativecommon "nftmarket/native/common"
	"nftmarket/native/nft"
)

func newTestFactory(t *testing.T) (*Factory, *mockState, *events.Capture) {
	t.Helper()
	state := newMockState()
	capture := &events.Capture{}
	factory := NewFactory(func(addr [20]byte, name, symbol, baseMetadataRef string) (AssetRegistry, error) {
		return nft.NewCollection(addr, name, symbol, baseMetadataRef), nil
	})
	factory.SetState(state)
	factory.SetEmitter(capture)
	factory.SetNowFunc(func() int64 { return 7 })
	return factory, state, capture
}

func TestCreateCollection(t *testing.T) {
	factory, state, capture := newTestFactory(t)
	creator := newTestAddress(0x01)

	addr, err := factory.CreateCollection(creator, "ipfs://base", "Art", "ART")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	record, ok := state.CollectionGet(addr)
	if !ok {
		t.Fatal("collection record not stored")
	}
	if record.Name != "Art" || record.Symbol != "ART" || record.BaseMetadataRef != "ipfs://base" {
		t.Fatalf("unexpected record %+v", record)
	}
	if !record.CreatedByFactory {
		t.Fatal("record must be marked factory-created")
	}
	if _, ok := factory.Registry(addr); !ok {
		t.Fatal("registry not bound for new collection")
	}
	evt := lastEvent(t, capture)
	if evt.Type != EventTypeCollectionCreated {
		t.Fatalf("unexpected event type %s", evt.Type)
	}
	if evt.Attributes["collectionName"] != "Art" {
		t.Fatalf("unexpected attributes %v", evt.Attributes)
	}
}

func TestCreateCollectionAddressesDiffer(t *testing.T) {
	factory, _, _ := newTestFactory(t)
	creator := newTestAddress(0x01)

	first, err := factory.CreateCollection(creator, "ipfs://a", "Art", "ART")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	// Identical parameters still yield a distinct address via the nonce.
	second, err := factory.CreateCollection(creator, "ipfs://a", "Art", "ART")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first == second {
		t.Fatalf("collection addresses collide: %x", first)
	}
}

func TestMintToken(t *testing.T) {
	factory, _, _ := newTestFactory(t)
	creator := newTestAddress(0x01)
	minter := newTestAddress(0x02)

	addr, err := factory.CreateCollection(creator, "ipfs://base", "Art", "ART")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Token identifiers are sequential starting at zero, assigned to the
	// caller.
	for want := uint64(0); want < 3; want++ {
		id, err := factory.MintToken(minter, addr, "asset")
		if err != nil {
			t.Fatalf("mint %d: %v", want, err)
		}
		if id != want {
			t.Fatalf("asset id = %d, want %d", id, want)
		}
	}
	registry, ok := factory.Registry(addr)
	if !ok {
		t.Fatal("registry not bound")
	}
	owner, err := registry.OwnerOf(2)
	if err != nil {
		t.Fatalf("ownerOf: %v", err)
	}
	if owner != minter {
		t.Fatalf("asset owner = %x, want minter", owner)
	}
}

func TestMintTokenRejectsForeignCollection(t *testing.T) {
	factory, state, _ := newTestFactory(t)
	minter := newTestAddress(0x02)

	// Unknown address.
	if _, err := factory.MintToken(minter, newTestAddress(0xAA), "asset"); !errors.Is(err, ErrUnauthorizedCollection) {
		t.Fatalf("expected ErrUnauthorizedCollection, got %v", err)
	}
	// Known record not created by this factory.
	foreign := newTestAddress(0xBB)
	if err := state.CollectionPut(&Collection{Address: foreign, Name: "Other", Symbol: "OTH"}); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	if _, err := factory.MintToken(minter, foreign, "asset"); !errors.Is(err, ErrUnauthorizedCollection) {
		t.Fatalf("expected ErrUnauthorizedCollection, got %v", err)
	}
}

func TestFactoryPauseGuard(t *testing.T) {
	factory, _, _ := newTestFactory(t)
	factory.SetPauses(pausedModules{})

	if _, err := factory.CreateCollection(newTestAddress(0x01), "ipfs://base", "Art", "ART"); !errors.Is(err, nativecommon.ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}
}

func TestFactoryBindRestoresRegistry(t *testing.T) {
	factory, state, _ := newTestFactory(t)
	creator := newTestAddress(0x01)

	addr, err := factory.CreateCollection(creator, "ipfs://base", "Art", "ART")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// A fresh factory over the same state knows the record but not the
	// live registry until it is rebound.
	rebooted := NewFactory(func(a [20]byte, name, symbol, baseMetadataRef string) (AssetRegistry, error) {
		return nft.NewCollection(a, name, symbol, baseMetadataRef), nil
	})
	rebooted.SetState(state)
	if _, ok := rebooted.Registry(addr); ok {
		t.Fatal("registry should not be bound before Bind")
	}
	rebooted.Bind(addr, nft.NewCollection(addr, "Art", "ART", "ipfs://base"))
	if _, ok := rebooted.Registry(addr); !ok {
		t.Fatal("registry should be bound after Bind")
	}
	if _, err := rebooted.MintToken(creator, addr, "asset"); err != nil {
		t.Fatalf("mint after rebind: %v", err)
	}
}
