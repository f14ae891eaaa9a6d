package market

import (
	"encoding/binary"
	"sync"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"nftmarket/core/events"
	"nftmarket/core/types"
	nativecommon "nftmarket/native/common"
)

type factoryState interface {
	CollectionPut(*Collection) error
	CollectionGet(addr [20]byte) (*Collection, bool)
}

// DeployFunc constructs the asset registry for a newly created collection.
// The address is assigned by the factory; the returned registry is the only
// binding minting and settlement will use for that collection.
type DeployFunc func(addr [20]byte, name, symbol, baseMetadataRef string) (AssetRegistry, error)

// Factory creates asset collections on demand and records which addresses it
// created. That record is the authorization boundary for minting: tokens can
// only be minted into collections the factory deployed. The factory also
// resolves collection addresses to registries for the engine.
type Factory struct {
	mu         sync.Mutex
	state      factoryState
	deploy     DeployFunc
	emitter    events.Emitter
	nowFn      func() int64
	pauses     nativecommon.PauseView
	nonce      uint64
	registries map[[20]byte]AssetRegistry
}

// NewFactory constructs a collection factory using the supplied deployer.
func NewFactory(deploy DeployFunc) *Factory {
	return &Factory{
		deploy:     deploy,
		emitter:    events.NoopEmitter{},
		nowFn:      func() int64 { return time.Now().Unix() },
		registries: make(map[[20]byte]AssetRegistry),
	}
}

// SetState configures the state backend holding collection records.
func (f *Factory) SetState(state factoryState) { f.state = state }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (f *Factory) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		f.emitter = events.NoopEmitter{}
		return
	}
	f.emitter = emitter
}

// SetPauses configures the operator pause switch.
func (f *Factory) SetPauses(p nativecommon.PauseView) { f.pauses = p }

// SetNowFunc overrides the time source, primarily used in tests.
func (f *Factory) SetNowFunc(now func() int64) {
	if now == nil {
		f.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	f.nowFn = now
}

func (f *Factory) emit(event *types.Event) {
	if f == nil || f.emitter == nil || event == nil {
		return
	}
	f.emitter.Emit(marketEvent{evt: event})
}

func (f *Factory) now() int64 {
	if f == nil || f.nowFn == nil {
		return time.Now().Unix()
	}
	return f.nowFn()
}

// collectionAddress derives a deterministic address for the next collection
// from the creator and the factory's deployment counter.
func (f *Factory) collectionAddress(creator [20]byte, name, symbol string) [20]byte {
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], f.nonce)
	hash := ethcrypto.Keccak256(creator[:], []byte(name), []byte(symbol), nonce[:])
	var addr [20]byte
	copy(addr[:], hash[12:])
	return addr
}

// CreateCollection deploys a new asset registry, records it as
// factory-created and returns its address. Deployment failure is fatal for
// the call and is not retried.
func (f *Factory) CreateCollection(creator [20]byte, baseMetadataRef, name, symbol string) ([20]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == nil {
		return [20]byte{}, errNilFactoryState
	}
	if f.deploy == nil {
		return [20]byte{}, errNilFactoryDeploy
	}
	if err := nativecommon.Guard(f.pauses, marketModuleName); err != nil {
		return [20]byte{}, err
	}
	addr := f.collectionAddress(creator, name, symbol)
	if _, exists := f.state.CollectionGet(addr); exists {
		// The counter restarts at zero on reload; skip over addresses that
		// already carry a record instead of overwriting them.
		for {
			f.nonce++
			addr = f.collectionAddress(creator, name, symbol)
			if _, exists := f.state.CollectionGet(addr); !exists {
				break
			}
		}
	}
	registry, err := f.deploy(addr, name, symbol, baseMetadataRef)
	if err != nil {
		return [20]byte{}, err
	}
	record := &Collection{
		Address:          addr,
		Name:             name,
		Symbol:           symbol,
		BaseMetadataRef:  baseMetadataRef,
		CreatedByFactory: true,
		CreatedAt:        f.now(),
	}
	if err := f.state.CollectionPut(record); err != nil {
		return [20]byte{}, err
	}
	f.registries[addr] = registry
	f.nonce++
	f.emit(NewCollectionCreatedEvent(name, addr))
	return addr, nil
}

// MintToken mints a new asset into the caller's ownership. Minting is only
// permitted against collections this factory created; any other address,
// including the zero address, is rejected.
func (f *Factory) MintToken(caller [20]byte, collection [20]byte, metadataRef string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == nil {
		return 0, errNilFactoryState
	}
	if err := nativecommon.Guard(f.pauses, marketModuleName); err != nil {
		return 0, err
	}
	record, ok := f.state.CollectionGet(collection)
	if !ok || !record.CreatedByFactory {
		return 0, ErrUnauthorizedCollection
	}
	registry, ok := f.registries[collection]
	if !ok {
		return 0, errUnknownRegistry
	}
	return registry.Mint(caller, metadataRef)
}

// Registry implements RegistryResolver for the collections this factory
// deployed.
func (f *Factory) Registry(collection [20]byte) (AssetRegistry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	registry, ok := f.registries[collection]
	return registry, ok
}

// Bind registers an externally constructed registry for a collection
// address. It exists so a node restoring persisted collection records can
// rebind their registries after a restart.
func (f *Factory) Bind(collection [20]byte, registry AssetRegistry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registries[collection] = registry
}
