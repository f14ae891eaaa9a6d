package market

import "math/big"

// AssetRegistry is the capability surface of a single asset collection. One
// binding exists per collection created by the factory; the marketplace
// reads ownership and approval state through it at every decision point
// rather than caching either.
type AssetRegistry interface {
	Mint(to [20]byte, metadataRef string) (uint64, error)
	OwnerOf(assetID uint64) ([20]byte, error)
	IsApprovedFor(assetID uint64, operator [20]byte) (bool, error)
	Transfer(from, to [20]byte, assetID uint64) error
}

// CreditLedger is the fungible-currency capability funding bidding offers.
// TransferFrom spends the standing allowance the owner granted to the
// marketplace; the marketplace never holds custody of credit balances.
type CreditLedger interface {
	BalanceOf(account [20]byte) *big.Int
	AllowanceOf(owner, spender [20]byte) *big.Int
	TransferFrom(owner, to [20]byte, amount *big.Int) error
}

// RegistryResolver maps a collection address to its asset registry binding.
// The collection factory implements this for the collections it deployed.
type RegistryResolver interface {
	Registry(collection [20]byte) (AssetRegistry, bool)
}
