package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nftmarket/config"
	"nftmarket/core/events"
	"nftmarket/core/types"
	"nftmarket/crypto"
	"nftmarket/native/market"
	"nftmarket/native/nft"
	"nftmarket/native/token"
	"nftmarket/observability"
	"nftmarket/observability/logging"
	"nftmarket/state"
	"nftmarket/storage"
)

// logEmitter forwards marketplace events to the structured logger.
type logEmitter struct {
	logger *slog.Logger
}

func (l logEmitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	args := []any{slog.String("type", evt.EventType())}
	if payload, ok := evt.(interface{ Event() *types.Event }); ok {
		if e := payload.Event(); e != nil {
			for key, value := range e.Attributes {
				args = append(args, slog.String(key, value))
			}
		}
	}
	l.logger.Info("market event", args...)
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("MARKET_ENV"))
	logger := logging.Setup("marketd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var db storage.Database
	if strings.TrimSpace(cfg.DataDir) == "" {
		db = storage.NewMemDB()
	} else {
		ldb, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "market"))
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		db = ldb
	}
	defer db.Close()

	if addr := strings.TrimSpace(cfg.MetricsAddress); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics listener stopped", "error", err)
			}
		}()
		logger.Info("metrics listening", "address", addr)
	}

	manager := state.NewManager(db)
	ledger := token.NewLedger(cfg.CreditName, cfg.CreditSymbol)

	var operatorKey *crypto.PrivateKey
	if strings.TrimSpace(cfg.DataDir) == "" {
		operatorKey, err = crypto.GeneratePrivateKey()
	} else {
		keystorePath := filepath.Join(cfg.DataDir, "operator.keystore")
		operatorKey, err = crypto.LoadOrCreateKeystore(keystorePath, os.Getenv("MARKET_KEYSTORE_PASSPHRASE"))
	}
	if err != nil {
		logger.Error("failed to load operator key", "error", err)
		os.Exit(1)
	}
	var operator [20]byte
	copy(operator[:], operatorKey.PubKey().Address().Bytes())

	emitter := observability.MetricsEmitter{Next: logEmitter{logger: logger}}

	factory := market.NewFactory(func(addr [20]byte, name, symbol, baseMetadataRef string) (market.AssetRegistry, error) {
		return nft.NewCollection(addr, name, symbol, baseMetadataRef), nil
	})
	factory.SetState(manager)
	factory.SetEmitter(emitter)
	factory.SetPauses(cfg)

	engine := market.NewEngine(operator)
	engine.SetState(manager)
	engine.SetResolver(factory)
	engine.SetCreditLedger(ledger.Bind(operator))
	engine.SetEmitter(emitter)
	engine.SetPauses(cfg)

	if err := runDemo(logger, manager, ledger, factory, engine, operator); err != nil {
		logger.Error("demo session failed", "error", err)
		os.Exit(1)
	}
	logger.Info("marketplace session complete", "network", cfg.NetworkName)
}

// runDemo drives one scripted market session: a collection is created, an
// asset is minted and sold at a fixed price, and a second asset is settled
// through the bidding path.
func runDemo(logger *slog.Logger, manager *state.Manager, ledger *token.Ledger, factory *market.Factory, engine *market.Engine, operator [20]byte) error {
	seller := demoAddress(0x01)
	buyer := demoAddress(0x02)

	// Native funds for the fixed-price buyer.
	if err := manager.PutAccount(buyer[:], &types.Account{Balance: big.NewInt(1_000)}); err != nil {
		return err
	}
	// Credit currency and allowance for the bidder.
	if err := ledger.Mint(buyer, big.NewInt(500)); err != nil {
		return err
	}
	if err := ledger.IncreaseAllowance(buyer, operator, big.NewInt(500)); err != nil {
		return err
	}

	collection, err := factory.CreateCollection(seller, "ipfs://demo", "Demo Collection", "DEMO")
	if err != nil {
		return err
	}
	registry, _ := factory.Registry(collection)
	coll := registry.(*nft.Collection)

	fixedID, err := factory.MintToken(seller, collection, "asset-0")
	if err != nil {
		return err
	}
	if err := coll.Approve(seller, operator, fixedID); err != nil {
		return err
	}
	if err := engine.ListFixedPrice(seller, big.NewInt(100), fixedID, collection); err != nil {
		return err
	}
	if err := engine.BuyFixedPrice(buyer, fixedID, collection, big.NewInt(150)); err != nil {
		return err
	}
	owner, err := coll.OwnerOf(fixedID)
	if err != nil {
		return err
	}
	logger.Info("fixed-price sale settled",
		"assetId", fixedID,
		"newOwner", fmt.Sprintf("%x", owner),
	)

	bidID, err := factory.MintToken(seller, collection, "asset-1")
	if err != nil {
		return err
	}
	if err := coll.Approve(seller, operator, bidID); err != nil {
		return err
	}
	if err := engine.ListBidding(seller, big.NewInt(1), bidID, collection); err != nil {
		return err
	}
	if err := engine.MakeOffer(buyer, big.NewInt(250), bidID, collection); err != nil {
		return err
	}
	if err := engine.AcceptOffer(seller, bidID, collection); err != nil {
		return err
	}
	logger.Info("offer accepted",
		"assetId", bidID,
		"sellerCredit", ledger.BalanceOf(seller).String(),
	)
	return nil
}

func demoAddress(fill byte) [20]byte {
	var addr [20]byte
	for i := range addr {
		addr[i] = fill
	}
	return addr
}
