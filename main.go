package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dathao-chona/SocialMine-Z/internal/config"
	"github.com/dathao-chona/SocialMine-Z/internal/fhe"
	"github.com/dathao-chona/SocialMine-Z/internal/handlers/httphandlers"
	"github.com/dathao-chona/SocialMine-Z/internal/lib"
	"github.com/dathao-chona/SocialMine-Z/internal/mining"
	"github.com/dathao-chona/SocialMine-Z/internal/repositories/ledger"
	"github.com/dathao-chona/SocialMine-Z/internal/repositories/relayer"
	"github.com/dathao-chona/SocialMine-Z/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

func main() {
	var cfg config.Config
	err := config.LoadConfig(&cfg, &os.Args)
	if err != nil {
		panic(err)
	}

	log, err := lib.NewLogger(cfg.Log.LevelApp, cfg.Log.Color, cfg.Log.IsProd, cfg.Log.JSON, cfg.Log.FilePath)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ledgerLog, err := lib.NewLogger(cfg.Log.LevelLedger, cfg.Log.Color, cfg.Log.IsProd, cfg.Log.JSON, cfg.Log.FilePath)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-shutdownChan
		log.Warnf("received signal: %s", s)
		cancel()

		s = <-shutdownChan
		log.Warnf("received signal: %s, forcing exit", s)
		os.Exit(1)
	}()

	ethClient, err := ledger.DialContext(ctx, cfg.Blockchain.EthNodeAddress)
	if err != nil {
		log.Fatalf("cannot connect to eth node: %s", err)
	}

	contractAddr := common.HexToAddress(cfg.Blockchain.ContractAddress)
	gateway := ledger.NewSocialMiningEthereum(contractAddr, ethClient, cfg.Blockchain.EthLegacyTx, ledgerLog.Named("LEDGER"))

	relayerClient := relayer.NewClient(cfg.Relayer.URL, cfg.Relayer.Timeout, log.Named("RELAYER"))
	bridge := fhe.NewRelayerBridge(relayerClient, log.Named("FHE"))

	var account *wallet.Wallet
	switch {
	case cfg.Wallet.PrivateKey != "":
		account, err = wallet.NewWalletFromPrivateKey(cfg.Wallet.PrivateKey)
	case cfg.Wallet.Mnemonic != "":
		account, err = wallet.NewWalletFromMnemonic(cfg.Wallet.Mnemonic, cfg.Wallet.AccountIndex)
	default:
		log.Warnf("no wallet configured, submissions and decryptions will be refused")
	}
	if err != nil {
		log.Fatalf("cannot initialize wallet: %s", err)
	}
	if account != nil {
		log.Infof("wallet address: %s", account.Address())
	}

	cache := mining.NewCache(gateway, cfg.Mining.FetchConcurrency, log.Named("CACHE"))
	notifier := mining.NewNotifier(cfg.Mining.SuccessHideAfter, cfg.Mining.ErrorHideAfter, cfg.Mining.NotificationHistory)
	controller := mining.NewController(contractAddr, cfg.Mining.RecordCategory, account, gateway, bridge, cache, notifier, log.Named("MINING"))

	if _, err := cache.Refresh(ctx); err != nil {
		log.Warnf("initial refresh failed: %s", err)
	}

	handler := httphandlers.NewHTTPHandler(controller, log.Named("HTTP"))
	server := &http.Server{Addr: cfg.Web.Address, Handler: handler}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("http server is listening: %s", cfg.Web.Address)
		return server.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Mining.RefreshInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(cfg.Mining.RefreshInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gCtx.Done():
					return gCtx.Err()
				case <-ticker.C:
					if _, err := cache.Refresh(gCtx); err != nil {
						log.Warnf("background refresh failed: %s", err)
					}
				}
			}
		})
	}

	err = g.Wait()
	log.Infof("app exited due to %s", err)
}
