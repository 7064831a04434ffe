package config

import (
	"time"
)

// Validation tags described here: https://pkg.go.dev/github.com/go-playground/validator/v10
type Config struct {
	Blockchain struct {
		EthNodeAddress  string `env:"ETH_NODE_ADDRESS"  flag:"eth-node-address"  validate:"required,url"`
		ContractAddress string `env:"CONTRACT_ADDRESS"  flag:"contract-address"  validate:"required,eth_addr" desc:"address of the social mining contract"`
		EthLegacyTx     bool   `env:"ETH_NODE_LEGACY_TX" flag:"eth-node-legacy-tx" desc:"use it to disable EIP-1559 transactions"`
	}
	Environment string `env:"ENVIRONMENT" flag:"environment"`
	Log         struct {
		Color       bool   `env:"LOG_COLOR"        flag:"log-color"`
		FilePath    string `env:"LOG_FILE_PATH"    flag:"log-file-path"    validate:"omitempty,filepath" desc:"enables file logging and sets the file path"`
		IsProd      bool   `env:"LOG_IS_PROD"      flag:"log-is-prod"      desc:"affects the format of the log output"`
		JSON        bool   `env:"LOG_JSON"         flag:"log-json"`
		LevelApp    string `env:"LOG_LEVEL_APP"    flag:"log-level-app"    validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
		LevelLedger string `env:"LOG_LEVEL_LEDGER" flag:"log-level-ledger" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	}
	Mining struct {
		RecordCategory      string        `env:"MINING_RECORD_CATEGORY"       flag:"mining-record-category"       desc:"prefix for generated record ids"`
		RefreshInterval     time.Duration `env:"MINING_REFRESH_INTERVAL"      flag:"mining-refresh-interval"      validate:"omitempty,min=0" desc:"interval between background cache refreshes, 0 disables them"`
		FetchConcurrency    int           `env:"MINING_FETCH_CONCURRENCY"     flag:"mining-fetch-concurrency"     validate:"omitempty,number" desc:"max concurrent record detail fetches during a refresh"`
		SuccessHideAfter    time.Duration `env:"MINING_SUCCESS_HIDE_AFTER"    flag:"mining-success-hide-after"    validate:"omitempty,min=0" desc:"how long a success notification stays visible"`
		ErrorHideAfter      time.Duration `env:"MINING_ERROR_HIDE_AFTER"      flag:"mining-error-hide-after"      validate:"omitempty,min=0" desc:"how long an error notification stays visible"`
		NotificationHistory int           `env:"MINING_NOTIFICATION_HISTORY"  flag:"mining-notification-history"  validate:"omitempty,number" desc:"how many past notifications to keep"`
	}
	Relayer struct {
		URL     string        `env:"FHE_RELAYER_URL"     flag:"fhe-relayer-url"     validate:"required,url" desc:"endpoint of the FHE coprocessor relayer"`
		Timeout time.Duration `env:"FHE_RELAYER_TIMEOUT" flag:"fhe-relayer-timeout" validate:"omitempty,min=0"`
	}
	Wallet struct {
		Mnemonic     string `env:"WALLET_MNEMONIC"      flag:"wallet-mnemonic"      desc:"mnemonic of the submitting account, leave empty together with the private key to run read-only"`
		AccountIndex int    `env:"WALLET_ACCOUNT_INDEX" flag:"wallet-account-index" validate:"omitempty,number"`
		PrivateKey   string `env:"WALLET_PRIVATE_KEY"   flag:"wallet-private-key"   desc:"takes precedence over the mnemonic"`
	}
	Web struct {
		Address   string `env:"WEB_ADDRESS"    flag:"web-address"    validate:"required,hostname_port" desc:"http server address host:port"`
		PublicUrl string `env:"WEB_PUBLIC_URL" flag:"web-public-url" validate:"omitempty,url"          desc:"public url of the service, falls back to web-address if empty"`
	}
}

func (cfg *Config) SetDefaults() {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Log
	if cfg.Log.LevelApp == "" {
		cfg.Log.LevelApp = "info"
	}
	if cfg.Log.LevelLedger == "" {
		cfg.Log.LevelLedger = "info"
	}

	// Mining
	if cfg.Mining.RecordCategory == "" {
		cfg.Mining.RecordCategory = "social"
	}
	if cfg.Mining.FetchConcurrency == 0 {
		cfg.Mining.FetchConcurrency = 8
	}
	if cfg.Mining.SuccessHideAfter == 0 {
		cfg.Mining.SuccessHideAfter = 2 * time.Second
	}
	if cfg.Mining.ErrorHideAfter == 0 {
		cfg.Mining.ErrorHideAfter = 3 * time.Second
	}
	if cfg.Mining.NotificationHistory == 0 {
		cfg.Mining.NotificationHistory = 32
	}

	// Relayer
	if cfg.Relayer.Timeout == 0 {
		cfg.Relayer.Timeout = 60 * time.Second
	}

	// Web
	if cfg.Web.Address == "" {
		cfg.Web.Address = "0.0.0.0:8080"
	}
	if cfg.Web.PublicUrl == "" {
		cfg.Web.PublicUrl = "http://localhost:8080"
	}
}
