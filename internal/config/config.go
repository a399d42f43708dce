// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config — конфигурация сервиса запуска токенов.
type Config struct {
	Owner    string `mapstructure:"owner"`
	Treasury string `mapstructure:"treasury"`

	VirtualBase   uint64 `mapstructure:"virtual_base"`
	VirtualTokens uint64 `mapstructure:"virtual_tokens"`
	BondingSupply uint64 `mapstructure:"bonding_supply"`

	BuyFeeBps        uint64 `mapstructure:"buy_fee_bps"`
	SellFeeBps       uint64 `mapstructure:"sell_fee_bps"`
	CreationFee      uint64 `mapstructure:"creation_fee"`
	GraduationTarget uint64 `mapstructure:"graduation_target"`
	BurnBps          uint64 `mapstructure:"burn_bps"`
	LiquidityBps     uint64 `mapstructure:"liquidity_bps"`
	CreatorBps       uint64 `mapstructure:"creator_bps"`
	PoolTokenSupply  uint64 `mapstructure:"pool_token_supply"`

	DatabasePath string `mapstructure:"database_path"`
	VenueURL     string `mapstructure:"venue_url"`
	TasksPath    string `mapstructure:"tasks_path"`
	Workers      int    `mapstructure:"workers"`
	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`
}

// Единственный согласованный набор констант кривой. Исходные варианты
// расходились между собой; этот выбран так, чтобы порог финансирования
// и потолок эмиссии кривой пересекались одновременно:
// (VirtualBase+Target)*(VirtualTokens-BondingSupply) == VirtualBase*VirtualTokens.
const (
	DefaultVirtualBase      = 12_500_000
	DefaultVirtualTokens    = 250_000_000
	DefaultBondingSupply    = 200_000_000
	DefaultGraduationTarget = 50_000_000
	DefaultPoolTokenSupply  = 50_000_000

	DefaultBuyFeeBps    = 100
	DefaultSellFeeBps   = 100
	DefaultCreationFee  = 1_000_000
	DefaultBurnBps      = 500
	DefaultLiquidityBps = 8000
	DefaultCreatorBps   = 500

	DefaultWorkers = 4
)

// LoadConfig читает конфиг из файла с env-переопределениями (префикс LAUNCHPAD).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"virtual_base":      DefaultVirtualBase,
		"virtual_tokens":    DefaultVirtualTokens,
		"bonding_supply":    DefaultBondingSupply,
		"graduation_target": DefaultGraduationTarget,
		"pool_token_supply": DefaultPoolTokenSupply,
		"buy_fee_bps":       DefaultBuyFeeBps,
		"sell_fee_bps":      DefaultSellFeeBps,
		"creation_fee":      DefaultCreationFee,
		"burn_bps":          DefaultBurnBps,
		"liquidity_bps":     DefaultLiquidityBps,
		"creator_bps":       DefaultCreatorBps,
		"workers":           DefaultWorkers,
		"treasury":          "treasury",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.Owner == "" {
		return errors.New("missing owner in configuration")
	}
	if cfg.Treasury == "" {
		return errors.New("missing treasury account")
	}
	if cfg.VirtualBase == 0 || cfg.VirtualTokens == 0 {
		return errors.New("virtual reserves must be non-zero")
	}
	if cfg.BondingSupply == 0 || cfg.BondingSupply >= cfg.VirtualTokens {
		return errors.New("bonding supply must be positive and below virtual token reserve")
	}
	if cfg.GraduationTarget == 0 {
		return errors.New("graduation target must be non-zero")
	}
	if cfg.BuyFeeBps > 500 || cfg.SellFeeBps > 500 {
		return errors.New("trade fee exceeds 500 bps cap")
	}
	if cfg.BurnBps+cfg.LiquidityBps+cfg.CreatorBps > 10_000 {
		return errors.New("graduation allocation exceeds 10000 bps")
	}
	if cfg.Workers < 0 {
		return errors.New("invalid workers count")
	}
	return nil
}
