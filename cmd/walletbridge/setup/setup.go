package setup

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openweb3-io/walletbridge/types"
)

type ContextKey string

const ContextConfig ContextKey = "config"

// Config is the runtime configuration of the bridge host.
type Config struct {
	BridgeURL string `mapstructure:"bridge_url"`
	Network   string `mapstructure:"network"`
	StorePath string `mapstructure:"store_path"`
	LogLevel  string `mapstructure:"log_level"`
}

// ActiveNetwork resolves the configured network name.
func (c *Config) ActiveNetwork() (types.Network, error) {
	network := types.Network(c.Network)
	if !network.IsValid() {
		return "", fmt.Errorf("unknown network %q", c.Network)
	}
	return network, nil
}

func WrapConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ContextConfig, cfg)
}

func UnwrapConfig(ctx context.Context) *Config {
	return ctx.Value(ContextConfig).(*Config)
}

// AddFlags registers the persistent flags shared by every subcommand.
func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("bridge", "", "Bridge websocket endpoint. Overrides config.")
	cmd.PersistentFlags().String("network", "", "Active network: mainnet, testnet or betanet.")
	cmd.PersistentFlags().String("store", "", "Session store directory.")
}

// Load reads configuration from file, environment and flags, in ascending
// precedence.
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetConfigName("walletbridge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.walletbridge")

	v.SetEnvPrefix("walletbridge")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("bridge_url", "wss://bridge.walletconnect.org")
	v.SetDefault("network", string(types.NetworkMainnet))
	v.SetDefault("store_path", "sessions")
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if flag, _ := cmd.Flags().GetString("bridge"); flag != "" {
		cfg.BridgeURL = flag
	}
	if flag, _ := cmd.Flags().GetString("network"); flag != "" {
		cfg.Network = flag
	}
	if flag, _ := cmd.Flags().GetString("store"); flag != "" {
		cfg.StorePath = flag
	}
	return &cfg, nil
}

// ConfigureLogger applies the configured log level.
func ConfigureLogger(cfg *Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	return nil
}
