package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/openweb3-io/walletbridge/cmd/walletbridge/setup"
)

func main() {
	cmd := &cobra.Command{
		Use:          "walletbridge",
		Short:        "Run and inspect wallet-pairing sessions",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup.Load(cmd)
			if err != nil {
				return err
			}
			if err := setup.ConfigureLogger(cfg); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"bridge":  cfg.BridgeURL,
				"network": cfg.Network,
			}).Info("bridge")

			cmd.SetContext(setup.WrapConfig(cmd.Context(), cfg))
			return nil
		},
	}
	setup.AddFlags(cmd)

	cmd.AddCommand(CmdServe())
	cmd.AddCommand(CmdSessions())
	cmd.AddCommand(CmdPair())

	_ = cmd.Execute()
}
