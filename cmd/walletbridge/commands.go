package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/openweb3-io/walletbridge/accounts"
	"github.com/openweb3-io/walletbridge/bridge"
	"github.com/openweb3-io/walletbridge/cmd/walletbridge/setup"
	"github.com/openweb3-io/walletbridge/protocol/wire"
	"github.com/openweb3-io/walletbridge/registry"
)

func openStore(cfg *setup.Config) (registry.Store, error) {
	if cfg.StorePath == "" {
		return registry.NewMemoryStore(), nil
	}
	return registry.OpenBadgerStore(cfg.StorePath)
}

func newService(cfg *setup.Config, store registry.Store) (*bridge.Service, *accounts.MemoryDirectory, error) {
	network, err := cfg.ActiveNetwork()
	if err != nil {
		return nil, nil, err
	}
	reg, err := registry.New(store)
	if err != nil {
		return nil, nil, err
	}

	dir := accounts.NewMemoryDirectory()
	signer := accounts.NewEphemeralSigner()
	dir.Add(accounts.Account{
		Address:    signer.Address(),
		Name:       "default",
		Capability: accounts.CapabilityFull,
	}, signer)

	return bridge.NewService(reg, dir, network), dir, nil
}

// CmdServe connects to the bridge endpoint and keeps the session core
// running, logging requests as they arrive for review.
func CmdServe() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to the bridge and process session events",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := setup.UnwrapConfig(cmd.Context())

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			service, _, err := newService(cfg, store)
			if err != nil {
				return err
			}

			connector, err := wire.Dial(cmd.Context(), cfg.BridgeURL)
			if err != nil {
				return err
			}
			defer connector.Close()
			service.Connect(connector)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()

			var lastHead string
			for {
				select {
				case <-stop:
					return nil
				case <-ticker.C:
					head, ok := service.CurrentHeadSignRequest()
					if ok && head.ID != lastHead {
						lastHead = head.ID
						logrus.WithFields(logrus.Fields{
							"id":        head.ID,
							"kind":      string(head.Kind),
							"transport": string(head.Transport),
						}).Info("sign request awaiting review")
					}
				}
			}
		},
	}
}

// CmdSessions lists persisted connections.
func CmdSessions() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List paired sessions",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := setup.UnwrapConfig(cmd.Context())

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			reg, err := registry.New(store)
			if err != nil {
				return err
			}
			for _, conn := range reg.List() {
				fmt.Printf("%s  %-24s  chain=%d  addresses=%d  last-active=%s\n",
					conn.ID, conn.Peer.Name, conn.ChainID, len(conn.Addresses),
					conn.LastActive.Format(time.RFC3339))
			}
			return nil
		},
	}
}

// CmdPair dials the bridge and approves the first pairing request with the
// local default account.
func CmdPair() *cobra.Command {
	return &cobra.Command{
		Use:   "pair",
		Short: "Pair with a peer and approve its session request",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := setup.UnwrapConfig(cmd.Context())

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			service, dir, err := newService(cfg, store)
			if err != nil {
				return err
			}

			connector, err := wire.Dial(cmd.Context(), cfg.BridgeURL)
			if err != nil {
				return err
			}
			defer connector.Close()
			service.Connect(connector)

			deadline := time.After(time.Minute)
			ticker := time.NewTicker(200 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-deadline:
					return fmt.Errorf("no session request within a minute")
				case <-ticker.C:
					pending := service.PendingSessionRequests()
					if len(pending) == 0 {
						continue
					}
					session := pending[0]
					var addresses []string
					for _, account := range dir.ListSigningCapable() {
						addresses = append(addresses, account.Address)
					}
					if err := service.ApproveSession(cmd.Context(), session.ID, addresses); err != nil {
						return err
					}
					logrus.WithField("peer", session.Peer.Name).Info("session approved")
					return nil
				}
			}
		},
	}
}
