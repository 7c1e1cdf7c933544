package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cl "coinsec/internal/cli"
	"coinsec/internal/config"
	"coinsec/internal/ton"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "csc",
		Short:        "Coinsec clicker game client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newConnectCmd(&apiBase),
		newDisconnectCmd(),
		newDashCmd(&apiBase),
		newTapCmd(&apiBase),
		newShopCmd(&apiBase),
		newInvestCmd(&apiBase),
		newBoostCmd(&apiBase),
		newHistoryCmd(&apiBase),
		newTopCmd(&apiBase),
		newPlayCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func requireSession() (cl.Session, error) {
	sess, err := cl.LoadSession()
	if err != nil {
		return cl.Session{}, fmt.Errorf("connect a wallet first with `csc connect`: %w", err)
	}
	return sess, nil
}

func newConnectCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect a TON wallet address",
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := promptRequired("Wallet address")
			if err != nil {
				return err
			}
			referral, err := promptOptional("Referral code (optional)")
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			snap, err := client.Fetch(ctx, address, referral)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{Address: address, Referral: referral}); err != nil {
				return err
			}
			printSuccess("Wallet connected. Session saved.")
			if referral != "" && snap.ReferralBonusClaimed {
				printSuccess("Referral bonus credited.")
			}
			renderDashboard(snap)
			return nil
		},
	}
}

func newDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Forget the connected wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Disconnected.")
			return nil
		},
	}
}

func newDashCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Show your current balance and progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			snap, err := newClient(apiBase).Fetch(ctx, sess.Address, "")
			if err != nil {
				return err
			}
			renderDashboard(snap)
			return nil
		},
	}
}

func newTapCmd(apiBase *string) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "tap",
		Short: "Tap the coin",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			if count < 1 {
				count = 1
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			client := newClient(apiBase)

			accepted := 0
			var last float64
			for i := 0; i < count; i++ {
				res, err := client.Tap(ctx, sess.Address)
				if err != nil {
					return err
				}
				last = res.Snapshot.Points
				if !res.Accepted {
					printWarn("Out of energy. Wait for it to recharge or buy a booster.")
					break
				}
				accepted++
			}
			printSuccess(fmt.Sprintf("%d tap(s) landed. Balance: %s points.", accepted, formatPoints(last)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of taps to send")
	return cmd
}

func newShopCmd(apiBase *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "List upgrades",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			snap, err := newClient(apiBase).Fetch(ctx, sess.Address, "")
			if err != nil {
				return err
			}
			renderUpgrades(snap)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "buy <upgrade-id>",
		Short: "Buy one level of an upgrade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			snap, err := newClient(apiBase).BuyUpgrade(ctx, sess.Address, args[0])
			if err != nil {
				return err
			}
			up := snap.Upgrades[args[0]]
			printSuccess(fmt.Sprintf("%s is now level %d. Next level costs %s points.", args[0], up.Level, formatPoints(up.Price)))
			return nil
		},
	})
	return cmd
}

func newInvestCmd(apiBase *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invest",
		Short: "List the stock catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			stocks, err := client.Stocks(ctx)
			if err != nil {
				return err
			}
			renderStocks(stocks)
			if sess, err := cl.LoadSession(); err == nil {
				if snap, err := client.Fetch(ctx, sess.Address, ""); err == nil {
					renderInvestments(snap)
				}
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "buy <stock-id>",
		Short: "Invest points into a stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			amount, err := promptFloat("Amount of points to invest", 1)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			snap, err := newClient(apiBase).BuyStock(ctx, sess.Address, args[0], amount)
			if err != nil {
				return err
			}
			pos := snap.Investments[args[0]]
			printSuccess(fmt.Sprintf("Invested. Position in %s: %s points.", args[0], formatPoints(pos.AmountInvested)))
			return nil
		},
	})
	return cmd
}

func newBoostCmd(apiBase *string) *cobra.Command {
	var boc string
	cmd := &cobra.Command{
		Use:   "boost",
		Short: "Buy a 30-minute booster with TON",
		Long:  "Shows a payment QR code, then verifies the transaction once you paste the signed BOC.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 120*time.Second)
			defer cancel()
			client := newClient(apiBase)

			info, err := client.Boost(ctx)
			if err != nil {
				return err
			}
			renderBoostQR(info)

			if boc == "" {
				boc, err = promptRequired("Paste the signed transaction BOC")
				if err != nil {
					return err
				}
			}
			out, err := client.VerifyTransaction(ctx, sess.Address, ton.VerifyRequest{
				BOC:           boc,
				SenderAddress: sess.Address,
				AmountNanoton: info.AmountNanoton,
			})
			if err != nil {
				return err
			}
			if !out.Accepted {
				printError("Payment rejected: " + out.Reason)
				return nil
			}
			printSuccess(fmt.Sprintf("Booster active until %s. Taps are doubled and energy stays full.",
				out.Data.BoosterEndTime.Local().Format("15:04:05")))
			return nil
		},
	}
	cmd.Flags().StringVar(&boc, "boc", "", "signed transaction BOC (skips the prompt)")
	return cmd
}

func newHistoryCmd(apiBase *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show booster purchase history",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			purchases, err := newClient(apiBase).Transactions(ctx, sess.Address, limit)
			if err != nil {
				return err
			}
			renderPurchases(purchases)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	return cmd
}

func newTopCmd(apiBase *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			rows, err := newClient(apiBase).Leaderboard(ctx, limit)
			if err != nil {
				return err
			}
			renderLeaderboard(rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows to show")
	return cmd
}
