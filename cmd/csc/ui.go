package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "coinsec/internal/cli"
	"coinsec/internal/game"

	"github.com/fatih/color"
	"github.com/mdp/qrterminal/v3"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptOptional(label string) (string, error) {
	fmt.Printf("%s: ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func promptFloat(label string, min float64) (float64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || v < min {
			printWarn(fmt.Sprintf("Enter a number >= %v.", min))
			continue
		}
		return v, nil
	}
}

func renderDashboard(snap game.Snapshot) {
	accent.Println("\n== COINSEC ==")
	fmt.Printf("Points:          %s\n", formatPoints(snap.Points))
	fmt.Printf("Energy:          %s / %s\n", formatPoints(snap.Energy), formatPoints(snap.MaxEnergy))
	fmt.Printf("Per tap:         %s\n", formatPoints(snap.PointsPerTap))
	fmt.Printf("Passive income:  %s / min\n", formatPoints(snap.PassiveIncome))
	if snap.BoosterEndTime != nil {
		warn.Printf("Booster active until %s\n", snap.BoosterEndTime.Local().Format("15:04:05"))
	}

	if len(snap.Investments) > 0 {
		fmt.Println()
		accent.Println("Investments")
		renderInvestments(snap)
	}
	fmt.Println()
}

func renderUpgrades(snap game.Snapshot) {
	accent.Println("\n== UPGRADE SHOP ==")
	fmt.Printf("%-12s %-8s %6s %12s %12s\n", "ID", "EFFECT", "LEVEL", "PRICE", "INCREASE")
	for _, id := range []string{"powerTap", "megaClick", "basicAuto", "turboAuto"} {
		up, ok := snap.Upgrades[id]
		if !ok {
			continue
		}
		fmt.Printf("%-12s %-8s %6d %12s %12s\n",
			up.ID,
			string(up.Effect),
			up.Level,
			formatPoints(up.Price),
			formatPoints(up.Increase),
		)
	}
	fmt.Printf("\nBalance: %s points. Buy with `csc shop buy <id>`.\n\n", formatPoints(snap.Points))
}

func renderStocks(stocks []game.Stock) {
	accent.Println("\n== STOCK CATALOG ==")
	fmt.Printf("%-14s %-20s %8s %12s\n", "ID", "NAME", "APY", "MIN BUY")
	for _, s := range stocks {
		fmt.Printf("%-14s %-20s %7.0f%% %12s\n", s.ID, s.Name, s.APY*100, formatPoints(s.Price))
	}
	fmt.Println()
}

func renderInvestments(snap game.Snapshot) {
	if len(snap.Investments) == 0 {
		printInfo("No investments yet.")
		return
	}
	fmt.Printf("%-14s %14s %-20s\n", "STOCK", "INVESTED", "SINCE")
	for id, pos := range snap.Investments {
		fmt.Printf("%-14s %14s %-20s\n", id, formatPoints(pos.AmountInvested), pos.LastUpdated.Local().Format(time.DateTime))
	}
}

func renderPurchases(purchases []game.Purchase) {
	accent.Println("\n== PURCHASE HISTORY ==")
	if len(purchases) == 0 {
		printInfo("No purchases yet.")
		return
	}
	fmt.Printf("%-10s %12s %-20s %-20s\n", "KIND", "TON", "PAID AT", "BOOSTER UNTIL")
	for _, p := range purchases {
		fmt.Printf("%-10s %12s %-20s %-20s\n",
			p.Kind,
			formatTON(p.AmountNanoton),
			p.CreatedAt.Local().Format(time.DateTime),
			p.BoosterEndTime.Local().Format(time.DateTime),
		)
	}
	fmt.Println()
}

func renderLeaderboard(rows []game.LeaderboardRow) {
	accent.Println("\n== LEADERBOARD ==")
	if len(rows) == 0 {
		printInfo("No players yet.")
		return
	}
	fmt.Printf("%-6s %-48s %14s\n", "RANK", "PLAYER", "POINTS")
	for _, row := range rows {
		fmt.Printf("%-6d %-48s %14s\n", row.Rank, truncate(row.PlayerID, 48), formatPoints(row.Points))
	}
	fmt.Println()
}

func renderBoostQR(info cl.BoostInfo) {
	accent.Println("\n== BOOSTER PAYMENT ==")
	fmt.Printf("Send %s TON to %s\n\n", formatTON(info.AmountNanoton), info.Recipient)
	qrterminal.GenerateWithConfig(info.TransferURL, qrterminal.Config{
		Level:     qrterminal.M,
		Writer:    os.Stdout,
		BlackChar: qrterminal.BLACK,
		WhiteChar: qrterminal.WHITE,
		QuietZone: 1,
	})
	fmt.Printf("\n%s\n\n", info.TransferURL)
}

func formatPoints(v float64) string {
	if v == float64(int64(v)) {
		return comma(int64(v))
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatTON(nanoton int64) string {
	return strconv.FormatFloat(float64(nanoton)/1e9, 'f', -1, 64)
}

func comma(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return sign + strings.Join(parts, ",")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
