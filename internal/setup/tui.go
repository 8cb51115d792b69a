// Package setup provides the interactive first-run configuration wizard.
package setup

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/smartinvest/server/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1)
)

// GeneratedConfigFile is where the wizard writes its result.
const GeneratedConfigFile = "config.gen.yaml"

// RunTUI walks through server settings and writes a starter yaml config.
func RunTUI() error {
	var (
		addr            string
		dataDir         string
		openingBalance  string
		tickIntervalStr string
		newsFeedURL     string
		confirm         bool
	)

	addr = config.DefaultListenAddr
	dataDir = config.DefaultDataDir
	openingBalance = config.DefaultOpeningBalance
	tickIntervalStr = config.DefaultTickInterval.String()

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("SMART-INVEST SETUP"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Configure your paper-trading server.\n"))

	fmt.Println(stepStyle.Render("STEP 1: SERVER"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen Address").
				Description("host:port the API binds to (e.g. :8080)").
				Value(&addr).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("address cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Data Directory").
				Description("Where ledger segments and account files live").
				Value(&dataDir).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("data directory cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("SMART-INVEST SETUP"))
	fmt.Println(stepStyle.Render("STEP 2: SIMULATION"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Opening Balance").
				Description("Cash granted to every new account").
				Value(&openingBalance).
				Validate(validateBalance),
			huh.NewInput().
				Title("Quote Tick Interval").
				Description("Duration string (e.g. 2s, 500ms)").
				Value(&tickIntervalStr).
				Validate(func(s string) error {
					d, err := time.ParseDuration(s)
					if err != nil {
						return err
					}
					if d <= 0 {
						return fmt.Errorf("interval must be positive")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("SMART-INVEST SETUP"))
	fmt.Println(stepStyle.Render("STEP 3: NEWS (OPTIONAL)"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("News Feed URL").
				Description("Leave empty to serve built-in articles").
				Value(&newsFeedURL),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("SMART-INVEST SETUP"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Address: %s\nData dir: %s\nOpening balance: %s\nTick interval: %s\nNews feed: %s\n",
		addr, dataDir, openingBalance, tickIntervalStr, orBuiltIn(newsFeedURL),
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	tickInterval, _ := time.ParseDuration(tickIntervalStr)
	cfgTmp := config.ConfigTmp{
		ListenAddr:     addr,
		DataDir:        dataDir,
		OpeningBalance: openingBalance,
		TickInterval:   tickInterval,
		NewsFeedURL:    newsFeedURL,
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}
	if err := os.WriteFile(GeneratedConfigFile, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\nConfiguration saved to %s\nStarting server...", GeneratedConfigFile)))
	time.Sleep(1500 * time.Millisecond)
	return nil
}

func validateBalance(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func orBuiltIn(s string) string {
	if s == "" {
		return "built-in articles"
	}
	return s
}
