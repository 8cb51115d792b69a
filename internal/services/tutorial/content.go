package tutorial

import "github.com/smartinvest/server/internal/domain"

// catalog returns the built-in lesson plan. IDs are stable: the progress
// store and the frontend both key on them.
func catalog() []domain.TutorialSection {
	return []domain.TutorialSection{
		{
			ID:       "stock-fundamentals",
			Title:    "Stock Market Fundamentals",
			Level:    domain.LevelBeginner,
			Category: "Foundation",
			Content: "The stock market is where investors buy and sell shares of publicly " +
				"traded companies. Stocks represent ownership in a company, bonds are debt " +
				"instruments, and a market index measures the performance of a group of " +
				"stocks. A bull market is a period of rising prices, a bear market one of " +
				"falling prices. Market capitalization, shares outstanding times price per " +
				"share, measures company size.",
			Tags: []string{"stocks", "bonds", "market cap", "bull market", "bear market"},
		},
		{
			ID:       "chart-reading",
			Title:    "Reading Stock Charts & Technical Analysis",
			Level:    domain.LevelBeginner,
			Category: "Technical Analysis",
			Content: "Stock charts are visual representations of price movement over time. " +
				"Line charts show simple price movement, bar charts show open, high, low " +
				"and close, and candlestick charts summarize price action per period. " +
				"Support is a price area where buying prevents further decline, resistance " +
				"the opposite. Moving averages smooth out fluctuations to reveal the trend.",
			Tags: []string{"candlestick", "support", "resistance", "moving average"},
		},
		{
			ID:       "risk-management",
			Title:    "Investment Risk Management",
			Level:    domain.LevelBeginner,
			Category: "Risk Management",
			Content: "Risk management protects capital while aiming for consistent returns. " +
				"Diversification spreads investments across asset classes, sectors and " +
				"geographies. Asset allocation balances stocks, bonds and other assets " +
				"against your risk tolerance. Stop-loss orders limit losses by selling " +
				"automatically below a set price. Market, credit, liquidity and inflation " +
				"risk each need their own mitigation.",
			Tags: []string{"diversification", "asset allocation", "stop-loss"},
		},
		{
			ID:       "fundamental-analysis",
			Title:    "Fundamental Analysis of Companies",
			Level:    domain.LevelIntermediate,
			Category: "Fundamental Analysis",
			Content: "Fundamental analysis examines a company's financial health to estimate " +
				"its intrinsic value. Analysts read the income statement, balance sheet and " +
				"cash flow statement, and compare ratios such as price-to-earnings, return " +
				"on equity, debt-to-equity and the current ratio against industry " +
				"benchmarks. Management quality, industry trends and growth potential round " +
				"out the picture.",
			Tags: []string{"P/E", "ROE", "balance sheet", "intrinsic value"},
			CaseStudies: []domain.CaseStudy{
				{
					Title:       "Apple Inc. Financial Analysis",
					Description: "Analyzing Apple's financial performance and valuation",
					Company:     "Apple Inc.",
					Timeframe:   "Q4 2023",
					LearningObjectives: []string{
						"Calculate key financial ratios",
						"Evaluate company valuation",
					},
					Data: map[string]string{
						"Revenue":    "89.5B",
						"Net Income": "22.9B",
						"P/E Ratio":  "28.5",
					},
					Analysis: "Apple demonstrates strong profitability with consistent revenue growth...",
				},
			},
		},
		{
			ID:       "options-trading",
			Title:    "Introduction to Options Trading",
			Level:    domain.LevelIntermediate,
			Category: "Derivatives",
			Content: "Options give the right, but not the obligation, to buy or sell an " +
				"underlying asset at a strike price before an expiration date. Calls " +
				"confer the right to buy, puts the right to sell; the premium is the cost " +
				"of the option. Options provide leverage and hedging but can expire " +
				"worthless, so time decay and volatility need constant attention.",
			Tags: []string{"call", "put", "strike price", "premium"},
		},
		{
			ID:       "advanced-technical",
			Title:    "Advanced Technical Analysis Strategies",
			Level:    domain.LevelAdvanced,
			Category: "Technical Analysis",
			Content: "Advanced technical analysis layers sophisticated tools on top of " +
				"trendlines and price patterns. Fibonacci retracements mark potential " +
				"reversal levels at key ratios. Elliott Wave theory reads price action as " +
				"repeating waves of investor psychology. The Ichimoku Cloud combines " +
				"support, resistance, trend and momentum in one view, and multi-timeframe " +
				"analysis confirms signals across daily, weekly and monthly charts.",
			Tags: []string{"fibonacci", "elliott wave", "ichimoku"},
		},
		{
			ID:       "portfolio-management",
			Title:    "Professional Portfolio Management",
			Level:    domain.LevelAdvanced,
			Category: "Portfolio Management",
			Content: "Portfolio management selects and oversees a group of investments that " +
				"meet long-term goals and risk tolerance. Core practices are asset " +
				"allocation, diversification, periodic rebalancing, and performance " +
				"evaluation with risk-adjusted metrics such as the Sharpe ratio, alpha " +
				"and beta.",
			Tags: []string{"sharpe ratio", "rebalancing", "alpha", "beta"},
		},
	}
}

func quizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"stock-fundamentals": {
			TutorialID: "stock-fundamentals",
			Questions: []domain.Question{
				{
					Prompt: "What does a stock represent?",
					Options: []string{
						"A loan to a company",
						"Ownership in a company",
						"A type of bond",
						"Government security",
					},
					Answer: 1,
				},
				{
					Prompt: "What is the formula for market capitalization?",
					Options: []string{
						"Price per share x Total assets",
						"Shares outstanding x Price per share",
						"Revenue x Profit margin",
						"Debt + Equity",
					},
					Answer: 1,
				},
				{
					Prompt: "Which of these is a characteristic of a bull market?",
					Options: []string{
						"Falling prices and pessimism",
						"Rising prices and optimism",
						"Stagnant prices and uncertainty",
						"High volatility and fear",
					},
					Answer: 1,
				},
				{
					Prompt: "A stock exchange helps in?",
					Options: []string{
						"Providing liquidity to existing securities",
						"Contributing to economic growth",
						"Pricing of securities",
						"All of the above",
					},
					Answer: 3,
				},
			},
		},
		"chart-reading": {
			TutorialID: "chart-reading",
			Questions: []domain.Question{
				{
					Prompt: "What does a candlestick on a stock chart represent?",
					Options: []string{
						"The company's daily revenue",
						"The opening, closing, high, and low prices for a period",
						"The stock's average price for a month",
						"The total trading volume in a week",
					},
					Answer: 1,
				},
				{
					Prompt: "What is the purpose of a moving average?",
					Options: []string{
						"To predict future prices",
						"To calculate company value",
						"To smooth out price fluctuations and show the trend",
						"To find daily returns",
					},
					Answer: 2,
				},
				{
					Prompt: "Support levels on a chart indicate:",
					Options: []string{
						"Resistance zones",
						"A company's base value",
						"Sudden volume spikes",
						"A price area where buying prevents further decline",
					},
					Answer: 3,
				},
				{
					Prompt: "An RSI value above 70 typically indicates?",
					Options: []string{
						"Overbought condition",
						"Neutral momentum",
						"Oversold condition",
						"Trend reversal",
					},
					Answer: 0,
				},
			},
		},
		"risk-management": {
			TutorialID: "risk-management",
			Questions: []domain.Question{
				{
					Prompt: "What is the main goal of diversification?",
					Options: []string{
						"Maximize short-term gains",
						"Reduce exposure to any single investment",
						"Avoid paying taxes",
						"Increase trading volume",
					},
					Answer: 1,
				},
				{
					Prompt: "A stop-loss order is used to:",
					Options: []string{
						"Lock in profits automatically",
						"Buy a stock when it dips",
						"Limit losses by selling below a set price",
						"Delay settlement of a trade",
					},
					Answer: 2,
				},
				{
					Prompt: "Inflation risk is the risk that:",
					Options: []string{
						"A bond issuer defaults",
						"Returns fail to keep pace with rising prices",
						"A stock cannot be sold quickly",
						"The market as a whole declines",
					},
					Answer: 1,
				},
			},
		},
		"fundamental-analysis": {
			TutorialID: "fundamental-analysis",
			Questions: []domain.Question{
				{
					Prompt: "Which statement shows a company's profitability over a period?",
					Options: []string{
						"Balance sheet",
						"Income statement",
						"Cash flow statement",
						"Shareholder register",
					},
					Answer: 1,
				},
				{
					Prompt: "A high P/E ratio relative to peers suggests:",
					Options: []string{
						"The stock is certainly undervalued",
						"Investors expect higher growth, or the stock is expensive",
						"The company has no debt",
						"Dividends will rise",
					},
					Answer: 1,
				},
				{
					Prompt: "Return on equity measures:",
					Options: []string{
						"Profit generated per dollar of shareholder equity",
						"Total revenue growth",
						"The ratio of debt to assets",
						"Cash held on the balance sheet",
					},
					Answer: 0,
				},
			},
		},
		"options-trading": {
			TutorialID: "options-trading",
			Questions: []domain.Question{
				{
					Prompt: "A call option gives the holder the right to:",
					Options: []string{
						"Sell an asset at the strike price",
						"Buy an asset at the strike price",
						"Receive dividends early",
						"Vote at shareholder meetings",
					},
					Answer: 1,
				},
				{
					Prompt: "The premium of an option is:",
					Options: []string{
						"The strike price",
						"The cost paid to purchase the option",
						"The profit at expiration",
						"The underlying asset's price",
					},
					Answer: 1,
				},
				{
					Prompt: "What happens to an option that expires out of the money?",
					Options: []string{
						"It converts to shares",
						"It is automatically exercised",
						"It expires worthless",
						"It rolls to the next month",
					},
					Answer: 2,
				},
			},
		},
		"advanced-technical": {
			TutorialID: "advanced-technical",
			Questions: []domain.Question{
				{
					Prompt: "Fibonacci retracement levels are used to identify:",
					Options: []string{
						"Company earnings dates",
						"Potential support and resistance zones",
						"Dividend yields",
						"Trading volume spikes",
					},
					Answer: 1,
				},
				{
					Prompt: "Elliott Wave theory posits that markets move in:",
					Options: []string{
						"Random, unpredictable jumps",
						"Repetitive wave patterns driven by psychology",
						"Straight trend lines",
						"Fixed daily ranges",
					},
					Answer: 1,
				},
				{
					Prompt: "The Ichimoku Cloud shows, in one view:",
					Options: []string{
						"Only trading volume",
						"Support, resistance, trend direction, and momentum",
						"Company fundamentals",
						"Order book depth",
					},
					Answer: 1,
				},
			},
		},
		"portfolio-management": {
			TutorialID: "portfolio-management",
			Questions: []domain.Question{
				{
					Prompt: "Rebalancing a portfolio means:",
					Options: []string{
						"Selling all losing positions",
						"Adjusting weights back to the target allocation",
						"Doubling the best performer",
						"Moving everything to cash",
					},
					Answer: 1,
				},
				{
					Prompt: "The Sharpe ratio measures:",
					Options: []string{
						"Total return only",
						"Risk-adjusted return",
						"Dividend payout ratio",
						"Portfolio turnover",
					},
					Answer: 1,
				},
				{
					Prompt: "Beta measures a portfolio's:",
					Options: []string{
						"Sensitivity to market movements",
						"Absolute return",
						"Cash balance",
						"Tax efficiency",
					},
					Answer: 0,
				},
			},
		},
	}
}

func exercises() map[string]domain.Exercise {
	return map[string]domain.Exercise{
		"stock-fundamentals": {
			TutorialID: "stock-fundamentals",
			Prompt: "Calculate the market capitalization: a company has 1 million shares " +
				"outstanding trading at $50 per share.",
			Answer: "50000000",
		},
		"chart-reading": {
			TutorialID: "chart-reading",
			Prompt: "Identify the pattern: a stock consistently bounces off support at $50 " +
				"and resistance at $60.",
			Answer: "Trading Range",
		},
	}
}
