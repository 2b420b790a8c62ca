package knowledge

import (
	"sync"

	"github.com/kailas-cloud/edgarsearch/internal/domain/entity"
)

var (
	defaultOnce sync.Once
	defaultBase *Base
)

// Default returns the built-in knowledge base, built on first use.
func Default() *Base {
	defaultOnce.Do(func() {
		defaultBase = New(DefaultTables())
	})
	return defaultBase
}

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() Tables {
	return Tables{
		Issuers: []Issuer{
			{Name: "Apple", Aliases: []string{"apple inc", "apple computer"}, Ticker: "AAPL", Industry: "technology"},
			{Name: "Microsoft", Aliases: []string{"msft corp"}, Ticker: "MSFT", Industry: "technology"},
			{Name: "Alphabet", Aliases: []string{"google"}, Ticker: "GOOGL", Industry: "technology"},
			{Name: "Amazon", Aliases: []string{"amazon.com"}, Ticker: "AMZN", Industry: "retail"},
			{Name: "Meta Platforms", Aliases: []string{"facebook", "meta"}, Ticker: "META", Industry: "technology"},
			{Name: "Nvidia", Ticker: "NVDA", Industry: "semiconductors"},
			{Name: "Tesla", Ticker: "TSLA", Industry: "automotive"},
			{Name: "Intel", Ticker: "INTC", Industry: "semiconductors"},
			{Name: "Advanced Micro Devices", Aliases: []string{"amd"}, Ticker: "AMD", Industry: "semiconductors"},
			{Name: "Oracle", Ticker: "ORCL", Industry: "technology"},
			{Name: "Salesforce", Ticker: "CRM", Industry: "technology"},
			{Name: "Netflix", Ticker: "NFLX", Industry: "media"},
			{Name: "JPMorgan Chase", Aliases: []string{"jpmorgan", "jp morgan"}, Ticker: "JPM", Industry: "banking"},
			{Name: "Bank of America", Ticker: "BAC", Industry: "banking"},
			{Name: "Goldman Sachs", Ticker: "GS", Industry: "banking"},
			{Name: "Wells Fargo", Ticker: "WFC", Industry: "banking"},
			{Name: "Berkshire Hathaway", Aliases: []string{"berkshire"}, Ticker: "BRK-B", Industry: "financial"},
			{Name: "Visa", Ticker: "V", Industry: "financial"},
			{Name: "Johnson & Johnson", Aliases: []string{"johnson and johnson"}, Ticker: "JNJ", Industry: "healthcare"},
			{Name: "Pfizer", Ticker: "PFE", Industry: "healthcare"},
			{Name: "UnitedHealth", Aliases: []string{"unitedhealth group"}, Ticker: "UNH", Industry: "healthcare"},
			{Name: "Exxon Mobil", Aliases: []string{"exxon", "exxonmobil"}, Ticker: "XOM", Industry: "energy"},
			{Name: "Chevron", Ticker: "CVX", Industry: "energy"},
			{Name: "Walmart", Ticker: "WMT", Industry: "retail"},
			{Name: "Coca-Cola", Aliases: []string{"coca cola", "coke"}, Ticker: "KO", Industry: "consumer"},
			{Name: "Procter & Gamble", Aliases: []string{"procter and gamble"}, Ticker: "PG", Industry: "consumer"},
			{Name: "Ford", Aliases: []string{"ford motor"}, Ticker: "F", Industry: "automotive"},
			{Name: "General Motors", Ticker: "GM", Industry: "automotive"},
			{Name: "Boeing", Ticker: "BA", Industry: "industrials"},
			{Name: "AT&T", Ticker: "T", Industry: "telecom"},
			{Name: "Verizon", Ticker: "VZ", Industry: "telecom"},
		},
		Topics: []Topic{
			{Keyword: "revenue", Category: entity.Financial, Synonyms: []string{"revenues", "net sales", "sales", "top line"}},
			{Keyword: "earnings", Category: entity.Financial, Synonyms: []string{"net income", "profit", "profits", "eps"}},
			{Keyword: "margin", Category: entity.Financial, Synonyms: []string{"gross margin", "operating margin"}},
			{Keyword: "cash flow", Category: entity.Financial, Synonyms: []string{"free cash flow", "liquidity"}},
			{Keyword: "debt", Category: entity.Financial, Synonyms: []string{"borrowings", "leverage"}},
			{Keyword: "dividend", Category: entity.Financial, Synonyms: []string{"dividends", "buyback", "share repurchase"}},
			{Keyword: "guidance", Category: entity.Financial, Synonyms: []string{"outlook", "forecast"}},
			{Keyword: "risk", Category: entity.Risk, Synonyms: []string{"risk factors", "risks"}},
			{Keyword: "cybersecurity", Category: entity.Risk, Synonyms: []string{"cyber", "data breach", "ransomware", "information security"}},
			{Keyword: "litigation", Category: entity.Risk, Synonyms: []string{"lawsuit", "legal proceedings"}},
			{Keyword: "climate", Category: entity.Risk, Synonyms: []string{"climate change", "emissions", "greenhouse"}},
			{Keyword: "inflation", Category: entity.Risk, Synonyms: []string{"interest rates"}},
			{Keyword: "supply chain", Category: entity.Operations, Synonyms: []string{"supply-chain", "suppliers", "logistics"}},
			{Keyword: "acquisition", Category: entity.Operations, Synonyms: []string{"acquisitions", "merger", "mergers"}},
			{Keyword: "employees", Category: entity.Operations, Synonyms: []string{"workforce", "headcount", "human capital"}},
			{Keyword: "restructuring", Category: entity.Operations, Synonyms: []string{"layoffs", "reorganization"}},
			{Keyword: "research and development", Category: entity.Operations, Synonyms: []string{"r&d"}},
			{Keyword: "artificial intelligence", Category: entity.Operations, Synonyms: []string{"machine learning", "generative ai"}},
			{Keyword: "compensation", Category: entity.Governance, Synonyms: []string{"executive pay", "salary", "bonus"}},
			{Keyword: "board", Category: entity.Governance, Synonyms: []string{"directors", "board of directors"}},
			{Keyword: "governance", Category: entity.Governance, Synonyms: []string{"corporate governance"}},
			{Keyword: "shareholder", Category: entity.Governance, Synonyms: []string{"shareholders", "stockholder", "stockholders"}},
			{Keyword: "regulation", Category: entity.Regulatory, Synonyms: []string{"regulatory", "regulators"}},
			{Keyword: "antitrust", Category: entity.Regulatory, Synonyms: []string{"competition law"}},
			{Keyword: "tariffs", Category: entity.Regulatory, Synonyms: []string{"tariff", "trade restrictions"}},
			{Keyword: "privacy", Category: entity.Regulatory, Synonyms: []string{"gdpr", "data protection"}},
			{Keyword: "sanctions", Category: entity.Regulatory, Synonyms: []string{"export controls"}},
		},
		Intents: []Intent{
			{
				Label:     "financial_performance",
				Keywords:  []string{"revenue", "earnings", "profit", "net income", "sales", "margin", "financial results", "eps", "cash flow"},
				FormTypes: []string{"10-K", "10-Q"},
				Priority:  entity.Latest,
			},
			{
				Label:     "risk_assessment",
				Keywords:  []string{"risk", "risk factors", "cybersecurity", "threat", "exposure", "litigation", "uncertainty"},
				FormTypes: []string{"10-K", "10-Q"},
				Priority:  entity.Comprehensive,
			},
			{
				Label:     "business_overview",
				Keywords:  []string{"business", "strategy", "products", "competition", "business model", "segments", "overview"},
				FormTypes: []string{"10-K"},
				Priority:  entity.Comprehensive,
			},
			{
				Label:     "executive_compensation",
				Keywords:  []string{"compensation", "executive pay", "salary", "bonus", "stock awards"},
				FormTypes: []string{"DEF 14A"},
				Priority:  entity.Latest,
			},
			{
				Label:     "governance",
				Keywords:  []string{"board", "directors", "governance", "shareholder proposal", "voting"},
				FormTypes: []string{"DEF 14A", "10-K"},
				Priority:  entity.Latest,
			},
			{
				Label:     "material_events",
				Keywords:  []string{"acquisition", "merger", "material event", "announcement", "resignation", "bankruptcy", "agreement"},
				FormTypes: []string{"8-K"},
				Priority:  entity.Recent,
			},
			{
				Label:     "insider_activity",
				Keywords:  []string{"insider", "insider trading", "form 4", "beneficial ownership"},
				FormTypes: []string{"4"},
				Priority:  entity.Recent,
			},
		},
		Industries: map[string][]string{
			"technology":     {"AAPL", "MSFT", "GOOGL", "META", "ORCL", "CRM"},
			"semiconductors": {"NVDA", "INTC", "AMD"},
			"banking":        {"JPM", "BAC", "GS", "WFC"},
			"financial":      {"JPM", "BAC", "GS", "WFC", "BRK-B", "V"},
			"healthcare":     {"JNJ", "PFE", "UNH"},
			"energy":         {"XOM", "CVX"},
			"retail":         {"AMZN", "WMT"},
			"automotive":     {"TSLA", "F", "GM"},
			"consumer":       {"KO", "PG", "WMT"},
			"telecom":        {"T", "VZ"},
			"media":          {"NFLX"},
			"industrials":    {"BA"},
		},
		TopicIndustries: map[string][]string{
			"cybersecurity":            {"technology", "banking"},
			"privacy":                  {"technology"},
			"artificial intelligence":  {"technology", "semiconductors"},
			"research and development": {"technology", "healthcare", "semiconductors"},
			"climate":                  {"energy", "automotive"},
			"supply chain":             {"semiconductors", "retail", "automotive"},
			"tariffs":                  {"retail", "automotive", "semiconductors"},
			"inflation":                {"consumer", "retail", "banking"},
			"debt":                     {"banking", "financial"},
			"antitrust":                {"technology"},
			"litigation":               {"healthcare", "technology"},
			"sanctions":                {"energy", "banking"},
		},
		FormCodes: []string{
			"10-K", "10-Q", "8-K", "20-F", "40-F", "6-K", "DEF 14A", "S-1", "S-4", "424B4",
			"13F-HR", "SC 13D", "SC 13G", "11-K", "10-K/A", "10-Q/A", "8-K/A",
		},
		FormSynonyms: map[string]string{
			"annual report":          "10-K",
			"annual reports":         "10-K",
			"10k":                    "10-K",
			"quarterly report":       "10-Q",
			"quarterly reports":      "10-Q",
			"10q":                    "10-Q",
			"current report":         "8-K",
			"current reports":        "8-K",
			"material event":         "8-K",
			"8k":                     "8-K",
			"proxy statement":        "DEF 14A",
			"proxy":                  "DEF 14A",
			"registration statement": "S-1",
			"ipo prospectus":         "S-1",
			"foreign annual report":  "20-F",
			"insider filing":         "4",
			"form 4":                 "4",
			"institutional holdings": "13F-HR",
		},
		TickerStopWords: []string{
			"A", "I", "AN", "AND", "ARE", "AS", "AT", "BE", "BY", "DO", "FOR", "FROM", "HAS", "HOW", "IF", "IN",
			"IS", "IT", "ITS", "ME", "MY", "OF", "ON", "OR", "THE", "TO", "US", "WE", "WHAT", "WHO", "WHY",
			"ALL", "ANY", "CAN", "LIST", "SHOW", "FIND", "GIVE", "TELL", "LAST", "NEXT", "YEAR", "NEW",
			"SEC", "CEO", "CFO", "COO", "CTO", "USA", "USD", "AI", "IPO", "ESG", "EPS", "GAAP", "LLC", "INC",
			"CORP", "LTD", "API", "FY", "YTD", "QTD", "TTM", "EBIT", "DEF", "FORM", "NYSE", "ETF", "M", "K",
			"Q", "R", "D", "S", "OK",
		},
		DefaultUniverse: []string{
			"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "TSLA", "JPM", "V", "JNJ",
			"WMT", "XOM", "PG", "UNH", "BAC", "KO", "PFE", "INTC", "ORCL", "CVX",
		},
		FormAuthority: map[string]int{
			"10-K":    0,
			"20-F":    0,
			"40-F":    0,
			"10-K/A":  1,
			"10-Q":    2,
			"8-K":     3,
			"DEF 14A": 4,
		},
	}
}
