package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/edgarsearch/internal/app"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/query"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
)

// --- offline commands ---

var extractCmd = &cobra.Command{
	Use:   "extract <query>",
	Short: "Print the entities found in a query (no network)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		off, err := app.BuildOffline(cfg)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), off.Extractor.Extract(strings.Join(args, " ")))
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify <query>",
	Short: "Print how a query would be routed (no network)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		off, err := app.BuildOffline(cfg)
		if err != nil {
			return err
		}
		cls, err := off.Classifier.Classify(strings.Join(args, " "), queryContext())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), cls)
	},
}

// --- query command ---

var (
	ctxCompanies []string
	ctxForms     []string
	ctxMax       int
	ctxRecent    bool
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Answer a free-text question from EDGAR filings",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()

		res := engine.Orchestrator.Orchestrate(cmd.Context(), strings.Join(args, " "), queryContext())
		if err := printJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("query failed: %s", strings.Join(res.Metadata.Errors, "; "))
		}
		return nil
	},
}

// queryContext returns caller hints from flags, or nil when none were given.
func queryContext() *query.Context {
	if len(ctxCompanies) == 0 && len(ctxForms) == 0 && ctxMax == 0 && !ctxRecent {
		return nil
	}
	return &query.Context{
		Companies:    ctxCompanies,
		FormTypes:    ctxForms,
		MaxResults:   ctxMax,
		PreferRecent: ctxRecent,
	}
}

// --- discover command ---

var (
	discCompanies  []string
	discIndustries []string
	discForms      []string
	discMax        int
	discSort       string
	discOrder      string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List recent filings across issuers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		engine, err := buildEngine(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()

		docs, err := engine.Discovery.Discover(cmd.Context(), request.Discovery{
			FormTypes:  discForms,
			Industries: discIndustries,
			Companies:  discCompanies,
			MaxResults: discMax,
			SortBy:     request.SortKey(discSort),
			SortOrder:  request.SortOrder(discOrder),
		}, progressFunc(cmd.ErrOrStderr()))
		if err != nil {
			return fmt.Errorf("discover: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), docs)
	},
}

// --- search command ---

var (
	searchCompanies []string
	searchForms     []string
	searchQuery     string
	searchSections  []string
	searchMax       int
	searchFilings   int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the text of an issuer's recent filings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if strings.TrimSpace(searchQuery) == "" {
			return fmt.Errorf("--query is required")
		}
		engine, err := buildEngine(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()

		report := progressFunc(cmd.ErrOrStderr())
		docs, err := engine.Discovery.Discover(cmd.Context(), request.Discovery{
			FormTypes:  searchForms,
			Companies:  searchCompanies,
			MaxResults: searchFilings,
		}, report)
		if err != nil {
			return fmt.Errorf("discover: %w", err)
		}
		if len(docs) == 0 {
			return printJSON(cmd.OutOrStdout(), []filing.Discovered{})
		}

		results, err := engine.Search.Search(cmd.Context(), request.Search{
			Documents:  docs,
			Query:      searchQuery,
			Sections:   searchSections,
			MaxResults: searchMax,
			MinScore:   request.ScoreFloor(cfg.Engine.ScoreFloor),
			Snippets:   true,
			Dedupe:     true,
		}, report)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), results)
	},
}

func init() {
	for _, c := range []*cobra.Command{classifyCmd, queryCmd} {
		c.Flags().StringSliceVar(&ctxCompanies, "company", nil, "Company name or ticker hint (repeatable)")
		c.Flags().StringSliceVar(&ctxForms, "form", nil, "Form type hint, e.g. 10-K (repeatable)")
		c.Flags().IntVar(&ctxMax, "max", 0, "Maximum results hint")
		c.Flags().BoolVar(&ctxRecent, "recent", false, "Prefer the most recent filings")
	}

	discoverCmd.Flags().StringSliceVar(&discCompanies, "company", nil, "Ticker, CIK or company name (repeatable)")
	discoverCmd.Flags().StringSliceVar(&discIndustries, "industry", nil, "Industry to scan when no company is given")
	discoverCmd.Flags().StringSliceVar(&discForms, "form", nil, "Form type filter (default 10-K, 10-Q, 8-K)")
	discoverCmd.Flags().IntVar(&discMax, "max", 0, "Maximum filings to return")
	discoverCmd.Flags().StringVar(&discSort, "sort", "", "Sort key: filed_date, issuer_name or relevance")
	discoverCmd.Flags().StringVar(&discOrder, "order", "", "Sort order: desc or asc")

	searchCmd.Flags().StringSliceVar(&searchCompanies, "company", nil, "Ticker, CIK or company name (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchForms, "form", []string{filing.Form10K}, "Form types to search")
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Search terms")
	searchCmd.Flags().StringSliceVar(&searchSections, "section", nil, "Restrict to sections whose title contains this")
	searchCmd.Flags().IntVar(&searchMax, "max", 0, "Maximum passages to return")
	searchCmd.Flags().IntVar(&searchFilings, "filings", 5, "Maximum filings to fetch")
}
