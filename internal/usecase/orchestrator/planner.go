package orchestrator

import (
	"time"

	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/pattern"
	"github.com/kailas-cloud/edgarsearch/internal/domain/plan"
	"github.com/kailas-cloud/edgarsearch/internal/domain/query"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
)

// Planning defaults.
const (
	defaultListLimit     = 10
	defaultMetadataLimit = 20
	defaultPassages      = 10
)

// Rough per-operation costs used for the plan estimate.
var stepCost = map[plan.Operation]time.Duration{
	plan.OpResolveIssuer:  200 * time.Millisecond,
	plan.OpGetProfile:     300 * time.Millisecond,
	plan.OpListFilings:    500 * time.Millisecond,
	plan.OpSearchContent:  2 * time.Second,
	plan.OpThematicSearch: 30 * time.Second,
}

// BuildPlan turns a classification into a dependency-ordered plan.
func (s *Service) BuildPlan(q string, cls query.Classification, qc *query.Context) plan.Plan {
	in := input{query: q, cls: cls, qc: qc, kb: s.kb}

	var p plan.Plan
	switch cls.Pattern {
	case pattern.CompanySpecific:
		p = s.companyPlan(in)
	case pattern.Thematic:
		p = s.thematicPlan(in, false)
	case pattern.Hybrid:
		p = s.hybridPlan(in)
	case pattern.MetadataOnly:
		p = s.metadataPlan(in)
	default:
		p = s.thematicPlan(in, false)
	}
	p.Classification = cls
	p.EstimatedDuration = s.estimate(p)
	return p
}

// companyPlan chains resolve → profile → list → search. Listing runs only when a form,
// time, topic or intent asks for filings; search runs only when topics exist.
func (s *Service) companyPlan(in input) plan.Plan {
	ent := in.cls.Entities
	identifier, _ := firstMatch(in, identifierChain...)

	steps := []plan.Step{
		{
			Type:      plan.EntityResolution,
			Operation: plan.OpResolveIssuer,
			Params:    plan.Params{Identifier: identifier},
			Priority:  1,
		},
		{
			Type:      plan.DataRetrieval,
			Operation: plan.OpGetProfile,
			Priority:  2,
			DependsOn: []plan.Operation{plan.OpResolveIssuer},
		},
	}

	wantsFilings := len(ent.FormTypes) > 0 || len(ent.TimeExprs) > 0 || len(ent.Topics) > 0 || ent.Intent != nil
	if wantsFilings {
		forms, _ := firstMatch(in, formChain...)
		dr, _ := firstMatch(in, rangeChain...)
		limit, ok := maxFromContext(in)
		if !ok {
			limit = defaultListLimit
		}
		steps = append(steps, plan.Step{
			Type:      plan.DataRetrieval,
			Operation: plan.OpListFilings,
			Params: plan.Params{
				FormTypes: forms,
				DateRange: dr,
				Days:      s.windowDays(dr),
				Limit:     limit,
			},
			Priority:  3,
			DependsOn: []plan.Operation{plan.OpGetProfile},
		})
	}

	shape := query.ShapeSnapshot
	if len(ent.Topics) > 0 {
		sq, _ := firstMatch(in, searchQueryChain...)
		steps = append(steps, plan.Step{
			Type:      plan.ContentSearch,
			Operation: plan.OpSearchContent,
			Params: plan.Params{
				Query:      sq,
				Topics:     ent.Keywords(),
				MaxResults: defaultPassages,
			},
			Priority:  4,
			DependsOn: []plan.Operation{plan.OpListFilings},
		})
		shape = query.ShapeContent
	}

	return plan.Plan{Strategy: plan.Sequential, Steps: steps, Shape: shape}
}

// thematicPlan is one thematic-search step. In a hybrid plan the named company is the
// comparison anchor, so the theme runs over industries instead of that company.
func (s *Service) thematicPlan(in input, hybrid bool) plan.Plan {
	params := plan.Params{Query: in.query, Topics: in.cls.Entities.Keywords()}
	if hybrid {
		params.Industries, _ = firstMatch(in, industriesChain...)
	} else if companies, ok := firstMatch(in, companiesChain...); ok {
		params.Companies = companies
	} else {
		params.Industries, _ = industriesFromTopics(in)
	}
	params.FormTypes, _ = firstMatch(in, formChain...)
	params.DateRange, _ = firstMatch(in, rangeChain...)
	maxResults, ok := maxFromContext(in)
	if !ok {
		maxResults = request.DefaultThematicMax
	}
	params.MaxResults = maxResults
	params.Limit = request.Thematic{MaxResults: maxResults}.FilingsCap(s.filingsCeiling)

	return plan.Plan{
		Strategy: plan.SingleCall,
		Steps: []plan.Step{{
			Type:      plan.ThematicSearch,
			Operation: plan.OpThematicSearch,
			Params:    params,
			Priority:  1,
		}},
		Shape: query.ShapeThematic,
	}
}

// hybridPlan unions the company chain and the thematic chain, the latter shifted into
// its own priority band.
func (s *Service) hybridPlan(in input) plan.Plan {
	company := s.companyPlan(in)
	theme := s.thematicPlan(in, true)

	steps := make([]plan.Step, 0, len(company.Steps)+len(theme.Steps))
	steps = append(steps, company.Steps...)
	for _, st := range theme.Steps {
		st.Priority += plan.ThematicBand
		steps = append(steps, st)
	}

	strategy := plan.HybridSequential
	if s.hybridConcurrent {
		strategy = plan.Parallel
	}
	return plan.Plan{Strategy: strategy, Steps: steps, Shape: query.ShapeComparison}
}

// metadataPlan lists filings without fetching content.
func (s *Service) metadataPlan(in input) plan.Plan {
	forms, _ := firstMatch(in, formChain...)
	dr, _ := firstMatch(in, rangeChain...)
	companies, _ := firstMatch(in, companiesChain...)
	limit, ok := maxFromContext(in)
	if !ok {
		limit = defaultMetadataLimit
	}
	return plan.Plan{
		Strategy: plan.SingleCall,
		Steps: []plan.Step{{
			Type:      plan.Listing,
			Operation: plan.OpListFilings,
			Params: plan.Params{
				FormTypes: forms,
				DateRange: dr,
				Days:      s.windowDays(dr),
				Companies: companies,
				Limit:     limit,
			},
			Priority: 1,
		}},
		Shape: query.ShapeFilings,
	}
}

// windowDays converts a range start into a look-back window ending today.
func (s *Service) windowDays(dr *filing.DateRange) int {
	if dr == nil || dr.From.IsZero() {
		return 0
	}
	days := int(s.now().Sub(dr.From).Hours()/24) + 1
	return max(days, 1)
}

func (s *Service) estimate(p plan.Plan) time.Duration {
	if p.Strategy != plan.Parallel {
		var total time.Duration
		for _, st := range p.Steps {
			total += stepCost[st.Operation]
		}
		return total
	}
	var company, theme time.Duration
	for _, st := range p.Steps {
		if st.Priority >= plan.ThematicBand {
			theme += stepCost[st.Operation]
		} else {
			company += stepCost[st.Operation]
		}
	}
	return max(company, theme)
}
