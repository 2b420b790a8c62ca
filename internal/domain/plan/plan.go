// Package plan holds the dependency-ordered execution plan built for one query.
package plan

import (
	"sort"
	"time"

	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/query"
)

// StepType tags the kind of work a step does.
type StepType string

// Step types.
const (
	EntityResolution StepType = "entity_resolution"
	DataRetrieval    StepType = "data_retrieval"
	ContentSearch    StepType = "content_search"
	ThematicSearch   StepType = "thematic_search"
	Listing          StepType = "listing"
)

// Operation names the unit of work a step invokes.
type Operation string

// Operations.
const (
	OpResolveIssuer  Operation = "resolve_issuer"
	OpGetProfile     Operation = "get_issuer_profile"
	OpListFilings    Operation = "list_recent_filings"
	OpSearchContent  Operation = "search_filing_content"
	OpThematicSearch Operation = "thematic_search"
)

// Strategy tags how steps are scheduled.
type Strategy string

// Strategies.
const (
	Sequential       Strategy = "sequential"
	SingleCall       Strategy = "single_call"
	Parallel         Strategy = "parallel"
	HybridSequential Strategy = "hybrid_sequential"
)

// ThematicBand is the priority offset of the thematic chain inside a hybrid plan.
const ThematicBand = 100

// Params are the inputs of a step. Unused fields stay zero.
type Params struct {
	Identifier string            `json:"identifier,omitempty"`
	FormTypes  []string          `json:"form_types,omitempty"`
	Days       int               `json:"days,omitempty"`
	Limit      int               `json:"limit,omitempty"`
	DateRange  *filing.DateRange `json:"date_range,omitempty"`
	Query      string            `json:"query,omitempty"`
	Topics     []string          `json:"topics,omitempty"`
	Sections   []string          `json:"sections,omitempty"`
	DocumentID string            `json:"document_id,omitempty"`
	Companies  []string          `json:"companies,omitempty"`
	Industries []string          `json:"industries,omitempty"`
	MaxResults int               `json:"max_results,omitempty"`
}

// Step is one unit of a plan. Lower priority runs first.
type Step struct {
	Type      StepType    `json:"type"`
	Operation Operation   `json:"operation"`
	Params    Params      `json:"params"`
	Priority  int         `json:"priority"`
	DependsOn []Operation `json:"depends_on,omitempty"`
}

// Plan is built fresh for each query.
type Plan struct {
	Classification    query.Classification `json:"classification"`
	Strategy          Strategy             `json:"strategy"`
	Steps             []Step               `json:"steps"`
	Shape             query.Shape          `json:"shape"`
	EstimatedDuration time.Duration        `json:"estimated_duration"`
}

// Ordered returns the steps sorted by ascending priority, keeping insertion order on ties.
func (p Plan) Ordered() []Step {
	steps := make([]Step, len(p.Steps))
	copy(steps, p.Steps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Priority < steps[j].Priority
	})
	return steps
}

// Operations lists the operation names of the plan in execution order.
func (p Plan) Operations() []Operation {
	steps := p.Ordered()
	ops := make([]Operation, len(steps))
	for i, s := range steps {
		ops[i] = s.Operation
	}
	return ops
}
