package orchestrator

import (
	"github.com/kailas-cloud/edgarsearch/internal/domain/plan"
	"github.com/kailas-cloud/edgarsearch/internal/domain/query"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/result"
)

// consolidate projects the execution state onto the plan's declared shape.
func consolidate(p plan.Plan, st *state) query.Data {
	switch p.Shape {
	case query.ShapeSnapshot:
		return query.Snapshot{Issuer: st.issuer, Filings: st.filings}
	case query.ShapeFilings:
		return query.FilingList{Issuer: st.issuer, Filings: st.filings, Discovered: st.discovered}
	case query.ShapeContent:
		return contentBundle(st)
	case query.ShapeThematic:
		return thematicBundle(st)
	case query.ShapeComparison:
		return query.Comparison{Company: contentBundle(st), Thematic: thematicBundle(st)}
	default:
		return nil
	}
}

func contentBundle(st *state) query.ContentBundle {
	passages := st.passages
	if passages == nil {
		passages = []result.Result{}
	}
	return query.ContentBundle{
		Issuer:   st.issuer,
		Filing:   st.selected,
		Filings:  st.filings,
		Passages: passages,
	}
}

func thematicBundle(st *state) query.ThematicBundle {
	if st.thematic == nil {
		return query.ThematicBundle{Thematic: result.Thematic{Results: []result.Result{}}}
	}
	return query.ThematicBundle{Thematic: *st.thematic}
}
