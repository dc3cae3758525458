package evaluate

import (
	"math"
	"sort"

	"freight-ops-backend/internal/model"
	"freight-ops-backend/internal/parse"
)

var statusRank = map[model.Status]int{
	model.StatusRed:    0,
	model.StatusYellow: 1,
	model.StatusGreen:  2,
}

// NeedsAttention keeps the red and yellow loads, in input order.
func NeedsAttention(loads []model.EvaluatedLoad) []model.EvaluatedLoad {
	out := make([]model.EvaluatedLoad, 0, len(loads))
	for _, l := range loads {
		if l.NeedsAttention() {
			out = append(out, l)
		}
	}
	return out
}

// SortNeedsAttention returns a sorted copy: status rank, then the top score among
// exceptions matching the load's status (descending), then the relevant deadline
// (ascending), then id.
func SortNeedsAttention(loads []model.EvaluatedLoad) []model.EvaluatedLoad {
	type ranked struct {
		load     model.EvaluatedLoad
		status   int
		score    int
		deadline float64
	}
	rs := make([]ranked, len(loads))
	for i, l := range loads {
		rank, ok := statusRank[l.ComputedStatus]
		if !ok {
			rank = statusRank[model.StatusGreen]
		}
		rs[i] = ranked{load: l, status: rank, score: topMatchingScore(l), deadline: RelevantDeadline(l)}
	}

	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.status != b.status {
			return a.status < b.status
		}
		if a.score != b.score {
			return a.score > b.score
		}
		if a.deadline != b.deadline {
			return a.deadline < b.deadline
		}
		return a.load.ID < b.load.ID
	})

	out := make([]model.EvaluatedLoad, len(rs))
	for i, r := range rs {
		out[i] = r.load
	}
	return out
}

// topMatchingScore is the highest score among exceptions whose status equals the
// load's computed status. Green loads score math.MinInt.
func topMatchingScore(l model.EvaluatedLoad) int {
	best := math.MinInt
	for _, ex := range l.Exceptions {
		if ex.Status == l.ComputedStatus && ex.Score > best {
			best = ex.Score
		}
	}
	return best
}

// RelevantDeadline picks the timestamp (epoch ms) that matters for the primary
// exception. GPS problems use the soonest of all four window bounds.
func RelevantDeadline(l model.EvaluatedLoad) float64 {
	primary, ok := l.Primary()
	if !ok {
		return parse.Infinity
	}
	switch primary.Code {
	case model.CodePickupLate:
		return parse.Millis(l.PickupWindowEndISO)
	case model.CodePickupWindowSoon:
		return parse.Millis(l.PickupWindowStartISO)
	case model.CodeDeliveryLate:
		return parse.Millis(l.DeliveryWindowEndISO)
	case model.CodeDeliveryWindowSoon:
		return parse.Millis(l.DeliveryWindowStartISO)
	case model.CodeNoGPS, model.CodeGPSStale:
		return math.Min(
			math.Min(parse.Millis(l.PickupWindowStartISO), parse.Millis(l.PickupWindowEndISO)),
			math.Min(parse.Millis(l.DeliveryWindowStartISO), parse.Millis(l.DeliveryWindowEndISO)),
		)
	}
	return parse.Infinity
}
