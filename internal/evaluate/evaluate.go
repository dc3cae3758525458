// Package evaluate turns raw loads into evaluated loads and ranks the ones
// that need an operator's attention.
package evaluate

import (
	"log"
	"sort"
	"time"

	"freight-ops-backend/internal/model"
	"freight-ops-backend/internal/rules"
)

// DefaultNextAction is shown for loads with no exceptions.
const DefaultNextAction = "No action needed; monitor"

// RuleFunc produces the exceptions for one load. rules.Evaluate in production.
type RuleFunc func(load model.Load, now time.Time) []model.Exception

var severityRank = map[model.Severity]int{
	model.SeverityRisk:  1,
	model.SeverityWatch: 0,
}

// SortExceptions orders exceptions by severity (risk first), score descending,
// then code ascending.
func SortExceptions(exs []model.Exception) {
	sort.SliceStable(exs, func(i, j int) bool {
		a, b := exs[i], exs[j]
		if severityRank[a.Severity] != severityRank[b.Severity] {
			return severityRank[a.Severity] > severityRank[b.Severity]
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Code < b.Code
	})
}

// AggregateStatus is red if any exception is red, else yellow if any is yellow, else green.
func AggregateStatus(exs []model.Exception) model.Status {
	status := model.StatusGreen
	for _, ex := range exs {
		switch ex.Status {
		case model.StatusRed:
			return model.StatusRed
		case model.StatusYellow:
			status = model.StatusYellow
		}
	}
	return status
}

// Load evaluates a single load at now.
func Load(load model.Load, now time.Time) model.EvaluatedLoad {
	return loadWith(rules.Evaluate, load, now)
}

func loadWith(run RuleFunc, load model.Load, now time.Time) model.EvaluatedLoad {
	exs := run(load, now)
	if exs == nil {
		exs = []model.Exception{}
	}
	SortExceptions(exs)

	ev := model.EvaluatedLoad{
		Load:               load,
		ComputedStatus:     AggregateStatus(exs),
		ComputedNextAction: DefaultNextAction,
		Exceptions:         exs,
	}
	if primary, ok := ev.Primary(); ok {
		ev.ComputedRiskReason = primary.Detail
		ev.ComputedNextAction = primary.NextAction
	}
	return ev
}

// AllLoads evaluates every load, preserving input order. A load whose
// evaluation panics is logged and reported green with no exceptions.
func AllLoads(loads []model.Load, now time.Time) []model.EvaluatedLoad {
	return allLoadsWith(rules.Evaluate, loads, now)
}

func allLoadsWith(run RuleFunc, loads []model.Load, now time.Time) []model.EvaluatedLoad {
	out := make([]model.EvaluatedLoad, 0, len(loads))
	for _, load := range loads {
		out = append(out, safeLoad(run, load, now))
	}
	return out
}

func safeLoad(run RuleFunc, load model.Load, now time.Time) (ev model.EvaluatedLoad) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error evaluating load %s: %v. Reporting it as green.", load.ID, r)
			ev = model.EvaluatedLoad{
				Load:               load,
				ComputedStatus:     model.StatusGreen,
				ComputedNextAction: DefaultNextAction,
				Exceptions:         []model.Exception{},
			}
		}
	}()
	return loadWith(run, load, now)
}
