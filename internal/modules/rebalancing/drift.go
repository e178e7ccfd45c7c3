package rebalancing

import (
	"math"
	"sort"
)

// unionKeys returns the sorted union of the keys of both weight mappings
func unionKeys(current, target map[string]float64) []string {
	seen := make(map[string]struct{}, len(current)+len(target))
	for k := range current {
		seen[k] = struct{}{}
	}
	for k := range target {
		seen[k] = struct{}{}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CheckAllocationDrift reports the categories whose current weight deviates
// from target by at least threshold.
//
// Keys missing from either mapping count as weight 0. A deviation exactly at
// the threshold is reported. A non-finite threshold falls back to
// DefaultDriftThreshold, a negative one is treated as 0.
//
// Returns:
//   - Drift records ordered by descending |drift|; equal magnitudes keep
//     ascending key order
func CheckAllocationDrift(current, target map[string]float64, threshold float64) []DriftEntry {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		threshold = DefaultDriftThreshold
	}
	threshold = math.Max(threshold, 0)

	drifts := []DriftEntry{}
	for _, asset := range unionKeys(current, target) {
		cur := finiteOrZero(current[asset])
		tgt := finiteOrZero(target[asset])
		drift := cur - tgt

		if math.Abs(drift)+epsilon < threshold {
			continue
		}

		action := ActionBuy
		if drift > 0 {
			action = ActionSell
		}

		drifts = append(drifts, DriftEntry{
			Asset:         asset,
			Action:        action,
			Amount:        math.Abs(drift),
			CurrentWeight: cur,
			TargetWeight:  tgt,
			Drift:         drift,
		})
	}

	sort.SliceStable(drifts, func(i, j int) bool {
		return drifts[i].Amount > drifts[j].Amount
	})

	return drifts
}

// NeedsRebalance reports whether any drift record was produced
func NeedsRebalance(drifts []DriftEntry) bool {
	return len(drifts) > 0
}
