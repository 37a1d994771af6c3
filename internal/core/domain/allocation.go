package domain

import "sort"

// SortBatchesFIFO orders batches for allocation: manufacturing date
// ascending with unknown dates last, ties kept in creation order.
func SortBatchesFIFO(batches []Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		mi, mj := batches[i].ManufacturingDate, batches[j].ManufacturingDate
		switch {
		case mi == nil && mj == nil:
			return false
		case mi == nil:
			return false
		case mj == nil:
			return true
		default:
			return mi.Before(*mj)
		}
	})
}

// PlanFIFO drafts an allocation of quantity units across the given batches,
// oldest stock first. The returned shortfall is the quantity the batches
// cannot cover; a plan with a non-zero shortfall must not be applied.
func PlanFIFO(batches []Batch, quantity int64) ([]BatchAllocation, int64) {
	ordered := make([]Batch, len(batches))
	copy(ordered, batches)
	SortBatchesFIFO(ordered)

	remaining := quantity
	var plan []BatchAllocation
	for _, b := range ordered {
		if remaining <= 0 {
			break
		}
		if b.AvailableQuantity <= 0 {
			continue
		}
		take := b.AvailableQuantity
		if take > remaining {
			take = remaining
		}
		plan = append(plan, BatchAllocation{BatchID: b.BatchID, QuantityTaken: take})
		remaining -= take
	}
	return plan, remaining
}

// PlanExplicit drafts an allocation that takes the requested quantity from
// each named batch. The shortfall accumulates whatever a named batch cannot
// cover; missing collects batch IDs that are not in the candidate set.
func PlanExplicit(batches []Batch, requests []BatchAllocation) (plan []BatchAllocation, shortfall int64, missing []string) {
	available := make(map[string]int64, len(batches))
	for _, b := range batches {
		available[b.BatchID] = b.AvailableQuantity
	}
	for _, req := range requests {
		avail, ok := available[req.BatchID]
		if !ok {
			missing = append(missing, req.BatchID)
			continue
		}
		if req.QuantityTaken > avail {
			shortfall += req.QuantityTaken - avail
			continue
		}
		available[req.BatchID] = avail - req.QuantityTaken
		plan = append(plan, BatchAllocation{BatchID: req.BatchID, QuantityTaken: req.QuantityTaken})
	}
	return plan, shortfall, missing
}
