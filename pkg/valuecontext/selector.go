package valuecontext

import (
	"math"
	"sort"
)

const (
	maxContextItems = 5
	// slot 5 never goes above max(capMultiple*|x|, capFloorUSD) when something
	// cheaper qualifies
	capMultiple = 10
	capFloorUSD = 10000
)

// SelectSmartContextItems picks up to five anchors spread around amount: the
// cheapest item, one near 0.3x, one near 1x, the cheapest at or above 0.5x and
// the largest at or above 0.1x (capped). Gaps are filled by closeness to |x|.
// The result is ordered by price, then label. A nil predicate keeps all items.
func SelectSmartContextItems(costs []CostItem, amount float64, predicate func(CostItem) bool) []CostItem {
	items := make([]CostItem, 0, len(costs))
	for _, c := range costs {
		if math.IsNaN(c.USD) || math.IsInf(c.USD, 0) || c.USD <= 0 {
			continue
		}
		if predicate != nil && !predicate(c) {
			continue
		}
		items = append(items, c)
	}
	if len(items) == 0 {
		return []CostItem{}
	}
	sort.SliceStable(items, func(i, j int) bool { return byPrice(items[i], items[j]) })

	absX := math.Abs(amount)
	if absX >= items[len(items)-1].USD {
		n := min(maxContextItems, len(items))
		out := make([]CostItem, 0, n)
		for i := len(items) - 1; i >= len(items)-n; i-- {
			out = append(out, items[i])
		}
		return out
	}

	s := &slots{items: items, used: make(map[string]struct{}, maxContextItems)}

	s.take(&items[0])
	s.take(s.closestInRange(0.1*absX, 0.5*absX, 0.3*absX))
	s.take(s.closestInRange(0.5*absX, 1.5*absX, absX))

	s4 := s.minAbove(0.5 * absX)
	if s4 == nil {
		if rest := s.pool(); len(rest) > 0 {
			s4 = &rest[len(rest)-1]
		}
	}
	s.take(s4)

	ceiling := math.Max(absX*capMultiple, capFloorUSD)
	s5 := s.maxAbove(0.1 * absX)
	if s5 != nil && s5.USD > ceiling {
		// the oversized pick stays if nothing fits under the cap
		if capped := s.maxInRange(0.1*absX, ceiling); capped != nil {
			s5 = capped
		}
	}
	if s5 == nil {
		s5 = s.closest(s.pool(), absX*2)
	}
	s.take(s5)

	if len(s.picked) < maxContextItems {
		rest := s.pool()
		sort.SliceStable(rest, func(i, j int) bool { return byDistance(rest[i], rest[j], absX) })
		for i := range rest {
			if len(s.picked) == maxContextItems {
				break
			}
			s.take(&rest[i])
		}
	}

	sort.SliceStable(s.picked, func(i, j int) bool { return byPrice(s.picked[i], s.picked[j]) })
	return s.picked
}

type slots struct {
	items  []CostItem
	used   map[string]struct{}
	picked []CostItem
}

func (s *slots) take(c *CostItem) {
	if c == nil {
		return
	}
	if _, ok := s.used[c.ID]; ok {
		return
	}
	s.used[c.ID] = struct{}{}
	s.picked = append(s.picked, *c)
}

// pool returns unused items in price order.
func (s *slots) pool() []CostItem {
	out := make([]CostItem, 0, len(s.items))
	for _, c := range s.items {
		if _, ok := s.used[c.ID]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *slots) filter(keep func(CostItem) bool) []CostItem {
	pool := s.pool()
	out := pool[:0]
	for _, c := range pool {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s *slots) closestInRange(lo, hi, target float64) *CostItem {
	return s.closest(s.filter(func(c CostItem) bool { return c.USD >= lo && c.USD <= hi }), target)
}

func (s *slots) closest(candidates []CostItem, target float64) *CostItem {
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool { return byDistance(candidates[i], candidates[j], target) })
	return &candidates[0]
}

func (s *slots) minAbove(lo float64) *CostItem {
	candidates := s.filter(func(c CostItem) bool { return c.USD >= lo })
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool { return byPrice(candidates[i], candidates[j]) })
	return &candidates[0]
}

func (s *slots) maxAbove(lo float64) *CostItem {
	return s.maxInRange(lo, math.Inf(1))
}

func (s *slots) maxInRange(lo, hi float64) *CostItem {
	candidates := s.filter(func(c CostItem) bool { return c.USD >= lo && c.USD <= hi })
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].USD != candidates[j].USD {
			return candidates[i].USD > candidates[j].USD
		}
		return candidates[i].Label < candidates[j].Label
	})
	return &candidates[0]
}

func byPrice(a, b CostItem) bool {
	if a.USD != b.USD {
		return a.USD < b.USD
	}
	return a.Label < b.Label
}

func byDistance(a, b CostItem, target float64) bool {
	da, db := math.Abs(a.USD-target), math.Abs(b.USD-target)
	if da != db {
		return da < db
	}
	return byPrice(a, b)
}
