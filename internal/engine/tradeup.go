package engine

import (
	"errors"
	"fmt"

	"cs2-tradeup/internal/catalog"
)

// GroupSize is the fixed number of input skins a trade-up contract consumes.
const GroupSize = 10

var (
	// ErrIncompleteInput is returned when fewer than GroupSize rows are
	// supplied or any row is missing a strictly positive price.
	ErrIncompleteInput = errors.New("please enter a price for all 10 input skins")

	// ErrNoOutcomes is returned when none of the chosen collections has any
	// item at the next rarity tier (e.g. covert inputs).
	ErrNoOutcomes = errors.New("no outcomes found: the selected collections have no items at the next rarity tier")
)

// InputRow is one trade-up slot: the collection the skin comes from and the
// price paid for it.
type InputRow struct {
	CollectionID string  `json:"collection_id"`
	Price        float64 `json:"price"`
}

// OutcomeCandidate is one possible trade-up result with its assigned
// probability. Price is the user's hypothetical sale price (starts at 0);
// EV is Probability × Price.
type OutcomeCandidate struct {
	Name           string  `json:"name"`
	CollectionID   string  `json:"collection_id"`
	CollectionName string  `json:"collection_name"`
	Probability    float64 `json:"probability"`
	Price          float64 `json:"price"`
	EV             float64 `json:"ev"`
}

// Summary holds the aggregate numbers for a resolved trade-up.
type Summary struct {
	TotalCost  float64 `json:"total_cost"`
	TotalEV    float64 `json:"total_ev"`
	Profit     float64 `json:"profit"`
	ROIPercent float64 `json:"roi_percent"`
}

// Calculation is one resolved trade-up: a fixed input configuration plus the
// outcome candidates whose hypothetical sale prices the caller edits.
// Editing a price only recomputes EV figures; changing the rarity or any
// input row means resolving a fresh Calculation.
type Calculation struct {
	InputRarity  catalog.Rarity     `json:"input_rarity"`
	OutputRarity catalog.Rarity     `json:"output_rarity"`
	Rows         []InputRow         `json:"rows"`
	Candidates   []OutcomeCandidate `json:"candidates"`
	Summary      Summary            `json:"summary"`
}

// Calculator resolves trade-up outcomes against a loaded catalog.
type Calculator struct {
	cat *catalog.Catalog
}

// NewCalculator creates a calculator over the given catalog snapshot.
func NewCalculator(cat *catalog.Catalog) *Calculator {
	return &Calculator{cat: cat}
}

// Resolve validates the input rows and computes the outcome candidate set
// for a trade-up at the given input rarity.
//
// Probability model (simplified, documented): each distinct input collection
// carries weight count/GroupSize, split evenly across that collection's
// items at the next tier. Collections with no next-tier items contribute
// nothing — their weight is dropped, not redistributed, so probabilities can
// sum to less than 1 in mixed configurations. The candidate set is the union
// across collections without dedup: the same skin name reachable from two
// collections appears twice.
func (c *Calculator) Resolve(rarity catalog.Rarity, rows []InputRow) (*Calculation, error) {
	if len(rows) != GroupSize {
		return nil, ErrIncompleteInput
	}
	totalCost := 0.0
	for _, row := range rows {
		if row.Price <= 0 {
			return nil, ErrIncompleteInput
		}
		totalCost += row.Price
	}

	// Group rows by collection, preserving first-seen order so the
	// candidate list is stable for a given input configuration.
	counts := make(map[string]int)
	var order []string
	for _, row := range rows {
		if counts[row.CollectionID] == 0 {
			order = append(order, row.CollectionID)
		}
		counts[row.CollectionID]++
	}

	var candidates []OutcomeCandidate
	for _, id := range order {
		col := c.cat.Collection(id)
		if col == nil {
			continue
		}
		outcomes := col.Outcomes(rarity)
		if len(outcomes) == 0 {
			continue
		}
		weight := float64(counts[id]) / GroupSize
		p := weight / float64(len(outcomes))
		for _, it := range outcomes {
			candidates = append(candidates, OutcomeCandidate{
				Name:           it.Name,
				CollectionID:   col.ID,
				CollectionName: col.Name,
				Probability:    p,
			})
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoOutcomes
	}

	next, _ := rarity.Next()
	calc := &Calculation{
		InputRarity:  rarity,
		OutputRarity: next,
		Rows:         rows,
		Candidates:   candidates,
		Summary:      Summary{TotalCost: totalCost},
	}
	calc.Recompute()
	return calc, nil
}

// SetPrice sets the hypothetical sale price of one outcome candidate and
// refreshes the EV figures. Negative prices are treated as 0, matching the
// price inputs' lower bound.
func (c *Calculation) SetPrice(index int, price float64) error {
	if index < 0 || index >= len(c.Candidates) {
		return fmt.Errorf("outcome index %d out of range [0,%d)", index, len(c.Candidates))
	}
	if price < 0 {
		price = 0
	}
	c.Candidates[index].Price = price
	c.Recompute()
	return nil
}

// Recompute re-derives every candidate's EV and the aggregate summary from
// the current prices. It is a pure function of those prices: repeated calls
// never drift.
func (c *Calculation) Recompute() {
	totalEV := 0.0
	for i := range c.Candidates {
		c.Candidates[i].EV = c.Candidates[i].Probability * c.Candidates[i].Price
		totalEV += c.Candidates[i].EV
	}
	c.Summary.TotalEV = totalEV
	c.Summary.Profit = totalEV - c.Summary.TotalCost
	if c.Summary.TotalCost > 0 {
		c.Summary.ROIPercent = c.Summary.Profit / c.Summary.TotalCost * 100
	} else {
		c.Summary.ROIPercent = 0
	}
}

// Snapshot returns a copy that is safe to serialize while the original
// keeps being edited: the row and candidate slices are copied, not shared.
func (c *Calculation) Snapshot() Calculation {
	out := *c
	out.Rows = append([]InputRow(nil), c.Rows...)
	out.Candidates = append([]OutcomeCandidate(nil), c.Candidates...)
	return out
}

// ProbabilitySum returns the total probability mass assigned across the
// candidate set. It is 1.0 (modulo float error) unless some input
// collection's weight was dropped for lack of next-tier outcomes.
func (c *Calculation) ProbabilitySum() float64 {
	sum := 0.0
	for _, cand := range c.Candidates {
		sum += cand.Probability
	}
	return sum
}
