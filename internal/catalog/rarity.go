package catalog

// Rarity is one of the six CS2 skin grades. Trade-ups consume ten skins of
// one grade and produce a single skin of the next grade up.
type Rarity string

const (
	RarityConsumer   Rarity = "consumer"
	RarityIndustrial Rarity = "industrial"
	RarityMilspec    Rarity = "milspec"
	RarityRestricted Rarity = "restricted"
	RarityClassified Rarity = "classified"
	RarityCovert     Rarity = "covert"
)

// RarityOrder lists all grades lowest to highest. Covert is terminal: it has
// no successor and can never be a trade-up input.
var RarityOrder = []Rarity{
	RarityConsumer,
	RarityIndustrial,
	RarityMilspec,
	RarityRestricted,
	RarityClassified,
	RarityCovert,
}

var rarityRank = map[Rarity]int{
	RarityConsumer:   0,
	RarityIndustrial: 1,
	RarityMilspec:    2,
	RarityRestricted: 3,
	RarityClassified: 4,
	RarityCovert:     5,
}

var rarityLabels = map[Rarity]string{
	RarityConsumer:   "Consumer Grade",
	RarityIndustrial: "Industrial Grade",
	RarityMilspec:    "Mil-Spec",
	RarityRestricted: "Restricted",
	RarityClassified: "Classified",
	RarityCovert:     "Covert",
}

// In-game grade colors, used by the frontend for badges.
var rarityColors = map[Rarity]string{
	RarityConsumer:   "#b0c3d9",
	RarityIndustrial: "#5e98d9",
	RarityMilspec:    "#4b69ff",
	RarityRestricted: "#8847ff",
	RarityClassified: "#d32ce6",
	RarityCovert:     "#eb4b4b",
}

// Known reports whether r is one of the six fixed grades. Catalog data with
// an unrecognized rarity string is kept but never matches tier queries.
func (r Rarity) Known() bool {
	_, ok := rarityRank[r]
	return ok
}

// Next returns the grade one tier above r. ok is false for covert and for
// unrecognized rarity strings.
func (r Rarity) Next() (Rarity, bool) {
	i, ok := rarityRank[r]
	if !ok || i >= len(RarityOrder)-1 {
		return "", false
	}
	return RarityOrder[i+1], true
}

// Label returns the display name for r, falling back to the raw string.
func (r Rarity) Label() string {
	if l, ok := rarityLabels[r]; ok {
		return l
	}
	return string(r)
}

// Color returns the hex badge color for r, or empty for unknown grades.
func (r Rarity) Color() string {
	return rarityColors[r]
}
