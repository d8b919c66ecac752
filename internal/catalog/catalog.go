package catalog

// Item is a single skin inside a collection.
type Item struct {
	Name   string `json:"name"`
	Rarity Rarity `json:"rarity"`
}

// Collection is a named, fixed grouping of skins spanning multiple grades.
type Collection struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// ItemsAt returns the collection's items at exactly rarity r, in catalog
// order. Empty slice if none match.
func (c *Collection) ItemsAt(r Rarity) []Item {
	var out []Item
	for _, it := range c.Items {
		if it.Rarity == r {
			out = append(out, it)
		}
	}
	return out
}

// Outcomes returns the items reachable by trading up from input grade r:
// everything the collection holds one tier above. Empty if r is terminal or
// the collection has nothing at the next grade.
func (c *Collection) Outcomes(input Rarity) []Item {
	next, ok := input.Next()
	if !ok {
		return nil
	}
	return c.ItemsAt(next)
}

// Rarities returns the grades present in the collection, lowest to highest.
func (c *Collection) Rarities() []Rarity {
	present := make(map[Rarity]bool)
	for _, it := range c.Items {
		present[it.Rarity] = true
	}
	var out []Rarity
	for _, r := range RarityOrder {
		if present[r] {
			out = append(out, r)
		}
	}
	return out
}

// TradeUpPair is an adjacent from→to grade step available within one collection.
type TradeUpPair struct {
	From Rarity `json:"from"`
	To   Rarity `json:"to"`
}

// TradeUpPairs returns every adjacent grade pair the collection supports.
// Gaps in a collection's grade coverage break the chain: consumer items with
// no industrial items above them yield no pair.
func (c *Collection) TradeUpPairs() []TradeUpPair {
	rarities := c.Rarities()
	var pairs []TradeUpPair
	for i := 0; i < len(rarities)-1; i++ {
		from, to := rarities[i], rarities[i+1]
		if rarityRank[to] == rarityRank[from]+1 {
			pairs = append(pairs, TradeUpPair{From: from, To: to})
		}
	}
	return pairs
}

// Catalog is an immutable snapshot of all collections, loaded once at startup.
type Catalog struct {
	collections []*Collection
	byID        map[string]*Collection
}

// New builds a catalog from a slice of collections.
func New(collections []*Collection) *Catalog {
	cat := &Catalog{
		collections: collections,
		byID:        make(map[string]*Collection, len(collections)),
	}
	for _, c := range collections {
		cat.byID[c.ID] = c
	}
	return cat
}

// Collections returns all collections in catalog order.
func (cat *Catalog) Collections() []*Collection {
	return cat.collections
}

// Collection returns the collection with the given ID, or nil.
func (cat *Catalog) Collection(id string) *Collection {
	return cat.byID[id]
}

// Len returns the number of collections.
func (cat *Catalog) Len() int {
	return len(cat.collections)
}

// AvailableRarities returns, in grade order, every grade that can actually
// be traded up: at least one collection holds an item at its successor
// grade. Covert never appears; neither does a grade whose successor is
// empty everywhere.
func (cat *Catalog) AvailableRarities() []Rarity {
	usable := make(map[Rarity]bool)
	for _, c := range cat.collections {
		for _, it := range c.Items {
			if _, ok := it.Rarity.Next(); !ok {
				continue
			}
			if usable[it.Rarity] {
				continue
			}
			if len(c.Outcomes(it.Rarity)) > 0 {
				usable[it.Rarity] = true
			}
		}
	}
	var out []Rarity
	for _, r := range RarityOrder {
		if usable[r] {
			out = append(out, r)
		}
	}
	return out
}

// CollectionsWithRarity returns the collections holding at least one item at
// grade r. Used to restrict the collections selectable as trade-up inputs.
func (cat *Catalog) CollectionsWithRarity(r Rarity) []*Collection {
	var out []*Collection
	for _, c := range cat.collections {
		for _, it := range c.Items {
			if it.Rarity == r {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
