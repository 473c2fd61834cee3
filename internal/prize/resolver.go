package prize

import "strings"

type RandomSource interface {
	// Intn returns a uniform random value in [0, n).
	Intn(n int) int
}

// Resolve decides the outcome of a claim by name against the catalog c and
// returns the catalog as it must be stored afterwards. It never modifies c.
//
// A targeted line matching the name always wins over the random pool. Among
// targeted lines the first match in stored order is taken.
func Resolve(name string, c Catalog, rng RandomSource) (Outcome, Catalog) {
	next := c.Clone()

	key := NormalizeName(name)
	for i, line := range c.Targeted {
		a, ok := ParseAssignment(line)
		if !ok || a.ClaimantKey != key {
			continue
		}

		outcome := targetedOutcome(a.PrizeLabel)
		if strings.Contains(strings.ToUpper(a.PrizeLabel), zonkToken) {
			outcome = targetedZonkOutcome()
		}

		if c.RemoveAfterWin {
			next.Targeted = removeAt(c.Targeted, i)
		}

		return outcome, next
	}

	if len(c.RandomPool) == 0 {
		return emptyPoolOutcome(), next
	}

	i := rng.Intn(len(c.RandomPool))
	entry := strings.TrimSpace(c.RandomPool[i])

	outcome := poolOutcome(entry)
	if strings.EqualFold(entry, zonkToken) {
		outcome = poolZonkOutcome()
	}

	if c.RemoveAfterWin {
		next.RandomPool = removeAt(c.RandomPool, i)
	}

	return outcome, next
}
