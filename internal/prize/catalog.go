package prize

import (
	"strings"

	"golang.org/x/text/cases"
)

const separator = ":"

// Catalog is the shared prize configuration. Both lists hold non-blank lines
// in stored order. Targeted lines are "name:label" pairs; lines that do not
// parse are kept so that an admin can still see and fix them.
type Catalog struct {
	RandomPool     []string
	Targeted       []string
	RemoveAfterWin bool
}

func DefaultCatalog() Catalog {
	return Catalog{RemoveAfterWin: true}
}

// ParseCatalog builds a Catalog from its newline-delimited representation.
func ParseCatalog(poolText, targetedText string, removeAfterWin bool) Catalog {
	return Catalog{
		RandomPool:     splitLines(poolText),
		Targeted:       splitLines(targetedText),
		RemoveAfterWin: removeAfterWin,
	}
}

func (c Catalog) PoolText() string {
	return strings.Join(c.RandomPool, "\n")
}

func (c Catalog) TargetedText() string {
	return strings.Join(c.Targeted, "\n")
}

// AvailablePrizes is the number of entries left in the random pool.
func (c Catalog) AvailablePrizes() int {
	return len(c.RandomPool)
}

func (c Catalog) Clone() Catalog {
	return Catalog{
		RandomPool:     cloneLines(c.RandomPool),
		Targeted:       cloneLines(c.Targeted),
		RemoveAfterWin: c.RemoveAfterWin,
	}
}

func (c Catalog) Equal(other Catalog) bool {
	return c.RemoveAfterWin == other.RemoveAfterWin &&
		equalLines(c.RandomPool, other.RandomPool) &&
		equalLines(c.Targeted, other.Targeted)
}

// Assignment is a parsed targeted line.
type Assignment struct {
	ClaimantKey string
	PrizeLabel  string
}

// ParseAssignment splits line at its first colon. It reports false for lines
// without a separator, with an empty name or with an empty label.
func ParseAssignment(line string) (Assignment, bool) {
	name, label, found := strings.Cut(line, separator)
	if !found {
		return Assignment{}, false
	}

	a := Assignment{
		ClaimantKey: NormalizeName(name),
		PrizeLabel:  strings.TrimSpace(label),
	}
	if a.ClaimantKey == "" || a.PrizeLabel == "" {
		return Assignment{}, false
	}

	return a, true
}

// NormalizeName trims and case-folds a claimant name so that it can be
// compared with a targeted line key.
func NormalizeName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func splitLines(text string) []string {
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		lines = append(lines, line)
	}

	return lines
}

func cloneLines(lines []string) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func removeAt(lines []string, i int) []string {
	out := make([]string, 0, len(lines)-1)
	out = append(out, lines[:i]...)
	return append(out, lines[i+1:]...)
}
