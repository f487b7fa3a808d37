// README: Category routing for partners and orders (ordered alias table, no regex).
package order

import (
	"strings"
	"unicode"
)

type Category string

const (
	CategoryNursing       Category = "nursing"
	CategoryPhysiotherapy Category = "physiotherapy"
	CategoryAmbulance     Category = "ambulance"
	CategoryBiomedical    Category = "biomedical"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryNursing, CategoryPhysiotherapy, CategoryAmbulance, CategoryBiomedical:
		return true
	}
	return false
}

// Checked in order; the first entry with a match wins. Stems match anywhere in
// the lower-cased text ("hydrotherapy", "nursingcare"); words must be a whole
// token so short aliases like "ems" do not fire inside "systems".
var categoryAliases = []struct {
	category Category
	stems    []string
	words    map[string]struct{}
}{
	{CategoryNursing, []string{"nursing", "nurse"}, nil},
	{CategoryPhysiotherapy, []string{"physio", "therapy"}, nil},
	{CategoryAmbulance, []string{"ambulance", "emergency"}, tokenSet("ems")},
}

// ParseCategory maps free text (an order's service category or a partner's
// profession) to a routing category. Anything unrecognised is biomedical.
func ParseCategory(text string) Category {
	lower := strings.ToLower(text)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, entry := range categoryAliases {
		for _, stem := range entry.stems {
			if strings.Contains(lower, stem) {
				return entry.category
			}
		}
		for _, tok := range tokens {
			if _, ok := entry.words[tok]; ok {
				return entry.category
			}
		}
	}
	return CategoryBiomedical
}

func tokenSet(tokens ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
