package docimport

import (
	"strings"

	"github.com/google/uuid"
)

// CountryRef is a reference country as known to the database.
type CountryRef struct {
	ID   uuid.UUID
	Name string
}

// countryAliases maps lowercase German/English names and ISO codes to the
// canonical country names used in the database.
var countryAliases = map[string]string{
	"deutschland": "Germany",
	"germany":     "Germany",
	"de":          "Germany",
	"deu":         "Germany",

	"österreich":  "Austria",
	"oesterreich": "Austria",
	"austria":     "Austria",
	"at":          "Austria",
	"aut":         "Austria",

	"schweiz":     "Switzerland",
	"switzerland": "Switzerland",
	"ch":          "Switzerland",
	"che":         "Switzerland",

	"frankreich": "France",
	"france":     "France",
	"fr":         "France",
	"fra":        "France",

	"italien": "Italy",
	"italy":   "Italy",
	"it":      "Italy",
	"ita":     "Italy",

	"spanien": "Spain",
	"spain":   "Spain",
	"es":      "Spain",
	"esp":     "Spain",

	"niederlande": "Netherlands",
	"netherlands": "Netherlands",
	"holland":     "Netherlands",
	"nl":          "Netherlands",
	"nld":         "Netherlands",

	"belgien": "Belgium",
	"belgium": "Belgium",
	"be":      "Belgium",
	"bel":     "Belgium",

	"polen":  "Poland",
	"poland": "Poland",
	"pl":     "Poland",
	"pol":    "Poland",

	"tschechien":            "Czech Republic",
	"tschechische republik": "Czech Republic",
	"czech republic":        "Czech Republic",
	"czechia":               "Czech Republic",
	"cz":                    "Czech Republic",
	"cze":                   "Czech Republic",

	"vereinigtes königreich":  "United Kingdom",
	"vereinigtes koenigreich": "United Kingdom",
	"united kingdom":          "United Kingdom",
	"großbritannien":          "United Kingdom",
	"grossbritannien":         "United Kingdom",
	"great britain":           "United Kingdom",
	"uk":                      "United Kingdom",
	"gb":                      "United Kingdom",
	"gbr":                     "United Kingdom",

	"vereinigte staaten": "United States",
	"united states":      "United States",
	"usa":                "United States",
	"us":                 "United States",
	"amerika":            "United States",
	"america":            "United States",

	"kanada": "Canada",
	"canada": "Canada",
	"ca":     "Canada",
	"can":    "Canada",

	"schweden": "Sweden",
	"sweden":   "Sweden",
	"se":       "Sweden",
	"swe":      "Sweden",

	"norwegen": "Norway",
	"norway":   "Norway",
	"no":       "Norway",
	"nor":      "Norway",

	"dänemark":  "Denmark",
	"daenemark": "Denmark",
	"denmark":   "Denmark",
	"dk":        "Denmark",
	"dnk":       "Denmark",

	"finnland": "Finland",
	"finland":  "Finland",
	"fi":       "Finland",
	"fin":      "Finland",

	"portugal": "Portugal",
	"pt":       "Portugal",
	"prt":      "Portugal",

	"griechenland": "Greece",
	"greece":       "Greece",
	"gr":           "Greece",
	"grc":          "Greece",

	"türkei":  "Turkey",
	"tuerkei": "Turkey",
	"turkey":  "Turkey",
	"tr":      "Turkey",
	"tur":     "Turkey",
}

// MatchCountries maps extracted country names onto reference countries.
// Each name is tried against the alias table first, then as an exact
// database name, then as a substring in either direction. Unmatched names
// are dropped; duplicates resolve to one ID.
func MatchCountries(extracted []string, reference []CountryRef) []uuid.UUID {
	var matched []uuid.UUID
	seen := make(map[uuid.UUID]bool)

	add := func(id uuid.UUID) bool {
		if seen[id] {
			return false
		}
		seen[id] = true
		matched = append(matched, id)
		return true
	}

	for _, raw := range extracted {
		normalized := strings.ToLower(strings.TrimSpace(raw))
		if normalized == "" {
			continue
		}

		if canonical, ok := countryAliases[normalized]; ok {
			if ref, found := findByName(reference, canonical); found {
				add(ref.ID)
				continue
			}
		}

		if ref, found := findByName(reference, normalized); found {
			add(ref.ID)
			continue
		}

		for _, ref := range reference {
			name := strings.ToLower(ref.Name)
			if strings.Contains(name, normalized) || strings.Contains(normalized, name) {
				add(ref.ID)
				break
			}
		}
	}
	return matched
}

func findByName(reference []CountryRef, name string) (CountryRef, bool) {
	lower := strings.ToLower(name)
	for _, ref := range reference {
		if strings.ToLower(ref.Name) == lower {
			return ref, true
		}
	}
	return CountryRef{}, false
}
