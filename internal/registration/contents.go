package registration

import (
	"strings"

	"sportsreg/internal/models"
)

// Separator joins selections inside the registered_contents cell.
const Separator = "; "

const generalSuffix = " (Chung)"

// Selection is one event an athlete is entered in. An empty Content means
// the discipline as a whole, for disciplines without sub-contents.
type Selection struct {
	Discipline string
	Content    string
}

func (s Selection) String() string {
	if s.Content == "" {
		return s.Discipline + generalSuffix
	}
	return s.Discipline + ": " + s.Content
}

// Join encodes selections in the persisted registered_contents format.
func Join(selected []Selection) string {
	parts := make([]string, len(selected))
	for i, s := range selected {
		parts[i] = s.String()
	}
	return strings.Join(parts, Separator)
}

// Split breaks a registered_contents cell into its labels.
func Split(encoded string) []string {
	var out []string
	for _, p := range strings.Split(encoded, Separator) {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Catalog is every selection currently offered, in display order.
type Catalog []Selection

// BuildCatalog lists each discipline's contents; a discipline with none
// offers its general "(Chung)" entry instead. Contents whose discipline no
// longer exists are left out.
func BuildCatalog(disciplines []models.Discipline, contents []models.Content) Catalog {
	byDiscipline := map[string][]models.Content{}
	for _, c := range contents {
		byDiscipline[c.DisciplineID] = append(byDiscipline[c.DisciplineID], c)
	}
	var cat Catalog
	for _, d := range disciplines {
		subs := byDiscipline[d.ID]
		if len(subs) == 0 {
			cat = append(cat, Selection{Discipline: d.Name})
			continue
		}
		for _, c := range subs {
			cat = append(cat, Selection{Discipline: d.Name, Content: c.Name})
		}
	}
	return cat
}

// Lookup finds the catalog entry with the given label.
func (c Catalog) Lookup(label string) (Selection, bool) {
	for _, s := range c {
		if s.String() == label {
			return s, true
		}
	}
	return Selection{}, false
}

// Match rebuilds selections from a registered_contents cell. Labels that no
// longer name a catalog entry come back in stale.
func (c Catalog) Match(encoded string) (matched []Selection, stale []string) {
	for _, label := range Split(encoded) {
		if s, ok := c.Lookup(label); ok {
			matched = append(matched, s)
		} else {
			stale = append(stale, label)
		}
	}
	return matched, stale
}
