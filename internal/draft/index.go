package draft

import "strings"

// Candidate is one draftable name from the roster snapshot.
type Candidate struct {
	DisplayName string
	Key         string
	Surname     string
	// Position is the 1-based slot in the source column (a sheet row).
	Position int
}

// Index is the read-only lookup structure built from a roster snapshot.
type Index struct {
	byKey    map[string]Candidate
	keys     []string
	surnames map[string][]string
}

// BuildIndex indexes names in source order. Blank entries are skipped but still
// consume a position so positions line up with sheet rows. When two names share
// a key the later one wins.
func BuildIndex(names []string) *Index {
	idx := &Index{
		byKey:    make(map[string]Candidate, len(names)),
		surnames: make(map[string][]string),
	}

	for i, raw := range names {
		display := strings.TrimSpace(raw)
		if display == "" {
			continue
		}
		key := Normalize(display)
		if key == "" {
			continue
		}

		surname := key
		if sp := strings.LastIndexByte(key, ' '); sp >= 0 {
			surname = key[sp+1:]
		}

		if _, seen := idx.byKey[key]; !seen {
			idx.keys = append(idx.keys, key)
			idx.surnames[surname] = append(idx.surnames[surname], key)
		}
		idx.byKey[key] = Candidate{
			DisplayName: display,
			Key:         key,
			Surname:     surname,
			Position:    i + 1,
		}
	}

	return idx
}

// Len returns the number of distinct candidates.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.keys)
}

// Lookup returns the candidate whose canonical key equals key.
func (idx *Index) Lookup(key string) (Candidate, bool) {
	if idx == nil {
		return Candidate{}, false
	}
	c, ok := idx.byKey[key]
	return c, ok
}

// Candidates returns every candidate in roster order.
func (idx *Index) Candidates() []Candidate {
	if idx == nil {
		return nil
	}
	out := make([]Candidate, 0, len(idx.keys))
	for _, k := range idx.keys {
		out = append(out, idx.byKey[k])
	}
	return out
}

// UniqueSurname resolves a surname token only when exactly one candidate carries it.
func (idx *Index) UniqueSurname(token string) (Candidate, bool) {
	if idx == nil {
		return Candidate{}, false
	}
	group := idx.surnames[token]
	if len(group) != 1 {
		return Candidate{}, false
	}
	return idx.byKey[group[0]], true
}
