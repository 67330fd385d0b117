package risk

import "strings"

// Advisory holds the action lists for one pest or disease on one crop.
type Advisory struct {
	Symptoms   []string
	Preventive []string
	Corrective []string
}

// PestAdvisory names the pest an Advisory applies to.
type PestAdvisory struct {
	Pest string
	Advisory
}

// CropAdvisories lists the known pests of a crop in declaration order.
type CropAdvisories struct {
	Crop  string
	Pests []PestAdvisory
}

// Synonym maps local or misspelled tokens onto a canonical pest key.
type Synonym struct {
	Canonical string
	Tokens    []string
}

// DiseaseHistory is the seasonal record of a disease in a district.
type DiseaseHistory struct {
	Disease   string
	Season    []string
	RiskLevel string
}

// Coordinates locates a district for weather lookups.
type Coordinates struct {
	Lat float64
	Lon float64
}

// CatalogData is the raw material for a Catalog. History is keyed by
// district then crop.
type CatalogData struct {
	Crops             []CropAdvisories
	Synonyms          []Synonym
	History           map[string]map[string][]DiseaseHistory
	Districts         map[string]Coordinates
	DefaultPreventive []string
	DefaultCorrective []string
	Labels            map[string]string
}

// Catalog is the immutable set of static tables a scan reads. All lookups
// are case-insensitive on crop and district names.
type Catalog struct {
	crops     map[string]CropAdvisories
	cropNames []string
	synonyms  []Synonym
	canonical map[string]struct{}
	history   map[string]map[string][]DiseaseHistory
	districts map[string]Coordinates
	labels    map[string]string

	defaultPreventive []string
	defaultCorrective []string
}

// NewCatalog indexes data into a Catalog. Later duplicates of a crop
// replace earlier ones but keep the first position.
func NewCatalog(data CatalogData) *Catalog {
	c := &Catalog{
		crops:             make(map[string]CropAdvisories, len(data.Crops)),
		canonical:         make(map[string]struct{}, len(data.Synonyms)),
		history:           make(map[string]map[string][]DiseaseHistory, len(data.History)),
		districts:         make(map[string]Coordinates, len(data.Districts)),
		labels:            make(map[string]string, len(data.Labels)),
		defaultPreventive: cloneStrings(data.DefaultPreventive),
		defaultCorrective: cloneStrings(data.DefaultCorrective),
	}

	for _, crop := range data.Crops {
		key := normalize(crop.Crop)
		if key == "" {
			continue
		}
		if _, seen := c.crops[key]; !seen {
			c.cropNames = append(c.cropNames, key)
		}
		pests := make([]PestAdvisory, 0, len(crop.Pests))
		for _, p := range crop.Pests {
			pests = append(pests, PestAdvisory{
				Pest: normalize(p.Pest),
				Advisory: Advisory{
					Symptoms:   cloneStrings(p.Symptoms),
					Preventive: cloneStrings(p.Preventive),
					Corrective: cloneStrings(p.Corrective),
				},
			})
		}
		c.crops[key] = CropAdvisories{Crop: key, Pests: pests}
	}

	for _, s := range data.Synonyms {
		canon := normalize(s.Canonical)
		if canon == "" {
			continue
		}
		tokens := make([]string, 0, len(s.Tokens))
		for _, t := range s.Tokens {
			if t = normalize(t); t != "" {
				tokens = append(tokens, t)
			}
		}
		c.synonyms = append(c.synonyms, Synonym{Canonical: canon, Tokens: tokens})
		c.canonical[canon] = struct{}{}
	}

	for district, crops := range data.History {
		byCrop := make(map[string][]DiseaseHistory, len(crops))
		for crop, diseases := range crops {
			list := make([]DiseaseHistory, 0, len(diseases))
			for _, d := range diseases {
				list = append(list, DiseaseHistory{
					Disease:   normalize(d.Disease),
					Season:    cloneStrings(d.Season),
					RiskLevel: strings.ToUpper(strings.TrimSpace(d.RiskLevel)),
				})
			}
			byCrop[normalize(crop)] = list
		}
		c.history[normalize(district)] = byCrop
	}

	for district, coords := range data.Districts {
		c.districts[normalize(district)] = coords
	}
	for k, v := range data.Labels {
		c.labels[k] = v
	}

	return c
}

// ResolvePest maps free text to a canonical pest key. A synonym token
// matches when it is a substring of the normalized text; synonyms are tried
// in declaration order and the first hit wins. Text equal to a canonical
// key also matches.
func (c *Catalog) ResolvePest(text string) (string, bool) {
	p := normalize(text)
	if p == "" {
		return "", false
	}
	for _, s := range c.synonyms {
		for _, token := range s.Tokens {
			if strings.Contains(p, token) {
				return s.Canonical, true
			}
		}
	}
	if _, ok := c.canonical[p]; ok {
		return p, true
	}
	return "", false
}

// Advisory returns the catalog entry for a crop and pest.
func (c *Catalog) Advisory(crop, pest string) (Advisory, bool) {
	entry, ok := c.crops[normalize(crop)]
	if !ok {
		return Advisory{}, false
	}
	key := normalize(pest)
	for _, p := range entry.Pests {
		if p.Pest == key {
			return p.Advisory, true
		}
	}
	return Advisory{}, false
}

// HasPest reports whether pest is a known pest of crop.
func (c *Catalog) HasPest(crop, pest string) bool {
	_, ok := c.Advisory(crop, pest)
	return ok
}

// Measures returns the preventive and corrective actions for a crop and
// pest. Without an exact entry it falls back to the crop's first listed
// pest, then to the generic defaults.
func (c *Catalog) Measures(crop, pest string) (preventive, corrective []string) {
	preventive, corrective = c.defaultPreventive, c.defaultCorrective
	if adv, ok := c.Advisory(crop, pest); ok {
		return orDefault(adv.Preventive, preventive), orDefault(adv.Corrective, corrective)
	}
	entry, ok := c.crops[normalize(crop)]
	if !ok || len(entry.Pests) == 0 {
		return cloneStrings(preventive), cloneStrings(corrective)
	}
	first := entry.Pests[0]
	return orDefault(first.Preventive, preventive), orDefault(first.Corrective, corrective)
}

// DefaultPreventive returns the generic preventive actions.
func (c *Catalog) DefaultPreventive() []string { return cloneStrings(c.defaultPreventive) }

// DefaultCorrective returns the generic corrective actions.
func (c *Catalog) DefaultCorrective() []string { return cloneStrings(c.defaultCorrective) }

// History returns the seasonal disease records for a crop in a district.
func (c *Catalog) History(district, crop string) []DiseaseHistory {
	return c.history[normalize(district)][normalize(crop)]
}

// Districts lists every district with known coordinates.
func (c *Catalog) Districts() []string {
	out := make([]string, 0, len(c.districts))
	for d := range c.districts {
		out = append(out, d)
	}
	return out
}

// Coordinates returns the representative location of a district.
func (c *Catalog) Coordinates(district string) (Coordinates, bool) {
	coords, ok := c.districts[normalize(district)]
	return coords, ok
}

// Label returns the translated label for key, if one is configured.
func (c *Catalog) Label(key string) (string, bool) {
	v, ok := c.labels[key]
	return v, ok
}

// Crops returns the known crop names in declaration order.
func (c *Catalog) Crops() []string {
	return cloneStrings(c.cropNames)
}

func orDefault(list, def []string) []string {
	if len(list) == 0 {
		return cloneStrings(def)
	}
	return cloneStrings(list)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
