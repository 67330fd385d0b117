// Package catalog loads the static advisory tables: crop advisories, pest
// synonyms, district pest history, district coordinates and labels.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/pest-advisory/internal/risk"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	errEmptyCatalog = errors.New("catalog defines no crops")
	errRiskLevel    = errors.New("unknown history risk_level")
)

var riskLevels = map[string]struct{}{"LOW": {}, "MEDIUM": {}, "HIGH": {}}

type file struct {
	Defaults struct {
		Preventive []string `yaml:"preventive"`
		Corrective []string `yaml:"corrective"`
	} `yaml:"defaults"`
	Synonyms []struct {
		Canonical string   `yaml:"canonical"`
		Tokens    []string `yaml:"tokens"`
	} `yaml:"synonyms"`
	Crops []struct {
		Name  string `yaml:"name"`
		Pests []struct {
			Name       string   `yaml:"name"`
			Symptoms   []string `yaml:"symptoms"`
			Preventive []string `yaml:"preventive"`
			Corrective []string `yaml:"corrective"`
		} `yaml:"pests"`
	} `yaml:"crops"`
	History []struct {
		District string `yaml:"district"`
		Crops    []struct {
			Name     string `yaml:"name"`
			Diseases []struct {
				Name      string   `yaml:"name"`
				Season    []string `yaml:"season"`
				RiskLevel string   `yaml:"risk_level"`
			} `yaml:"diseases"`
		} `yaml:"crops"`
	} `yaml:"history"`
	Districts map[string]struct {
		Lat float64 `yaml:"lat"`
		Lon float64 `yaml:"lon"`
	} `yaml:"districts"`
	Labels map[string]string `yaml:"labels"`
}

// Load reads the catalog at path, or the built-in catalog when path is
// empty.
func Load(path string) (*risk.Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(raw)
}

// Default returns the built-in catalog.
func Default() (*risk.Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a YAML catalog document.
func Parse(raw []byte) (*risk.Catalog, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(f.Crops) == 0 {
		return nil, errEmptyCatalog
	}

	data := risk.CatalogData{
		DefaultPreventive: f.Defaults.Preventive,
		DefaultCorrective: f.Defaults.Corrective,
		History:           make(map[string]map[string][]risk.DiseaseHistory, len(f.History)),
		Districts:         make(map[string]risk.Coordinates, len(f.Districts)),
		Labels:            f.Labels,
	}

	for _, s := range f.Synonyms {
		data.Synonyms = append(data.Synonyms, risk.Synonym{Canonical: s.Canonical, Tokens: s.Tokens})
	}

	for _, c := range f.Crops {
		crop := risk.CropAdvisories{Crop: c.Name}
		for _, p := range c.Pests {
			crop.Pests = append(crop.Pests, risk.PestAdvisory{
				Pest: p.Name,
				Advisory: risk.Advisory{
					Symptoms:   p.Symptoms,
					Preventive: p.Preventive,
					Corrective: p.Corrective,
				},
			})
		}
		data.Crops = append(data.Crops, crop)
	}

	for _, h := range f.History {
		byCrop, ok := data.History[h.District]
		if !ok {
			byCrop = make(map[string][]risk.DiseaseHistory, len(h.Crops))
			data.History[h.District] = byCrop
		}
		for _, c := range h.Crops {
			for _, d := range c.Diseases {
				if _, ok := riskLevels[strings.ToUpper(strings.TrimSpace(d.RiskLevel))]; !ok {
					return nil, fmt.Errorf("%w %q for %s in %s", errRiskLevel, d.RiskLevel, d.Name, h.District)
				}
				byCrop[c.Name] = append(byCrop[c.Name], risk.DiseaseHistory{
					Disease:   d.Name,
					Season:    d.Season,
					RiskLevel: d.RiskLevel,
				})
			}
		}
	}

	for name, d := range f.Districts {
		data.Districts[name] = risk.Coordinates{Lat: d.Lat, Lon: d.Lon}
	}

	return risk.NewCatalog(data), nil
}
