// Package rates carries the WRAP composition rates used to estimate DRS
// eligible tonnage from reported waste-stream totals.
//
// The defaults are the published WRAP rates for the 2014/15 WasteDataFlow
// window. A project can override any of them from a YAML file; unset keys
// keep their defaults.
package rates

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kerbside holds the composition rates applied to household kerbside
// recycling material columns, together with the fallback rates applied to
// an authority's dry recycling sum when the specific material column was
// never reported.
type Kerbside struct {
	// Share of "Mixed glass" tonnage that is DRS glass bottles.
	MixedGlass float64 `yaml:"mixed_glass"`
	// Fallback: share of the dry recycling sum for comingled authorities.
	ComingledGlass float64 `yaml:"comingled_glass"`

	// Share of "Mixed Plastic Bottles" (PET + HDPE) that is DRS eligible.
	MixedPlasticBottles float64 `yaml:"mixed_plastic_bottles"`
	// Share of "Plastics" when that column means dense plastics.
	DensePlastics float64 `yaml:"dense_plastics"`
	// Share of "Plastics" when the column includes plastic film.
	FilmPlastics float64 `yaml:"film_plastics"`
	// Fallback share of the dry recycling sum.
	ComingledPlastics float64 `yaml:"comingled_plastics"`

	// Share of "Steel cans" that is DRS ferrous beverage cans.
	SteelCans float64 `yaml:"steel_cans"`
	// Share of "Aluminium cans" that is DRS aluminium beverage cans.
	AluminiumCans float64 `yaml:"aluminium_cans"`
	// Material split of "Mixed cans"; the two shares must sum to 1.
	MixedCansFerrousShare   float64 `yaml:"mixed_cans_ferrous_share"`
	MixedCansAluminiumShare float64 `yaml:"mixed_cans_aluminium_share"`
	// Fallback shares of the dry recycling sum.
	ComingledFerrous   float64 `yaml:"comingled_ferrous"`
	ComingledAluminium float64 `yaml:"comingled_aluminium"`

	// Fallback share of the dry recycling sum for beverage cartons, used
	// when "Composite food and beverage cartons" was never reported.
	ComingledCartons float64 `yaml:"comingled_cartons"`
}

// PerMaterial is a flat rate for each DRS material.
type PerMaterial struct {
	GlassBottles    float64 `yaml:"glass_bottles"`
	PlasticBottles  float64 `yaml:"plastic_bottles"`
	FerrousCans     float64 `yaml:"ferrous_cans"`
	AluminiumCans   float64 `yaml:"aluminium_cans"`
	BeverageCartons float64 `yaml:"beverage_cartons"`
}

// Table is the full effective rates table.
type Table struct {
	Kerbside Kerbside `yaml:"kerbside"`

	// Residual rates apply to regular-collection household waste tonnage.
	Residual PerMaterial `yaml:"residual"`
	// HWRC rates apply to civic amenity site tonnage.
	HWRC PerMaterial `yaml:"hwrc"`
	// Commercial rates apply to commercial & industrial tonnage.
	Commercial PerMaterial `yaml:"commercial"`
	// Litter rates apply to street cleaning tonnage.
	Litter PerMaterial `yaml:"litter"`
	// EnvironmentEscape scales the litter estimate to material that is
	// never collected at all (the environment leftover stream).
	EnvironmentEscape PerMaterial `yaml:"environment_escape"`

	// FilmPlasticsAuthorities report plastic film inside their "Plastics"
	// column, so FilmPlastics applies instead of DensePlastics. Names are
	// matched verbatim against the export.
	FilmPlasticsAuthorities []string `yaml:"film_plastics_authorities"`
	// IncompleteMixedCansAuthorities have unusable "Mixed cans" returns;
	// the mixed-cans split is skipped for them.
	IncompleteMixedCansAuthorities []string `yaml:"incomplete_mixed_cans_authorities"`
}

// Default returns the WRAP 2014/15 rates table.
func Default() *Table {
	return &Table{
		Kerbside: Kerbside{
			MixedGlass:              0.66,
			ComingledGlass:          0.1599,
			MixedPlasticBottles:     0.96,
			DensePlastics:           0.68,
			FilmPlastics:            0.57,
			ComingledPlastics:       0.0669,
			SteelCans:               0.18,
			AluminiumCans:           0.80,
			MixedCansFerrousShare:   0.73,
			MixedCansAluminiumShare: 0.27,
			ComingledFerrous:        0.0101,
			ComingledAluminium:      0.01688,
			ComingledCartons:        0.0031,
		},
		Residual: PerMaterial{
			GlassBottles:    0.0204,
			PlasticBottles:  0.0151,
			FerrousCans:     0.001554,
			AluminiumCans:   0.003255,
			BeverageCartons: 0.0037,
		},
		HWRC: PerMaterial{
			GlassBottles:    0.0248,
			PlasticBottles:  0.0085,
			FerrousCans:     0.0011,
			AluminiumCans:   0.0014,
			BeverageCartons: 0.0008,
		},
		Commercial: PerMaterial{
			GlassBottles:    0.0192,
			PlasticBottles:  0.0117,
			FerrousCans:     0.0021,
			AluminiumCans:   0.0043,
			BeverageCartons: 0.0012,
		},
		Litter: PerMaterial{
			GlassBottles:    0.0312,
			PlasticBottles:  0.0524,
			FerrousCans:     0.0048,
			AluminiumCans:   0.0196,
			BeverageCartons: 0.0051,
		},
		EnvironmentEscape: PerMaterial{
			GlassBottles:    0.42,
			PlasticBottles:  0.61,
			FerrousCans:     0.18,
			AluminiumCans:   0.27,
			BeverageCartons: 0.33,
		},
		FilmPlasticsAuthorities: []string{
			"City  and County of Swansea ",
		},
		IncompleteMixedCansAuthorities: []string{
			"Neath Port Talbot CBC",
			"Powys County Council",
		},
	}
}

// Load returns the default table with overrides from a YAML file applied.
// An empty path returns the defaults unchanged.
func Load(path string) (*Table, error) {
	t := Default()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rates file: %w", err)
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse rates file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rates in %s: %w", path, err)
	}
	return t, nil
}

// Validate checks that every rate is a sane share.
func (t *Table) Validate() error {
	check := func(name string, v float64) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("rate %s out of range [0,1]: %v", name, v)
		}
		return nil
	}

	k := t.Kerbside
	kerbside := map[string]float64{
		"kerbside.mixed_glass":                k.MixedGlass,
		"kerbside.comingled_glass":            k.ComingledGlass,
		"kerbside.mixed_plastic_bottles":      k.MixedPlasticBottles,
		"kerbside.dense_plastics":             k.DensePlastics,
		"kerbside.film_plastics":              k.FilmPlastics,
		"kerbside.comingled_plastics":         k.ComingledPlastics,
		"kerbside.steel_cans":                 k.SteelCans,
		"kerbside.aluminium_cans":             k.AluminiumCans,
		"kerbside.mixed_cans_ferrous_share":   k.MixedCansFerrousShare,
		"kerbside.mixed_cans_aluminium_share": k.MixedCansAluminiumShare,
		"kerbside.comingled_ferrous":          k.ComingledFerrous,
		"kerbside.comingled_aluminium":        k.ComingledAluminium,
		"kerbside.comingled_cartons":          k.ComingledCartons,
	}
	for name, v := range kerbside {
		if err := check(name, v); err != nil {
			return err
		}
	}

	split := k.MixedCansFerrousShare + k.MixedCansAluminiumShare
	if split < 0.999 || split > 1.001 {
		return fmt.Errorf("mixed cans shares must sum to 1, got %v", split)
	}

	for name, pm := range map[string]PerMaterial{
		"residual":           t.Residual,
		"hwrc":               t.HWRC,
		"commercial":         t.Commercial,
		"litter":             t.Litter,
		"environment_escape": t.EnvironmentEscape,
	} {
		for suffix, v := range map[string]float64{
			"glass_bottles":    pm.GlassBottles,
			"plastic_bottles":  pm.PlasticBottles,
			"ferrous_cans":     pm.FerrousCans,
			"aluminium_cans":   pm.AluminiumCans,
			"beverage_cartons": pm.BeverageCartons,
		} {
			if err := check(name+"."+suffix, v); err != nil {
				return err
			}
		}
	}

	return nil
}

// UsesFilmPlastics reports whether the authority's "Plastics" column
// includes film and should use the FilmPlastics rate.
func (t *Table) UsesFilmPlastics(authority string) bool {
	for _, a := range t.FilmPlasticsAuthorities {
		if a == authority {
			return true
		}
	}
	return false
}

// HasIncompleteMixedCans reports whether the authority's "Mixed cans"
// returns are unusable.
func (t *Table) HasIncompleteMixedCans(authority string) bool {
	for _, a := range t.IncompleteMixedCansAuthorities {
		if a == authority {
			return true
		}
	}
	return false
}
