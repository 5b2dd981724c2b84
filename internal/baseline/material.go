// Package baseline estimates DRS eligible material tonnage per waste
// stream and assembles the mass-flow baseline table.
package baseline

// Material is a DRS eligible material category.
type Material int

const (
	GlassBottles Material = iota
	PlasticBottles
	FerrousCans
	AluminiumCans
	BeverageCartons
)

// Materials returns all material categories in display order.
func Materials() []Material {
	return []Material{GlassBottles, PlasticBottles, FerrousCans, AluminiumCans, BeverageCartons}
}

// Label returns the display label used in rendered tables and exports.
func (m Material) Label() string {
	switch m {
	case GlassBottles:
		return "DRS Glass Bottles"
	case PlasticBottles:
		return "DRS Plastic Bottles"
	case FerrousCans:
		return "DRS Ferrous Cans"
	case AluminiumCans:
		return "DRS Aluminium Cans"
	case BeverageCartons:
		return "DRS Beverage Cartons"
	default:
		return "unknown"
	}
}

// Stream is a waste collection stream that DRS material flows through.
type Stream int

const (
	KerbsideRecycling Stream = iota
	KerbsideResidual
	HWRC
	Commercial
	Litter
	EnvironmentLeftover
)

// Streams returns all streams in display (column) order.
func Streams() []Stream {
	return []Stream{KerbsideRecycling, KerbsideResidual, HWRC, Commercial, Litter, EnvironmentLeftover}
}

// Label returns the display label used as a column header.
func (s Stream) Label() string {
	switch s {
	case KerbsideRecycling:
		return "Household Kerbside Recycling"
	case KerbsideResidual:
		return "Household Kerbside Residual"
	case HWRC:
		return "HWRC"
	case Commercial:
		return "Commercial"
	case Litter:
		return "Litter"
	case EnvironmentLeftover:
		return "Environment Leftover"
	default:
		return "unknown"
	}
}

// Name returns the machine name used for stage IDs and export files.
func (s Stream) Name() string {
	switch s {
	case KerbsideRecycling:
		return "hhkerb_recycling"
	case KerbsideResidual:
		return "hhkerb_residual"
	case HWRC:
		return "hwrc"
	case Commercial:
		return "commercial"
	case Litter:
		return "litter"
	case EnvironmentLeftover:
		return "environment_leftover"
	default:
		return "unknown"
	}
}

// StreamByName resolves a machine name back to a stream.
func StreamByName(name string) (Stream, bool) {
	for _, s := range Streams() {
		if s.Name() == name {
			return s, true
		}
	}
	return 0, false
}
