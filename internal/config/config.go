// Package config loads and validates the per-mode tariff table.
//
// The tariff is validated once at load time so the curve evaluator never
// needs defensive checks mid-formula. Providers hand out immutable
// snapshots: a quote computation sees one consistent tariff even if an
// admin publishes a new file mid-flight.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/easyfreight/quote-engine/internal/curve"
	"github.com/easyfreight/quote-engine/internal/zone"
)

// ModeConfig is the tariff for one transport mode. Immutable per request.
type ModeConfig struct {
	Description string `mapstructure:"description"`

	KmPriceEUR float64 `mapstructure:"km_price_eur"`

	// AvailableZones maps country code to zone specs ("NN" or "NN-MM").
	AvailableZones map[string][]string `mapstructure:"available_zones"`

	// BalanceFactors multiply the FTL price per directional lane "CC-CC".
	// Absent lanes default to 1.0.
	BalanceFactors map[string]float64 `mapstructure:"balance_factors"`

	MinAllowedWeightKg float64 `mapstructure:"min_allowed_weight_kg"`
	MaxAllowedWeightKg float64 `mapstructure:"max_allowed_weight_kg"`

	P1      float64 `mapstructure:"p1"`
	PriceP1 float64 `mapstructure:"price_p1"`
	P2      float64 `mapstructure:"p2"`
	P2K     float64 `mapstructure:"p2k"`
	P2M     float64 `mapstructure:"p2m"`
	P3      float64 `mapstructure:"p3"`
	P3K     float64 `mapstructure:"p3k"`
	P3M     float64 `mapstructure:"p3m"`

	DefaultBreakpoint float64 `mapstructure:"default_breakpoint"`
	MaxWeightKg       float64 `mapstructure:"max_weight_kg"`

	TransitSpeedKmpd float64 `mapstructure:"transit_speed_kmpd"`
	CutoffHour       int     `mapstructure:"cutoff_hour"`
	ExtraPickupDays  int     `mapstructure:"extra_pickup_days"`
	CO2PerTonKm      float64 `mapstructure:"co2_per_ton_km"`
}

// Calibration projects the tariff into the curve engine's parameter set.
func (m ModeConfig) Calibration() curve.Calibration {
	return curve.Calibration{
		P1: m.P1, PriceP1: m.PriceP1,
		P2: m.P2, P2K: m.P2K, P2M: m.P2M,
		P3: m.P3, P3K: m.P3K, P3M: m.P3M,
		Breakpoint:   m.DefaultBreakpoint,
		MaxWeightKg:  m.MaxWeightKg,
		MinAllowedKg: m.MinAllowedWeightKg,
		MaxAllowedKg: m.MaxAllowedWeightKg,
	}
}

// BalanceFactor returns the directional lane multiplier, defaulting to 1.0.
func (m ModeConfig) BalanceFactor(originCountry, destCountry string) float64 {
	if f, ok := m.BalanceFactors[originCountry+"-"+destCountry]; ok {
		return f
	}
	return 1.0
}

// Validate checks the tariff invariants the curve engine relies on.
func (m ModeConfig) Validate() error {
	if m.KmPriceEUR <= 0 {
		return fmt.Errorf("config: km_price_eur must be positive, got %v", m.KmPriceEUR)
	}
	if m.PriceP1 <= 0 {
		return fmt.Errorf("config: price_p1 must be positive, got %v", m.PriceP1)
	}
	if !(0 < m.P1 && m.P1 < m.P2 && m.P2 < m.P3 && m.P3 < m.DefaultBreakpoint && m.DefaultBreakpoint <= m.MaxWeightKg) {
		return fmt.Errorf("config: calibration weights must satisfy 0 < p1 < p2 < p3 < breakpoint <= max_weight_kg")
	}
	if m.MinAllowedWeightKg < 0 || m.MaxAllowedWeightKg <= m.MinAllowedWeightKg {
		return fmt.Errorf("config: allowed weight bounds [%v, %v] invalid", m.MinAllowedWeightKg, m.MaxAllowedWeightKg)
	}
	if m.TransitSpeedKmpd <= 0 {
		return fmt.Errorf("config: transit_speed_kmpd must be positive, got %v", m.TransitSpeedKmpd)
	}
	if m.CutoffHour < 0 || m.CutoffHour > 23 {
		return fmt.Errorf("config: cutoff_hour %d outside [0,23]", m.CutoffHour)
	}
	if m.ExtraPickupDays < 0 {
		return fmt.Errorf("config: extra_pickup_days must not be negative")
	}
	if m.CO2PerTonKm < 0 {
		return fmt.Errorf("config: co2_per_ton_km must not be negative")
	}
	for country, specs := range m.AvailableZones {
		if len(country) != 2 {
			return fmt.Errorf("config: country code %q must be two letters", country)
		}
		for _, spec := range specs {
			if err := zone.ValidateSpec(spec); err != nil {
				return fmt.Errorf("config: zone for %s: %w", country, err)
			}
		}
	}
	return nil
}

// Snapshot is an immutable view of the whole tariff table. Safe to share
// across goroutines; Modes returns a copy of the key set only, the configs
// themselves are value types.
type Snapshot struct {
	modes map[string]ModeConfig
}

// NewSnapshot copies the given table into a snapshot.
func NewSnapshot(modes map[string]ModeConfig) Snapshot {
	cp := make(map[string]ModeConfig, len(modes))
	for name, m := range modes {
		cp[name] = m
	}
	return Snapshot{modes: cp}
}

// Mode returns the tariff for a mode, if configured.
func (s Snapshot) Mode(name string) (ModeConfig, bool) {
	m, ok := s.modes[name]
	return m, ok
}

// ModeNames returns the configured mode names.
func (s Snapshot) ModeNames() []string {
	names := make([]string, 0, len(s.modes))
	for name := range s.modes {
		names = append(names, name)
	}
	return names
}

// Len returns the number of configured modes.
func (s Snapshot) Len() int { return len(s.modes) }

// Provider hands out tariff snapshots. Implementations must return a
// consistent snapshot per call; callers take exactly one snapshot per
// quote computation.
type Provider interface {
	Modes() Snapshot
}

// StaticProvider serves a fixed snapshot. Used in tests and for embedded
// default tariffs.
type StaticProvider struct {
	snapshot Snapshot
}

// NewStaticProvider validates the table and wraps it in a provider.
func NewStaticProvider(modes map[string]ModeConfig) (*StaticProvider, error) {
	for name, m := range modes {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("mode %s: %w", name, err)
		}
	}
	return &StaticProvider{snapshot: NewSnapshot(modes)}, nil
}

// Modes implements Provider.
func (p *StaticProvider) Modes() Snapshot { return p.snapshot }

// FileProvider serves snapshots loaded from a YAML tariff file and supports
// reloading in place. A failed reload keeps the previous snapshot: a broken
// tariff publish must never take quoting down.
type FileProvider struct {
	path string

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewFileProvider loads the tariff file once. The initial load must succeed.
func NewFileProvider(path string) (*FileProvider, error) {
	static, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &FileProvider{path: path, snapshot: static.Modes()}, nil
}

// Modes implements Provider.
func (p *FileProvider) Modes() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// Reload re-reads the tariff file and swaps in the new snapshot. On error
// the previous snapshot stays active.
func (p *FileProvider) Reload() error {
	static, err := LoadFile(p.path)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.snapshot = static.Modes()
	p.mu.Unlock()
	return nil
}

// LoadFile reads a YAML tariff file of the form
//
//	modes:
//	  road:
//	    km_price_eur: 1.1
//	    ...
//
// and validates every mode. Load failures and invalid tariffs are errors:
// an unparseable table must never silently quote.
func LoadFile(path string) (*StaticProvider, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read tariff file: %w", err)
	}

	var file struct {
		Modes map[string]ModeConfig `mapstructure:"modes"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("config: unmarshal tariff file: %w", err)
	}
	if len(file.Modes) == 0 {
		return nil, fmt.Errorf("config: tariff file %s defines no modes", path)
	}

	// Viper lowercases map keys on read; country codes and lane keys are
	// uppercase everywhere else in the system.
	for name, m := range file.Modes {
		zones := make(map[string][]string, len(m.AvailableZones))
		for country, specs := range m.AvailableZones {
			zones[strings.ToUpper(country)] = specs
		}
		m.AvailableZones = zones

		factors := make(map[string]float64, len(m.BalanceFactors))
		for lane, f := range m.BalanceFactors {
			factors[strings.ToUpper(lane)] = f
		}
		m.BalanceFactors = factors

		file.Modes[name] = m
	}

	return NewStaticProvider(file.Modes)
}
