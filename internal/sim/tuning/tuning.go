package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int   `yaml:"tick_rate_hz"`
	Seed       int64 `yaml:"seed"`
	Height     int   `yaml:"height"`
	BoundaryR  int   `yaml:"boundary_r"`
	SeaLevel   int   `yaml:"sea_level"`

	Terrain Terrain  `yaml:"terrain"`
	Ores    []OreGen `yaml:"ores"`

	Prospecting Prospecting    `yaml:"prospecting"`
	Starter     map[string]int `yaml:"starter_items"`
	MaxSlots    int            `yaml:"max_slots"`
}

type Terrain struct {
	Alpha       float64  `yaml:"alpha"`
	Beta        float64  `yaml:"beta"`
	Octaves     int32    `yaml:"octaves"`
	Scale       float64  `yaml:"scale"`
	Amplitude   int      `yaml:"amplitude"`
	SoilDepth   int      `yaml:"soil_depth"`
	RockLayers  []string `yaml:"rock_layers"`
	LayerHeight int      `yaml:"layer_height"`
}

// OreGen places one ore type inside a matching rock layer.
type OreGen struct {
	Type      string  `yaml:"type"`
	Grade     string  `yaml:"grade"`
	MinY      int     `yaml:"min_y"`
	MaxY      int     `yaml:"max_y"`
	Scale     float64 `yaml:"scale"`
	Threshold float64 `yaml:"threshold"`
}

type Prospecting struct {
	Channel          string  `yaml:"channel"`
	DamageDivisor    int     `yaml:"damage_divisor"`
	ParticleQuantity float64 `yaml:"particle_quantity"`
	ParticleLife     float64 `yaml:"particle_life"`
	ParticleAddLife  float64 `yaml:"particle_add_life"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      20,
		Seed:            1337,
		Height:          128,
		BoundaryR:       2048,
		SeaLevel:        64,
		Terrain: Terrain{
			Alpha:       2,
			Beta:        2,
			Octaves:     3,
			Scale:       0.01,
			Amplitude:   12,
			SoilDepth:   3,
			RockLayers:  []string{"granite", "andesite"},
			LayerHeight: 24,
		},
		Ores: []OreGen{
			{Type: "nativecopper", Grade: "poor", MinY: 30, MaxY: 70, Scale: 0.15, Threshold: 0.78},
			{Type: "cassiterite", Grade: "poor", MinY: 10, MaxY: 50, Scale: 0.15, Threshold: 0.82},
			{Type: "galena", Grade: "rich", MinY: 5, MaxY: 40, Scale: 0.2, Threshold: 0.84},
			{Type: "nativegold", Grade: "poor", MinY: 1, MaxY: 25, Scale: 0.2, Threshold: 0.88},
		},
		Prospecting: Prospecting{
			Channel:          "general",
			DamageDivisor:    3,
			ParticleQuantity: 1,
			ParticleLife:     0.5,
			ParticleAddLife:  0.5,
		},
		Starter: map[string]int{
			"prospectingpick-copper": 1,
			"temporalgear":           2,
			"nugget-nativecopper":    1,
			"nugget-cassiterite":     1,
		},
		MaxSlots: 16,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be > 0")
	}
	if t.Height <= 0 {
		return fmt.Errorf("height must be > 0")
	}
	if t.BoundaryR < 0 {
		return fmt.Errorf("boundary_r must be >= 0")
	}
	if len(t.Terrain.RockLayers) == 0 {
		return fmt.Errorf("terrain.rock_layers must not be empty")
	}
	for i, o := range t.Ores {
		if o.Type == "" {
			return fmt.Errorf("ores[%d]: empty type", i)
		}
		if o.MinY > o.MaxY {
			return fmt.Errorf("ores[%d]: min_y > max_y", i)
		}
	}
	if t.MaxSlots <= 0 {
		return fmt.Errorf("max_slots must be > 0")
	}
	return nil
}
