package prospecting

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ParticleModel is the render model of a particle request.
type ParticleModel string

const ParticleQuad ParticleModel = "quad"

// ParticleSpec is one fire-and-forget particle emission request.
type ParticleSpec struct {
	Quantity      float64       `json:"quantity"`
	Pos           Vec3          `json:"pos"`
	Velocity      Vec3          `json:"velocity"`
	RGBA          [4]uint8      `json:"rgba"`
	MinSize       float64       `json:"min_size"`
	LifeLength    float64       `json:"life_length"`
	AddLife       float64       `json:"add_life"`
	SizeEvolve    float64       `json:"size_evolve"`
	OpacityFade   float64       `json:"opacity_fade"`
	Model         ParticleModel `json:"model"`
	SelfPropelled bool          `json:"self_propelled"`
}

// Rand is the randomness source used for particle colour jitter.
type Rand interface {
	Intn(n int) int
}

// ParticleStyle holds the tunable part of the emitted particles.
type ParticleStyle struct {
	Quantity   float64
	LifeLength float64
	AddLife    float64
}

func DefaultParticleStyle() ParticleStyle {
	return ParticleStyle{Quantity: 1, LifeLength: 0.5, AddLife: 0.5}
}

// hsvToRGBA converts 0-255 HSV components (hue wraps at 256) to RGBA bytes.
func hsvToRGBA(h, s, v, a int) [4]uint8 {
	c := colorful.Hsv(float64(h%256)*360.0/256.0, clamp01(float64(s)/255.0), clamp01(float64(v)/255.0))
	r, g, b := c.RGB255()
	return [4]uint8{r, g, b, uint8(a)}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// NewTrailParticle builds the particle that travels from m.From to m.To.
func NewTrailParticle(style ParticleStyle, rnd Rand, m Match) ParticleSpec {
	if style == (ParticleStyle{}) {
		style = DefaultParticleStyle()
	}
	h, v := 110, 100
	if rnd != nil {
		h += rnd.Intn(15)
		v += rnd.Intn(50)
	}
	return ParticleSpec{
		Quantity:      style.Quantity,
		Pos:           m.From,
		Velocity:      m.To.Sub(m.From),
		RGBA:          hsvToRGBA(h, 180, v, 150),
		MinSize:       0.2,
		LifeLength:    style.LifeLength,
		AddLife:       style.AddLife,
		SizeEvolve:    -0.6,
		OpacityFade:   -150,
		Model:         ParticleQuad,
		SelfPropelled: true,
	}
}
