package config

import "sort"

var Presets = map[string]*Config{
	"calm": preset(func(c *Config) {
		c.Velocity = Vec3{Z: 0.005}
		c.Sensitivity = 0.0005
	}),
	"drift": preset(func(c *Config) {
		c.Velocity = Vec3{X: 0.02, Y: 0.01, Z: 0.01}
	}),
	"storm": preset(func(c *Config) {
		c.FPS = 60
		c.Velocity = Vec3{X: 0.05, Y: -0.03, Z: 0.04}
		c.Sensitivity = 0.003
		c.WheelStep = 0.03
		c.Sampler = "simplex"
		c.Octaves = 5
	}),
	"fine": preset(func(c *Config) {
		c.Precision = 2
		c.CacheCapacity = 10000
		c.CellScale = Vec2{X: 0.05, Y: 0.1}
	}),
	"coarse": preset(func(c *Config) {
		c.Precision = 0
		c.CacheCapacity = 500
		c.CellScale = Vec2{X: 0.3, Y: 0.6}
		c.Octaves = 1
	}),
}

func preset(apply func(c *Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
