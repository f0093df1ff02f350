package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile controls how much mock data the seeder generates. The zero value
// is normalized to the defaults below.
type Profile struct {
	Users    int   `yaml:"users"`
	Products int   `yaml:"products"`
	RandSeed int64 `yaml:"rand_seed"`
}

// DefaultProfile matches the reference data set.
func DefaultProfile() Profile {
	return Profile{Users: 10_000, Products: 500, RandSeed: 42}
}

func (p *Profile) normalize() {
	def := DefaultProfile()
	if p.Users <= 0 {
		p.Users = def.Users
	}
	if p.Products <= 0 {
		p.Products = def.Products
	}
	if p.RandSeed == 0 {
		p.RandSeed = def.RandSeed
	}
}

// LoadProfile reads a YAML profile file. Missing fields keep their defaults.
func LoadProfile(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read seed profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("parse seed profile %s: %w", path, err)
	}
	p.normalize()
	return p, nil
}
