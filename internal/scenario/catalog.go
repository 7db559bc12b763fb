package scenario

import (
	"os"

	errorsmod "cosmossdk.io/errors"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/population"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// CatalogEntry is one hand-authored object. Position is km, velocity km/s.
type CatalogEntry struct {
	Name     string     `yaml:"name,omitempty"`
	NoradID  uint32     `yaml:"norad_id,omitempty"`
	Category string     `yaml:"category,omitempty"`
	Position [3]float64 `yaml:"position"`
	Velocity [3]float64 `yaml:"velocity"`
	Mass     float64    `yaml:"mass"`
	Radius   float64    `yaml:"radius,omitempty"`
}

type Catalog struct {
	Objects []CatalogEntry `yaml:"objects"`
}

func LoadCatalog(path string) ([]population.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errorsmod.Wrapf(dynamo.ErrInvalidConfig, "catalog %s: %v", path, err)
	}
	return c.Build()
}

func SaveCatalog(path string, c Catalog) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Build converts entries to objects. An omitted radius takes the category
// default. Named satellites get SatelliteInfo.
func (c Catalog) Build() ([]population.Object, error) {
	objs := make([]population.Object, 0, len(c.Objects))
	for i, e := range c.Objects {
		cat, ok := dynamo.ParseCategory(e.Category)
		if !ok {
			return nil, errorsmod.Wrapf(dynamo.ErrInvalidConfig, "entry %d: unknown category %q", i, e.Category)
		}
		o := population.Object{
			State: dynamo.OrbitalState{
				Position: r3.Vec{X: e.Position[0], Y: e.Position[1], Z: e.Position[2]},
				Velocity: r3.Vec{X: e.Velocity[0], Y: e.Velocity[1], Z: e.Velocity[2]},
				Mass:     e.Mass,
			},
			Physics: dynamo.PhysicsObject{CollisionRadius: e.Radius, Category: cat},
			Lineage: dynamo.Original(0),
		}
		if !o.State.IsValid() || e.Radius < 0 {
			return nil, errorsmod.Wrapf(dynamo.ErrInvalidState, "entry %d (%s)", i, e.Name)
		}
		if o.State.Position == (r3.Vec{}) {
			return nil, errorsmod.Wrapf(dynamo.ErrInvalidState, "entry %d (%s) at the origin", i, e.Name)
		}
		if cat == dynamo.Satellite && e.Name != "" {
			o.Satellite = &dynamo.SatelliteInfo{Name: e.Name, NoradID: e.NoradID, Active: true}
		}
		objs = append(objs, o)
	}
	return objs, nil
}
