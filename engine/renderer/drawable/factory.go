package drawable

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer"
)

const (
	minRadius       = 6.0
	maxRadius       = 20.0
	maxDrift        = math.K_PI
	maxSpin         = math.K_PI_2
	maxOrbitSpeed   = math.K_PI * 0.3
	minTessellation = 5
	maxTessellation = 20
)

// Factory creates drawables with random orbits, cycling through its classes.
// The same seed always yields the same scene.
type Factory struct {
	gfx     *renderer.Graphics
	res     *Resources
	rng     *rand.Rand
	classes []GeometryClass
	next    int
}

func NewFactory(gfx *renderer.Graphics, res *Resources, seed uint64, classes []GeometryClass) (*Factory, error) {
	if len(classes) == 0 {
		classes = Classes
	}
	for _, c := range classes {
		if _, err := ParseClass(string(c)); err != nil {
			return nil, err
		}
	}
	return &Factory{
		gfx:     gfx,
		res:     res,
		rng:     rand.New(rand.NewSource(seed)),
		classes: classes,
	}, nil
}

// Next creates the next drawable.
func (f *Factory) Next() (Renderable, error) {
	class := f.classes[f.next%len(f.classes)]
	f.next++

	orbit := f.orbit()
	switch class {
	case ClassBox:
		return NewBox(f.gfx, f.res, orbit)
	case ClassPyramid:
		return NewPyramid(f.gfx, f.res, orbit)
	case ClassMelon:
		return NewMelon(f.gfx, f.res, orbit, f.tessellation(), f.tessellation())
	case ClassSheet:
		return NewSheet(f.gfx, f.res, orbit)
	case ClassSkinnedBox:
		return NewSkinnedBox(f.gfx, f.res, orbit)
	case ClassCylinder:
		return NewCylinder(f.gfx, f.res, orbit)
	}
	return nil, fmt.Errorf("unknown geometry class %q", class)
}

// Populate creates n drawables. On failure the ones already created are
// released.
func (f *Factory) Populate(n int) ([]Renderable, error) {
	out := make([]Renderable, 0, n)
	for i := 0; i < n; i++ {
		d, err := f.Next()
		if err != nil {
			for _, done := range out {
				done.Release(f.gfx)
			}
			return nil, fmt.Errorf("failed to create drawable %d of %d: %w", i+1, n, err)
		}
		out = append(out, d)
	}
	core.LogInfo("created %d drawables", len(out))
	return out, nil
}

func (f *Factory) orbit() Orbit {
	return Orbit{
		R:      f.uniform(minRadius, maxRadius),
		Theta:  f.uniform(0, maxDrift),
		Phi:    f.uniform(0, maxDrift),
		Chi:    f.uniform(0, maxDrift),
		DRoll:  f.uniform(0, maxSpin),
		DPitch: f.uniform(0, maxSpin),
		DYaw:   f.uniform(0, maxSpin),
		DTheta: f.uniform(0, maxOrbitSpeed),
		DPhi:   f.uniform(0, maxOrbitSpeed),
		DChi:   f.uniform(0, maxOrbitSpeed),
	}
}

func (f *Factory) uniform(lo, hi float32) float32 {
	return lo + f.rng.Float32()*(hi-lo)
}

func (f *Factory) tessellation() int {
	return minTessellation + f.rng.Intn(maxTessellation-minTessellation+1)
}
