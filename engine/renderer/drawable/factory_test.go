package drawable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer/diagnostics"
	"github.com/spaghettifunk/orrery/engine/renderer/drawable"
)

type posVertex struct {
	Pos math.Vec3
}

func (v posVertex) Position() math.Vec3                { return v.Pos }
func (v posVertex) WithPosition(p math.Vec3) posVertex { v.Pos = p; return v }

func diagnosticsMessage(text string) diagnostics.Message {
	return diagnostics.Message{Severity: diagnostics.SeverityWarning, Source: "test", Text: text}
}

func radius(r drawable.Renderable) float32 {
	switch d := r.(type) {
	case *drawable.Box:
		return d.R
	case *drawable.Pyramid:
		return d.R
	case *drawable.Melon:
		return d.R
	case *drawable.Sheet:
		return d.R
	case *drawable.SkinnedBox:
		return d.R
	case *drawable.Cylinder:
		return d.R
	}
	return -1
}

func TestFactoryCyclesThroughClasses(t *testing.T) {
	f := newFixture(t)
	factory, err := drawable.NewFactory(f.gfx, f.res, 42, nil)
	require.NoError(t, err)

	scene, err := factory.Populate(12)
	require.NoError(t, err)
	require.Len(t, scene, 12)

	for i, d := range scene {
		assert.Equal(t, drawable.Classes[i%len(drawable.Classes)], d.Class())
		r := radius(d)
		assert.GreaterOrEqual(t, r, float32(6.0))
		assert.Less(t, r, float32(20.0))
	}
	for _, c := range drawable.Classes {
		assert.Equal(t, 1, f.res.Registry.Builds(c), "class %s", c)
	}
	assert.NotEqual(t, scene[0].ID(), scene[6].ID())
}

func TestFactoryIsDeterministic(t *testing.T) {
	classes := []drawable.GeometryClass{drawable.ClassBox, drawable.ClassMelon}

	radii := func() []float32 {
		f := newFixture(t)
		factory, err := drawable.NewFactory(f.gfx, f.res, 7, classes)
		require.NoError(t, err)
		scene, err := factory.Populate(6)
		require.NoError(t, err)

		out := make([]float32, len(scene))
		for i, d := range scene {
			out[i] = radius(d)
		}
		return out
	}

	assert.Equal(t, radii(), radii())
}

func TestFactoryRejectsUnknownClass(t *testing.T) {
	f := newFixture(t)
	_, err := drawable.NewFactory(f.gfx, f.res, 1, []drawable.GeometryClass{"teapot"})
	assert.Error(t, err)
}

func TestParseClass(t *testing.T) {
	c, err := drawable.ParseClass("skinned-box")
	require.NoError(t, err)
	assert.Equal(t, drawable.ClassSkinnedBox, c)

	_, err = drawable.ParseClass("teapot")
	assert.Error(t, err)
}
