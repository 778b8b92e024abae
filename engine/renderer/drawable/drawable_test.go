package drawable_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/bindable"
	"github.com/spaghettifunk/orrery/engine/renderer/drawable"
	"github.com/spaghettifunk/orrery/engine/renderer/geometry"
	"github.com/spaghettifunk/orrery/engine/renderer/headless"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
	"github.com/spaghettifunk/orrery/engine/renderer/shader"
)

var (
	inPosition = shader.Input{Location: 0, Name: "position", Type: "vec3<f32>", Format: metadata.FormatR32G32B32Float}

	programInputs = map[string][]shader.Input{
		"solid_face":  {inPosition, {Location: 1, Name: "face", Type: "f32", Format: metadata.FormatR32Float}},
		"color_blend": {inPosition, {Location: 1, Name: "colour", Type: "vec4<f32>", Format: metadata.FormatR32G32B32A32Float}},
		"texture":     {inPosition, {Location: 1, Name: "uv", Type: "vec2<f32>", Format: metadata.FormatR32G32Float}},
	}
)

type fakePrograms struct {
	requests int
}

func (f *fakePrograms) Program(name string, stage metadata.Stage) (*shader.Program, error) {
	f.requests++
	inputs, ok := programInputs[name]
	if !ok {
		return nil, fmt.Errorf("no program %s", name)
	}
	p := &shader.Program{Name: name, Stage: stage, Entry: "main", SPIRV: []byte{0x03, 0x02, 0x23, 0x07}}
	if stage == metadata.StageVertex {
		p.Inputs = inputs
	}
	return p, nil
}

type fakeImages map[string]*metadata.Surface

func (f fakeImages) Image(name string) (*metadata.Surface, error) {
	s, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("no image %s", name)
	}
	return s, nil
}

type fixture struct {
	gfx     *renderer.Graphics
	backend *headless.Backend
	res     *drawable.Resources
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := headless.New(256)
	gfx, err := renderer.NewGraphics(backend, "test", 800, 600)
	require.NoError(t, err)
	gfx.SetProjection(math.NewMat4PerspectiveLH(1.0, 0.75, 0.5, 40.0))

	return &fixture{
		gfx:     gfx,
		backend: backend,
		res: &drawable.Resources{
			Registry:     drawable.NewRegistry(),
			Programs:     &fakePrograms{},
			Images:       fakeImages{"cube.png": metadata.NewSurface(4, 4)},
			SheetTexture: "sheet.png",
			CubeTexture:  "cube.png",
		},
	}
}

func uploadedMatrix(t *testing.T, data []byte) math.Mat4 {
	t.Helper()
	var m math.Mat4
	require.NoError(t, binary.Read(bytes.NewReader(data), binary.LittleEndian, &m))
	return m
}

func TestRegistryBuildsEachClassOnce(t *testing.T) {
	f := newFixture(t)
	reg := f.res.Registry
	assert.False(t, reg.IsInitialized(drawable.ClassBox))

	for i := 0; i < 3; i++ {
		b, err := drawable.NewBox(f.gfx, f.res, drawable.Orbit{R: float32(6 + i)})
		require.NoError(t, err)
		assert.Equal(t, uint32(36), b.IndexCount())
	}

	assert.True(t, reg.IsInitialized(drawable.ClassBox))
	assert.Equal(t, 1, reg.Builds(drawable.ClassBox))
	assert.Equal(t, 2, f.backend.CallCount(headless.OpCreateShader))
	assert.Equal(t, 1, f.backend.CallCount(headless.OpCreateInputLayout))
	// vertex, index and face colour buffers plus the shared transform
	assert.Equal(t, 4, f.backend.CallCount(headless.OpCreateBuffer))
}

func TestTwoBoxesOnDifferentOrbits(t *testing.T) {
	f := newFixture(t)

	a, err := drawable.NewBox(f.gfx, f.res, drawable.Orbit{R: 6.0, DRoll: 0.5})
	require.NoError(t, err)
	b, err := drawable.NewBox(f.gfx, f.res, drawable.Orbit{R: 10.0, DRoll: 0.5})
	require.NoError(t, err)

	a.Update(1.0)
	b.Update(1.0)

	assert.Equal(t, math.WrapAngle(float32(0.5)), a.Roll)
	assert.Equal(t, math.WrapAngle(float32(0.5)), b.Roll)

	ta, tb := a.Transform(), b.Transform()
	for i := 0; i < 12; i++ {
		assert.InDelta(t, ta.Data[i], tb.Data[i], 1e-6, "element %d", i)
	}
	assert.Equal(t, ta.Data[15], tb.Data[15])
	assert.False(t, ta.Translation().Compare(tb.Translation(), 1e-3))
	assert.InDelta(t, 4.0, tb.Translation().Sub(ta.Translation()).Length(), 1e-4)

	assert.Equal(t, 1, f.res.Registry.Builds(drawable.ClassBox))
}

func TestDrawBindsInstanceThenStatic(t *testing.T) {
	f := newFixture(t)
	box, err := drawable.NewBox(f.gfx, f.res, drawable.Orbit{R: 6})
	require.NoError(t, err)

	f.backend.ResetCalls()
	require.NoError(t, box.Draw(f.gfx))

	var ops []string
	for _, c := range f.backend.Calls() {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []string{
		headless.OpUpdateBuffer,
		headless.OpSetConstantBuffer,
		headless.OpSetVertexBuffer,
		headless.OpSetIndexBuffer,
		headless.OpSetShader,
		headless.OpSetShader,
		headless.OpSetInputLayout,
		headless.OpSetConstantBuffer,
		headless.OpSetTopology,
		headless.OpDrawIndexed,
	}, ops)

	draws := f.backend.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(36), draws[0].IndexCount)
}

func TestSharedTransformCreatedOnceAcrossClasses(t *testing.T) {
	f := newFixture(t)

	_, err := drawable.NewBox(f.gfx, f.res, drawable.Orbit{R: 6})
	require.NoError(t, err)
	_, err = drawable.NewPyramid(f.gfx, f.res, drawable.Orbit{R: 7})
	require.NoError(t, err)
	_, err = drawable.NewSkinnedBox(f.gfx, f.res, drawable.Orbit{R: 8})
	require.NoError(t, err)
	_, err = drawable.NewCylinder(f.gfx, f.res, drawable.Orbit{R: 9})
	require.NoError(t, err)

	assert.Equal(t, 1, f.res.Registry.Transform().Created())
}

func TestEachDrawSeesItsOwnTransform(t *testing.T) {
	f := newFixture(t)
	a, err := drawable.NewBox(f.gfx, f.res, drawable.Orbit{R: 6, Theta: 0.4})
	require.NoError(t, err)
	b, err := drawable.NewPyramid(f.gfx, f.res, drawable.Orbit{R: 12, Phi: 1.1})
	require.NoError(t, err)

	require.NoError(t, a.Draw(f.gfx))
	require.NoError(t, b.Draw(f.gfx))

	draws := f.backend.Draws()
	require.Len(t, draws, 2)
	proj := f.gfx.Projection()

	got := uploadedMatrix(t, draws[0].VertexConstants[bindable.TransformSlot])
	assert.True(t, got.Compare(a.Transform().Mul(proj).Transposed(), 1e-5))

	got = uploadedMatrix(t, draws[1].VertexConstants[bindable.TransformSlot])
	assert.True(t, got.Compare(b.Transform().Mul(proj).Transposed(), 1e-5))
}

func TestIndexBufferPreconditions(t *testing.T) {
	f := newFixture(t)
	box, err := drawable.NewBox(f.gfx, f.res, drawable.Orbit{R: 6})
	require.NoError(t, err)

	ib, err := bindable.NewIndexBuffer(f.gfx, []uint16{0, 1, 2})
	require.NoError(t, err)

	err = box.AddInstanceBind(ib)
	assert.True(t, errors.Is(err, core.ErrPreconditionViolation))

	reg := drawable.NewRegistry()
	err = reg.AddSharedResource(drawable.ClassBox, ib)
	assert.True(t, errors.Is(err, core.ErrPreconditionViolation))

	require.NoError(t, reg.AddSharedIndexBuffer(drawable.ClassPyramid, ib))
	err = reg.AddSharedIndexBuffer(drawable.ClassPyramid, ib)
	assert.True(t, errors.Is(err, core.ErrPreconditionViolation))

	_, err = reg.ResolveIndexBufferFromShared(drawable.ClassPyramid)
	assert.True(t, errors.Is(err, core.ErrPreconditionViolation))
}

func TestMelonOwnsItsIndexBuffer(t *testing.T) {
	f := newFixture(t)

	a, err := drawable.NewMelon(f.gfx, f.res, drawable.Orbit{R: 6}, 5, 5)
	require.NoError(t, err)
	b, err := drawable.NewMelon(f.gfx, f.res, drawable.Orbit{R: 8}, 7, 12)
	require.NoError(t, err)

	meshA, err := geometry.Sphere[posVertex](5, 5)
	require.NoError(t, err)
	meshB, err := geometry.Sphere[posVertex](7, 12)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(meshA.Indices)), a.IndexCount())
	assert.Equal(t, uint32(len(meshB.Indices)), b.IndexCount())

	reg := f.res.Registry
	assert.Equal(t, 1, reg.Builds(drawable.ClassMelon))
	for _, bind := range reg.Binds(drawable.ClassMelon) {
		assert.NotEqual(t, bindable.KindIndexBuffer, bind.Kind())
	}

	ib, err := bindable.NewIndexBuffer(f.gfx, []uint16{0, 1, 2})
	require.NoError(t, err)
	err = a.AddInstanceIndexBuffer(ib)
	assert.True(t, errors.Is(err, core.ErrPreconditionViolation))

	require.NoError(t, b.Draw(f.gfx))
	draws := f.backend.Draws()
	assert.Equal(t, b.IndexCount(), draws[len(draws)-1].IndexCount)

	live := f.backend.LiveObjects()
	b.Release(f.gfx)
	assert.Equal(t, live-2, f.backend.LiveObjects())
}

func TestFailedBuildIsNotInitialized(t *testing.T) {
	f := newFixture(t)
	f.backend.FailNext(headless.OpCreateShader, metadata.ResultOutOfMemory)

	_, err := drawable.NewBox(f.gfx, f.res, drawable.Orbit{R: 6})
	var rce *renderer.ResourceCreationError
	require.ErrorAs(t, err, &rce)
	assert.False(t, f.res.Registry.IsInitialized(drawable.ClassBox))
	assert.Zero(t, f.res.Registry.Builds(drawable.ClassBox))
	assert.Zero(t, f.backend.LiveObjects())

	_, err = drawable.NewBox(f.gfx, f.res, drawable.Orbit{R: 6})
	require.NoError(t, err)
	assert.Equal(t, 1, f.res.Registry.Builds(drawable.ClassBox))
}

func TestSheetFallsBackToCheckerTexture(t *testing.T) {
	f := newFixture(t)

	sheet, err := drawable.NewSheet(f.gfx, f.res, drawable.Orbit{R: 6})
	require.NoError(t, err)
	assert.Equal(t, uint32(6), sheet.IndexCount())
	assert.Equal(t, 1, f.backend.CallCount(headless.OpCreateTexture))
	assert.Equal(t, 1, f.backend.CallCount(headless.OpCreateSampler))

	require.NoError(t, sheet.Draw(f.gfx))
}

func TestDrawReturnsWarningAfterDrawing(t *testing.T) {
	f := newFixture(t)
	box, err := drawable.NewBox(f.gfx, f.res, drawable.Orbit{R: 6})
	require.NoError(t, err)

	f.backend.EmitOnNextCall(headless.OpSetTopology, diagnosticsMessage("stale state"))
	err = box.Draw(f.gfx)

	var warning *renderer.DiagnosticOnlyWarning
	require.ErrorAs(t, err, &warning)
	assert.Len(t, f.backend.Draws(), 1)
}

func TestDrawFailsOnFatalBindError(t *testing.T) {
	f := newFixture(t)
	box, err := drawable.NewBox(f.gfx, f.res, drawable.Orbit{R: 6})
	require.NoError(t, err)

	f.backend.FailNext(headless.OpUpdateBuffer, metadata.ResultDeviceRemoved)
	f.backend.RemoveDevice(metadata.ResultDeviceHung)

	err = box.Draw(f.gfx)
	assert.True(t, renderer.IsDeviceRemoved(err))
	assert.Empty(t, f.backend.Draws())
}
