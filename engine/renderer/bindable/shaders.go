package bindable

import (
	"fmt"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
	"github.com/spaghettifunk/orrery/engine/renderer/shader"
)

type VertexShader struct {
	handle  metadata.Handle
	program *shader.Program
}

func NewVertexShader(gfx *renderer.Graphics, program *shader.Program) (*VertexShader, error) {
	if program == nil || program.Stage != metadata.StageVertex {
		return nil, fmt.Errorf("%w: vertex shader needs a vertex program", core.ErrPreconditionViolation)
	}
	h, err := gfx.CreateShader(program)
	if err != nil {
		return nil, err
	}
	return &VertexShader{handle: h, program: program}, nil
}

func (vs *VertexShader) Kind() ResourceKind { return KindVertexShader }

func (vs *VertexShader) Bind(gfx *renderer.Graphics) error {
	return gfx.InfoOnly("SetShader", func() {
		gfx.Context().SetShader(metadata.StageVertex, vs.handle)
	})
}

func (vs *VertexShader) Release(gfx *renderer.Graphics) {
	gfx.Release(vs.handle)
}

// Program returns the compiled program an input layout is validated against.
func (vs *VertexShader) Program() *shader.Program { return vs.program }

// Bytecode returns the SPIR-V byte stream.
func (vs *VertexShader) Bytecode() []byte { return vs.program.SPIRV }

type PixelShader struct {
	handle  metadata.Handle
	program *shader.Program
}

func NewPixelShader(gfx *renderer.Graphics, program *shader.Program) (*PixelShader, error) {
	if program == nil || program.Stage != metadata.StagePixel {
		return nil, fmt.Errorf("%w: pixel shader needs a pixel program", core.ErrPreconditionViolation)
	}
	h, err := gfx.CreateShader(program)
	if err != nil {
		return nil, err
	}
	return &PixelShader{handle: h, program: program}, nil
}

func (ps *PixelShader) Kind() ResourceKind { return KindPixelShader }

func (ps *PixelShader) Bind(gfx *renderer.Graphics) error {
	return gfx.InfoOnly("SetShader", func() {
		gfx.Context().SetShader(metadata.StagePixel, ps.handle)
	})
}

func (ps *PixelShader) Release(gfx *renderer.Graphics) {
	gfx.Release(ps.handle)
}

func (ps *PixelShader) Bytecode() []byte { return ps.program.SPIRV }

type InputLayout struct {
	handle   metadata.Handle
	elements []metadata.VertexElement
}

// NewInputLayout creates a layout checked against the inputs of vs.
func NewInputLayout(gfx *renderer.Graphics, elements []metadata.VertexElement, vs *VertexShader) (*InputLayout, error) {
	if vs == nil {
		return nil, fmt.Errorf("%w: input layout needs a vertex shader", core.ErrPreconditionViolation)
	}
	h, err := gfx.CreateInputLayout(elements, vs.program, vs.handle)
	if err != nil {
		return nil, err
	}
	return &InputLayout{handle: h, elements: elements}, nil
}

func (il *InputLayout) Kind() ResourceKind { return KindInputLayout }

func (il *InputLayout) Bind(gfx *renderer.Graphics) error {
	return gfx.InfoOnly("SetInputLayout", func() {
		gfx.Context().SetInputLayout(il.handle)
	})
}

func (il *InputLayout) Release(gfx *renderer.Graphics) {
	gfx.Release(il.handle)
}

func (il *InputLayout) Elements() []metadata.VertexElement { return il.elements }
