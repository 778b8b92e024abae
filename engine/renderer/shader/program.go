// Package shader turns WGSL source into SPIR-V programs and reflects the
// vertex inputs an input layout has to satisfy.
package shader

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// Input is one @location parameter of a vertex entry point.
type Input struct {
	Location uint32
	Name     string
	Type     string
	Format   metadata.Format
}

// Program is a compiled shader stage.
type Program struct {
	Name   string
	Stage  metadata.Stage
	Entry  string
	Source string
	SPIRV  []byte
	// Inputs is only populated for vertex programs.
	Inputs []Input
}

// Compile compiles WGSL source for the given stage.
func Compile(name string, stage metadata.Stage, source string) (*Program, error) {
	entry, err := EntryPoint(source, stage)
	if err != nil {
		return nil, fmt.Errorf("shader %s (%s): %w", name, stage, err)
	}

	var inputs []Input
	if stage == metadata.StageVertex {
		if inputs, err = ReflectVertexInputs(source); err != nil {
			return nil, fmt.Errorf("shader %s (%s): %w", name, stage, err)
		}
	}

	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader %s (%s): %w", name, stage, err)
	}
	if len(spirv) < 4 || len(spirv)%4 != 0 || binary.LittleEndian.Uint32(spirv) != spirvMagic {
		return nil, fmt.Errorf("shader %s (%s): compiler returned an invalid SPIR-V module", name, stage)
	}

	return &Program{
		Name:   name,
		Stage:  stage,
		Entry:  entry,
		Source: source,
		SPIRV:  spirv,
		Inputs: inputs,
	}, nil
}

// Words returns the SPIR-V module as little-endian 32-bit words.
func (p *Program) Words() []uint32 {
	words := make([]uint32, len(p.SPIRV)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(p.SPIRV[i*4:])
	}
	return words
}

// Input returns the input bound at location.
func (p *Program) Input(location uint32) (Input, bool) {
	for _, in := range p.Inputs {
		if in.Location == location {
			return in, true
		}
	}
	return Input{}, false
}
