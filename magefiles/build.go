//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"

	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
	"github.com/spaghettifunk/orrery/engine/renderer/shader"
)

const shaderDir = "assets/shaders"

type Build mg.Namespace

// Compiles every WGSL shader to make sure it is valid before running.
func (Build) Shaders() error {
	return buildShaders()
}

// Validates the shaders and builds the orrery binary.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/orrery", "."), withStream()); err != nil {
		return err
	}
	return nil
}

func buildShaders() error {
	files, err := filepath.Glob(filepath.Join(shaderDir, "*.wgsl"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no shaders found in %s", shaderDir)
	}
	for _, file := range files {
		name, stage, err := shaderStage(filepath.Base(file))
		if err != nil {
			return err
		}
		source, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		p, err := shader.Compile(name, stage, string(source))
		if err != nil {
			return err
		}
		fmt.Printf("Compiled %s: entry %s, %d bytes of SPIR-V, %d inputs\n", file, p.Entry, len(p.SPIRV), len(p.Inputs))
	}
	return nil
}

// shaderStage splits "name.vert.wgsl" into the program name and its stage.
func shaderStage(fileName string) (string, metadata.Stage, error) {
	base := strings.TrimSuffix(fileName, ".wgsl")
	switch {
	case strings.HasSuffix(base, ".vert"):
		return strings.TrimSuffix(base, ".vert"), metadata.StageVertex, nil
	case strings.HasSuffix(base, ".frag"):
		return strings.TrimSuffix(base, ".frag"), metadata.StagePixel, nil
	default:
		return "", 0, fmt.Errorf("shader %s has no .vert or .frag stage suffix", fileName)
	}
}
