//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the orrery in a window with the Vulkan renderer.
func (Run) Engine() error {
	if err := buildShaders(); err != nil {
		return err
	}
	fmt.Println("Run engine...")
	if _, err := executeCmd("go", withArgs("run", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs a bounded number of frames on the headless renderer.
func (Run) Headless() error {
	if err := buildShaders(); err != nil {
		return err
	}
	fmt.Println("Run headless...")
	_, err := executeCmd("go", withArgs("run", "."), withStream(), withEnv(
		"ORRERY_BACKEND=headless",
		"ORRERY_FRAMES=120",
	))
	return err
}

type Test mg.Namespace

// Runs every package test.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Runs the tests that need no window or GPU.
func (Test) Headless() error {
	_, err := executeCmd("go", withArgs("test",
		"./engine/core/...",
		"./engine/assets/...",
		"./engine/renderer/diagnostics/...",
		"./engine/renderer/geometry/...",
		"./engine/renderer/bindable/...",
		"./engine/renderer/drawable/...",
		"./engine/renderer/headless/...",
	), withStream())
	return err
}
