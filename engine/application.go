package engine

import (
	"fmt"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/platform"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/headless"
	"github.com/spaghettifunk/orrery/engine/renderer/vulkan"
)

// newBackend creates the renderer backend named in the config. The Vulkan
// backend presents to a window, so it also returns the platform owning it.
func newBackend(cfg *core.Config, bus *core.EventBus, input *core.Input) (renderer.RendererBackend, *platform.Platform, error) {
	switch cfg.Renderer.Backend {
	case core.BackendVulkan:
		p := platform.New(bus, input)
		return vulkan.New(p, cfg.Renderer.Debug, cfg.Renderer.MessageQueueSize), p, nil
	case core.BackendHeadless:
		return headless.New(cfg.Renderer.MessageQueueSize), nil, nil
	default:
		return nil, nil, fmt.Errorf("renderer backend %q: %w", cfg.Renderer.Backend, core.ErrInvalidConfig)
	}
}
