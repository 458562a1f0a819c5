package systems

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

// Frames to wait after the last resize event before the views are resized.
const defaultResizeSettleFrames uint8 = 30

// RendererSystem is the renderer frontend: it owns the frame counter and drives the
// views through a frame.
type RendererSystem struct {
	backend          renderer.Backend
	renderViewSystem *RenderViewSystem

	// application
	AppName string

	FrameNumber uint64
	// The current window framebuffer width.
	FramebufferWidth uint32
	// The current window framebuffer height.
	FramebufferHeight uint32
	// Indicates if the window is currently being resized.
	Resizing bool
	// The current number of frames since the last resize operation.
	// Only set if Resizing = true. Otherwise 0.
	FramesSinceResize  uint8
	ResizeSettleFrames uint8
}

func NewRendererSystem(appName string, appWidth, appHeight uint32, backend renderer.Backend, rvs *RenderViewSystem) (*RendererSystem, error) {
	if backend == nil || rvs == nil {
		return nil, errors.Wrap(core.ErrConfig, "func NewRendererSystem - backend and render view system are required")
	}
	return &RendererSystem{
		backend:            backend,
		renderViewSystem:   rvs,
		AppName:            appName,
		FramebufferWidth:   appWidth,
		FramebufferHeight:  appHeight,
		ResizeSettleFrames: defaultResizeSettleFrames,
	}, nil
}

func (r *RendererSystem) Shutdown() error {
	return nil
}

func (r *RendererSystem) OnResize(width, height uint32) {
	// Flag as resizing and store the change, but wait to regenerate.
	r.Resizing = true
	r.FramebufferWidth = width
	r.FramebufferHeight = height
	// Also reset the frame count since the last resize operation.
	r.FramesSinceResize = 0
}

/**
 * @brief Draws the next frame using the data provided in the render packet.
 * Every view packet is rendered then destroyed, even when the frame is skipped.
 */
func (r *RendererSystem) DrawFrame(packet *metadata.RenderPacket) error {
	defer r.destroyPackets(packet)

	// Wait a designated number of frames after the last resize operation before
	// performing the view and backend updates.
	if r.Resizing {
		r.FramesSinceResize++
		if r.FramesSinceResize < r.ResizeSettleFrames {
			// Skip rendering the frame and try again next time.
			return nil
		}
		r.renderViewSystem.OnWindowResize(r.FramebufferWidth, r.FramebufferHeight)
		r.backend.Resized(r.FramebufferWidth, r.FramebufferHeight)
		r.FramesSinceResize = 0
		r.Resizing = false
	}

	if err := r.backend.BeginFrame(packet.DeltaTime); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			return nil
		}
		return err
	}
	// A begun frame counts even when a view or EndFrame fails.
	defer func() { r.FrameNumber++ }()

	// Render each view.
	for i, viewPacket := range packet.Views {
		if err := r.renderViewSystem.OnRender(viewPacket.View, viewPacket, r.FrameNumber, 0); err != nil {
			core.LogError("error rendering view index %d: %v", i, err)
			// Close the frame so the backend is usable next time.
			_ = r.backend.EndFrame(packet.DeltaTime)
			return err
		}
	}

	// End the frame. If this fails, it is likely unrecoverable.
	if err := r.backend.EndFrame(packet.DeltaTime); err != nil {
		core.LogError("backend func EndFrame failed. Application shutting down")
		return err
	}
	return nil
}

func (r *RendererSystem) destroyPackets(packet *metadata.RenderPacket) {
	for _, viewPacket := range packet.Views {
		if viewPacket != nil {
			r.renderViewSystem.OnDestroyPacket(viewPacket.View, viewPacket)
		}
	}
	packet.Views = packet.Views[:0]
}
