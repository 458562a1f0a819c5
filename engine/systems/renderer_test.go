package systems

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"github.com/spaghettifunk/kiln/engine/renderer/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newMockRenderer(t *testing.T) (*RendererSystem, *mocks.MockBackend) {
	t.Helper()
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	rvs, err := NewRenderViewSystem(RenderViewSystemConfig{MaxViewCount: 1}, nil, nil, nil, backend)
	require.NoError(t, err)
	r, err := NewRendererSystem("mocked", 640, 480, backend, rvs)
	require.NoError(t, err)
	return r, backend
}

func TestRendererSkipsFrameWhileSwapchainBoots(t *testing.T) {
	r, backend := newMockRenderer(t)

	backend.EXPECT().BeginFrame(gomock.Any()).Return(errors.Wrap(core.ErrSwapchainBooting, "recreating"))
	require.NoError(t, r.DrawFrame(&metadata.RenderPacket{DeltaTime: 0.016}))
	require.Zero(t, r.FrameNumber)

	gomock.InOrder(
		backend.EXPECT().BeginFrame(0.016).Return(nil),
		backend.EXPECT().EndFrame(0.016).Return(nil),
	)
	require.NoError(t, r.DrawFrame(&metadata.RenderPacket{DeltaTime: 0.016}))
	require.Equal(t, uint64(1), r.FrameNumber)
}

func TestRendererPropagatesBackendFailures(t *testing.T) {
	r, backend := newMockRenderer(t)

	backend.EXPECT().BeginFrame(gomock.Any()).Return(errors.Wrap(core.ErrInvalidState, "device lost"))
	err := r.DrawFrame(&metadata.RenderPacket{})
	require.True(t, errors.Is(err, core.ErrInvalidState))

	backend.EXPECT().BeginFrame(gomock.Any()).Return(nil)
	backend.EXPECT().EndFrame(gomock.Any()).Return(errors.Wrap(core.ErrInvalidState, "present failed"))
	err = r.DrawFrame(&metadata.RenderPacket{})
	require.True(t, errors.Is(err, core.ErrInvalidState))
	// Only the frame that began is counted.
	require.Equal(t, uint64(1), r.FrameNumber)
}

func TestRendererCountsFrameWhenViewFails(t *testing.T) {
	r, backend := newMockRenderer(t)

	gomock.InOrder(
		backend.EXPECT().BeginFrame(0.016).Return(nil),
		backend.EXPECT().EndFrame(0.016).Return(nil),
	)
	// A packet without a view cannot be rendered.
	packet := &metadata.RenderPacket{DeltaTime: 0.016, Views: []*metadata.RenderViewPacket{{}}}
	err := r.DrawFrame(packet)
	require.True(t, errors.Is(err, core.ErrNotFound))
	require.Equal(t, uint64(1), r.FrameNumber)
	require.Empty(t, packet.Views)

	gomock.InOrder(
		backend.EXPECT().BeginFrame(0.016).Return(nil),
		backend.EXPECT().EndFrame(0.016).Return(nil),
	)
	require.NoError(t, r.DrawFrame(&metadata.RenderPacket{DeltaTime: 0.016}))
	require.Equal(t, uint64(2), r.FrameNumber)
}

func TestRendererWaitsForResizeToSettle(t *testing.T) {
	r, backend := newMockRenderer(t)
	r.ResizeSettleFrames = 3

	r.OnResize(800, 600)
	// Two frames are skipped without touching the backend.
	require.NoError(t, r.DrawFrame(&metadata.RenderPacket{}))
	require.NoError(t, r.DrawFrame(&metadata.RenderPacket{}))
	require.True(t, r.Resizing)

	gomock.InOrder(
		backend.EXPECT().Resized(uint32(800), uint32(600)),
		backend.EXPECT().BeginFrame(gomock.Any()).Return(nil),
		backend.EXPECT().EndFrame(gomock.Any()).Return(nil),
	)
	require.NoError(t, r.DrawFrame(&metadata.RenderPacket{}))
	require.False(t, r.Resizing)
	require.Equal(t, uint32(800), r.FramebufferWidth)
}

func TestRendererDrawsViewPackets(t *testing.T) {
	sm, backend, _ := newTestManager(t)

	mesh, err := sm.MeshSystem.CreateFromConfigs("box", []*metadata.GeometryConfig{GenerateCubeConfig(1, 1, 1, 1, 1, "box", "")})
	require.NoError(t, err)

	world, err := sm.RenderViewSystem.Get("world")
	require.NoError(t, err)
	viewPacket, err := sm.RenderViewSystem.BuildPacket(world, &metadata.MeshPacketData{
		Meshes:     []*metadata.Mesh{mesh},
		Transforms: sm.MeshSystem.Transforms,
	})
	require.NoError(t, err)
	require.Len(t, viewPacket.Geometries, 1)

	packet := &metadata.RenderPacket{DeltaTime: 0.016, Views: []*metadata.RenderViewPacket{viewPacket}}
	require.NoError(t, sm.RendererSystem.DrawFrame(packet))
	require.Equal(t, 1, backend.Stats.Frames)
	require.Equal(t, 1, backend.Stats.PassesBegun)
	require.Equal(t, 1, backend.Stats.PassesEnded)
	require.Equal(t, 1, backend.Stats.Draws)
	// Packets are destroyed once drawn.
	require.Empty(t, packet.Views)
}
