package views_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/renderer/headless"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"github.com/spaghettifunk/kiln/engine/renderer/views"
	"github.com/spaghettifunk/kiln/engine/systems"
	"github.com/stretchr/testify/require"
)

func newTestSystems(t *testing.T) (*systems.SystemManager, *headless.Backend, string) {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.Assets.BasePath = t.TempDir()
	cfg.Jobs.Workers = 1
	cfg.Jobs.QueueSize = 1

	backend := headless.New()
	sm, err := systems.NewSystemManager(cfg, backend)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sm.Shutdown() })
	return sm, backend, cfg.Assets.BasePath
}

func cubeMesh(t *testing.T, sm *systems.SystemManager, name string) *metadata.Mesh {
	t.Helper()
	mesh, err := sm.MeshSystem.CreateFromConfigs(name, []*metadata.GeometryConfig{
		systems.GenerateCubeConfig(1, 1, 1, 1, 1, name, ""),
	})
	require.NoError(t, err)
	return mesh
}

func getView(t *testing.T, sm *systems.SystemManager, name string) metadata.RenderView {
	t.Helper()
	v, err := sm.RenderViewSystem.Get(name)
	require.NoError(t, err)
	return v
}

func TestWorldViewUploadsMaterialOncePerFrame(t *testing.T) {
	sm, backend, _ := newTestSystems(t)
	meshes := []*metadata.Mesh{cubeMesh(t, sm, "a"), cubeMesh(t, sm, "b"), cubeMesh(t, sm, "c")}
	world := getView(t, sm, "world")

	packet, err := world.OnBuildPacket(&metadata.MeshPacketData{Meshes: meshes, Transforms: sm.MeshSystem.Transforms})
	require.NoError(t, err)
	require.Len(t, packet.Geometries, 3)
	// All three cubes share the default material.
	require.Same(t, packet.Geometries[0].Geometry.Material, packet.Geometries[2].Geometry.Material)

	uploads := backend.Stats.InstanceUploads
	applies := backend.Stats.InstanceApplies
	draws := backend.Stats.Draws

	require.NoError(t, world.OnRender(packet, 1, 0))
	require.Equal(t, uploads+1, backend.Stats.InstanceUploads)
	require.Equal(t, applies+3, backend.Stats.InstanceApplies)
	require.Equal(t, draws+3, backend.Stats.Draws)

	// Same frame again binds without uploading.
	require.NoError(t, world.OnRender(packet, 1, 0))
	require.Equal(t, uploads+1, backend.Stats.InstanceUploads)

	require.NoError(t, world.OnRender(packet, 2, 0))
	require.Equal(t, uploads+2, backend.Stats.InstanceUploads)
}

func TestWorldViewSkipsMeshesStillLoading(t *testing.T) {
	sm, _, _ := newTestSystems(t)
	loading := &metadata.Mesh{
		Name:       "loading",
		Generation: metadata.InvalidIDUint8,
		Geometries: []*metadata.Geometry{sm.GeometrySystem.GetDefault()},
	}
	world := getView(t, sm, "world")

	packet, err := world.OnBuildPacket(&metadata.MeshPacketData{
		Meshes:     []*metadata.Mesh{loading, cubeMesh(t, sm, "ready")},
		Transforms: sm.MeshSystem.Transforms,
	})
	require.NoError(t, err)
	require.Len(t, packet.Geometries, 1)
	require.Equal(t, "ready", packet.Geometries[0].Geometry.Name)

	_, err = world.OnBuildPacket(&metadata.SkyboxPacketData{})
	require.True(t, errors.Is(err, core.ErrConsistency))
}

func TestWorldViewSortsTransparentBackToFront(t *testing.T) {
	sm, _, _ := newTestSystems(t)
	glass := &metadata.Material{
		Name:       "glass",
		DiffuseMap: &metadata.TextureMap{Texture: &metadata.Texture{Flags: metadata.TextureFlagHasTransparency}},
	}
	geometry := func(name string, z float32, m *metadata.Material) *metadata.Geometry {
		return &metadata.Geometry{Name: name, Center: mgl32.Vec3{0, 0, z}, Material: m}
	}
	mesh := &metadata.Mesh{
		Name: "mixed",
		Geometries: []*metadata.Geometry{
			geometry("near", -5, glass),
			geometry("far", -20, glass),
			geometry("solid", -50, sm.MaterialSystem.GetDefault()),
			geometry("middle", -10, glass),
		},
	}
	world := getView(t, sm, "world")

	packet, err := world.OnBuildPacket(&metadata.MeshPacketData{Meshes: []*metadata.Mesh{mesh}})
	require.NoError(t, err)

	var order []string
	for _, rd := range packet.Geometries {
		order = append(order, rd.Geometry.Name)
	}
	require.Equal(t, []string{"solid", "far", "middle", "near"}, order)
}

func TestViewResizeRebuildsProjectionOnlyOnChange(t *testing.T) {
	sm, _, _ := newTestSystems(t)
	world := getView(t, sm, "world").(*views.WorldView)
	projection := world.ProjectionMatrix

	// The views were created at the window size.
	world.OnResize(1280, 720)
	require.Zero(t, world.ProjectionRebuilds())
	require.Equal(t, metadata.RenderViewStateCreated, world.State())

	world.OnResize(800, 600)
	require.Equal(t, 1, world.ProjectionRebuilds())
	require.Equal(t, metadata.RenderViewStateResized, world.State())
	require.NotEqual(t, projection, world.ProjectionMatrix)
	require.Equal(t, mgl32.Vec4{0, 0, 800, 600}, world.Passes()[0].RenderArea)

	// Resized views still render.
	_, err := world.OnBuildPacket(&metadata.MeshPacketData{})
	require.NoError(t, err)

	ui := getView(t, sm, "ui").(*views.UIView)
	sm.RenderViewSystem.OnWindowResize(640, 480)
	require.Equal(t, 1, ui.ProjectionRebuilds())
	require.Equal(t, 2, world.ProjectionRebuilds())
}

func TestViewLifecycleStates(t *testing.T) {
	sm, backend, _ := newTestSystems(t)
	world := views.NewWorldView(sm.ShaderSystem, sm.MaterialSystem, backend, sm.CameraSystem.GetDefault())

	_, err := world.OnBuildPacket(&metadata.MeshPacketData{})
	require.True(t, errors.Is(err, core.ErrInvalidState))

	err = world.OnCreate(&metadata.RenderViewConfig{Name: "empty"})
	require.True(t, errors.Is(err, core.ErrConfig))

	config := &metadata.RenderViewConfig{
		Name:   "extra",
		Passes: []metadata.RenderViewPassConfig{{Name: systems.BUILTIN_RENDERPASS_WORLD}},
	}
	require.NoError(t, world.OnCreate(config))
	require.Equal(t, metadata.RenderViewStateCreated, world.State())
	require.True(t, errors.Is(world.OnCreate(config), core.ErrInvalidState))

	packet, err := world.OnBuildPacket(&metadata.MeshPacketData{})
	require.NoError(t, err)

	world.OnDestroy()
	require.Equal(t, metadata.RenderViewStateDestroyed, world.State())
	require.True(t, errors.Is(world.OnRender(packet, 1, 0), core.ErrInvalidState))
}

func TestViewCustomShaderMustExist(t *testing.T) {
	sm, backend, _ := newTestSystems(t)
	world := views.NewWorldView(sm.ShaderSystem, sm.MaterialSystem, backend, sm.CameraSystem.GetDefault())

	err := world.OnCreate(&metadata.RenderViewConfig{
		Name:             "custom",
		CustomShaderName: "Shader.Missing",
		Passes:           []metadata.RenderViewPassConfig{{Name: systems.BUILTIN_RENDERPASS_WORLD}},
	})
	require.True(t, errors.Is(err, core.ErrNotFound))
}

func TestUIViewUploadsTextOncePerFrame(t *testing.T) {
	sm, backend, _ := newTestSystems(t)
	uiShader, err := sm.ShaderSystem.Get(metadata.BUILTIN_SHADER_NAME_UI)
	require.NoError(t, err)

	atlas := &metadata.TextureMap{Texture: sm.TextureSystem.GetDefaultTexture()}
	instanceID, err := sm.ShaderSystem.AcquireInstanceResources(uiShader.ID, []*metadata.TextureMap{atlas})
	require.NoError(t, err)
	defer func() { require.NoError(t, sm.ShaderSystem.ReleaseInstanceResources(uiShader.ID, instanceID)) }()

	text := &metadata.UIText{
		InstanceID:        instanceID,
		Data:              &metadata.FontData{Atlas: atlas},
		Text:              "hi",
		Colour:            mgl32.Vec4{1, 1, 1, 1},
		Transform:         math.NoTransform,
		Geometry:          sm.GeometrySystem.GetDefault2D(),
		RenderFrameNumber: metadata.InvalidIDUint64,
	}
	ui := getView(t, sm, "ui")
	// The same text is drawn twice in one batch.
	packet, err := ui.OnBuildPacket(&metadata.UIPacketData{Texts: []*metadata.UIText{text, nil, text}})
	require.NoError(t, err)
	require.Empty(t, packet.Geometries)

	uploads := backend.Stats.InstanceUploads
	draws := backend.Stats.Draws
	require.NoError(t, ui.OnRender(packet, 1, 0))
	require.Equal(t, uploads+1, backend.Stats.InstanceUploads)
	require.Equal(t, draws+2, backend.Stats.Draws)
	require.Equal(t, uint64(1), text.RenderFrameNumber)

	require.NoError(t, ui.OnRender(packet, 2, 0))
	require.Equal(t, uploads+2, backend.Stats.InstanceUploads)
	require.Equal(t, draws+4, backend.Stats.Draws)
}

func writeCubeFaces(t *testing.T, base, name string) {
	t.Helper()
	dir := filepath.Join(base, assets.TexturesPath)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	for _, suffix := range []string{"_r", "_l", "_u", "_d", "_f", "_b"} {
		f, err := os.Create(filepath.Join(dir, name+suffix+".png"))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}
}

func TestSkyboxViewDrawsCubemapOncePerFrame(t *testing.T) {
	sm, backend, base := newTestSystems(t)
	skyboxView := getView(t, sm, "skybox")

	// Without a skybox nothing is drawn.
	empty, err := skyboxView.OnBuildPacket(&metadata.SkyboxPacketData{})
	require.NoError(t, err)
	passes := backend.Stats.PassesBegun
	require.NoError(t, skyboxView.OnRender(empty, 1, 0))
	require.Equal(t, passes, backend.Stats.PassesBegun)

	writeCubeFaces(t, base, "sky")
	sb, err := sm.CreateSkybox("sky")
	require.NoError(t, err)
	defer func() { require.NoError(t, sm.DestroySkybox(sb)) }()

	packet, err := skyboxView.OnBuildPacket(&metadata.SkyboxPacketData{Skybox: sb})
	require.NoError(t, err)

	uploads := backend.Stats.InstanceUploads
	draws := backend.Stats.Draws
	require.NoError(t, skyboxView.OnRender(packet, 1, 0))
	require.NoError(t, skyboxView.OnRender(packet, 1, 0))
	require.Equal(t, uploads+1, backend.Stats.InstanceUploads)
	require.Equal(t, draws+2, backend.Stats.Draws)
	require.Equal(t, uint64(1), sb.RenderFrameNumber)
}
