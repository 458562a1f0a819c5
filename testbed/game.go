package testbed

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/renderer/components"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"github.com/spaghettifunk/kiln/engine/systems"
)

const (
	debugFontName = "Ubuntu Mono 21px"
	skyboxName    = "skybox"
	carMeshName   = "falcon"
	sponzaName    = "sponza"

	uiGradientName = "test_ui_gradient"
	uiMaterialName = "test_ui_material"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	WorldCamera *components.Camera

	width  uint32
	height uint32

	skybox  *metadata.Skybox
	meshes  []*metadata.Mesh
	ui      []*metadata.Mesh
	fpsText *metadata.UIText
	// Held so the ui material outlives reloads of the ui mesh.
	uiMaterial *metadata.Material

	elapsed float64
}

func NewTestGame(cfg *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: cfg,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.SystemManager == nil {
		return errors.Wrap(core.ErrInvalidState, "the engine is not yet initialized with all the system managers")
	}
	sm := g.SystemManager
	state := g.state()

	state.WorldCamera = sm.CameraSystem.GetDefault()
	state.WorldCamera.SetPosition(mgl32.Vec3{10.5, 5.0, 9.5})

	// The skybox is optional, the scene renders without it.
	sb, err := sm.CreateSkybox(skyboxName)
	if err != nil {
		core.LogWarn("no skybox: %v", err)
	} else {
		state.skybox = sb
	}

	// Three cubes, each parented to the previous one.
	cubes := []struct {
		size     float32
		name     string
		position mgl32.Vec3
	}{
		{10, "test_cube", mgl32.Vec3{}},
		{5, "test_cube_2", mgl32.Vec3{10, 0, 1}},
		{2, "test_cube_3", mgl32.Vec3{5, 0, 1}},
	}
	for i, c := range cubes {
		cfg := systems.GenerateCubeConfig(c.size, c.size, c.size, 1, 1, c.name, "test_material")
		mesh, err := sm.MeshSystem.CreateFromConfigs(c.name, []*metadata.GeometryConfig{cfg})
		cfg.Dispose()
		if err != nil {
			return err
		}
		sm.MeshSystem.Transforms.SetPosition(mesh.Transform, c.position)
		if i > 0 {
			if err := sm.MeshSystem.Transforms.SetParent(mesh.Transform, state.meshes[i-1].Transform); err != nil {
				return err
			}
		}
		state.meshes = append(state.meshes, mesh)
	}

	floor := systems.GeneratePlaneConfig(40, 40, 4, 4, 4, 4, "test_floor", "test_material")
	floorMesh, err := sm.MeshSystem.CreateFromConfigs("test_floor", []*metadata.GeometryConfig{floor})
	floor.Dispose()
	if err != nil {
		return err
	}
	sm.MeshSystem.Transforms.SetRotation(floorMesh.Transform, mgl32.QuatRotate(mgl32.DegToRad(-90), mgl32.Vec3{1, 0, 0}))
	sm.MeshSystem.Transforms.SetPosition(floorMesh.Transform, mgl32.Vec3{0, -5, 0})
	state.meshes = append(state.meshes, floorMesh)

	// Imported models load in the background and show up once their geometries are uploaded.
	for _, name := range []string{carMeshName, sponzaName} {
		mesh, err := sm.MeshSystem.LoadFromResource(name)
		if err != nil {
			core.LogWarn("unable to queue mesh '%s': %v", name, err)
			continue
		}
		sm.MeshSystem.Transforms.SetPosition(mesh.Transform, mgl32.Vec3{15, 0, 1})
		if name == sponzaName {
			sm.MeshSystem.Transforms.SetScale(mesh.Transform, mgl32.Vec3{0.05, 0.05, 0.05})
		}
		state.meshes = append(state.meshes, mesh)
	}

	if state.uiMaterial, err = createUIMaterial(sm); err != nil {
		return err
	}

	// A 2D quad in the top left corner of the ui.
	quad := &metadata.GeometryConfig{
		VertexSize:   math.Vertex2DSize,
		Vertices2D:   uiQuad(128, 32),
		IndexSize:    math.IndexSize,
		Indices:      []uint32{2, 1, 0, 3, 0, 1},
		Name:         "test_ui_geometry",
		MaterialName: uiMaterialName,
	}
	uiMesh, err := sm.MeshSystem.CreateFromConfigs("test_ui", []*metadata.GeometryConfig{quad})
	if err != nil {
		return err
	}
	state.ui = append(state.ui, uiMesh)

	if err := sm.FontSystem.LoadBitmapFont(debugFontName); err != nil {
		core.LogWarn("debug text disabled: %v", err)
	} else if state.fpsText, err = sm.FontSystem.CreateText(debugFontName, "FPS: --", mgl32.Vec3{20, 20, 0}, mgl32.Vec4{1, 1, 1, 1}); err != nil {
		core.LogWarn("debug text disabled: %v", err)
	}
	return nil
}

// gradientPixels returns RGBA8 pixels fading from blue on the left to red on the right.
func gradientPixels(width, height int) []uint8 {
	pixels := make([]uint8, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			red := uint8(x * 255 / (width - 1))
			i := (y*width + x) * 4
			pixels[i] = red
			pixels[i+1] = 64
			pixels[i+2] = 255 - red
			pixels[i+3] = 255
		}
	}
	return pixels
}

// createUIMaterial draws a gradient into a writeable texture and builds the ui quad
// material on top of it.
func createUIMaterial(sm *systems.SystemManager) (*metadata.Material, error) {
	const width, height = 64, 8
	gradient, err := sm.TextureSystem.AcquireWriteable(uiGradientName, width, height, 4, false)
	if err != nil {
		return nil, err
	}
	if err := sm.TextureSystem.WriteData(gradient, 0, gradientPixels(width, height)); err != nil {
		_ = sm.TextureSystem.Release(uiGradientName)
		return nil, err
	}
	m, err := sm.MaterialSystem.AcquireFromConfig(&metadata.MaterialConfig{
		Name:           uiMaterialName,
		ShaderName:     metadata.BUILTIN_SHADER_NAME_UI,
		DiffuseColour:  mgl32.Vec4{1, 1, 1, 1},
		DiffuseMapName: uiGradientName,
	})
	if err != nil {
		_ = sm.TextureSystem.Release(uiGradientName)
		return nil, err
	}
	return m, nil
}

func uiQuad(w, h float32) []math.Vertex2D {
	return []math.Vertex2D{
		{Position: mgl32.Vec2{0, 0}, Texcoord: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec2{w, h}, Texcoord: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec2{0, h}, Texcoord: mgl32.Vec2{0, 1}},
		{Position: mgl32.Vec2{w, 0}, Texcoord: mgl32.Vec2{1, 0}},
	}
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	state.elapsed += deltaTime

	// Slow orbit of the camera.
	state.WorldCamera.Yaw(float32(0.1 * deltaTime))

	rotation := mgl32.QuatRotate(float32(0.5*deltaTime), mgl32.Vec3{0, 1, 0})
	for i := 0; i < 3 && i < len(state.meshes); i++ {
		g.SystemManager.MeshSystem.Transforms.Rotate(state.meshes[i].Transform, rotation)
	}

	if state.fpsText != nil {
		pos := state.WorldCamera.GetPosition()
		content := fmt.Sprintf("t=%6.2fs Pos=[%7.3f %7.3f %7.3f]", state.elapsed, pos.X(), pos.Y(), pos.Z())
		if err := g.SystemManager.FontSystem.SetText(state.fpsText, content); err != nil {
			return err
		}
	}
	return nil
}

/**
 * @brief Builds the skybox, world and ui packets of the frame through the render
 * view system. Views that are not configured are skipped.
 */
func (g *TestGame) Render(packet *metadata.RenderPacket, deltaTime float64) error {
	state := g.state()
	rvs := g.SystemManager.RenderViewSystem
	transforms := g.SystemManager.MeshSystem.Transforms

	inputs := []struct {
		view string
		data interface{}
	}{
		{"skybox", &metadata.SkyboxPacketData{Skybox: state.skybox}},
		{"world", &metadata.MeshPacketData{Meshes: state.meshes, Transforms: transforms}},
		{"ui", &metadata.UIPacketData{
			MeshData: metadata.MeshPacketData{Meshes: state.ui, Transforms: transforms},
			Texts:    g.texts(),
		}},
	}
	for _, in := range inputs {
		view, err := rvs.Get(in.view)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				continue
			}
			return err
		}
		viewPacket, err := rvs.BuildPacket(view, in.data)
		if err != nil {
			core.LogError("failed to build packet for view '%s'", in.view)
			return err
		}
		packet.Views = append(packet.Views, viewPacket)
	}
	return nil
}

func (g *TestGame) texts() []*metadata.UIText {
	if t := g.state().fpsText; t != nil {
		return []*metadata.UIText{t}
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.state()
	state.width = width
	state.height = height
	if state.fpsText != nil && g.SystemManager != nil {
		g.SystemManager.FontSystem.SetPosition(state.fpsText, mgl32.Vec3{20, float32(height) - 75, 0})
	}
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.state()
	if g.SystemManager == nil {
		return nil
	}
	if state.fpsText != nil {
		g.SystemManager.FontSystem.DestroyText(state.fpsText)
		state.fpsText = nil
	}
	for _, m := range append(state.meshes, state.ui...) {
		g.SystemManager.MeshSystem.Unload(m)
	}
	state.meshes, state.ui = nil, nil
	var err error
	if state.uiMaterial != nil {
		err = errors.CombineErrors(err, g.SystemManager.MaterialSystem.Release(uiMaterialName))
		err = errors.CombineErrors(err, g.SystemManager.TextureSystem.Release(uiGradientName))
		state.uiMaterial = nil
	}
	err = errors.CombineErrors(err, g.SystemManager.DestroySkybox(state.skybox))
	state.skybox = nil
	return err
}
