// prism - Terminal 3D Model Viewer
// View OBJ and glTF/GLB files in your terminal, rendered entirely in software.
//
// Controls:
//
//	Mouse drag  - Rotate model (yaw/pitch)
//	Scroll      - Zoom in/out
//	W/S         - Pitch up/down
//	A/D         - Yaw left/right
//	Q/E         - Roll left/right
//	Space       - Apply random impulse
//	R           - Reset rotation
//	T           - Toggle texture on/off
//	X           - Toggle wireframe mode
//	U           - Toggle lighting (Blinn-Phong vs unlit)
//	L           - Light positioning mode (move mouse, click to set, Esc to cancel)
//	?           - Toggle HUD overlay
//	+/-         - Adjust zoom
//	Esc         - Quit (or cancel light mode)
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/prism3d/prism/pkg/math3d"
	"github.com/prism3d/prism/pkg/models"
	"github.com/prism3d/prism/pkg/render"
)

var (
	texturePath = flag.String("texture", "", "Path to texture image (PNG/JPG)")
	targetFPS   = flag.Int("fps", 60, "Target FPS")
	bgColor     = flag.String("bg", "16,18,36", "Background color (R,G,B)")
	backend     = flag.String("backend", "direct", "Pipeline backend: direct or staged")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "prism - Terminal 3D Model Viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: prism [options] <model.obj|model.glb|model.gltf>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Rotate model\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  Q/E         - Roll left/right\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  T           - Toggle texture\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  U           - Toggle lighting\n")
		fmt.Fprintf(os.Stderr, "  L           - Position light (mouse to aim, click to set)\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRenderer builds the selected pipeline backend.
func newRenderer(kind string, width, height int) (render.Renderer, error) {
	switch kind {
	case "direct":
		return render.NewDirect(width, height)
	case "staged":
		return render.NewStaged(width, height)
	default:
		return nil, fmt.Errorf("unknown backend %q (use direct or staged)", kind)
	}
}

// RotationAxis tracks position and velocity for one rotation axis with
// spring-damped velocity decay.
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

// NewRotationAxis creates an axis with a harmonica spring for smooth decay.
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// RotationState holds model rotation with spring physics per axis.
type RotationState struct {
	Pitch, Yaw, Roll RotationAxis
	fps              int
}

func NewRotationState(fps int) *RotationState {
	return &RotationState{
		Pitch: NewRotationAxis(fps),
		Yaw:   NewRotationAxis(fps),
		Roll:  NewRotationAxis(fps),
		fps:   fps,
	}
}

func (r *RotationState) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
	r.Roll.Update()
}

func (r *RotationState) ApplyImpulse(pitch, yaw, roll float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
	r.Roll.Velocity += roll
}

func (r *RotationState) Reset() {
	r.Pitch = NewRotationAxis(r.fps)
	r.Yaw = NewRotationAxis(r.fps)
	r.Roll = NewRotationAxis(r.fps)
}

// ViewState holds UI state not owned by the render library.
type ViewState struct {
	TextureEnabled bool
	Wireframe      bool
	Lit            bool        // Blinn-Phong when true, unlit otherwise
	LightMode      bool        // Light positioning mode active
	LightDir       math3d.Vec3 // Direction the key light travels
	PendingLight   math3d.Vec3 // Candidate direction while positioning
	ShowHUD        bool
}

func NewViewState() *ViewState {
	return &ViewState{
		TextureEnabled: true,
		Lit:            true,
		LightDir:       math3d.V3(-0.5, -1, -0.3).Normalize(),
	}
}

// ScreenToLightDir maps a screen position onto a hemisphere above the model
// and returns the direction light should travel from there.
func (v *ViewState) ScreenToLightDir(screenX, screenY, width, height int) math3d.Vec3 {
	nx := (float64(screenX)/float64(width))*2 - 1
	ny := (float64(screenY)/float64(height))*2 - 1

	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}
	nz := math.Sqrt(1 - lenSq)

	// The hemisphere point is where the light sits; it shines at the origin.
	return math3d.V3(nx, -ny, nz).Negate().Normalize()
}

// HUD renders an overlay with model info and mode status.
type HUD struct {
	filename  string
	polyCount int
	backend   string
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD(filename string, polyCount int, backend string) *HUD {
	return &HUD{
		filename:  filename,
		polyCount: polyCount,
		backend:   backend,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame).
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD overlay directly with ANSI escapes.
func (h *HUD) Render(width, height int, view *ViewState) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows so toggling off works.
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if view.LightMode {
		msg := fmt.Sprintf("%s%s%s ◉ LIGHT MODE - Move mouse to position, click to set, Esc to cancel %s",
			bgBlack, bold, fgYellow, reset)
		col := max((width-60)/2, 1)
		fmt.Print(moveTo(height, col) + msg)
		return
	}

	if !view.ShowHUD {
		return
	}

	fmt.Print(fmt.Sprintf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset))

	title := fmt.Sprintf("%s%s%s %s (%s) %s", bold, bgBlack, fgWhite, h.filename, h.backend, reset)
	titleCol := max((width-len(h.filename)-len(h.backend)-4)/2, 1)
	fmt.Print(moveTo(1, titleCol) + title)

	polyStr := fmt.Sprintf("%s%s%s %d polys %s", bgBlack, fgCyan, bold, h.polyCount, reset)
	fmt.Print(moveTo(1, max(width-12, 1)) + polyStr)

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	modeStr := fmt.Sprintf("%s%s %s Texture  %s Wireframe  %s Lit %s",
		bgBlack, fgWhite,
		check(view.TextureEnabled && !view.Wireframe),
		check(view.Wireframe),
		check(view.Lit), reset)
	fmt.Print(moveTo(height, 1) + modeStr)

	hint := fmt.Sprintf("%s%s%s L: position light %s", bgBlack, dim, fgYellow, reset)
	fmt.Print(moveTo(height, max(width-18, 1)) + hint)
}

// loadMesh loads an OBJ or glTF model, returning the mesh and any embedded
// texture image.
func loadMesh(path string) (*models.Mesh, image.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return models.LoadGLTFWithTexture(path)
	case ".obj":
		mesh, err := models.LoadOBJ(path)
		return mesh, nil, err
	default:
		return nil, nil, fmt.Errorf("unsupported format: %s (use .obj, .gltf or .glb)", filepath.Ext(path))
	}
}

// meshBuffers converts a mesh into the vertex/index buffers the pipeline
// consumes.
func meshBuffers(mesh *models.Mesh) ([]render.Vertex, []uint32) {
	verts := make([]render.Vertex, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		verts[i] = render.Vertex{
			Position: v.Position,
			Normal:   v.Normal,
			UV:       v.UV,
			Color:    v.Color,
		}
	}
	return verts, mesh.Indices()
}

// normalizeTransform centers the mesh at the origin and scales its longest
// dimension to 2 units, so every model fills the view the same way.
func normalizeTransform(mesh *models.Mesh) math3d.Mat4 {
	size := mesh.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim <= 0 {
		return math3d.Identity()
	}
	scale := 2.0 / maxDim
	return math3d.ScaleUniform(scale).Mul(math3d.Translate(mesh.Center().Negate()))
}

func run(modelPath string) error {
	var bgR, bgG, bgB uint8 = 16, 18, 36
	fmt.Sscanf(*bgColor, "%d,%d,%d", &bgR, &bgG, &bgB)

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1003h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h")

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()

	renderer, err := newRenderer(*backend, fbWidth, fbHeight)
	if err != nil {
		return err
	}

	camera := render.NewCamera()
	camera.SetAspectRatio(float64(fbWidth) / float64(fbHeight))
	camera.SetFOV(math.Pi / 3)
	camera.SetClipPlanes(0.1, 100)
	camera.SetPosition(math3d.V3(0, 0, 5))
	camera.LookAt(math3d.Zero3())

	var texture *render.Texture
	if *texturePath != "" {
		texture, err = render.LoadTexture(*texturePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load texture: %v\n", err)
		}
	}

	mesh, embedded, err := loadMesh(modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	if texture == nil && embedded != nil {
		texture = render.TextureFromImage(embedded)
	}
	if texture == nil {
		texture = render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))
	}

	// Embedded glTF textures can be huge; the terminal framebuffer cannot
	// show that detail. Cap them at 4x the framebuffer resolution.
	texture = texture.FitWithin(fbWidth*4, fbHeight*4)

	textures := render.NewTextureStorage()
	textureID := textures.Add("model", texture)

	verts, indices := meshBuffers(mesh)
	baseTransform := normalizeTransform(mesh)
	meshBounds := render.NewAABB(mesh.BoundsMin, mesh.BoundsMax)

	// Loaded meshes use CCW front faces (glTF convention; OBJ in practice).
	renderer.SetFrontFace(render.FrontCCW)
	renderer.SetFaceCull(render.CullBack)
	renderer.Uniforms().Textures = textures
	renderer.Uniforms().TextureID = textureID

	hud := NewHUD(filepath.Base(modelPath), mesh.TriangleCount(), *backend)
	rotation := NewRotationState(*targetFPS)
	view := NewViewState()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	inputTorque := struct{ pitch, yaw, roll float64 }{}
	const torqueStrength = 3.0

	var mouseDown bool
	var lastMouseX, lastMouseY int
	cameraZ := 5.0

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				termRenderer = render.NewTerminalRenderer(term, width, height)
				fbWidth, fbHeight = termRenderer.FramebufferSize()
				if nr, err := newRenderer(*backend, fbWidth, fbHeight); err == nil {
					nr.SetFrontFace(render.FrontCCW)
					nr.SetFaceCull(render.CullBack)
					nr.Uniforms().Textures = textures
					nr.Uniforms().TextureID = textureID
					renderer = nr
				}
				camera.SetAspectRatio(float64(fbWidth) / float64(fbHeight))

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"):
					if view.LightMode {
						view.LightMode = false
					} else {
						cancel()
						return
					}
				case ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("q"):
					inputTorque.roll = -torqueStrength
				case ev.MatchString("r"):
					rotation.Reset()
					cameraZ = 5.0
					camera.SetPosition(math3d.V3(0, 0, cameraZ))
				case ev.MatchString("w", "up"):
					inputTorque.pitch = -torqueStrength
				case ev.MatchString("s", "down"):
					inputTorque.pitch = torqueStrength
				case ev.MatchString("a", "left"):
					inputTorque.yaw = -torqueStrength
				case ev.MatchString("d", "right"):
					inputTorque.yaw = torqueStrength
				case ev.MatchString("e"):
					inputTorque.roll = torqueStrength
				case ev.MatchString("space"):
					rotation.ApplyImpulse(
						(rand.Float64()-0.5)*1.5,
						(rand.Float64()-0.5)*1.5,
						(rand.Float64()-0.5)*1.5,
					)
				case ev.MatchString("+", "="):
					cameraZ = math.Max(1, cameraZ-0.5)
					camera.SetPosition(math3d.V3(0, 0, cameraZ))
				case ev.MatchString("-", "_"):
					cameraZ = math.Min(20, cameraZ+0.5)
					camera.SetPosition(math3d.V3(0, 0, cameraZ))
				case ev.MatchString("t"):
					view.TextureEnabled = !view.TextureEnabled
				case ev.MatchString("x"):
					view.Wireframe = !view.Wireframe
				case ev.MatchString("u"):
					view.Lit = !view.Lit
				case ev.MatchString("l"):
					view.LightMode = true
					view.PendingLight = view.LightDir
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					view.ShowHUD = !view.ShowHUD
				}

			case uv.KeyReleaseEvent:
				switch {
				case ev.MatchString("w"), ev.MatchString("up"), ev.MatchString("s"), ev.MatchString("down"):
					inputTorque.pitch = 0
				case ev.MatchString("a"), ev.MatchString("left"), ev.MatchString("d"), ev.MatchString("right"):
					inputTorque.yaw = 0
				case ev.MatchString("q"), ev.MatchString("e"):
					inputTorque.roll = 0
				}

			case uv.MouseClickEvent:
				if view.LightMode {
					view.LightDir = view.PendingLight
					view.LightMode = false
				} else {
					mouseDown = true
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseReleaseEvent:
				if !view.LightMode {
					mouseDown = false
				}

			case uv.MouseMotionEvent:
				if view.LightMode {
					view.PendingLight = view.ScreenToLightDir(ev.X, ev.Y, width, height)
				} else if mouseDown {
					dx := ev.X - lastMouseX
					dy := ev.Y - lastMouseY
					rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					cameraZ = math.Max(1, cameraZ-0.5)
				case uv.MouseWheelDown:
					cameraZ = math.Min(20, cameraZ+0.5)
				}
				camera.SetPosition(math3d.V3(0, 0, cameraZ))
			}
		}
	}()

	targetDuration := time.Second / time.Duration(*targetFPS)
	lastFrame := time.Now()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now
		if dt > 0.1 {
			dt = 0.1
		}

		// Apply input torque and decay it (key release events unreliable)
		rotation.ApplyImpulse(inputTorque.pitch*dt, inputTorque.yaw*dt, inputTorque.roll*dt)
		inputTorque.pitch *= 0.9
		inputTorque.yaw *= 0.9
		inputTorque.roll *= 0.9

		rotation.Update()

		model := math3d.RotateX(rotation.Pitch.Position).
			Mul(math3d.RotateY(rotation.Yaw.Position)).
			Mul(math3d.RotateZ(rotation.Roll.Position)).
			Mul(baseTransform)

		lightDir := view.LightDir
		if view.LightMode {
			lightDir = view.PendingLight
		}

		// Frame state
		u := renderer.Uniforms()
		u.Model = model
		u.View = camera.ViewMatrix()
		u.Projection = camera.ProjectionMatrix()
		u.CameraPos = camera.Position
		u.Time += dt
		u.Lights = []render.Light{
			render.NewDirectionalLight(lightDir, math3d.V4(1, 1, 1, 1), 1.0),
			render.NewPointLight(math3d.V3(3, 2, 4), math3d.V4(0.6, 0.7, 1, 1), 0.6, render.DefaultAttenuation()),
		}

		if view.Lit {
			renderer.SetProgram(render.BlinnPhongProgram{})
		} else {
			renderer.SetProgram(render.UnlitProgram{})
		}

		switch {
		case view.Wireframe:
			renderer.SetRenderMode(render.ModeWireframe)
		case view.TextureEnabled:
			renderer.SetRenderMode(render.ModeTextured)
		default:
			renderer.SetRenderMode(render.ModeFill)
		}

		renderer.Clear(render.RGB(bgR, bgG, bgB))

		// Whole-mesh cull: skip the draw entirely when the transformed
		// bounding box falls outside the view frustum.
		if camera.Frustum().IntersectAABB(meshBounds.Transform(model)) {
			if err := renderer.DrawIndexed(verts, indices); err != nil {
				cleanup()
				return fmt.Errorf("draw: %w", err)
			}
		}

		termRenderer.Render(renderer.Target())
		if err := termRenderer.Flush(); err != nil {
			cleanup()
			return fmt.Errorf("flush: %w", err)
		}

		hud.UpdateFPS()
		hud.Render(width, height, view)

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
