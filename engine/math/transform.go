package math

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
)

// TransformHandle addresses a transform inside a TransformArena.
type TransformHandle uint32

// NoTransform is the absent parent.
const NoTransform TransformHandle = 1<<32 - 1

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	// Parent is an index into the owning arena, NoTransform for roots.
	Parent  TransformHandle
	local   mgl32.Mat4
	isDirty bool
	alive   bool
}

// TransformArena owns transforms and resolves parent chains by index, so destroying
// a parent can never leave a child pointing at freed memory.
type TransformArena struct {
	transforms []Transform
	free       []TransformHandle
}

func NewTransformArena(capacity int) *TransformArena {
	return &TransformArena{
		transforms: make([]Transform, 0, capacity),
	}
}

func (a *TransformArena) Create(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) TransformHandle {
	t := Transform{
		Position: position,
		Rotation: rotation,
		Scale:    scale,
		Parent:   NoTransform,
		isDirty:  true,
		alive:    true,
	}
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.transforms[h] = t
		return h
	}
	a.transforms = append(a.transforms, t)
	return TransformHandle(len(a.transforms) - 1)
}

func (a *TransformArena) CreateIdentity() TransformHandle {
	return a.Create(mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})
}

func (a *TransformArena) CreateFromPosition(position mgl32.Vec3) TransformHandle {
	return a.Create(position, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})
}

// Destroy frees the slot and detaches every child that pointed at it.
func (a *TransformArena) Destroy(h TransformHandle) {
	if !a.valid(h) {
		return
	}
	a.transforms[h] = Transform{Parent: NoTransform}
	for i := range a.transforms {
		if a.transforms[i].alive && a.transforms[i].Parent == h {
			a.transforms[i].Parent = NoTransform
		}
	}
	a.free = append(a.free, h)
}

func (a *TransformArena) valid(h TransformHandle) bool {
	return h != NoTransform && int(h) < len(a.transforms) && a.transforms[h].alive
}

func (a *TransformArena) Get(h TransformHandle) (*Transform, error) {
	if !a.valid(h) {
		return nil, errors.Wrapf(core.ErrNotFound, "transform %d", h)
	}
	return &a.transforms[h], nil
}

// SetParent links child to parent. Cycles are rejected.
func (a *TransformArena) SetParent(child, parent TransformHandle) error {
	if !a.valid(child) {
		return errors.Wrapf(core.ErrNotFound, "transform %d", child)
	}
	if parent != NoTransform {
		if !a.valid(parent) {
			return errors.Wrapf(core.ErrNotFound, "parent transform %d", parent)
		}
		for p := parent; p != NoTransform; p = a.transforms[p].Parent {
			if p == child {
				return errors.Wrapf(core.ErrConsistency, "parenting %d to %d creates a cycle", child, parent)
			}
		}
	}
	a.transforms[child].Parent = parent
	return nil
}

func (a *TransformArena) SetPosition(h TransformHandle, position mgl32.Vec3) {
	if t, err := a.Get(h); err == nil {
		t.Position = position
		t.isDirty = true
	}
}

func (a *TransformArena) Translate(h TransformHandle, translation mgl32.Vec3) {
	if t, err := a.Get(h); err == nil {
		t.Position = t.Position.Add(translation)
		t.isDirty = true
	}
}

func (a *TransformArena) SetRotation(h TransformHandle, rotation mgl32.Quat) {
	if t, err := a.Get(h); err == nil {
		t.Rotation = rotation
		t.isDirty = true
	}
}

func (a *TransformArena) Rotate(h TransformHandle, rotation mgl32.Quat) {
	if t, err := a.Get(h); err == nil {
		t.Rotation = t.Rotation.Mul(rotation)
		t.isDirty = true
	}
}

func (a *TransformArena) SetScale(h TransformHandle, scale mgl32.Vec3) {
	if t, err := a.Get(h); err == nil {
		t.Scale = scale
		t.isDirty = true
	}
}

// Local returns translation * rotation * scale, cached until the transform changes.
func (a *TransformArena) Local(h TransformHandle) mgl32.Mat4 {
	t, err := a.Get(h)
	if err != nil {
		return mgl32.Ident4()
	}
	if t.isDirty {
		tr := mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2])
		sc := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
		t.local = tr.Mul4(t.Rotation.Mat4()).Mul4(sc)
		t.isDirty = false
	}
	return t.local
}

// World composes the local matrix with every ancestor, root first.
func (a *TransformArena) World(h TransformHandle) mgl32.Mat4 {
	world := a.Local(h)
	if !a.valid(h) {
		return world
	}
	for p := a.transforms[h].Parent; p != NoTransform && a.valid(p); p = a.transforms[p].Parent {
		world = a.Local(p).Mul4(world)
	}
	return world
}

func (a *TransformArena) Len() int {
	return len(a.transforms) - len(a.free)
}
