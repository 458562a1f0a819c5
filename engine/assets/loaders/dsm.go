package loaders

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

const (
	DSMVersion uint16 = 0x0001
	// maxDSMCount bounds any count read from a cache so a corrupt file cannot
	// trigger a huge allocation.
	maxDSMCount = 1 << 26
)

// WriteDSM serializes geometries in the binary mesh cache format. All values are
// little-endian and strings carry a trailing NUL that is counted in their length.
func WriteDSM(w io.Writer, name string, geometries []*metadata.GeometryConfig) error {
	bw := bufio.NewWriter(w)
	le := binary.LittleEndian

	put := func(v any) error {
		return binary.Write(bw, le, v)
	}
	putString := func(s string) error {
		if err := put(uint32(len(s) + 1)); err != nil {
			return err
		}
		if _, err := bw.WriteString(s); err != nil {
			return err
		}
		return bw.WriteByte(0)
	}

	if err := put(DSMVersion); err != nil {
		return err
	}
	if err := putString(name); err != nil {
		return err
	}
	if err := put(uint32(len(geometries))); err != nil {
		return err
	}
	for i, g := range geometries {
		if g.Vertices2D != nil {
			return errors.Wrapf(core.ErrConsistency, "geometry %d of '%s' is 2D and cannot be cached", i, name)
		}
		steps := []func() error{
			func() error { return put(uint32(math.Vertex3DSize)) },
			func() error { return put(uint32(len(g.Vertices))) },
			func() error { return put(g.Vertices) },
			func() error { return put(uint32(math.IndexSize)) },
			func() error { return put(uint32(len(g.Indices))) },
			func() error { return put(g.Indices) },
			func() error { return putString(g.Name) },
			func() error { return putString(g.MaterialName) },
			func() error { return put(g.Center) },
			func() error { return put(g.MinExtents) },
			func() error { return put(g.MaxExtents) },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ReadDSM reads what WriteDSM wrote.
func ReadDSM(r io.Reader) (string, []*metadata.GeometryConfig, error) {
	br := bufio.NewReader(r)
	le := binary.LittleEndian
	fail := func(what string, err error) error {
		return errors.Wrapf(core.ErrLoadFailure, "dsm: reading %s: %v", what, err)
	}

	get := func(v any) error {
		return binary.Read(br, le, v)
	}
	getCount := func(what string) (uint32, error) {
		var n uint32
		if err := get(&n); err != nil {
			return 0, fail(what, err)
		}
		if n > maxDSMCount {
			return 0, errors.Wrapf(core.ErrLoadFailure, "dsm: %s %d is out of range", what, n)
		}
		return n, nil
	}
	getString := func(what string) (string, error) {
		n, err := getCount(what + " length")
		if err != nil {
			return "", err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(br, buf); err != nil {
			return "", fail(what, err)
		}
		return string(bytes.TrimRight(buf, "\x00")), nil
	}

	var version uint16
	if err := get(&version); err != nil {
		return "", nil, fail("version", err)
	}
	if version != DSMVersion {
		return "", nil, errors.Wrapf(core.ErrLoadFailure, "dsm: unsupported version 0x%04x", version)
	}
	name, err := getString("name")
	if err != nil {
		return "", nil, err
	}
	count, err := getCount("geometry count")
	if err != nil {
		return "", nil, err
	}

	geometries := make([]*metadata.GeometryConfig, 0, count)
	for i := uint32(0); i < count; i++ {
		g := &metadata.GeometryConfig{}

		stride, err := getCount("vertex stride")
		if err != nil {
			return "", nil, err
		}
		if stride != math.Vertex3DSize {
			return "", nil, errors.Wrapf(core.ErrLoadFailure, "dsm: geometry %d has vertex stride %d, expected %d", i, stride, math.Vertex3DSize)
		}
		vertexCount, err := getCount("vertex count")
		if err != nil {
			return "", nil, err
		}
		g.VertexSize = stride
		g.Vertices = make([]math.Vertex3D, vertexCount)
		if err := get(g.Vertices); err != nil {
			return "", nil, fail("vertices", err)
		}

		indexStride, err := getCount("index stride")
		if err != nil {
			return "", nil, err
		}
		if indexStride != math.IndexSize {
			return "", nil, errors.Wrapf(core.ErrLoadFailure, "dsm: geometry %d has index stride %d, expected %d", i, indexStride, math.IndexSize)
		}
		indexCount, err := getCount("index count")
		if err != nil {
			return "", nil, err
		}
		g.IndexSize = indexStride
		g.Indices = make([]uint32, indexCount)
		if err := get(g.Indices); err != nil {
			return "", nil, fail("indices", err)
		}

		if g.Name, err = getString("geometry name"); err != nil {
			return "", nil, err
		}
		if g.MaterialName, err = getString("material name"); err != nil {
			return "", nil, err
		}
		for _, v := range []*mgl32.Vec3{&g.Center, &g.MinExtents, &g.MaxExtents} {
			if err := get(v); err != nil {
				return "", nil, fail("extents", err)
			}
		}
		geometries = append(geometries, g)
	}
	return name, geometries, nil
}

// WriteDSMFile writes the cache next to a temporary file and renames it into place,
// so readers never observe a partial cache.
func WriteDSMFile(path, name string, geometries []*metadata.GeometryConfig) error {
	if _, err := os.Stat(path); err == nil {
		core.LogInfo("file '%s' already exists and will be overwritten", path)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(core.ErrLoadFailure, "creating temp file in %s: %v", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteDSM(tmp, name, geometries); err != nil {
		tmp.Close()
		return errors.Wrapf(core.ErrLoadFailure, "writing %s: %v", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(core.ErrLoadFailure, "closing %s: %v", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(core.ErrLoadFailure, "renaming %s: %v", tmpName, err)
	}
	return nil
}

func ReadDSMFile(path string) (string, []*metadata.GeometryConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, errors.Wrapf(core.ErrLoadFailure, "opening %s: %v", path, err)
	}
	defer f.Close()
	return ReadDSM(f)
}
