package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/speedr/pkg/math3d"
)

// LoadGLTF reads a .gltf or .glb file. Every triangle primitive of every
// mesh is expanded into one geometry; node transforms are not applied.
// Primitives without normals get smooth normals. The base color and image
// come from the first primitive that has a material.
func LoadGLTF(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	model := &Model{BaseColor: math3d.RGB(1, 1, 1)}
	var out triangles
	materialSet := false
	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				continue
			}
			if err := readPrimitive(doc, prim, &out); err != nil {
				return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
			}
			if !materialSet && prim.Material != nil {
				materialSet = true
				readMaterial(doc, *prim.Material, filepath.Dir(path), model)
			}
		}
	}

	g, err := out.geometry(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	model.Geometry = g
	return model, nil
}

// LoadGLB reads a binary glTF file.
func LoadGLB(path string) (*Model, error) {
	return LoadGLTF(path)
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive, out *triangles) error {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("read uvs: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for _, i := range indices {
		if int(i) >= len(positions) {
			return fmt.Errorf("index %d out of range for %d vertices", i, len(positions))
		}
	}

	var smooth []math3d.Vec3
	if len(normals) < len(positions) {
		smooth = smoothNormals(positions, indices)
	}

	for t := 0; t+2 < len(indices); t += 3 {
		for _, i := range indices[t : t+3] {
			p := positions[i]
			var n math3d.Vec3
			if smooth != nil {
				n = smooth[i]
			} else {
				n = vec3(normals[i])
			}
			var uv math3d.Vec2
			if int(i) < len(uvs) {
				// glTF puts v = 0 at the top of the image.
				uv = math3d.V2(float64(uvs[i][0]), 1-float64(uvs[i][1]))
			}
			out.corner(vec3(p), n, uv)
		}
	}
	return nil
}

func vec3(v [3]float32) math3d.Vec3 {
	return math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
}

// smoothNormals averages the area-weighted face normals around each
// indexed vertex.
func smoothNormals(positions [][3]float32, indices []uint32) []math3d.Vec3 {
	sums := make([]math3d.Vec3, len(positions))
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		pa, pb, pc := vec3(positions[a]), vec3(positions[b]), vec3(positions[c])
		fn := pb.Sub(pa).Cross(pc.Sub(pa))
		sums[a] = sums[a].Add(fn)
		sums[b] = sums[b].Add(fn)
		sums[c] = sums[c].Add(fn)
	}
	for i := range sums {
		sums[i] = sums[i].Normalize()
	}
	return sums
}

func readMaterial(doc *gltf.Document, idx int, dir string, model *Model) {
	if idx < 0 || idx >= len(doc.Materials) {
		return
	}
	pbr := doc.Materials[idx].PBRMetallicRoughness
	if pbr == nil {
		return
	}
	if f := pbr.BaseColorFactor; f != nil {
		model.BaseColor = math3d.RGB(f[0], f[1], f[2])
	}
	if pbr.BaseColorTexture == nil {
		return
	}
	ti := pbr.BaseColorTexture.Index
	if ti < 0 || ti >= len(doc.Textures) || doc.Textures[ti].Source == nil {
		return
	}
	data := imageData(doc, *doc.Textures[ti].Source, dir)
	if data == nil {
		return
	}
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		model.Texture = img
	}
}

// imageData returns the encoded bytes of image i, either from a buffer view
// or from a file next to the document.
func imageData(doc *gltf.Document, i int, dir string) []byte {
	if i < 0 || i >= len(doc.Images) {
		return nil
	}
	img := doc.Images[i]
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		end := bv.ByteOffset + bv.ByteLength
		if end > len(buf.Data) {
			return nil
		}
		return buf.Data[bv.ByteOffset:end]
	}
	if img.URI == "" {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(dir, img.URI))
	if err != nil {
		return nil
	}
	return data
}
