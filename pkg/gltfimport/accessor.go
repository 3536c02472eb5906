package gltfimport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// errSignedIndices marks an index accessor with a signed component type.
// Unlike ErrMalformedAccessor it is recoverable: the caller drops the
// index stream instead of aborting the import.
var errSignedIndices = errors.New("gltfimport: signed index component type")

// componentSize returns the byte width of a single component.
func componentSize(c gltf.ComponentType) int {
	switch c {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		return 4
	}
	return 0
}

// componentCount returns the number of components per element.
func componentCount(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4, gltf.AccessorMat2:
		return 4
	case gltf.AccessorMat3:
		return 9
	case gltf.AccessorMat4:
		return 16
	}
	return 0
}

// accessorView is a bounds-checked window over the buffer bytes backing
// an accessor, positioned at its first element.
type accessorView struct {
	data       []byte
	stride     int
	elemSize   int
	comp       gltf.ComponentType
	count      int
	normalized bool
}

// resolveAccessor validates acc against its buffer view and buffer and
// returns a view over the backing bytes. The accessor type must match
// want exactly.
func resolveAccessor(doc *gltf.Document, acc *gltf.Accessor, want gltf.AccessorType) (*accessorView, error) {
	if acc == nil {
		return nil, fmt.Errorf("%w: missing accessor", ErrMalformedAccessor)
	}
	if acc.Type != want {
		return nil, fmt.Errorf("%w: expected %v accessor, got %v", ErrMalformedAccessor, want, acc.Type)
	}
	if acc.BufferView == nil {
		return nil, fmt.Errorf("%w: accessor has no buffer view", ErrMalformedAccessor)
	}
	bvIdx := *acc.BufferView
	if bvIdx < 0 || bvIdx >= len(doc.BufferViews) {
		return nil, fmt.Errorf("%w: buffer view %d out of range", ErrMalformedAccessor, bvIdx)
	}
	bv := doc.BufferViews[bvIdx]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("%w: buffer %d out of range", ErrMalformedAccessor, bv.Buffer)
	}
	buf := doc.Buffers[bv.Buffer]
	if buf.Data == nil {
		return nil, fmt.Errorf("%w: buffer %d has no data", ErrMalformedAccessor, bv.Buffer)
	}

	elem := componentSize(acc.ComponentType) * componentCount(acc.Type)
	if elem == 0 {
		return nil, fmt.Errorf("%w: unknown component type %v", ErrMalformedAccessor, acc.ComponentType)
	}
	stride := bv.ByteStride
	if stride == 0 {
		stride = elem
	}
	start := bv.ByteOffset + acc.ByteOffset
	if acc.Count < 0 || start < 0 {
		return nil, fmt.Errorf("%w: negative accessor extent", ErrMalformedAccessor)
	}
	if acc.Count > 0 {
		end := start + (acc.Count-1)*stride + elem
		if end > len(buf.Data) {
			return nil, fmt.Errorf("%w: accessor extent %d exceeds buffer length %d", ErrMalformedAccessor, end, len(buf.Data))
		}
	}

	return &accessorView{
		data:       buf.Data[start:],
		stride:     stride,
		elemSize:   elem,
		comp:       acc.ComponentType,
		count:      acc.Count,
		normalized: acc.Normalized,
	}, nil
}

// floatConv returns a decoder from raw component bytes to float32. For
// normalized accessors the integer component types map onto [0,1] or
// [-1,1] per the glTF normalization rules; without the flag they convert
// by plain cast.
func (v *accessorView) floatConv() (func([]byte) float32, error) {
	switch v.comp {
	case gltf.ComponentFloat:
		return func(b []byte) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(b))
		}, nil
	case gltf.ComponentUbyte:
		if v.normalized {
			return func(b []byte) float32 { return float32(b[0]) / 255 }, nil
		}
		return func(b []byte) float32 { return float32(b[0]) }, nil
	case gltf.ComponentByte:
		if v.normalized {
			return func(b []byte) float32 {
				return max(float32(int8(b[0]))/127, -1)
			}, nil
		}
		return func(b []byte) float32 { return float32(int8(b[0])) }, nil
	case gltf.ComponentUshort:
		if v.normalized {
			return func(b []byte) float32 {
				return float32(binary.LittleEndian.Uint16(b)) / 65535
			}, nil
		}
		return func(b []byte) float32 {
			return float32(binary.LittleEndian.Uint16(b))
		}, nil
	case gltf.ComponentShort:
		if v.normalized {
			return func(b []byte) float32 {
				return max(float32(int16(binary.LittleEndian.Uint16(b)))/32767, -1)
			}, nil
		}
		return func(b []byte) float32 {
			return float32(int16(binary.LittleEndian.Uint16(b)))
		}, nil
	}
	return nil, fmt.Errorf("%w: component type %v where float data was expected", ErrMalformedAccessor, v.comp)
}

// extractFloatElements decodes all elements of acc as flat float32
// components. Tightly packed float32 data takes a straight block read.
func extractFloatElements(doc *gltf.Document, acc *gltf.Accessor, want gltf.AccessorType) ([]float32, error) {
	v, err := resolveAccessor(doc, acc, want)
	if err != nil {
		return nil, err
	}
	n := componentCount(want)
	out := make([]float32, v.count*n)

	if v.comp == gltf.ComponentFloat && v.stride == v.elemSize {
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(v.data[i*4:]))
		}
		return out, nil
	}

	conv, err := v.floatConv()
	if err != nil {
		return nil, err
	}
	cs := componentSize(v.comp)
	for i := 0; i < v.count; i++ {
		base := i * v.stride
		for c := 0; c < n; c++ {
			out[i*n+c] = conv(v.data[base+c*cs:])
		}
	}
	return out, nil
}

// extractFloats decodes a SCALAR accessor into a float slice.
func extractFloats(doc *gltf.Document, acc *gltf.Accessor) ([]float32, error) {
	return extractFloatElements(doc, acc, gltf.AccessorScalar)
}

// extractVec2 decodes a VEC2 accessor.
func extractVec2(doc *gltf.Document, acc *gltf.Accessor) ([]mgl32.Vec2, error) {
	fl, err := extractFloatElements(doc, acc, gltf.AccessorVec2)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec2, len(fl)/2)
	for i := range out {
		out[i] = mgl32.Vec2{fl[i*2], fl[i*2+1]}
	}
	return out, nil
}

// extractVec3 decodes a VEC3 accessor.
func extractVec3(doc *gltf.Document, acc *gltf.Accessor) ([]mgl32.Vec3, error) {
	fl, err := extractFloatElements(doc, acc, gltf.AccessorVec3)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec3, len(fl)/3)
	for i := range out {
		out[i] = mgl32.Vec3{fl[i*3], fl[i*3+1], fl[i*3+2]}
	}
	return out, nil
}

// extractVec4 decodes a VEC4 accessor.
func extractVec4(doc *gltf.Document, acc *gltf.Accessor) ([]mgl32.Vec4, error) {
	fl, err := extractFloatElements(doc, acc, gltf.AccessorVec4)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec4, len(fl)/4)
	for i := range out {
		out[i] = mgl32.Vec4{fl[i*4], fl[i*4+1], fl[i*4+2], fl[i*4+3]}
	}
	return out, nil
}

// extractColors decodes a color attribute, which may be VEC3 or VEC4.
// Three-component colors get an opaque alpha.
func extractColors(doc *gltf.Document, acc *gltf.Accessor) ([]mgl32.Vec4, error) {
	if acc != nil && acc.Type == gltf.AccessorVec3 {
		v3, err := extractVec3(doc, acc)
		if err != nil {
			return nil, err
		}
		out := make([]mgl32.Vec4, len(v3))
		for i, c := range v3 {
			out[i] = mgl32.Vec4{c[0], c[1], c[2], 1}
		}
		return out, nil
	}
	return extractVec4(doc, acc)
}

// extractTexCoords decodes a texture-coordinate attribute, which may be
// VEC2 or VEC3, into 3-component values plus the source component count.
func extractTexCoords(doc *gltf.Document, acc *gltf.Accessor) ([]mgl32.Vec3, int, error) {
	if acc != nil && acc.Type == gltf.AccessorVec3 {
		uvs, err := extractVec3(doc, acc)
		return uvs, 3, err
	}
	v2, err := extractVec2(doc, acc)
	if err != nil {
		return nil, 0, err
	}
	out := make([]mgl32.Vec3, len(v2))
	for i, uv := range v2 {
		out[i] = mgl32.Vec3{uv[0], uv[1], 0}
	}
	return out, 2, nil
}

// extractMat4 decodes a MAT4 accessor of float32 matrices. glTF stores
// matrices column-major, matching mgl32, so components copy through.
func extractMat4(doc *gltf.Document, acc *gltf.Accessor) ([]mgl32.Mat4, error) {
	if acc != nil && acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("%w: matrix accessor component type %v", ErrMalformedAccessor, acc.ComponentType)
	}
	fl, err := extractFloatElements(doc, acc, gltf.AccessorMat4)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Mat4, len(fl)/16)
	for i := range out {
		copy(out[i][:], fl[i*16:(i+1)*16])
	}
	return out, nil
}

// extractJoints decodes a JOINTS_n attribute as 4-tuples, widened to
// uint16. The component width is chosen by element size: one-byte
// components read as u8, two-byte unsigned components as u16; other
// component types are rejected.
func extractJoints(doc *gltf.Document, acc *gltf.Accessor) ([][4]uint16, error) {
	v, err := resolveAccessor(doc, acc, gltf.AccessorVec4)
	if err != nil {
		return nil, err
	}
	out := make([][4]uint16, v.count)
	switch v.comp {
	case gltf.ComponentUbyte:
		for i := range out {
			base := i * v.stride
			for j := 0; j < 4; j++ {
				out[i][j] = uint16(v.data[base+j])
			}
		}
	case gltf.ComponentUshort:
		for i := range out {
			base := i * v.stride
			for j := 0; j < 4; j++ {
				out[i][j] = binary.LittleEndian.Uint16(v.data[base+j*2:])
			}
		}
	default:
		return nil, fmt.Errorf("%w: joint accessor component type %v", ErrMalformedAccessor, v.comp)
	}
	return out, nil
}

// indexReader returns a typed indexer over a SCALAR index accessor: each
// call yields element i widened to uint32 regardless of the underlying
// u8/u16/u32 storage. Signed component types yield errSignedIndices;
// any other component type is ErrMalformedAccessor.
func indexReader(doc *gltf.Document, acc *gltf.Accessor) (func(int) uint32, int, error) {
	v, err := resolveAccessor(doc, acc, gltf.AccessorScalar)
	if err != nil {
		return nil, 0, err
	}
	switch v.comp {
	case gltf.ComponentUbyte:
		return func(i int) uint32 { return uint32(v.data[i*v.stride]) }, v.count, nil
	case gltf.ComponentUshort:
		return func(i int) uint32 {
			return uint32(binary.LittleEndian.Uint16(v.data[i*v.stride:]))
		}, v.count, nil
	case gltf.ComponentUint:
		return func(i int) uint32 {
			return binary.LittleEndian.Uint32(v.data[i*v.stride:])
		}, v.count, nil
	case gltf.ComponentByte, gltf.ComponentShort:
		return nil, 0, fmt.Errorf("%w: component type %v", errSignedIndices, v.comp)
	}
	return nil, 0, fmt.Errorf("%w: index component type %v", ErrMalformedAccessor, v.comp)
}
