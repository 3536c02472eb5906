package gltfimport

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
)

func TestExtractVec3TightlyPacked(t *testing.T) {
	doc := newTestDoc()
	idx := addPositions(doc, 0, 0, 0, 1, 0, 0, 0, 1, 0)

	got, err := extractVec3(doc, doc.Accessors[idx])
	if err != nil {
		t.Fatalf("extractVec3: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(got))
	}
	if got[1][0] != 1 || got[2][1] != 1 {
		t.Errorf("unexpected values: %v", got)
	}
}

func TestExtractVec3Strided(t *testing.T) {
	// Two vertices interleaved with a 4-byte pad: stride 16.
	data := append(floatBytes(1, 2, 3, 99), floatBytes(4, 5, 6, 99)...)
	doc := newTestDoc()
	doc.Buffers = []*gltf.Buffer{{ByteLength: len(data), Data: data}}
	doc.BufferViews = []*gltf.BufferView{{Buffer: 0, ByteLength: len(data), ByteStride: 16}}
	doc.Accessors = []*gltf.Accessor{{
		BufferView:    gltf.Index(0),
		ComponentType: gltf.ComponentFloat,
		Type:          gltf.AccessorVec3,
		Count:         2,
	}}

	got, err := extractVec3(doc, doc.Accessors[0])
	if err != nil {
		t.Fatalf("extractVec3: %v", err)
	}
	want := [][3]float32{{1, 2, 3}, {4, 5, 6}}
	for i := range want {
		for c := range want[i] {
			if got[i][c] != want[i][c] {
				t.Errorf("vector %d component %d: got %v want %v", i, c, got[i][c], want[i][c])
			}
		}
	}
}

func TestExtractVec3RoundTripBitwise(t *testing.T) {
	src := []float32{0.1, -2.5, float32(math.Pi), 1e-7, 0, 42}
	doc := newTestDoc()
	idx := addPositions(doc, src...)

	got, err := extractVec3(doc, doc.Accessors[idx])
	if err != nil {
		t.Fatalf("extractVec3: %v", err)
	}
	for i, v := range src {
		if math.Float32bits(got[i/3][i%3]) != math.Float32bits(v) {
			t.Errorf("component %d not bitwise equal: got %v want %v", i, got[i/3][i%3], v)
		}
	}
}

func TestExtractVec3OutOfBounds(t *testing.T) {
	doc := newTestDoc()
	idx := addPositions(doc, 0, 0, 0)
	doc.Accessors[idx].Count = 2 // extends past the buffer

	if _, err := extractVec3(doc, doc.Accessors[idx]); !errors.Is(err, ErrMalformedAccessor) {
		t.Errorf("expected ErrMalformedAccessor, got %v", err)
	}
}

func TestExtractVec3MissingBuffer(t *testing.T) {
	doc := newTestDoc()
	idx := addPositions(doc, 0, 0, 0)
	doc.Buffers[0].Data = nil

	if _, err := extractVec3(doc, doc.Accessors[idx]); !errors.Is(err, ErrMalformedAccessor) {
		t.Errorf("expected ErrMalformedAccessor, got %v", err)
	}
}

func TestExtractVec3TypeMismatch(t *testing.T) {
	doc := newTestDoc()
	idx := addAccessor(doc, floatBytes(0, 0), gltf.ComponentFloat, gltf.AccessorVec2, 1)

	if _, err := extractVec3(doc, doc.Accessors[idx]); !errors.Is(err, ErrMalformedAccessor) {
		t.Errorf("expected ErrMalformedAccessor, got %v", err)
	}
}

func TestExtractColorsNormalizedUbyte(t *testing.T) {
	doc := newTestDoc()
	idx := addAccessor(doc, []byte{0, 127, 255, 255}, gltf.ComponentUbyte, gltf.AccessorVec4, 1)
	doc.Accessors[idx].Normalized = true

	got, err := extractColors(doc, doc.Accessors[idx])
	if err != nil {
		t.Fatalf("extractColors: %v", err)
	}
	if got[0][0] != 0 || got[0][3] != 1 {
		t.Errorf("unexpected normalized color: %v", got[0])
	}
	if diff := float64(got[0][1]) - 127.0/255.0; math.Abs(diff) > 1e-6 {
		t.Errorf("green channel: got %v want %v", got[0][1], 127.0/255.0)
	}
}

func TestExtractColorsVec3GetsOpaqueAlpha(t *testing.T) {
	doc := newTestDoc()
	idx := addAccessor(doc, floatBytes(0.5, 0.25, 0.125), gltf.ComponentFloat, gltf.AccessorVec3, 1)

	got, err := extractColors(doc, doc.Accessors[idx])
	if err != nil {
		t.Fatalf("extractColors: %v", err)
	}
	if got[0][3] != 1 {
		t.Errorf("expected alpha 1, got %v", got[0][3])
	}
}

func TestIndexReaderWidening(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		comp gltf.ComponentType
	}{
		{"ubyte", []byte{7, 8, 9}, gltf.ComponentUbyte},
		{"ushort", u16Bytes(7, 8, 9), gltf.ComponentUshort},
		{"uint", u32Bytes(7, 8, 9), gltf.ComponentUint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newTestDoc()
			idx := addAccessor(doc, tt.data, tt.comp, gltf.AccessorScalar, 3)

			at, n, err := indexReader(doc, doc.Accessors[idx])
			if err != nil {
				t.Fatalf("indexReader: %v", err)
			}
			if n != 3 {
				t.Fatalf("expected count 3, got %d", n)
			}
			for i, want := range []uint32{7, 8, 9} {
				if got := at(i); got != want {
					t.Errorf("index %d: got %d want %d", i, got, want)
				}
			}
		})
	}
}

func TestIndexReaderRejectsSignedTypes(t *testing.T) {
	doc := newTestDoc()
	idx := addAccessor(doc, u16Bytes(1, 2, 3), gltf.ComponentShort, gltf.AccessorScalar, 3)

	if _, _, err := indexReader(doc, doc.Accessors[idx]); !errors.Is(err, errSignedIndices) {
		t.Errorf("expected errSignedIndices, got %v", err)
	}
}

func TestExtractMat4ColumnMajor(t *testing.T) {
	vals := make([]float32, 16)
	for i := range vals {
		vals[i] = float32(i)
	}
	doc := newTestDoc()
	idx := addAccessor(doc, floatBytes(vals...), gltf.ComponentFloat, gltf.AccessorMat4, 1)

	got, err := extractMat4(doc, doc.Accessors[idx])
	if err != nil {
		t.Fatalf("extractMat4: %v", err)
	}
	for i := range vals {
		if got[0][i] != vals[i] {
			t.Errorf("element %d: got %v want %v", i, got[0][i], vals[i])
		}
	}
}

func TestExtractJointsByElementSize(t *testing.T) {
	doc := newTestDoc()
	u8Idx := addAccessor(doc, []byte{0, 1, 2, 3}, gltf.ComponentUbyte, gltf.AccessorVec4, 1)
	u16Idx := addAccessor(doc, u16Bytes(4, 5, 6, 7), gltf.ComponentUshort, gltf.AccessorVec4, 1)

	j8, err := extractJoints(doc, doc.Accessors[u8Idx])
	if err != nil {
		t.Fatalf("extractJoints u8: %v", err)
	}
	if j8[0] != [4]uint16{0, 1, 2, 3} {
		t.Errorf("u8 joints: got %v", j8[0])
	}

	j16, err := extractJoints(doc, doc.Accessors[u16Idx])
	if err != nil {
		t.Fatalf("extractJoints u16: %v", err)
	}
	if j16[0] != [4]uint16{4, 5, 6, 7} {
		t.Errorf("u16 joints: got %v", j16[0])
	}
}

func TestStridedScalarIndexRead(t *testing.T) {
	// Index values every 4 bytes with a 2-byte payload: stride 4.
	data := make([]byte, 12)
	for i, v := range []uint16{10, 20, 30} {
		binary.LittleEndian.PutUint16(data[i*4:], v)
	}
	doc := newTestDoc()
	doc.Buffers = []*gltf.Buffer{{ByteLength: len(data), Data: data}}
	doc.BufferViews = []*gltf.BufferView{{Buffer: 0, ByteLength: len(data), ByteStride: 4}}
	doc.Accessors = []*gltf.Accessor{{
		BufferView:    gltf.Index(0),
		ComponentType: gltf.ComponentUshort,
		Type:          gltf.AccessorScalar,
		Count:         3,
	}}

	at, _, err := indexReader(doc, doc.Accessors[0])
	if err != nil {
		t.Fatalf("indexReader: %v", err)
	}
	for i, want := range []uint32{10, 20, 30} {
		if got := at(i); got != want {
			t.Errorf("index %d: got %d want %d", i, got, want)
		}
	}
}
