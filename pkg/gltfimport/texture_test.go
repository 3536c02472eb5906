package gltfimport

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/qmuntal/gltf"
)

func TestFormatHint(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"image/png", "png"},
		{"image/jpeg", "jpg"},
		{"image/webp", "web"},
		{"image/ktx2", "ktx"},
		{"", ""},
		{"nonsense", ""},
	}
	for _, tt := range tests {
		if got := formatHint(tt.mime); got != tt.want {
			t.Errorf("formatHint(%q): got %q want %q", tt.mime, got, tt.want)
		}
	}
}

func TestEmbeddedImagesGetDenseSlots(t *testing.T) {
	blob := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}
	doc := newTestDoc()
	doc.Buffers = []*gltf.Buffer{{ByteLength: len(blob), Data: blob}}
	doc.BufferViews = []*gltf.BufferView{{Buffer: 0, ByteOffset: 4, ByteLength: 4}}
	doc.Images = []*gltf.Image{
		{Name: "external", URI: "skin.png"},
		{Name: "embedded", BufferView: gltf.Index(0), MimeType: "image/png"},
	}

	sc, err := New().ImportDocument(doc)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	if len(sc.Textures) != 1 {
		t.Fatalf("expected 1 embedded texture, got %d", len(sc.Textures))
	}
	tex := sc.Textures[0]
	if !bytes.Equal(tex.Data, blob[4:]) {
		t.Errorf("texture bytes: got %v", tex.Data)
	}
	if tex.FormatHint != "png" {
		t.Errorf("format hint: got %q", tex.FormatHint)
	}
}

func TestTextureBytesDoNotAliasSourceBuffer(t *testing.T) {
	blob := []byte{1, 2, 3, 4}
	doc := newTestDoc()
	doc.Buffers = []*gltf.Buffer{{ByteLength: len(blob), Data: blob}}
	doc.BufferViews = []*gltf.BufferView{{Buffer: 0, ByteLength: len(blob)}}
	doc.Images = []*gltf.Image{{BufferView: gltf.Index(0)}}

	sc, err := New().ImportDocument(doc)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	doc.Buffers[0].Data[0] = 99
	if sc.Textures[0].Data[0] != 1 {
		t.Errorf("texture data aliases the source buffer")
	}
}

func TestDataURIImagesAreEmbedded(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)
	doc := newTestDoc()
	doc.Images = []*gltf.Image{{URI: uri}}

	sc, err := New().ImportDocument(doc)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	if len(sc.Textures) != 1 {
		t.Fatalf("expected data URI image to embed, got %d textures", len(sc.Textures))
	}
	tex := sc.Textures[0]
	if !bytes.Equal(tex.Data, payload) {
		t.Errorf("decoded payload: got %v", tex.Data)
	}
	// MIME type comes out of the URI when the image carries none.
	if tex.FormatHint != "jpg" {
		t.Errorf("format hint: got %q want jpg", tex.FormatHint)
	}
}

func TestOversizedImageViewIsSkipped(t *testing.T) {
	doc := newTestDoc()
	doc.Buffers = []*gltf.Buffer{{ByteLength: 2, Data: []byte{1, 2}}}
	doc.BufferViews = []*gltf.BufferView{{Buffer: 0, ByteLength: 8}}
	doc.Images = []*gltf.Image{{BufferView: gltf.Index(0)}}

	sc, err := New().ImportDocument(doc)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	if len(sc.Textures) != 0 {
		t.Errorf("oversized image view should be skipped")
	}
}
