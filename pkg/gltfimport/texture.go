package gltfimport

import (
	"encoding/base64"
	"strings"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/taigrr/sceneport/pkg/scene"
)

// importTextures materializes embedded image blobs into dense texture
// slots and records the image-to-slot table consumed by the material
// phase. Images referenced by external URI keep a -1 slot and surface
// as raw URIs on material texture references.
func (st *importState) importTextures() {
	st.embeddedTexIdx = make([]int, len(st.doc.Images))
	for i := range st.embeddedTexIdx {
		st.embeddedTexIdx[i] = -1
	}

	for i, img := range st.doc.Images {
		data, mime := st.imageData(img)
		if data == nil {
			continue
		}
		st.embeddedTexIdx[i] = len(st.out.Textures)
		st.out.Textures = append(st.out.Textures, &scene.Texture{
			Data:       data,
			FormatHint: formatHint(mime),
		})
	}
}

// imageData returns the embedded bytes for img along with its MIME type,
// or nil when the image is an external reference. The returned slice is
// the scene's own copy; it does not alias the document's buffers.
func (st *importState) imageData(img *gltf.Image) ([]byte, string) {
	if img.BufferView != nil {
		bvIdx := *img.BufferView
		if bvIdx < 0 || bvIdx >= len(st.doc.BufferViews) {
			st.log.Warn("embedded image references unknown buffer view",
				zap.String("image", img.Name), zap.Int("bufferView", bvIdx))
			return nil, ""
		}
		bv := st.doc.BufferViews[bvIdx]
		if bv.Buffer < 0 || bv.Buffer >= len(st.doc.Buffers) {
			st.log.Warn("embedded image references unknown buffer",
				zap.String("image", img.Name), zap.Int("buffer", bv.Buffer))
			return nil, ""
		}
		buf := st.doc.Buffers[bv.Buffer]
		end := bv.ByteOffset + bv.ByteLength
		if buf.Data == nil || bv.ByteOffset < 0 || end > len(buf.Data) {
			st.log.Warn("embedded image exceeds its buffer",
				zap.String("image", img.Name))
			return nil, ""
		}
		data := make([]byte, bv.ByteLength)
		copy(data, buf.Data[bv.ByteOffset:end])
		return data, img.MimeType
	}

	// The parser leaves image data URIs unresolved.
	if rest, ok := strings.CutPrefix(img.URI, "data:"); ok {
		meta, payload, ok := strings.Cut(rest, ",")
		if !ok {
			return nil, ""
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			st.log.Warn("undecodable image data URI",
				zap.String("image", img.Name), zap.Error(err))
			return nil, ""
		}
		mime := img.MimeType
		if mime == "" {
			mime = strings.TrimSuffix(meta, ";base64")
		}
		return data, mime
	}

	return nil, ""
}

// formatHint derives a short format tag from a MIME type: the subtype
// truncated to at most three characters, with "jpeg" rewritten to "jpg".
func formatHint(mime string) string {
	_, sub, ok := strings.Cut(mime, "/")
	if !ok {
		return ""
	}
	if sub == "jpeg" {
		return "jpg"
	}
	if len(sub) > 3 {
		sub = sub[:3]
	}
	return sub
}
