// Package gltfimport converts glTF 2.0 assets into sceneport scenes.
//
// The package consumes documents parsed by github.com/qmuntal/gltf and
// materializes a scene graph in six phases run in fixed order: textures,
// materials, meshes, cameras, nodes, animations. Later phases reference
// the output of earlier ones by index only.
package gltfimport

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/taigrr/sceneport/pkg/scene"
)

// Error kinds that abort an import. Channel-level inconsistencies are
// logged and recovered instead.
var (
	// ErrInvalidFormat covers header mismatches, non-2.x assets, and
	// documents the underlying parser rejects.
	ErrInvalidFormat = errors.New("gltfimport: invalid format")

	// ErrMalformedAccessor covers out-of-bounds accessor extents,
	// component or type mismatches, and absent buffers.
	ErrMalformedAccessor = errors.New("gltfimport: malformed accessor")
)

// Importer converts parsed glTF 2.0 documents into scenes. The zero
// value is usable; Log defaults to a no-op logger.
type Importer struct {
	// Log receives warnings about recovered inconsistencies such as
	// attribute streams whose counts disagree with the vertex count.
	Log *zap.Logger
}

// New creates an importer with a no-op logger.
func New() *Importer {
	return &Importer{Log: zap.NewNop()}
}

func (im *Importer) logger() *zap.Logger {
	if im.Log == nil {
		return zap.NewNop()
	}
	return im.Log
}

// CanRead reports whether the named asset is a glTF 2.x document.
// External resources resolve through fsys.
func (im *Importer) CanRead(path string, fsys fs.FS) bool {
	f, err := fsys.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(f, fsys).Decode(doc); err != nil {
		return false
	}
	return strings.HasPrefix(doc.Asset.Version, "2")
}

// Open imports the .gltf or .glb file at path, resolving external
// buffers relative to it.
func (im *Importer) Open(path string) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return im.ImportDocument(doc)
}

// Read imports an asset from r. External buffers and images resolve
// through fsys, which plays the role of the host's I/O system.
func (im *Importer) Read(r io.Reader, fsys fs.FS) (*scene.Scene, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(r, fsys).Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return im.ImportDocument(doc)
}

// ImportDocument materializes doc into a freshly allocated scene. The
// document is borrowed for the duration of the call; embedded image
// bytes are copied out so the returned scene holds no references into
// the document's buffers.
func (im *Importer) ImportDocument(doc *gltf.Document) (*scene.Scene, error) {
	if !strings.HasPrefix(doc.Asset.Version, "2") {
		return nil, fmt.Errorf("%w: unsupported asset version %q", ErrInvalidFormat, doc.Asset.Version)
	}

	st := &importState{
		doc: doc,
		out: &scene.Scene{},
		log: im.logger(),
	}

	st.importTextures()
	st.importMaterials()
	if err := st.importMeshes(); err != nil {
		return nil, err
	}
	st.importCameras()
	if err := st.importNodes(); err != nil {
		return nil, err
	}
	if err := st.importAnimations(); err != nil {
		return nil, err
	}

	if !st.out.HasMeshes() {
		st.out.Flags |= scene.FlagIncomplete
	}
	return st.out, nil
}

// importState carries the intermediate tables shared between phases of
// a single import.
type importState struct {
	doc *gltf.Document
	out *scene.Scene
	log *zap.Logger

	// embeddedTexIdx maps an image index to its texture slot, or -1
	// for images referenced by external URI.
	embeddedTexIdx []int

	// meshOffsets maps an input mesh index to the first output mesh
	// slot of its primitive expansion, with a trailing sentinel equal
	// to the total output mesh count.
	meshOffsets []int
}

// accessor returns the document accessor at idx, or nil when idx is out
// of range.
func (st *importState) accessor(idx int) *gltf.Accessor {
	if idx < 0 || idx >= len(st.doc.Accessors) {
		return nil
	}
	return st.doc.Accessors[idx]
}
