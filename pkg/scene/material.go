package scene

import "github.com/go-gl/mathgl/mgl32"

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapModeWrap   WrapMode = iota // Tile the texture
	WrapModeClamp                  // Clamp to edge
	WrapModeMirror                 // Tile with mirroring
)

// TextureRef is a resolved texture binding on a material. URI is either
// the raw external URI or "*<n>" pointing at Scene.Textures[n] for
// embedded images. Scale and Strength only carry meaning on normal and
// occlusion bindings respectively; both default to 1.
type TextureRef struct {
	URI      string
	TexCoord int

	SamplerName string
	SamplerID   string
	WrapU       WrapMode
	WrapV       WrapMode

	// MagFilter and MinFilter are the sampler's raw filter enums,
	// 0 when the sampler leaves them unset.
	MagFilter int
	MinFilter int

	Scale    float32
	Strength float32
}

// Embedded reports whether the reference points at an embedded texture
// slot rather than an external URI.
func (t *TextureRef) Embedded() bool {
	return len(t.URI) > 0 && t.URI[0] == '*'
}

// Material is a flat property bag translated from the source asset's
// PBR metallic-roughness model plus the specular-glossiness and unlit
// extensions. Both the classic diffuse fields and the PBR-specific
// fields are populated so consumers that understand either convention
// can pick theirs.
type Material struct {
	Name string

	Diffuse         mgl32.Vec4
	DiffuseTexture  *TextureRef
	BaseColorFactor mgl32.Vec4
	BaseColorTexture *TextureRef

	MetallicRoughnessTexture *TextureRef
	MetallicFactor           float32
	RoughnessFactor          float32

	// Shininess is a lossy legacy mapping for shininess-based
	// consumers: (1-roughness)^2 * 1000, or glossiness * 1000 when the
	// specular-glossiness extension is present.
	Shininess float32

	NormalTexture    *TextureRef
	OcclusionTexture *TextureRef
	EmissiveTexture  *TextureRef
	Emissive         mgl32.Vec4

	DoubleSided bool
	AlphaMode   string
	AlphaCutoff float32

	SpecularGlossiness        bool
	Specular                  mgl32.Vec4
	GlossinessFactor          float32
	SpecularGlossinessTexture *TextureRef

	Unlit bool
}
