package gltfimport

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"

	"github.com/taigrr/sceneport/pkg/scene"
)

// importMaterials converts every input material and appends one default
// material at the end of the array. Primitives without an explicit
// material reference the default by its index len(materials)-1.
func (st *importState) importMaterials() {
	st.out.Materials = make([]*scene.Material, 0, len(st.doc.Materials)+1)
	for _, mat := range st.doc.Materials {
		st.out.Materials = append(st.out.Materials, st.convertMaterial(mat))
	}
	// The default material is an all-defaults input run through the
	// same conversion: white base color, roughness 1, shininess 0.
	st.out.Materials = append(st.out.Materials, st.convertMaterial(&gltf.Material{}))
}

func (st *importState) convertMaterial(mat *gltf.Material) *scene.Material {
	out := &scene.Material{
		Name:            mat.Name,
		Diffuse:         mgl32.Vec4{1, 1, 1, 1},
		BaseColorFactor: mgl32.Vec4{1, 1, 1, 1},
		MetallicFactor:  1,
		RoughnessFactor: 1,
		Emissive: mgl32.Vec4{
			float32(mat.EmissiveFactor[0]),
			float32(mat.EmissiveFactor[1]),
			float32(mat.EmissiveFactor[2]),
			1,
		},
		DoubleSided: mat.DoubleSided,
		AlphaMode:   alphaModeString(mat.AlphaMode),
		AlphaCutoff: 0.5,
	}
	if mat.AlphaCutoff != nil {
		out.AlphaCutoff = float32(*mat.AlphaCutoff)
	}

	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			c := *pbr.BaseColorFactor
			out.Diffuse = mgl32.Vec4{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
			out.BaseColorFactor = out.Diffuse
		}
		if pbr.BaseColorTexture != nil {
			out.DiffuseTexture = st.textureRef(pbr.BaseColorTexture.Index, pbr.BaseColorTexture.TexCoord)
			out.BaseColorTexture = st.textureRef(pbr.BaseColorTexture.Index, pbr.BaseColorTexture.TexCoord)
		}
		if pbr.MetallicRoughnessTexture != nil {
			out.MetallicRoughnessTexture = st.textureRef(pbr.MetallicRoughnessTexture.Index, pbr.MetallicRoughnessTexture.TexCoord)
		}
		if pbr.MetallicFactor != nil {
			out.MetallicFactor = float32(*pbr.MetallicFactor)
		}
		if pbr.RoughnessFactor != nil {
			out.RoughnessFactor = float32(*pbr.RoughnessFactor)
		}
	}

	// Lossy legacy mapping for shininess-based consumers.
	s := 1 - out.RoughnessFactor
	out.Shininess = s * s * 1000

	if nt := mat.NormalTexture; nt != nil && nt.Index != nil {
		ref := st.textureRef(*nt.Index, nt.TexCoord)
		if ref != nil && nt.Scale != nil {
			ref.Scale = float32(*nt.Scale)
		}
		out.NormalTexture = ref
	}
	if ot := mat.OcclusionTexture; ot != nil && ot.Index != nil {
		ref := st.textureRef(*ot.Index, ot.TexCoord)
		if ref != nil && ot.Strength != nil {
			ref.Strength = float32(*ot.Strength)
		}
		out.OcclusionTexture = ref
	}
	if et := mat.EmissiveTexture; et != nil {
		out.EmissiveTexture = st.textureRef(et.Index, et.TexCoord)
	}

	if ext, ok := mat.Extensions[ExtPBRSpecularGlossiness].(*PBRSpecularGlossiness); ok {
		out.SpecularGlossiness = true
		out.Specular = mgl32.Vec4{1, 1, 1, 1}
		if ext.DiffuseFactor != nil {
			c := *ext.DiffuseFactor
			out.Diffuse = mgl32.Vec4{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
		}
		if ext.SpecularFactor != nil {
			c := *ext.SpecularFactor
			out.Specular = mgl32.Vec4{float32(c[0]), float32(c[1]), float32(c[2]), 1}
		}
		out.GlossinessFactor = 1
		if ext.GlossinessFactor != nil {
			out.GlossinessFactor = float32(*ext.GlossinessFactor)
		}
		// Glossiness mirrors onto shininess, replacing the roughness
		// mapping above.
		out.Shininess = out.GlossinessFactor * 1000
		if ext.DiffuseTexture != nil {
			out.DiffuseTexture = st.textureRef(ext.DiffuseTexture.Index, ext.DiffuseTexture.TexCoord)
		}
		if ext.SpecularGlossinessTexture != nil {
			out.SpecularGlossinessTexture = st.textureRef(ext.SpecularGlossinessTexture.Index, ext.SpecularGlossinessTexture.TexCoord)
		}
	}
	if _, ok := mat.Extensions[ExtUnlit]; ok {
		out.Unlit = true
	}

	return out
}

// textureRef resolves a document texture index into an output reference:
// embedded images encode as "*<slot>", external images keep their URI.
// Returns nil when the texture or its source image cannot be resolved.
func (st *importState) textureRef(texIdx, texCoord int) *scene.TextureRef {
	if texIdx < 0 || texIdx >= len(st.doc.Textures) {
		return nil
	}
	tex := st.doc.Textures[texIdx]
	if tex.Source == nil || *tex.Source < 0 || *tex.Source >= len(st.doc.Images) {
		return nil
	}
	img := st.doc.Images[*tex.Source]

	ref := &scene.TextureRef{
		TexCoord: texCoord,
		Scale:    1,
		Strength: 1,
	}
	if slot := st.embeddedTexIdx[*tex.Source]; slot >= 0 {
		ref.URI = "*" + strconv.Itoa(slot)
	} else {
		ref.URI = img.URI
	}

	if tex.Sampler != nil && *tex.Sampler >= 0 && *tex.Sampler < len(st.doc.Samplers) {
		s := st.doc.Samplers[*tex.Sampler]
		ref.SamplerName = s.Name
		ref.SamplerID = strconv.Itoa(*tex.Sampler)
		ref.WrapU = wrapMode(s.WrapS)
		ref.WrapV = wrapMode(s.WrapT)
		// Filter enums pass through raw; zero means unset.
		ref.MagFilter = int(s.MagFilter)
		ref.MinFilter = int(s.MinFilter)
	}
	return ref
}

// wrapMode translates sampler wrapping: mirrored repeat and clamp map
// directly, anything else (including unset and plain repeat) wraps.
func wrapMode(w gltf.WrappingMode) scene.WrapMode {
	switch w {
	case gltf.WrapMirroredRepeat:
		return scene.WrapModeMirror
	case gltf.WrapClampToEdge:
		return scene.WrapModeClamp
	default:
		return scene.WrapModeWrap
	}
}

func alphaModeString(m gltf.AlphaMode) string {
	switch m {
	case gltf.AlphaMask:
		return "MASK"
	case gltf.AlphaBlend:
		return "BLEND"
	default:
		return "OPAQUE"
	}
}
