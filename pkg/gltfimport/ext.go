package gltfimport

import (
	"encoding/json"

	"github.com/qmuntal/gltf"
)

// Material extensions handled by the importer.
const (
	ExtPBRSpecularGlossiness = "KHR_materials_pbrSpecularGlossiness"
	ExtUnlit                 = "KHR_materials_unlit"
)

func init() {
	gltf.RegisterExtension(ExtPBRSpecularGlossiness, unmarshalSpecularGlossiness)
	gltf.RegisterExtension(ExtUnlit, unmarshalUnlit)
}

// PBRSpecularGlossiness mirrors the KHR_materials_pbrSpecularGlossiness
// material layout.
type PBRSpecularGlossiness struct {
	DiffuseFactor             *[4]float32       `json:"diffuseFactor,omitempty"`
	DiffuseTexture            *gltf.TextureInfo `json:"diffuseTexture,omitempty"`
	SpecularFactor            *[3]float32       `json:"specularFactor,omitempty"`
	GlossinessFactor          *float32          `json:"glossinessFactor,omitempty"`
	SpecularGlossinessTexture *gltf.TextureInfo `json:"specularGlossinessTexture,omitempty"`
}

func unmarshalSpecularGlossiness(data []byte) (interface{}, error) {
	ext := new(PBRSpecularGlossiness)
	if err := json.Unmarshal(data, ext); err != nil {
		return nil, err
	}
	return ext, nil
}

// Unlit marks a KHR_materials_unlit material. The extension body carries
// no parameters.
type Unlit struct{}

func unmarshalUnlit([]byte) (interface{}, error) {
	return &Unlit{}, nil
}
