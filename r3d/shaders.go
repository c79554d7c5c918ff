package r3d

import (
	_ "embed"
	"sort"

	"github.com/pkg/errors"

	"github.com/mogaika/envmap_viewer/scene"
)

//go:embed shaders/scene.vert
var sceneVertexShader string

//go:embed shaders/skybox.frag
var skyboxFragmentShader string

//go:embed shaders/reflect.frag
var reflectFragmentShader string

//go:embed shaders/refract.frag
var refractFragmentShader string

// Slot names shared by every program. A program that doesn't use one gets location -1.
const (
	AttrVertexPosition = "vertexPosition"
	AttrNormalVector   = "normalVector"

	UniformModelTransform      = "modelTransform"
	UniformViewTransform       = "viewTransform"
	UniformProjectionTransform = "projectionTransform"
	UniformNormalMatrix        = "normalMatrix"
	UniformCameraPosition      = "cameraPosition"
	UniformIORRatio            = "iorRatio"
	UniformSkybox              = "skybox"
)

type ShaderSource struct {
	Vertex, Fragment string
}

var shaderSources = map[scene.Program]ShaderSource{
	scene.ProgramSkybox:  {sceneVertexShader, skyboxFragmentShader},
	scene.ProgramReflect: {sceneVertexShader, reflectFragmentShader},
	scene.ProgramRefract: {sceneVertexShader, refractFragmentShader},
}

func Sources() map[scene.Program]ShaderSource {
	return shaderSources
}

type ShaderProgram struct {
	*Program
	Kind scene.Program

	AVertexPosition int32
	ANormalVector   int32

	UModelTransform      int32
	UViewTransform       int32
	UProjectionTransform int32
	UNormalMatrix        int32
	UCameraPosition      int32
	UIORRatio            int32
	USkybox              int32
}

func NewShaderProgram(kind scene.Program, src ShaderSource) (*ShaderProgram, error) {
	p, err := LoadProgram(src.Vertex, src.Fragment)
	if err != nil {
		return nil, errors.Wrapf(err, "%v program", kind)
	}

	sp := &ShaderProgram{Program: p, Kind: kind}
	sp.AVertexPosition = p.AttribLocation(AttrVertexPosition)
	sp.ANormalVector = p.AttribLocation(AttrNormalVector)

	sp.UModelTransform = p.UniformLocation(UniformModelTransform)
	sp.UViewTransform = p.UniformLocation(UniformViewTransform)
	sp.UProjectionTransform = p.UniformLocation(UniformProjectionTransform)
	sp.UNormalMatrix = p.UniformLocation(UniformNormalMatrix)
	sp.UCameraPosition = p.UniformLocation(UniformCameraPosition)
	sp.UIORRatio = p.UniformLocation(UniformIORRatio)
	sp.USkybox = p.UniformLocation(UniformSkybox)

	if sp.AVertexPosition < 0 {
		p.Delete()
		return nil, errors.Errorf("%v program has no %q attribute", kind, AttrVertexPosition)
	}
	return sp, nil
}

// LoadShaderPrograms compiles the skybox, reflect and refract programs.
// Any failure deletes what was already built.
func LoadShaderPrograms() (map[scene.Program]*ShaderProgram, error) {
	kinds := make([]scene.Program, 0, len(shaderSources))
	for kind := range shaderSources {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	programs := make(map[scene.Program]*ShaderProgram, len(kinds))
	for _, kind := range kinds {
		sp, err := NewShaderProgram(kind, shaderSources[kind])
		if err != nil {
			for _, built := range programs {
				built.Delete()
			}
			return nil, err
		}
		programs[kind] = sp
	}
	return programs, nil
}
