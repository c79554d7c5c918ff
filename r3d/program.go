package r3d

import (
	"log"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/pkg/errors"
)

type Program struct {
	Id                           uint32
	VertexShader, FragmentShader uint32
}

func (p *Program) Delete() {
	gl.DetachShader(p.Id, p.VertexShader)
	gl.DetachShader(p.Id, p.FragmentShader)
	gl.DeleteProgram(p.Id)
	gl.DeleteShader(p.VertexShader)
	gl.DeleteShader(p.FragmentShader)
}

func (p *Program) UniformLocation(name string) int32 {
	return gl.GetUniformLocation(p.Id, gl.Str(name+"\x00"))
}

func (p *Program) AttribLocation(name string) int32 {
	return gl.GetAttribLocation(p.Id, gl.Str(name+"\x00"))
}

func LoadProgram(vertexShaderText, fragmentShaderText string) (*Program, error) {
	p := &Program{}

	vs, err := LoadShader(gl.VERTEX_SHADER, vertexShaderText)
	if err != nil {
		return nil, errors.Wrap(err, "vertex shader")
	}
	fs, err := LoadShader(gl.FRAGMENT_SHADER, fragmentShaderText)
	if err != nil {
		gl.DeleteShader(vs)
		return nil, errors.Wrap(err, "fragment shader")
	}

	p.Id = gl.CreateProgram()
	p.VertexShader, p.FragmentShader = vs, fs
	gl.AttachShader(p.Id, p.VertexShader)
	gl.AttachShader(p.Id, p.FragmentShader)
	gl.LinkProgram(p.Id)

	var isLinked int32
	gl.GetProgramiv(p.Id, gl.LINK_STATUS, &isLinked)
	if isLinked == gl.FALSE {
		var logSize int32
		gl.GetProgramiv(p.Id, gl.INFO_LOG_LENGTH, &logSize)
		errString := infoLog(logSize, func(size int32, length *int32, buf *uint8) {
			gl.GetProgramInfoLog(p.Id, size, length, buf)
		})
		log.Printf("[r3d] Failed to link program:\n%s", errString)

		p.Delete()
		return nil, errors.Errorf("failed to link program: %q", errString)
	}
	return p, nil
}

func LoadShader(xtype uint32, text string) (shader uint32, err error) {
	shader = gl.CreateShader(xtype)
	csource, free := gl.Strs(text + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var success int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &success)
	if success == gl.FALSE {
		var logSize int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logSize)
		errString := infoLog(logSize, func(size int32, length *int32, buf *uint8) {
			gl.GetShaderInfoLog(shader, size, length, buf)
		})
		log.Printf("[r3d] Failed to compile shader:\n%s", errString)

		gl.DeleteShader(shader)
		return gl.INVALID_INDEX, errors.Errorf("failed to compile shader: %q", errString)
	}
	return shader, nil
}

func infoLog(logSize int32, get func(size int32, length *int32, buf *uint8)) string {
	buf := make([]uint8, logSize+1)
	get(int32(len(buf)), &logSize, &buf[0])
	return string(buf[:logSize])
}
