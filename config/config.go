// Package config reads the viewer configuration from YAML. Every field has a default, a file only
// needs to name what it changes.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/envmap_viewer/scene"
)

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

type Skybox struct {
	// Base is a directory or an http(s) URL holding right, left, top, bottom, front and back images.
	Base        string        `yaml:"base"`
	Ext         string        `yaml:"ext"`
	Size        int           `yaml:"size"`
	Placeholder [3]uint8      `yaml:"placeholder"`
	Timeout     time.Duration `yaml:"timeout"`
}

type Web struct {
	// Addr is the listen address, empty disables the server.
	Addr string `yaml:"addr"`
	Root string `yaml:"root"`
}

type Config struct {
	Window  Window            `yaml:"window"`
	Meshes  map[string]string `yaml:"meshes"`
	Skybox  Skybox            `yaml:"skybox"`
	IOR     string            `yaml:"ior"`
	Web     Web               `yaml:"web"`
	GLDebug bool              `yaml:"gl_debug"`
}

var iorPresets = map[string]float32{
	"water":   scene.IORWater,
	"diamond": scene.IORDiamond,
}

func Default() *Config {
	return &Config{
		Window: Window{Width: 640, Height: 480, Title: "envmap viewer", VSync: true},
		Meshes: map[string]string{
			"monkey": "model/monkey.obj",
			"box":    "model/box.obj",
		},
		Skybox: Skybox{
			Base:    "model/skybox",
			Ext:     ".jpg",
			Size:    2048,
			Timeout: 30 * time.Second,
		},
		IOR: "diamond",
		Web: Web{Addr: ":8000", Root: "."},
	}
}

// Load overlays the file on top of Default. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config")
		}
		if err := Parse(data, c); err != nil {
			return nil, errors.Wrapf(err, "config %q", path)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Parse(data []byte, c *Config) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrap(err, "unmarshal")
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	for _, name := range []string{"box", "monkey"} {
		if c.Meshes[name] == "" {
			return errors.Errorf("no path for mesh %q", name)
		}
	}
	if c.Skybox.Size <= 0 {
		return errors.Errorf("invalid skybox size %d", c.Skybox.Size)
	}
	if _, ok := iorPresets[strings.ToLower(c.IOR)]; !ok {
		return errors.Errorf("unknown ior preset %q", c.IOR)
	}
	return nil
}

func (c *Config) IORRatio() float32 {
	return iorPresets[strings.ToLower(c.IOR)]
}
