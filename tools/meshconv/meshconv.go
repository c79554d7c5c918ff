package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"github.com/mogaika/envmap_viewer/mesh"
)

func convert(path, outDir string) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m, err := mesh.Load(name, path)
	if err != nil {
		return err
	}

	outPath := filepath.Join(outDir, name+".glb")
	f, err := os.Create(outPath)
	if err != nil {
		return errors.Wrapf(err, "Can't create %q", outPath)
	}
	defer f.Close()

	if err := mesh.ExportGLB(f, m); err != nil {
		return errors.Wrapf(err, "Can't export %q", name)
	}
	log.Printf("%s: %d vertices, %d triangles -> %s", name, len(m.Positions), len(m.Indices)/3, outPath)
	return nil
}

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", ".", "Output directory for .glb files")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Printf("Usage: meshconv [-out dir] mesh.obj [mesh.gltf ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := os.MkdirAll(outDir, 0776); err != nil {
		log.Fatal(err)
	}

	bar := progressbar.Default(int64(flag.NArg()), "converting")
	failed := 0
	for _, path := range flag.Args() {
		if err := convert(path, outDir); err != nil {
			log.Printf("ERROR: %v", err)
			failed++
		}
		bar.Add(1)
	}
	if failed != 0 {
		log.Fatalf("%d of %d meshes failed", failed, flag.NArg())
	}
}
