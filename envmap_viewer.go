package main

import (
	"context"
	"flag"
	"log"
	"os"
	"runtime"

	"github.com/sqweek/dialog"

	"github.com/mogaika/envmap_viewer/config"
	"github.com/mogaika/envmap_viewer/status"
	"github.com/mogaika/envmap_viewer/utils"
	"github.com/mogaika/envmap_viewer/viewer"
	"github.com/mogaika/envmap_viewer/web"
)

func init() {
	runtime.LockOSThread()
}

func fatal(err error) {
	log.Printf("ERROR: %v", err)
	dialog.Message("%v", err).Title("envmap viewer").Error()
	os.Exit(1)
}

func main() {
	var configPath string
	var dump bool
	flag.StringVar(&configPath, "config", "", "Path to yaml configuration")
	flag.BoolVar(&dump, "dump", false, "Log effective configuration")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fatal(err)
	}
	if dump {
		utils.LogDump(cfg)
	}

	hub := status.NewHub()
	v, err := viewer.New(cfg, hub)
	if err != nil {
		fatal(err)
	}

	if cfg.Web.Addr != "" {
		srv := &web.Server{
			Controls: v.Loop,
			Cubemap:  v.Cubemap,
			Meshes:   v.Meshes,
			Status:   hub,
			Root:     cfg.Web.Root,
		}
		go func() {
			if err := web.StartServer(cfg.Web.Addr, srv); err != nil {
				log.Printf("[web] Server stopped: %v", err)
			}
		}()
	}

	if err := v.Run(context.Background()); err != nil {
		fatal(err)
	}
}
