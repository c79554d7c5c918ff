package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/envmap_viewer/cubemap"
	"github.com/mogaika/envmap_viewer/mesh"
	"github.com/mogaika/envmap_viewer/render"
	"github.com/mogaika/envmap_viewer/status"
)

// Controls is the part of the render loop reachable from http handlers.
type Controls interface {
	SwapShader()
	Snapshot() render.Snapshot
}

type Server struct {
	Controls Controls
	Cubemap  *cubemap.Cubemap
	Meshes   map[string]*mesh.Mesh
	Status   *status.Hub
	Root     string
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/state", s.HandlerState).Methods(http.MethodGet)
	r.HandleFunc("/action/swapshader", s.HandlerSwapShader)
	r.HandleFunc("/dump/mesh/{name}", s.HandlerDumpMesh).Methods(http.MethodGet)
	if s.Status != nil {
		r.Handle("/ws/status", s.Status)
	}
	if s.Root != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.Root)))
	}
	return r
}

func (s *Server) Handler() http.Handler {
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(s.Router())
	return handlers.LoggingHandler(os.Stdout, h)
}

func StartServer(addr string, s *Server) error {
	log.Printf("[web] Starting server %v", addr)
	return http.ListenAndServe(addr, s.Handler())
}
