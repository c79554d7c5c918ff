package web

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/envmap_viewer/cubemap"
	"github.com/mogaika/envmap_viewer/mesh"
	"github.com/mogaika/envmap_viewer/render"
	"github.com/mogaika/envmap_viewer/webutils"
)

type State struct {
	render.Snapshot
	Faces map[string]cubemap.FaceState `json:"faces,omitempty"`
}

func (s *Server) state() State {
	st := State{Snapshot: s.Controls.Snapshot()}
	if s.Cubemap != nil {
		st.Faces = s.Cubemap.States()
	}
	return st
}

func (s *Server) HandlerState(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, s.state())
}

func (s *Server) HandlerSwapShader(w http.ResponseWriter, r *http.Request) {
	if err := webutils.RequireMethod(r, http.MethodPost); err != nil {
		webutils.WriteError(w, http.StatusMethodNotAllowed, err)
		return
	}
	s.Controls.SwapShader()
	st := s.state()
	if s.Status != nil {
		s.Status.Info("shading mode %v", st.Mode)
	}
	webutils.WriteJson(w, st)
}

func (s *Server) HandlerDumpMesh(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	m, ok := s.Meshes[name]
	if !ok {
		webutils.WriteError(w, http.StatusNotFound, errors.Errorf("Mesh %q not found", name))
		return
	}
	webutils.WriteFile(w, name+".glb", func(out io.Writer) error {
		return mesh.ExportGLB(out, m)
	})
}
