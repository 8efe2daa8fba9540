// Package api exposes stored command sets over a small JSON HTTP API:
// listing, import/export in the supported codec formats, command removal,
// emit requests and HTML timing reports.
package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/banshee-data/ircodec/internal/codec"
	"github.com/banshee-data/ircodec/internal/httputil"
	"github.com/banshee-data/ircodec/internal/ir"
	"github.com/banshee-data/ircodec/internal/irdb"
	"github.com/banshee-data/ircodec/internal/playback"
	"github.com/banshee-data/ircodec/internal/report"
)

// Server serves the command set API backed by a store and an emitter.
type Server struct {
	store   *irdb.Store
	emitter ir.Emitter
	mux     *http.ServeMux
}

// NewServer wires the routes. The emitter may be a playback.LogEmitter on
// hosts without transmit hardware.
func NewServer(store *irdb.Store, emitter ir.Emitter) *Server {
	s := &Server{
		store:   store,
		emitter: emitter,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("/api/sets", s.handleSets)
	s.mux.HandleFunc("/api/set", s.handleSet)
	s.mux.HandleFunc("/api/command", s.handleCommand)
	s.mux.HandleFunc("/api/emit", s.handleEmit)
	s.mux.HandleFunc("/api/report", s.handleReport)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleSets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	infos, err := s.store.ListSets(r.Context())
	if err != nil {
		log.Printf("list sets: %v", err)
		httputil.InternalServerError(w, "failed to list command sets")
		return
	}
	if infos == nil {
		infos = []irdb.SetInfo{}
	}
	httputil.WriteJSONOK(w, infos)
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.exportSet(w, r)
	case http.MethodPost:
		s.importSet(w, r)
	case http.MethodDelete:
		s.deleteSet(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) exportSet(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httputil.BadRequest(w, "missing name parameter")
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if _, err := codec.ForFormat(format); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	set, err := s.store.LoadSet(r.Context(), name)
	if err != nil {
		if errors.Is(err, irdb.ErrSetNotFound) {
			httputil.NotFound(w, "no such command set")
			return
		}
		log.Printf("load set %q: %v", name, err)
		httputil.InternalServerError(w, "failed to load command set")
		return
	}

	switch format {
	case "yaml", "yml":
		w.Header().Set("Content-Type", "application/yaml")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	if err := codec.EncodeSet(w, set, format); err != nil {
		log.Printf("encode set %q: %v", name, err)
	}
}

func (s *Server) importSet(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	set, err := codec.DecodeSet(r.Body, format)
	if err != nil {
		if errors.Is(err, codec.ErrUnsupportedFormat) {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.BadRequest(w, "malformed command set: "+err.Error())
		return
	}
	if set.Name == "" {
		httputil.BadRequest(w, "command set has no name")
		return
	}

	if err := s.store.SaveSet(r.Context(), set); err != nil {
		log.Printf("save set %q: %v", set.Name, err)
		httputil.InternalServerError(w, "failed to save command set")
		return
	}
	httputil.WriteJSONOK(w, map[string]any{
		"name":     set.Name,
		"commands": len(set.Commands),
	})
}

func (s *Server) deleteSet(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httputil.BadRequest(w, "missing name parameter")
		return
	}
	if err := s.store.DeleteSet(r.Context(), name); err != nil {
		if errors.Is(err, irdb.ErrSetNotFound) {
			httputil.NotFound(w, "no such command set")
			return
		}
		log.Printf("delete set %q: %v", name, err)
		httputil.InternalServerError(w, "failed to delete command set")
		return
	}
	httputil.WriteJSONOK(w, map[string]string{"deleted": name})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		httputil.MethodNotAllowed(w)
		return
	}
	setName := r.URL.Query().Get("set")
	commandID := r.URL.Query().Get("name")
	if setName == "" || commandID == "" {
		httputil.BadRequest(w, "missing set or name parameter")
		return
	}

	set, err := s.store.LoadSet(r.Context(), setName)
	if err != nil {
		if errors.Is(err, irdb.ErrSetNotFound) {
			httputil.NotFound(w, "no such command set")
			return
		}
		log.Printf("load set %q: %v", setName, err)
		httputil.InternalServerError(w, "failed to load command set")
		return
	}
	if err := set.Remove(commandID); err != nil {
		httputil.NotFound(w, "no such command")
		return
	}
	if err := s.store.SaveSet(r.Context(), set); err != nil {
		log.Printf("save set %q: %v", setName, err)
		httputil.InternalServerError(w, "failed to save command set")
		return
	}
	httputil.WriteJSONOK(w, map[string]string{"deleted": commandID})
}

func (s *Server) handleEmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	setName := r.URL.Query().Get("set")
	commandID := r.URL.Query().Get("command")
	if setName == "" || commandID == "" {
		httputil.BadRequest(w, "missing set or command parameter")
		return
	}

	carrierKHz := playback.DefaultCarrierKHz
	if v := r.URL.Query().Get("carrier_khz"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			httputil.BadRequest(w, "bad carrier_khz parameter")
			return
		}
		carrierKHz = parsed
	}

	set, err := s.store.LoadSet(r.Context(), setName)
	if err != nil {
		if errors.Is(err, irdb.ErrSetNotFound) {
			httputil.NotFound(w, "no such command set")
			return
		}
		log.Printf("load set %q: %v", setName, err)
		httputil.InternalServerError(w, "failed to load command set")
		return
	}

	if err := set.Emit(commandID, s.emitter, carrierKHz); err != nil {
		log.Printf("emit %s/%s: %v", setName, commandID, err)
		httputil.WriteJSONError(w, http.StatusBadGateway, "emit failed: "+err.Error())
		return
	}
	httputil.WriteJSONOK(w, map[string]any{
		"set":         setName,
		"command":     commandID,
		"carrier_khz": carrierKHz,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	setName := r.URL.Query().Get("set")
	commandID := r.URL.Query().Get("command")
	if setName == "" || commandID == "" {
		httputil.BadRequest(w, "missing set or command parameter")
		return
	}

	set, err := s.store.LoadSet(r.Context(), setName)
	if err != nil {
		if errors.Is(err, irdb.ErrSetNotFound) {
			httputil.NotFound(w, "no such command set")
			return
		}
		log.Printf("load set %q: %v", setName, err)
		httputil.InternalServerError(w, "failed to load command set")
		return
	}
	cmd, ok := set.Get(commandID)
	if !ok {
		httputil.NotFound(w, "no such command")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.WriteCommandReport(w, cmd); err != nil {
		log.Printf("report %s/%s: %v", setName, commandID, err)
	}
}
