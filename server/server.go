// Package server exposes the matrixwall command surface over HTTP. Handlers
// are thin: they parse the request into a protocol command, apply it through
// the controller, and map command errors onto status codes.
package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/BeatGlow/matrixwall"
	"github.com/BeatGlow/matrixwall/proto"
	"github.com/BeatGlow/matrixwall/storage"
)

// MaxBodySize bounds request bodies. The largest legitimate body is a full
// sprite payload.
const MaxBodySize = 2 << 20

// Server is the HTTP command surface.
type Server struct {
	controller *matrixwall.Controller
	mux        *http.ServeMux
}

var _ http.Handler = (*Server)(nil)

// New returns a handler serving the command API.
func New(controller *matrixwall.Controller) *Server {
	s := &Server{
		controller: controller,
		mux:        http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /api/state", s.handleState)
	s.mux.HandleFunc("POST /api/config", s.handleConfig)
	s.mux.HandleFunc("POST /api/settings", s.handleSettings)
	s.mux.HandleFunc("POST /api/storage/format", s.handleFormat)
	s.mux.HandleFunc("POST /api/storage/upload", s.handleUpload)
	s.mux.HandleFunc("POST /api/storage/exists", s.handleExists)
	s.mux.HandleFunc("POST /api/storage/delete", s.handleDelete)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	on, err := strconv.ParseBool(r.URL.Query().Get("on"))
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid on parameter")
		return
	}
	s.apply(w, proto.SetState{On: on})
}

// handleConfig expects a complete encoded SetConfig message as the body, so
// the binary codec validates the configuration before anything is installed.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		return
	}
	cmd, err := proto.DecodeCommand(body)
	if err != nil {
		failErr(w, err)
		return
	}
	if _, ok := cmd.(proto.SetConfig); !ok {
		fail(w, http.StatusBadRequest, fmt.Sprintf("expected a configuration message, got %T", cmd))
		return
	}
	s.apply(w, cmd)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	brightness, err := strconv.ParseUint(r.URL.Query().Get("brightness"), 10, 8)
	if err != nil || brightness > proto.MaxBrightness {
		fail(w, http.StatusBadRequest, "invalid brightness parameter")
		return
	}
	s.apply(w, proto.SetSettings{Brightness: uint8(brightness)})
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	s.apply(w, proto.StorageFormat{})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	key, ok := spriteKey(w, r)
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		return
	}
	// Schema-check the payload here, as the binary codec would.
	if _, err := proto.DecodeSprite(body); err != nil {
		failErr(w, err)
		return
	}
	s.apply(w, proto.StorageUpload{Key: key, Payload: body})
}

func (s *Server) handleExists(w http.ResponseWriter, r *http.Request) {
	key, ok := spriteKey(w, r)
	if !ok {
		return
	}
	result, err := s.controller.Apply(proto.StorageExists{Key: key})
	if err != nil {
		failErr(w, err)
		return
	}
	if result.Exists {
		io.WriteString(w, "Item exists")
	} else {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "Item does not exist")
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	key, ok := spriteKey(w, r)
	if !ok {
		return
	}
	s.apply(w, proto.StorageDelete{Key: key})
}

func (s *Server) apply(w http.ResponseWriter, cmd proto.Command) {
	if _, err := s.controller.Apply(cmd); err != nil {
		failErr(w, err)
		return
	}
	io.WriteString(w, "OK")
}

func spriteKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.URL.Query().Get("key")
	if err := storage.ValidateKey(key); err != nil {
		failErr(w, err)
		return "", false
	}
	return key, true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		fail(w, http.StatusBadRequest, "cannot read request body")
		return nil, err
	}
	return body, nil
}

// failErr maps command errors onto HTTP status codes.
func failErr(w http.ResponseWriter, err error) {
	var (
		decodeErr *proto.DecodeError
		violation *proto.SchemaViolation
	)
	switch {
	case errors.As(err, &decodeErr), errors.As(err, &violation),
		errors.Is(err, storage.ErrInvalidKey):
		fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrStoreFull):
		fail(w, http.StatusInsufficientStorage, err.Error())
	default:
		log.Printf("server: command failed: %v", err)
		fail(w, http.StatusInternalServerError, "internal error")
	}
}

func fail(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	io.WriteString(w, msg)
}
