package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/intelsheet/internal/intel"
	"github.com/go-chi/chi/v5/middleware"
)

type companyRequest struct {
	Company string `json:"company"`
	Styled  bool   `json:"styled,omitempty"`
}

type compareRequest struct {
	Company1 string `json:"company1"`
	Company2 string `json:"company2"`
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleFetchIntel(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if !s.decode(w, r, &req) {
		return
	}

	doc, err := s.intel.Fetch(r.Context(), req.Company)
	if err != nil {
		s.fail(w, r, "fetch intel", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(map[string]any{"data": doc})
}

// decode reads a size-limited JSON body into v, answering 400 or 413
// itself when it cannot.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// fail maps rejected input to 400 and everything else to 500 carrying
// the error text.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, intel.ErrInvalidCompany) {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Error(op+" failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
