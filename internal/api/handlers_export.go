package api

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dgallion1/intelsheet/internal/cleanjson"
	"github.com/dgallion1/intelsheet/internal/export"
	"github.com/dgallion1/intelsheet/internal/flatten"
	"github.com/dgallion1/intelsheet/internal/intel"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if !s.decode(w, r, &req) {
		return
	}
	company, rows, ok := s.fetchRows(w, r, req.Company)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, rows, req.Styled); err != nil {
		s.fail(w, r, "export excel", err)
		return
	}
	name := export.XLSXName(company)
	if req.Styled {
		name = export.StyledXLSXName(company)
	}
	s.saveAndSend(w, name, export.ContentTypeXLSX, buf.Bytes())
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if !s.decode(w, r, &req) {
		return
	}
	company, rows, ok := s.fetchRows(w, r, req.Company)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rows); err != nil {
		s.fail(w, r, "export csv", err)
		return
	}
	s.saveAndSend(w, export.CSVName(company), export.ContentTypeCSV, buf.Bytes())
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	name, data, ok := s.buildComparison(w, r)
	if !ok {
		return
	}
	s.saveAndSend(w, name, export.ContentTypeDOCX, data)
}

func (s *Server) handleCompareURL(w http.ResponseWriter, r *http.Request) {
	name, data, ok := s.buildComparison(w, r)
	if !ok {
		return
	}
	if _, err := export.SaveFile(s.cfg.DataDir, name, data); err != nil {
		s.fail(w, r, "save comparison", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"url": s.fileURL(name)})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != sanitizeFilename(name) || strings.HasPrefix(name, ".") {
		jsonError(w, "invalid file name", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.cfg.DataDir, name))
}

// fetchRows asks the model about one company and flattens its checklist.
func (s *Server) fetchRows(w http.ResponseWriter, r *http.Request, company string) (string, []flatten.Row, bool) {
	company, err := intel.NormalizeCompany(company)
	if err != nil {
		s.fail(w, r, "export", err)
		return "", nil, false
	}
	doc, err := s.intel.Fetch(r.Context(), company)
	if err != nil {
		s.fail(w, r, "export", err)
		return "", nil, false
	}
	return company, flatten.Flatten(cleanjson.Checklist(doc), flatten.Separator), true
}

func (s *Server) buildComparison(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	var req compareRequest
	if !s.decode(w, r, &req) {
		return "", nil, false
	}
	c1, err := intel.NormalizeCompany(req.Company1)
	if err != nil {
		s.fail(w, r, "compare", err)
		return "", nil, false
	}
	c2, err := intel.NormalizeCompany(req.Company2)
	if err != nil {
		s.fail(w, r, "compare", err)
		return "", nil, false
	}

	doc1, doc2, err := s.intel.Pair(r.Context(), c1, c2)
	if err != nil {
		s.fail(w, r, "compare", err)
		return "", nil, false
	}

	var buf bytes.Buffer
	a := export.Side{Name: c1, Checklist: cleanjson.Checklist(doc1)}
	b := export.Side{Name: c2, Checklist: cleanjson.Checklist(doc2)}
	if err := export.WriteComparison(&buf, s.cfg.DocxTemplate, a, b); err != nil {
		s.fail(w, r, "compare", err)
		return "", nil, false
	}
	return export.ComparisonName(c1, c2), buf.Bytes(), true
}

// saveAndSend keeps a copy in the data dir and returns data as a download.
// A failed save is logged, not fatal.
func (s *Server) saveAndSend(w http.ResponseWriter, name, contentType string, data []byte) {
	if _, err := export.SaveFile(s.cfg.DataDir, name, data); err != nil {
		s.log.Warn("could not keep export", "file", name, "error", err)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Write(data)
}

func (s *Server) fileURL(name string) string {
	return s.cfg.PublicBaseURL + "/files/" + url.PathEscape(name)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
