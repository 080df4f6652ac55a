package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/sectionize/internal/batch"
	"github.com/dgallion1/sectionize/internal/source"
)

// handleConvert accepts one uploaded document and responds with its
// records as a JSON array: the same array a batch run would append to
// the output file for this document.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !source.IsSupported(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	// Form fields override the server defaults per request.
	cfg := s.cfg
	if v := r.FormValue("language"); v != "" {
		cfg.Language = v
	}
	if v := r.FormValue("mode"); v != "" {
		cfg.MatchMode = v
	}
	if v := r.FormValue("direction"); v != "" {
		cfg.ScanDirection = v
	}
	if v := r.FormValue("no_outline"); v != "" {
		cfg.NoOutlinePolicy = v
	}
	if err := cfg.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The document readers work on files, so spool the upload to a temp
	// file carrying the original extension.
	tmp, err := os.CreateTemp("", "sectionize-*"+filepath.Ext(filename))
	if err != nil {
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	if n > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	doc, err := source.Open(tmp.Name())
	if err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	defer doc.Close()

	recs, err := batch.ConvertDocument(doc, filename, cfg, s.log)
	if err != nil {
		jsonError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.log.Info("converted upload", "filename", filename, "records", len(recs))

	w.Header().Set("Content-Type", "application/json")
	if len(recs) == 0 {
		w.Write([]byte("[]\n"))
		return
	}
	json.NewEncoder(w).Encode(recs)
}

// sanitizeFilename strips any path components from an uploaded name.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." || name == "/" {
		name = "upload"
	}
	return name
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
