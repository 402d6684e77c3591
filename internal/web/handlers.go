package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvunion/internal/core"
	"github.com/JonMunkholm/csvunion/internal/export"
	"github.com/JonMunkholm/csvunion/internal/logging"
	"github.com/JonMunkholm/csvunion/internal/manifest"
	"github.com/JonMunkholm/csvunion/internal/source"
)

const (
	// maxRequestBody caps a JSON merge request.
	maxRequestBody = 1 << 20

	// multipartMemory is the part of an upload kept in memory before
	// spilling to temporary files.
	multipartMemory = 32 << 20
)

// mergeRequest is the body of POST /api/merge.
type mergeRequest struct {
	Tables []core.TableSpec `json:"tables"`
	Format string           `json:"format"`
}

// mergeResponse wraps the JSON views of a merge.
type mergeResponse struct {
	RunID    string                     `json:"run_id"`
	Fields   []string                   `json:"fields"`
	Types    map[string]core.ScalarType `json:"types"`
	Sources  []core.SourceSpan          `json:"sources"`
	RowCount int                        `json:"row_count"`
	Data     any                        `json:"data"`
}

// inferResponse is the body of POST /api/infer.
type inferResponse struct {
	Name   string           `json:"name"`
	Rows   int              `json:"rows"`
	Fields []core.FieldType `json:"fields"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"merges": s.limiter.Status(),
	})
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, r, badRequest(err))
		return
	}

	format, err := parseFormat(req.Format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	for i, spec := range req.Tables {
		if spec.Name == "" || spec.Locator == "" {
			s.respondError(w, r, fmt.Errorf("%w: tables[%d] needs a name and a locator", core.ErrInvalidRequest, i))
			return
		}
	}

	logging.FromContext(r.Context()).Info("merge requested", "tables", len(req.Tables), "format", format)
	res, err := s.runMerge(r.Context(), func(ctx context.Context) (*core.MergeResult, error) {
		return s.service.Merge(ctx, req.Tables)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeResult(w, r, format, res)
}

func (s *Server) handleMergeQuery(w http.ResponseWriter, r *http.Request) {
	format, err := parseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.mergeFromQuery(w, r, format)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.mergeFromQuery(w, r, export.FormatHTML)
}

// mergeFromQuery merges the tables named by repeated t=name=locator
// parameters.
func (s *Server) mergeFromQuery(w http.ResponseWriter, r *http.Request, format export.Format) {
	specs, err := querySpecs(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.runMerge(r.Context(), func(ctx context.Context) (*core.MergeResult, error) {
		return s.service.Merge(ctx, specs)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeResult(w, r, format, res)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	format, err := parseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	uploads, err := s.readUploads(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("upload merge requested", "tables", len(uploads), "format", format)
	res, err := s.runMerge(r.Context(), func(ctx context.Context) (*core.MergeResult, error) {
		return s.service.MergeUploads(ctx, uploads)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeResult(w, r, format, res)
}

// handleInfer builds one table and reports its schema. The table is either
// the single "file" part of a multipart form or the raw request body, named
// by ?name=.
func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {
	var upload core.Upload

	if isMultipart(r) {
		uploads, err := s.readUploads(w, r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if len(uploads) != 1 {
			s.respondError(w, r, fmt.Errorf("%w: want exactly one file, got %d", core.ErrInvalidRequest, len(uploads)))
			return
		}
		upload = uploads[0]
	} else {
		body := http.MaxBytesReader(w, r.Body, s.cfg.Merge.MaxUploadSize)
		text, err := source.ReadText(body, s.cfg.Fetch.MaxBytes)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		upload = core.Upload{Name: r.URL.Query().Get("name"), Text: text}
		if upload.Name == "" {
			upload.Name = "table"
		}
	}

	t, err := s.service.BuildText(upload.Name, upload.Text)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, inferResponse{
		Name:   t.Name(),
		Rows:   t.Len(),
		Fields: t.Schema(),
	})
}

// readUploads reads every "file" part. A table is named after its file name
// without the extension.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request) ([]core.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Merge.MaxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, badRequest(err)
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	uploads := make([]core.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
		}
		text, err := source.ReadText(f, s.cfg.Fetch.MaxBytes)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("upload %q: %w", fh.Filename, err)
		}
		uploads = append(uploads, core.Upload{Name: manifest.NameFromPath(fh.Filename), Text: text})
	}
	return uploads, nil
}

// runMerge runs fn in a merge slot under the merge timeout.
func (s *Server) runMerge(ctx context.Context, fn func(context.Context) (*core.MergeResult, error)) (*core.MergeResult, error) {
	if s.cfg.Merge.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Merge.Timeout)
		defer cancel()
	}

	var res *core.MergeResult
	err := s.limiter.Do(ctx, func() error {
		var err error
		res, err = fn(ctx)
		return err
	})
	return res, err
}

// writeResult encodes a merge in format. JSON views are wrapped with the
// merge metadata; the other formats stream the table alone with the run ID in
// a header.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, format export.Format, res *core.MergeResult) {
	m := res.Merged

	switch format {
	case export.FormatRows, export.FormatColumns, export.FormatMatrix:
		data, err := export.View(format, m)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, mergeResponse{
			RunID:    res.RunID,
			Fields:   m.Fields,
			Types:    m.Types,
			Sources:  m.Sources,
			RowCount: len(m.Rows),
			Data:     data,
		})
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("X-Run-ID", res.RunID)
	switch format {
	case export.FormatCSV:
		w.Header().Set("Content-Disposition", `attachment; filename="merged.csv"`)
	case export.FormatArrow:
		w.Header().Set("Content-Disposition", `attachment; filename="merged.arrows"`)
	}

	if err := export.Write(w, format, m); err != nil {
		// Part of the body may already be out; the status cannot change.
		logging.FromContext(r.Context()).Error("write merge result", "format", format, "error", err)
	}
}

func parseFormat(s string) (export.Format, error) {
	f, err := export.ParseFormat(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	}
	return f, nil
}

func querySpecs(r *http.Request) ([]core.TableSpec, error) {
	args := r.URL.Query()["t"]
	if len(args) == 0 {
		return nil, core.ErrNoTables
	}
	specs, err := manifest.ParseSpecs(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	}
	return specs, nil
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mt, "multipart/")
}

// badRequest marks err as an unreadable request unless the body was simply
// too large, which keeps its own code.
func badRequest(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return err
	}
	return fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
}
