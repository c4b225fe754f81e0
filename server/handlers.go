package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tsawler/pdflayer/document"
	"github.com/tsawler/pdflayer/model"
	"github.com/tsawler/pdflayer/overlay"
)

// loadRequest is the JSON body of POST /api/documents.
type loadRequest struct {
	Source   string   `json:"source"`
	Password string   `json:"password,omitempty"`
	Width    float64  `json:"width,omitempty"`
	Scale    *float64 `json:"scale,omitempty"`
	FitWidth *bool    `json:"fitWidth,omitempty"`
}

type documentInfo struct {
	Version   string `json:"version,omitempty"`
	Encrypted bool   `json:"encrypted"`
	Size      int    `json:"size"`
}

type documentResponse struct {
	ID        string        `json:"id"`
	Source    string        `json:"source,omitempty"`
	State     string        `json:"state"`
	PageCount int           `json:"pageCount"`
	Info      *documentInfo `json:"info,omitempty"`
	Pages     []pageSummary `json:"pages"`
}

type pageSummary struct {
	Index    int      `json:"index"`
	Width    int      `json:"width,omitempty"` // raster pixels
	Height   int      `json:"height,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Deferred bool     `json:"deferred,omitempty"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type pageTextResponse struct {
	Index     int                       `json:"index"`
	Scale     float64                   `json:"scale"`
	Width     int                       `json:"width"`
	Height    int                       `json:"height"`
	Fragments []model.ProjectedFragment `json:"fragments"`
	Text      string                    `json:"text"`
}

func summarize(p document.Page) pageSummary {
	s := pageSummary{Index: p.Index, Deferred: p.Deferred}
	if p.Err != nil {
		s.Error = p.Err.Error()
	}
	if r := p.Result; r != nil {
		s.Scale = r.Scale
		if r.Raster != nil {
			s.Width, s.Height = r.Raster.Width, r.Raster.Height
		}
		for _, w := range r.Warnings {
			s.Warnings = append(s.Warnings, w.String())
		}
	}
	return s
}

func describe(doc *document.Document) documentResponse {
	resp := documentResponse{
		ID:        doc.ID.String(),
		Source:    doc.Source,
		State:     doc.State().String(),
		PageCount: doc.PageCount,
		Pages:     []pageSummary{},
	}
	if doc.Info != nil {
		resp.Info = &documentInfo{Version: doc.Info.Version, Encrypted: doc.Info.Encrypted, Size: doc.Info.Size}
	}
	for _, p := range doc.Pages() {
		resp.Pages = append(resp.Pages, summarize(p))
	}
	return resp
}

// handleCreate loads a document. A JSON body names a source to fetch; an
// application/pdf body is the document itself, with password and width
// taken from the query string.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	layout := s.cfg.ViewerLayout()
	textLayer, err := s.cfg.TextLayerConfig()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	req := document.Request{
		Layout:         layout,
		ContainerWidth: s.cfg.Layout.ContainerWidth,
		TextLayer:      textLayer,
		CaptureText:    s.cfg.TextLayer.CaptureText,
	}

	maxBytes := int64(s.cfg.Server.MaxUploadMB) << 20
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/pdf", "application/octet-stream":
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
		if err != nil {
			WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("failed to read body: %v", err))
			return
		}
		if len(data) == 0 {
			WriteError(w, http.StatusBadRequest, "empty body")
			return
		}
		q := r.URL.Query()
		req.Data = data
		req.Password = q.Get("password")
		if v := q.Get("width"); v != "" {
			width, err := strconv.ParseFloat(v, 64)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "invalid width")
				return
			}
			req.ContainerWidth = width
		}
	default:
		var body loadRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(body.Source) == "" {
			WriteError(w, http.StatusBadRequest, "source is required")
			return
		}
		if !s.sourceAllowed(body.Source) {
			WriteError(w, http.StatusForbidden, "local sources need fetch.file_root to be configured")
			return
		}
		req.Source = body.Source
		req.Password = body.Password
		if body.Width > 0 {
			req.ContainerWidth = body.Width
		}
		if body.Scale != nil {
			req.Layout.Scale = *body.Scale
		}
		if body.FitWidth != nil {
			req.Layout.FitWidth = *body.FitWidth
		}
	}

	doc, err := s.loader.Load(r.Context(), req)
	if err != nil {
		s.logger.Warn().Err(err).Str("source", req.Source).Msg("Document load failed")
		WriteError(w, loadStatus(err), err.Error())
		return
	}

	s.store.put(&entry{doc: doc, layout: req.Layout, container: req.ContainerWidth})
	s.logger.Info().
		Str("id", doc.ID.String()).
		Int("pages", doc.PageCount).
		Msg("Document loaded")

	WriteJSON(w, http.StatusCreated, describe(doc))
}

// sourceAllowed rejects local paths unless the fetcher is confined to a
// root directory.
func (s *Server) sourceAllowed(source string) bool {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"), strings.HasPrefix(source, "mem:"):
		return true
	default:
		return s.cfg.Fetch.FileRoot != ""
	}
}

// loadStatus maps a load failure to an HTTP status.
func loadStatus(err error) int {
	var fetchErr *model.FetchError
	switch {
	case errors.Is(err, model.ErrPassword):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrNotPDF):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*entry, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid document id")
		return nil, false
	}
	e, ok := s.store.get(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "document not found")
		return nil, false
	}
	return e, true
}

// lookupPage resolves {id} and the 0-based page index {n}. It writes the
// error response itself when the page has nothing to serve.
func (s *Server) lookupPage(w http.ResponseWriter, r *http.Request) (document.Page, bool) {
	e, ok := s.lookup(w, r)
	if !ok {
		return document.Page{}, false
	}
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid page index")
		return document.Page{}, false
	}
	page, ok := e.doc.Page(n)
	if !ok {
		WriteError(w, http.StatusNotFound, "page not found")
		return document.Page{}, false
	}
	switch {
	case page.Deferred:
		WriteError(w, http.StatusConflict, "page is waiting for a container width")
		return document.Page{}, false
	case page.Err != nil:
		WriteError(w, http.StatusUnprocessableEntity, page.Err.Error())
		return document.Page{}, false
	}
	return page, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, describe(e.doc))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	if !s.store.remove(id) {
		WriteError(w, http.StatusNotFound, "document not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDocumentText(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	text := e.doc.Text()
	if text == nil {
		text = []string{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":    e.doc.ID.String(),
		"pages": text,
	})
}

// handleRaster serves a page as PNG. With ?overlay=1 the text layer boxes
// are drawn over it.
func (s *Server) handleRaster(w http.ResponseWriter, r *http.Request) {
	page, ok := s.lookupPage(w, r)
	if !ok {
		return
	}
	result := page.Result
	if result.Raster == nil {
		WriteError(w, http.StatusNotFound, "page has no raster")
		return
	}

	var out image.Image = result.Raster.Image()
	if r.URL.Query().Get("overlay") == "1" {
		composite, err := overlay.Composite(result.Raster, result.Projected, overlay.DefaultOptions())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = composite
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := overlay.EncodePNG(w, out); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write PNG")
	}
}

func (s *Server) handlePageText(w http.ResponseWriter, r *http.Request) {
	page, ok := s.lookupPage(w, r)
	if !ok {
		return
	}
	result := page.Result
	resp := pageTextResponse{
		Index:     result.Index,
		Scale:     result.Scale,
		Fragments: result.Projected,
		Text:      result.Text,
	}
	if resp.Fragments == nil {
		resp.Fragments = []model.ProjectedFragment{}
	}
	if result.Raster != nil {
		resp.Width, resp.Height = result.Raster.Width, result.Raster.Height
	}
	WriteJSON(w, http.StatusOK, resp)
}
