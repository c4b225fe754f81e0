package server

import "net/http"

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/documents", s.handleCreate)
	mux.HandleFunc("GET /api/documents/{id}", s.handleGet)
	mux.HandleFunc("DELETE /api/documents/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/documents/{id}/text", s.handleDocumentText)
	mux.HandleFunc("GET /api/documents/{id}/pages/{n}/raster.png", s.handleRaster)
	mux.HandleFunc("GET /api/documents/{id}/pages/{n}/text", s.handlePageText)
	mux.HandleFunc("GET /ws/documents/{id}", s.handleWebSocket)
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}
