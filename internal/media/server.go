package media

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"chatsync/internal/dbmongo"
)

// HTTPServer makes mediaRef URLs dereferenceable: it streams blobs the
// pipeline landed in GridFS back to the render layer.
type HTTPServer struct {
	storage *dbmongo.MediaStorage
}

func NewHTTPServer(storage *dbmongo.MediaStorage) *HTTPServer {
	return &HTTPServer{storage: storage}
}

func (s *HTTPServer) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/media/{fileId}", s.serveFile).Methods("GET")
	router.HandleFunc("/health", s.health).Methods("GET")
	return router
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router().ServeHTTP(w, r)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	fileID := vars["fileId"]

	fileReader, stored, err := s.storage.Get(r.Context(), fileID)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	contentType := stored.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", stored.Size))

	if _, err := io.Copy(w, fileReader); err != nil {
		log.Printf("Error streaming file %s: %v", fileID, err)
	}
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("media server is healthy"))
}
