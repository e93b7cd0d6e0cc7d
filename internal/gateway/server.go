// Package gateway is the render-layer surface: one websocket per open
// conversation carrying both realtime streams, plus an HTTP endpoint for
// media sends.
package gateway

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"chatsync/internal/chat/conversation"
	"chatsync/internal/chat/service"
	"chatsync/internal/common"
	"chatsync/internal/identity"
	"chatsync/internal/media"
	"chatsync/internal/presence"
	"chatsync/internal/typing"
	"chatsync/internal/user"
)

type Server struct {
	service        service.ChatService
	typingChannel  typing.Channel
	pipeline       *media.Pipeline
	identity       identity.Provider
	users          user.UserRepository
	typingRate     int
	presenceWriter presence.Writer
}

func NewServer(
	chatService service.ChatService,
	typingChannel typing.Channel,
	pipeline *media.Pipeline,
	identityProvider identity.Provider,
	users user.UserRepository,
	typingRate int,
) *Server {
	return &Server{
		service:        chatService,
		typingChannel:  typingChannel,
		pipeline:       pipeline,
		identity:       identityProvider,
		users:          users,
		typingRate:     typingRate,
		presenceWriter: presence.NewRepositoryWriter(users),
	}
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/ws", s.handleWebSocket)
	router.HandleFunc("/send/media", s.handleSendMedia).Methods("POST")
	router.HandleFunc("/users", s.handleListUsers).Methods("GET")
	return router
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleWebSocket opens one conversation view: it resolves the conversation
// key from the session and the peer id, subscribes both streams and runs the
// client pumps until the socket closes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	session, err := s.identity.SessionFromToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid session", http.StatusUnauthorized)
		return
	}

	peerID := r.URL.Query().Get("peer")
	if peerID == "" {
		http.Error(w, "peer required", http.StatusBadRequest)
		return
	}

	conversationKey := conversation.Key(session.UserID, peerID)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := newClient(s, conn, session, peerID, conversationKey)
	if err := client.start(r.Context()); err != nil {
		log.Printf("subscription setup failed for %s: %v", conversationKey, err)
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// handleSendMedia runs the attachment pipeline and, on success, dispatches
// the resulting media message through the composer.
func (s *Server) handleSendMedia(w http.ResponseWriter, r *http.Request) {
	session, err := s.identity.SessionFromToken(r.FormValue("token"))
	if err != nil {
		http.Error(w, "invalid session", http.StatusUnauthorized)
		return
	}

	peerID := r.FormValue("peer")
	msgType := common.MessageType(r.FormValue("type"))
	if peerID == "" || !msgType.IsValid() || msgType == common.MessageTypeText {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	req := media.Request{
		Type:            msgType,
		ConversationKey: conversation.Key(session.UserID, peerID),
		UploaderID:      session.UserID,
	}

	if msgType.RequiresUpload() {
		localPath, cleanup, err := spoolUpload(r)
		if err != nil {
			http.Error(w, "upload read failed", http.StatusBadRequest)
			return
		}
		defer cleanup()
		req.LocalPath = localPath
	}

	if msgType == common.MessageTypeContact {
		req.Contact = contactFromForm(r)
	}

	// device-side signals (position fix, permission outcome) ride along in
	// the context for the pipeline's providers
	ctx := media.WithDeviceReport(r.Context(), deviceReportFromForm(r))

	mediaRef, err := s.pipeline.Resolve(ctx, req)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	saved, err := s.service.Send(r.Context(), service.Draft{
		ConversationKey: req.ConversationKey,
		SenderID:        session.UserID,
		SenderName:      session.DisplayName,
		Type:            msgType,
		MediaRef:        mediaRef,
	})
	if err != nil {
		http.Error(w, "send failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(saved.ID))
}

// handleListUsers serves the peer roster.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	session, err := s.identity.SessionFromToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid session", http.StatusUnauthorized)
		return
	}

	others, err := s.users.ListOthers(r.Context(), session.UserID)
	if err != nil {
		http.Error(w, "listing failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, others)
}

func writePipelineError(w http.ResponseWriter, err error) {
	var uploadErr *common.UploadError
	switch {
	case errors.Is(err, common.ErrUserCancelled):
		// a dismissed picker is a normal exit, not a failure
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, common.ErrPermissionDenied):
		http.Error(w, "contacts permission denied", http.StatusForbidden)
	case errors.As(err, &uploadErr):
		http.Error(w, uploadErr.Error(), http.StatusBadGateway)
	default:
		http.Error(w, "attachment failed", http.StatusInternalServerError)
	}
}

// spoolUpload copies the multipart body to a temp file so the pipeline gets
// a plain local path, the same shape a device picker hands over. Each
// request spools into its own directory: the original filename stays
// visible in the store path without two uploads ever sharing a target.
func spoolUpload(r *http.Request) (string, func(), error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	dir, err := os.MkdirTemp("", "chatsync-upload-")
	if err != nil {
		return "", nil, err
	}

	named := filepath.Join(dir, filepath.Base(header.Filename))
	out, err := os.Create(named)
	if err != nil {
		os.RemoveAll(dir)
		return "", nil, err
	}

	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.RemoveAll(dir)
		return "", nil, err
	}
	out.Close()

	return named, func() { os.RemoveAll(dir) }, nil
}

func deviceReportFromForm(r *http.Request) media.DeviceReport {
	report := media.DeviceReport{}

	if latStr, lngStr := r.FormValue("lat"), r.FormValue("lng"); latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr == nil && lngErr == nil {
			report.Position = &media.Position{Latitude: lat, Longitude: lng}
		}
	}

	if outcome := r.FormValue("contacts_permission"); outcome != "" {
		report.ContactsChecked = true
		report.ContactsGranted = outcome == "granted"
	}

	return report
}

func contactFromForm(r *http.Request) *media.Contact {
	given := r.FormValue("contact_given")
	family := r.FormValue("contact_family")
	phone := r.FormValue("contact_phone")
	if given == "" && family == "" && phone == "" {
		return nil
	}
	return &media.Contact{GivenName: given, FamilyName: family, PhoneNumber: phone}
}
