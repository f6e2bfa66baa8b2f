package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Akshat29Upadhyay/chatpdf/internal/auth"
	"github.com/Akshat29Upadhyay/chatpdf/internal/config"
	"github.com/Akshat29Upadhyay/chatpdf/internal/filestore"
	"github.com/Akshat29Upadhyay/chatpdf/internal/ingest"
	"github.com/Akshat29Upadhyay/chatpdf/internal/models"
	"github.com/Akshat29Upadhyay/chatpdf/internal/providers"
	"github.com/Akshat29Upadhyay/chatpdf/internal/vectorindex"
)

// fallbackResponse is what the chat endpoint returns when every provider is
// exhausted. Provider failures never surface as an error status on this path.
const fallbackResponse = "Sorry, I couldn't answer that right now. Please try again later."

const pipelineTimeout = 2 * time.Minute

type Server struct {
	cfg       config.Config
	verifier  *auth.Verifier
	store     filestore.Store
	index     vectorindex.Index
	providers *providers.Manager
	indexer   *ingest.Indexer
}

func NewServer(cfg config.Config) (*Server, error) {
	pm, err := providers.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	store, err := filestore.New(cfg)
	if err != nil {
		return nil, err
	}
	idx, err := vectorindex.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:       cfg,
		verifier:  auth.NewVerifier(cfg.SessionSecret, cfg.SessionIssuer),
		store:     store,
		index:     idx,
		providers: pm,
		indexer:   ingest.New(cfg, pm, idx),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/pdf-upload", s.handleUpload)
	mux.HandleFunc("/pdfs", s.handlePDFs)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ownerID, err := s.verifier.OwnerID(r)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Message string `json:"message"`
		FileID  string `json:"fileId"`
		FileURL string `json:"fileUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeErr(w, http.StatusBadRequest, "Message is required")
		return
	}

	// Opportunistic retrieval. Absence of context is never a user-visible
	// error: any failure here is logged and the chat continues without it.
	message := req.Message
	if snippets, err := s.indexer.Search(r.Context(), ownerID, req.Message, s.cfg.RetrievalTopK); err != nil {
		log.Printf("context retrieval skipped: %v", err)
	} else if len(snippets) > 0 {
		var b strings.Builder
		b.WriteString(message)
		b.WriteString("\n\nContext from uploaded documents:\n")
		for _, sn := range snippets {
			fmt.Fprintf(&b, "[%s] %s\n", sn.DocumentName, sn.Text)
		}
		message = b.String()
	}

	// A document-grounded multimodal attempt takes priority over the plain
	// text chain when a document reference accompanies the message.
	if ref := firstNonEmpty(req.FileID, req.FileURL); ref != "" {
		if mm, ok := s.providers.Multimodal(); ok {
			if data, err := s.resolveDocument(r.Context(), ref); err != nil {
				log.Printf("document %s could not be resolved: %v", ref, err)
			} else {
				resp, _, err := mm.GenerateWithDocument(r.Context(), providers.DocumentRequest{
					Prompt:   req.Message,
					MIMEType: "application/pdf",
					Data:     data,
				})
				if err == nil && strings.TrimSpace(resp.Text) != "" {
					writeChatResponse(w, resp.Text)
					return
				}
				log.Printf("multimodal attempt failed, falling back to text chain: %v", err)
			}
		}
	}

	resp, _, err := s.providers.GenerateWithFallback(r.Context(), providers.GenerateRequest{
		Operation: "chat",
		Prompt:    message,
	})
	if err != nil {
		log.Printf("all chat providers exhausted: %v", err)
		writeJSON(w, http.StatusOK, map[string]any{"response": fallbackResponse})
		return
	}
	writeChatResponse(w, resp.Text)
}

func (s *Server) resolveDocument(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return filestore.FetchURL(ctx, nil, ref)
	}
	return s.store.Get(ctx, ref)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ownerID, err := s.verifier.OwnerID(r)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Header.Get("Content-Type") != "application/pdf" {
		writeErr(w, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}
	if header.Size > s.cfg.MaxUploadBytes {
		writeErr(w, http.StatusBadRequest, "File size too large")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not read upload")
		return
	}
	locator, err := s.store.Put(r.Context(), ownerID, header.Filename, data)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	doc := models.UploadedDocument{
		ID:             locator,
		OriginalName:   header.Filename,
		ByteSize:       header.Size,
		OwnerID:        ownerID,
		UploadedAt:     time.Now().UTC(),
		StorageLocator: locator,
	}
	log.Printf("pdf uploaded: owner=%s name=%s size=%d locator=%s", ownerID, doc.OriginalName, doc.ByteSize, locator)

	// Indexing is best-effort: a pipeline failure must not fail the upload,
	// so it runs detached from the request.
	docName := header.Filename
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
		defer cancel()
		if err := s.indexer.StoreDocument(ctx, ownerID, locator, docName, data); err != nil {
			log.Printf("indexing pipeline for %s failed: %v", locator, err)
		}
	}()

	refKey := "fileId"
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		refKey = "fileUrl"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"file":    doc,
		refKey:    locator,
		"message": "PDF uploaded successfully",
	})
}

func (s *Server) handlePDFs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, err := s.verifier.OwnerID(r); err != nil {
			writeErr(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		// There is no metadata store, so there is nothing to list yet.
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "PDF management endpoint ready",
			"note":    "PDF listing would require a database to store metadata",
		})
	case http.MethodDelete:
		ownerID, err := s.verifier.OwnerID(r)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var req struct {
			PDFID string `json:"pdfId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if strings.TrimSpace(req.PDFID) == "" {
			writeErr(w, http.StatusBadRequest, "PDF ID is required")
			return
		}
		// Best-effort cleanup: the endpoint reports success even when the
		// underlying delete fails.
		if err := s.indexer.DeleteDocument(r.Context(), ownerID, req.PDFID); err != nil {
			log.Printf("deleting chunks for %s failed: %v", req.PDFID, err)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "PDF deleted successfully",
		})
	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeChatResponse(w http.ResponseWriter, text string) {
	writeJSON(w, http.StatusOK, map[string]any{
		"response":  text,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
