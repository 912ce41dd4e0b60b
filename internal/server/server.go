package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mpetrov/imgstash/internal/files"
	"github.com/mpetrov/imgstash/internal/fs"
	"github.com/mpetrov/imgstash/internal/imgproc"
	"github.com/mpetrov/imgstash/internal/sqlite"
)

type Config struct {
	UploadDir     string `env:"IMGSTASH_UPLOAD_DIR,required"`
	DBPath        string `env:"IMGSTASH_DB_PATH,required"`
	Addr          string `env:"IMGSTASH_ADDR" envDefault:":8080"`
	MaxUploadSize int64  `env:"IMGSTASH_MAX_UPLOAD_SIZE" envDefault:"33554432"`
}

// New wires storage, repository, and service and returns the HTTP server.
// A storage root or database that cannot be initialized is fatal.
func New(cfg *Config) (*http.Server, error) {
	// Initialize structured logger with JSON handler
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	blobs, err := fs.NewStorage(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("initialize blob storage: %w", err)
	}

	repo, err := sqlite.NewRepository(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize repository: %w", err)
	}

	fileService := files.NewService(repo, blobs, imgproc.NewNormalizer())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthz)
	mux.HandleFunc("POST /api/files/upload", uploadFile(cfg, fileService))
	mux.HandleFunc("DELETE /api/files/delete/{name}", deleteFile(fileService))
	mux.HandleFunc("GET /api/files/metadata", listFiles(fileService))
	mux.HandleFunc("GET /api/files/summary", getSummary(fileService))
	mux.HandleFunc("GET /api/files/download/{name}", downloadFile(fileService))

	handler := loggingMiddleware(limitBody(mux, cfg.MaxUploadSize))

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}, nil
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

// statusFor maps service error kinds onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, files.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, files.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, files.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func uploadFile(cfg *Config, fileService *files.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(cfg.MaxUploadSize); err != nil {
			writeError(w, "Failed to parse multipart form", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, "No file provided", http.StatusBadRequest)
			return
		}
		defer file.Close()

		raw, err := io.ReadAll(file)
		if err != nil {
			writeError(w, "Failed to read file", http.StatusBadRequest)
			return
		}

		name, err := fileService.Store(r.Context(), header.Filename, raw)
		if err != nil {
			slog.Error("Upload failed", "error", err, "filename", header.Filename)
			writeError(w, err.Error(), statusFor(err))
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "File uploaded successfully: %s", name)
	}
}

func deleteFile(fileService *files.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		if err := fileService.Delete(r.Context(), name); err != nil {
			slog.Error("Delete failed", "error", err, "filename", name)
			writeError(w, err.Error(), statusFor(err))
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "File deleted successfully: %s", name)
	}
}

func listFiles(fileService *files.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := fileService.List(r.Context())
		if err != nil {
			slog.Error("List files failed", "error", err)
			writeError(w, "Failed to list files", statusFor(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(records); err != nil {
			slog.Error("Failed to encode files list", "error", err)
		}
	}
}

func getSummary(fileService *files.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := fileService.Summary(r.Context())
		if err != nil {
			slog.Error("Summary failed", "error", err)
			writeError(w, "Failed to compute summary", statusFor(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(summary); err != nil {
			slog.Error("Failed to encode summary", "error", err)
		}
	}
}

func downloadFile(fileService *files.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		record, data, err := fileService.Download(r.Context(), name)
		if err != nil {
			slog.Error("Download failed", "error", err, "filename", name)
			writeError(w, err.Error(), statusFor(err))
			return
		}

		// Stored blobs are always re-encoded JPEG.
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Name))
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func limitBody(next http.Handler, maxSize int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests with structured logging
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		// Create a response writer wrapper to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)

		slog.Info("HTTP request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", duration.Milliseconds(),
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
