package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	uploadService "github.com/GnandeepVenigalla/gd25th-backend/internal/services/upload"
	mediaTypes "github.com/GnandeepVenigalla/gd25th-backend/internal/types/media"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/utils/response"
)

var errFileTooLarge = errors.New("file exceeds the maximum allowed size")

type Handlers struct {
	uploads       *uploadService.Service
	maxFileSize   int64
	maxBatchFiles int
}

type StartRequest struct {
	Filename string `json:"filename" validate:"required"`
	Filetype string `json:"filetype" validate:"required"`
}

type StartResponse struct {
	Success  bool   `json:"success"`
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
}

type PartURLRequest struct {
	Key        string `json:"key" validate:"required"`
	UploadID   string `json:"uploadId" validate:"required"`
	PartNumber int    `json:"partNumber" validate:"required,min=1"`
}

type PartURLResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

type CompleteRequest struct {
	Key          string            `json:"key" validate:"required"`
	UploadID     string            `json:"uploadId" validate:"required"`
	Parts        []mediaTypes.Part `json:"parts" validate:"required,min=1"`
	OriginalName string            `json:"originalName" validate:"required"`
}

type BatchResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Files   []string `json:"files"`
}

// NewHandlers creates the upload handlers
func NewHandlers(uploads *uploadService.Service, maxFileSize int64, maxBatchFiles int) *Handlers {
	return &Handlers{
		uploads:       uploads,
		maxFileSize:   maxFileSize,
		maxBatchFiles: maxBatchFiles,
	}
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
		return false
	}

	if err := validator.New().Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
			return false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	return true
}

// Start opens a multipart upload session
// @Summary Start a multipart upload
// @Description Generate an object key and open a multipart session in the store
// @Tags upload
// @Accept json
// @Produce json
// @Param request body StartRequest true "File name and content type"
// @Success 200 {object} StartResponse "Session opened"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /api/upload/start [post]
func (h *Handlers) Start() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		uploadID, key, err := h.uploads.Start(r.Context(), req.Filename, req.Filetype)
		if err != nil {
			slog.Error("Failed to start upload", slog.String("error", err.Error()), slog.String("filename", req.Filename))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to start upload")))
			return
		}

		response.WriteJSON(w, http.StatusOK, StartResponse{
			Success:  true,
			UploadID: uploadID,
			Key:      key,
		})
	}
}

// GetPartURL presigns the upload of one part
// @Summary Get a presigned part upload URL
// @Description Produce a time-limited URL authorizing the PUT of one part
// @Tags upload
// @Accept json
// @Produce json
// @Param request body PartURLRequest true "Session and part number"
// @Success 200 {object} PartURLResponse "Presigned URL"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /api/upload/get-part-url [post]
func (h *Handlers) GetPartURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PartURLRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		url, err := h.uploads.PartURL(r.Context(), req.Key, req.UploadID, req.PartNumber)
		if err != nil {
			slog.Error("Failed to presign part URL", slog.String("error", err.Error()), slog.String("key", req.Key))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to generate upload URL")))
			return
		}

		response.WriteJSON(w, http.StatusOK, PartURLResponse{
			Success: true,
			URL:     url,
		})
	}
}

// Complete finalizes a multipart upload
// @Summary Complete a multipart upload
// @Description Finalize the session in the store and commit the file to the catalog
// @Tags upload
// @Accept json
// @Produce json
// @Param request body CompleteRequest true "Session, parts and original name"
// @Success 200 {object} response.Response "Upload completed"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /api/upload/complete [post]
func (h *Handlers) Complete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CompleteRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		status, err := h.uploads.Complete(r.Context(), req.Key, req.UploadID, req.Parts, req.OriginalName)
		if err != nil {
			slog.Error("Failed to complete upload", slog.String("error", err.Error()), slog.String("key", req.Key))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to complete upload")))
			return
		}

		message := "Upload completed"
		if status == uploadService.StatusUncataloged {
			message = "Upload completed, file type not shown in gallery"
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK(message, nil))
	}
}

// Upload handles the single-shot batch path
// @Summary Upload files through the relay
// @Description Stream up to 100 files straight to the object store, then catalog them
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Media files"
// @Success 200 {object} BatchResponse "Files uploaded"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /api/upload [post]
func (h *Handlers) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reader, err := r.MultipartReader()
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("multipart form with a files field is required")))
			return
		}

		// Phase one: stream every file to the object store.
		var stored []uploadService.StoredFile
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("malformed multipart body")))
				return
			}

			if part.FormName() != "files" || part.FileName() == "" {
				continue
			}

			if len(stored) >= h.maxBatchFiles {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
					fmt.Errorf("too many files, at most %d allowed", h.maxBatchFiles)))
				return
			}

			capped := &cappedReader{r: part, remaining: h.maxFileSize}
			file, err := h.uploads.StoreFile(r.Context(), part.FileName(), part.Header.Get("Content-Type"), capped, -1)
			if err != nil {
				if capped.exceeded {
					response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
						fmt.Errorf("%s exceeds the maximum file size", part.FileName())))
					return
				}
				slog.Error("Failed to store file", slog.String("error", err.Error()), slog.String("filename", part.FileName()))
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to upload file")))
				return
			}

			stored = append(stored, file)
		}

		if len(stored) == 0 {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("no files uploaded")))
			return
		}

		// Phase two: catalog writes. Objects are already durable; a failed
		// insert does not roll them back.
		if err := h.uploads.CommitBatch(r.Context(), stored); err != nil {
			slog.Error("Failed to save batch records", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
				errors.New("Upload successful but DB save failed")))
			return
		}

		locations := make([]string, 0, len(stored))
		for _, f := range stored {
			locations = append(locations, f.Location)
		}

		response.WriteJSON(w, http.StatusOK, BatchResponse{
			Success: true,
			Message: "Upload successful",
			Files:   locations,
		})
	}
}

// cappedReader fails the read once more than the allowed number of bytes
// has been consumed, instead of silently truncating.
type cappedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (c *cappedReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		c.exceeded = true
		return n, errFileTooLarge
	}
	return n, err
}
