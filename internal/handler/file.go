package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/dangerclosesec/dealroom/internal/service"
	"github.com/google/uuid"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// FileHandler serves document uploads, file administration and image uploads.
type FileHandler struct {
	files    *service.FileService
	images   *service.ImageService
	maxBytes int64
}

func NewFileHandler(files *service.FileService, images *service.ImageService, maxBytes int64) *FileHandler {
	return &FileHandler{files: files, images: images, maxBytes: maxBytes}
}

// readMultipart bounds the body and parses the form. It answers the request
// itself when the body is unusable.
func (h *FileHandler) readMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusBadRequest, domain.ErrUploadTooLarge.Error())
			return false
		}
		respondWithError(w, http.StatusBadRequest, "No file uploaded")
		return false
	}
	return true
}

type uploadResponse struct {
	Success    bool        `json:"success"`
	PublicURL  string      `json:"publicUrl"`
	FilePath   string      `json:"filePath"`
	FileRecord *model.File `json:"fileRecord"`
}

func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if !h.readMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	var metadata service.FileMetadata
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid metadata")
			return
		}
	}

	out, err := h.files.Upload(r.Context(), callerFrom(r), service.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		Metadata:    metadata,
	})
	if err != nil {
		var storageErr *service.StorageError
		if errors.As(err, &storageErr) {
			logError(r, "Error storing uploaded file", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to upload file: "+storageErr.Error())
			return
		}
		respondWithDomainError(w, r, "Error recording uploaded file", err)
		return
	}

	respondWithJSON(w, http.StatusOK, uploadResponse{
		Success:    true,
		PublicURL:  out.PublicURL,
		FilePath:   out.FilePath,
		FileRecord: out.File,
	})
}

func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity id")
		return
	}

	files, err := h.files.ListForOpportunity(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, "Error listing files", err)
		return
	}
	respondWithProjection(w, http.StatusOK, files, callerFrom(r))
}

func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	oppID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity id")
		return
	}
	fileID, err := uuid.Parse(r.URL.Query().Get("fileId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "fileId is required")
		return
	}

	if err := h.files.Delete(r.Context(), callerFrom(r), oppID, fileID); err != nil {
		respondWithDomainError(w, r, "Error deleting file", err)
		return
	}
	respondWithJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

type fileVisibilityRequest struct {
	Visibility model.FileVisibility `json:"visibility"`
}

func (h *FileHandler) SetFileVisibility(w http.ResponseWriter, r *http.Request) {
	oppID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity id")
		return
	}
	fileID, ok := pathID(r, "fileId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid file id")
		return
	}

	var req fileVisibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.files.SetVisibility(r.Context(), callerFrom(r), oppID, fileID, req.Visibility); err != nil {
		respondWithDomainError(w, r, "Error changing file visibility", err)
		return
	}
	respondWithJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// UploadImage re-encodes a section image and answers with its public URL, its
// key as id and any metadata the client sent along.
func (h *FileHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if !h.readMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	response := map[string]interface{}{}
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &response); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid metadata")
			return
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	out, err := h.images.Upload(r.Context(), data)
	if err != nil {
		logError(r, "Error uploading image", err)
		var storageErr *service.StorageError
		switch {
		case errors.Is(err, domain.ErrUnsupportedImage):
			respondWithError(w, http.StatusBadRequest, "Unsupported image")
		case errors.As(err, &storageErr):
			respondWithError(w, http.StatusInternalServerError, "Failed to upload file: "+storageErr.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	response["publicUrl"] = out.PublicURL
	response["id"] = out.Key
	response["width"] = out.Width
	response["height"] = out.Height
	respondWithJSON(w, http.StatusOK, response)
}

// UserFiles lists the files of a visible opportunity that the investor may read.
func (h *FileHandler) UserFiles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusNotFound, "Opportunity not found")
		return
	}

	caller := callerFrom(r)
	files, err := h.files.VisibleFiles(r.Context(), policy.ViewerFor(caller), id)
	if err != nil {
		respondWithDomainError(w, r, "Error listing investor files", err)
		return
	}
	respondWithProjection(w, http.StatusOK, files, caller)
}
