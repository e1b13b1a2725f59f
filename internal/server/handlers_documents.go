package server

import (
	"io"
	"net/http"

	"github.com/lakmalw/cense/internal/interfaces"
)

// maxUploadSize bounds multipart document uploads.
const maxUploadSize = 20 << 20

// handleDocumentSlot handles POST (multipart upload) and GET (status) on
// /api/documents/{slot}.
func (s *Server) handleDocumentSlot(w http.ResponseWriter, r *http.Request, slotName string) {
	slot := interfaces.DocumentSlot(slotName)

	switch r.Method {
	case http.MethodGet:
		name := s.app.DocumentService.SlotName(slot)
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"slot":     slotName,
			"uploaded": name != "",
			"filename": name,
			"chars":    len(s.app.DocumentService.SlotText(slot)),
		})
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Form field 'file' is required")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Failed to read upload: "+err.Error())
			return
		}

		contentType := header.Header.Get("Content-Type")
		if err := s.app.DocumentService.StoreUpload(slot, header.Filename, contentType, data); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, map[string]interface{}{
			"slot":     slotName,
			"filename": header.Filename,
			"chars":    len(s.app.DocumentService.SlotText(slot)),
		})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}
