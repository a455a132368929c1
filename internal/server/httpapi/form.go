package httpapi

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/dmitrijs2005/backoffice/internal/validation"
)

const maxUploadBytes = 16 << 20

var errBadBody = errors.New("malformed request body")

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// upload is a file received with a multipart request.
type upload struct {
	Header *multipart.FileHeader
	// Stored is the public path the record refers to.
	Stored string
}

// decodeInput reads a JSON or multipart body into dst and validates it.
// On failure it has already written the response and returns false.
func decodeInput(w http.ResponseWriter, r *http.Request, dst any) (map[string]upload, bool) {
	files := map[string]upload{}

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, errBadBody.Error())
			return nil, false
		}
		if fields := validation.Decode(dst, r.MultipartForm.Value); len(fields) > 0 {
			writeInvalid(w, fields)
			return nil, false
		}
		for field, fhs := range r.MultipartForm.File {
			if len(fhs) == 0 {
				continue
			}
			files[field] = upload{Header: fhs[0], Stored: path.Join("uploads", field, path.Base(fhs[0].Filename))}
		}
	} else if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			writeError(w, http.StatusBadRequest, errBadBody.Error())
			return nil, false
		}
	}

	if fields := validation.Struct(dst); len(fields) > 0 {
		writeInvalid(w, fields)
		return nil, false
	}
	return files, true
}
