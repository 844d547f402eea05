package handler

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/ledgerline/dashboard/internal/api/middleware"
	"github.com/ledgerline/dashboard/internal/api/response"
	"github.com/ledgerline/dashboard/internal/mutation"
	"github.com/ledgerline/dashboard/internal/upload"
)

// maxBodySize bounds a form submission. It is well above the image limit so an
// oversize image reaches validation and is reported as a field error.
const maxBodySize = 10 << 20

const maxMultipartMemory = 4 << 20

// parseForm reads a multipart or urlencoded body. It writes the error
// response itself and reports whether the handler should continue.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxMultipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return true
	}

	requestID := middleware.GetRequestID(r.Context())
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.Err(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body is too large", requestID)
		return false
	}
	response.Err(w, http.StatusBadRequest, "INVALID_FORM", "Request body must be a form", requestID)
	return false
}

// formFile returns the uploaded file in field, or nil when none was sent.
// The returned close function must be called once the file is consumed.
func formFile(r *http.Request, field string) (*upload.File, func()) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, func() {}
	}
	return fileFromPart(f, hdr), func() { f.Close() }
}

func fileFromPart(f multipart.File, hdr *multipart.FileHeader) *upload.File {
	return &upload.File{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Size:        hdr.Size,
		Content:     f,
	}
}

// writeResult maps a mutation outcome to a status code and writes the result
// as the envelope data.
func writeResult(w http.ResponseWriter, r *http.Request, res mutation.Result, successStatus int) {
	requestID := middleware.GetRequestID(r.Context())
	msg := ""
	if res.Message != nil {
		msg = *res.Message
	}

	switch res.Outcome {
	case mutation.Committed:
		response.Success(w, successStatus, res, requestID)
	case mutation.Rejected:
		response.ErrWithData(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", msg, res, requestID)
	case mutation.NotFound:
		response.ErrWithData(w, http.StatusNotFound, "NOT_FOUND", msg, res, requestID)
	case mutation.StoreFailed:
		response.ErrWithData(w, http.StatusInternalServerError, "STORAGE_ERROR", msg, res, requestID)
	default:
		if res.Outcome != mutation.Failed {
			slog.Error("unexpected mutation outcome", "outcome", res.Outcome.String(), "requestId", requestID)
		}
		response.ErrWithData(w, http.StatusInternalServerError, "DATABASE_ERROR", msg, res, requestID)
	}
}
