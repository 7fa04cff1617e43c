package webutils

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

func WriteFileHeaders(w http.ResponseWriter, name string, size int) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(name))
	if size >= 0 {
		w.Header().Set("Content-Length", strconv.Itoa(size))
	}
}

func WriteFile(w http.ResponseWriter, data []byte, name string) {
	WriteFileHeaders(w, name, len(data))
	WriteResult(w, data)
}

func WriteJson(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		WriteError(w, errors.Wrap(err, "Failed to marshal"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	WriteResult(w, res)
}

// ReadFormFile returns content of uploaded form file key, only POST is accepted
func ReadFormFile(r *http.Request, key string) ([]byte, error) {
	if r.Method != http.MethodPost {
		return nil, errors.Errorf("Invalid http method %q", r.Method)
	}
	f, _, err := r.FormFile(key)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to get form file %q", key)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read form file %q", key)
	}
	return data, nil
}

func WriteResult(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		log.Warn().Err(err).Msg("Error when writing response")
	}
}

// WriteError responds with json {"error": ...}. Missing files give 404.
func WriteError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, os.ErrNotExist) {
		code = http.StatusNotFound
	}
	WriteErrorCode(w, code, err)
}

func WriteErrorCode(w http.ResponseWriter, code int, err error) {
	type jError struct {
		Error string `json:"error"`
	}
	data, merr := json.Marshal(&jError{Error: err.Error()})
	if merr != nil {
		log.Error().Err(merr).Msgf("Error marshaling error '%v'", err)
		http.Error(w, err.Error(), code)
		return
	}
	log.Warn().Int("code", code).Err(err).Msg("Request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	WriteResult(w, data)
}
