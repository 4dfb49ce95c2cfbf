package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lvrach/chatmark/internal/annotate"
)

// Compiler turns chat text into display text and annotations.
type Compiler interface {
	Format(text string) annotate.Result
}

type compileRequest struct {
	Text  *string  `json:"text,omitempty"`
	Texts []string `json:"texts,omitempty"`
}

type compileBatchResponse struct {
	Results []annotate.Result `json:"results"`
}

type handler struct {
	compiler Compiler
	maxBody  int64
}

func (h *handler) compile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	switch {
	case req.Text != nil && req.Texts != nil:
		writeJSON(w, http.StatusBadRequest, errorBody(`set either "text" or "texts", not both`))
	case req.Text != nil:
		if strings.TrimSpace(*req.Text) == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("text is empty"))
			return
		}
		writeJSON(w, http.StatusOK, h.compiler.Format(*req.Text))
	case len(req.Texts) > 0:
		resp := compileBatchResponse{Results: make([]annotate.Result, len(req.Texts))}
		for i, text := range req.Texts {
			resp.Results[i] = h.compiler.Format(text)
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody(`missing "text"`))
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
