package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgallion1/docnum/internal/numbering"
	"github.com/dgallion1/docnum/internal/pipeline"
	"golang.org/x/sync/errgroup"
)

// numberOptions overrides the server's numbering configuration for one
// request. Templates are markdown sources, not paths.
type numberOptions struct {
	Templates           []string `json:"templates"`
	KeepDefaultTemplate bool     `json:"keep_default_template"`
	GroupField          string   `json:"group_field"`
}

func (o *numberOptions) empty() bool {
	return o == nil || (len(o.Templates) == 0 && !o.KeepDefaultTemplate && o.GroupField == "")
}

type numberRequest struct {
	Markdown string         `json:"markdown"`
	Options  *numberOptions `json:"options,omitempty"`
}

type numberResponse struct {
	Markdown string          `json:"markdown"`
	Stats    numbering.Stats `json:"stats"`
}

type batchDocument struct {
	Name     string `json:"name"`
	Markdown string `json:"markdown"`
}

type batchRequest struct {
	Documents []batchDocument `json:"documents"`
	Options   *numberOptions  `json:"options,omitempty"`
}

type batchResult struct {
	Name     string           `json:"name"`
	Markdown string           `json:"markdown,omitempty"`
	Stats    *numbering.Stats `json:"stats,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// processorFor returns the server's processor, or a fresh one when the
// request carries its own options.
func (s *Server) processorFor(opts *numberOptions) *numbering.Processor {
	if opts.empty() {
		return s.orchestrator.Processor()
	}
	groupField := opts.GroupField
	if groupField == "" {
		groupField = s.cfg.GroupField
	}
	return numbering.New(numbering.Options{
		Templates:           opts.Templates,
		KeepDefaultTemplate: opts.KeepDefaultTemplate,
		GroupField:          groupField,
	}, s.log)
}

func (s *Server) handleNumber(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req numberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	proc := s.processorFor(req.Options)

	out, stats, err := pipeline.Number(proc, "document.md", []byte(req.Markdown), false)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(numberResponse{Markdown: string(out), Stats: stats})
}

func (s *Server) handleNumberBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10)

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Documents) == 0 {
		jsonError(w, "at least one document is required", http.StatusBadRequest)
		return
	}
	proc := s.processorFor(req.Options)

	results := make([]batchResult, len(req.Documents))
	g, ctx := errgroup.WithContext(r.Context())
	if s.cfg.MaxBatchConcurrency > 0 {
		g.SetLimit(s.cfg.MaxBatchConcurrency)
	}
	for i, doc := range req.Documents {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := doc.Name
			if name == "" {
				name = fmt.Sprintf("document-%d", i+1)
			}
			results[i].Name = name

			filename := sanitizeFilename(name)
			if !strings.HasSuffix(strings.ToLower(filename), ".md") {
				filename += ".md"
			}
			out, stats, err := pipeline.Number(proc, filename, []byte(doc.Markdown), false)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Markdown = string(out)
			results[i].Stats = &stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		jsonError(w, "batch aborted: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": results})
}
