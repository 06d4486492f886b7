package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docnum/internal/doctree"
	"github.com/dgallion1/docnum/internal/numbering"
	"github.com/dgallion1/docnum/internal/parser"
	"github.com/dgallion1/docnum/internal/render"
)

// Parse converts an upload into a document tree using the parser registered
// for its extension.
func Parse(filename string, data []byte, pdfFallback bool) (*doctree.Node, error) {
	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	if pp, ok := p.(*parser.PDFParser); ok {
		pp.FallbackPdftotext = pdfFallback
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return tree, nil
}

// Number runs the numbering pass over an upload and renders the result as
// markdown.
func Number(proc *numbering.Processor, filename string, data []byte, pdfFallback bool) ([]byte, numbering.Stats, error) {
	start := time.Now()
	tree, err := Parse(filename, data, pdfFallback)
	if err != nil {
		documentsTotal.WithLabelValues(string(StatusFailed)).Inc()
		return nil, numbering.Stats{}, err
	}
	stats := proc.Process(tree)
	out := []byte(render.Markdown(tree))

	processingSeconds.Observe(time.Since(start).Seconds())
	documentsTotal.WithLabelValues(string(StatusCompleted)).Inc()
	observe(stats)
	return out, stats, nil
}

// Worker processes a single document job.
type Worker struct {
	proc        *numbering.Processor
	log         *slog.Logger
	pdfFallback bool
}

func NewWorker(proc *numbering.Processor, log *slog.Logger, pdfFallback bool) *Worker {
	return &Worker{
		proc:        proc,
		log:         log,
		pdfFallback: pdfFallback,
	}
}

// Process runs parse, number and render for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "queued")
		return
	}

	proc := job.processor
	if proc == nil {
		proc = w.proc
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	start := time.Now()
	tree, err := Parse(job.Filename, job.FileData(), w.pdfFallback)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		documentsTotal.WithLabelValues(string(StatusFailed)).Inc()
		return
	}

	// Phase 2: Number
	job.SetStatus(StatusNumbering, "numbering")
	stats := proc.Process(tree)
	if stats.Unresolved > 0 {
		log.Warn("unresolved references", "count", stats.Unresolved)
	}

	// Phase 3: Render
	job.SetStatus(StatusRendering, "rendering")
	out := render.Markdown(tree)

	job.Complete([]byte(out), stats)
	processingSeconds.Observe(time.Since(start).Seconds())
	documentsTotal.WithLabelValues(string(StatusCompleted)).Inc()
	observe(stats)
	log.Info("numbering complete",
		"definitions", stats.Definitions,
		"substitutions", stats.Substitutions,
		"assign_references", stats.AssignReferences,
		"unresolved", stats.Unresolved,
	)
}
