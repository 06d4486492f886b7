package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/docnum/internal/config"
	"github.com/dgallion1/docnum/internal/numbering"
	"github.com/dgallion1/docnum/internal/pipeline"
	"github.com/spf13/cobra"
)

type options struct {
	output              string
	templates           []string
	keepDefaultTemplate bool
	groupField          string
	watch               bool
	pdftotext           bool
	stats               bool
	verbose             bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "docnum [file]",
		Short: "Number sections, figures and cross-references in a document",
		Long: `docnum replaces :num markers with counter values and assigned numbers.

The input may be markdown, text, HTML, PDF or DOCX. It is read from stdin
when no file is given. The numbered document is written as markdown.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Write the result to this file instead of stdout")
	f.StringArrayVarP(&opts.templates, "template", "t", nil, "Template file registered before the document (repeatable)")
	f.BoolVar(&opts.keepDefaultTemplate, "keep-default-template", false, "Register the built-in template ahead of --template files")
	f.StringVar(&opts.groupField, "group-field", numbering.DefaultGroupField, "Front matter field selecting the format group")
	f.BoolVarP(&opts.watch, "watch", "w", false, "Re-run whenever the input file changes")
	f.BoolVar(&opts.pdftotext, "pdftotext", true, "Fall back to pdftotext for PDFs the built-in reader cannot handle")
	f.BoolVar(&opts.stats, "stats", false, "Print numbering stats as JSON to stderr")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	templates, err := config.ReadTemplates(opts.templates)
	if err != nil {
		return err
	}
	proc := numbering.New(numbering.Options{
		Templates:           templates,
		KeepDefaultTemplate: opts.keepDefaultTemplate,
		GroupField:          opts.groupField,
	}, log)

	if opts.watch {
		if len(args) == 0 {
			return fmt.Errorf("--watch requires a file argument")
		}
		if opts.output != "" && samePath(opts.output, args[0]) {
			return fmt.Errorf("--output must differ from the watched file")
		}
		return watch(cmd.Context(), args[0], log, func() error {
			return numberFile(cmd, proc, opts, args[0])
		})
	}
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return numberData(cmd, proc, opts, "stdin.md", data)
	}
	return numberFile(cmd, proc, opts, args[0])
}

func numberFile(cmd *cobra.Command, proc *numbering.Processor, opts *options, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return numberData(cmd, proc, opts, filepath.Base(path), data)
}

func numberData(cmd *cobra.Command, proc *numbering.Processor, opts *options, filename string, data []byte) error {
	out, stats, err := pipeline.Number(proc, filename, data, opts.pdftotext)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	if opts.stats {
		enc := json.NewEncoder(cmd.ErrOrStderr())
		if err := enc.Encode(stats); err != nil {
			return err
		}
	}
	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
