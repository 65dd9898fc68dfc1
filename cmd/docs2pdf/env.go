package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	docs2pdf "github.com/alnah/go-docs2pdf"
)

// Generator is the part of docs2pdf.Generator the CLI drives.
type Generator interface {
	Run(ctx context.Context) (*docs2pdf.Result, error)
}

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now          func() time.Time
	Stdout       io.Writer
	Stderr       io.Writer
	Getenv       func(string) string
	Environ      func() []string
	NewGenerator func(cfg *docs2pdf.Config, logger *slog.Logger, now func() time.Time) (Generator, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		NewGenerator: func(cfg *docs2pdf.Config, logger *slog.Logger, now func() time.Time) (Generator, error) {
			return docs2pdf.NewGenerator(
				docs2pdf.WithConfig(cfg),
				docs2pdf.WithLogger(logger),
				docs2pdf.WithClock(now),
			)
		},
	}
}
