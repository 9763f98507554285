package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/axsim/audit"
	"github.com/hazyhaar/axsim/axtree"
	"github.com/hazyhaar/axsim/source"
	"github.com/hazyhaar/axsim/source/htmldoc"
	"github.com/hazyhaar/axsim/source/snapshot"
)

// loadDocument reads an HTML file, a JSON snapshot (.json) or HTML from
// stdin ("-").
func loadDocument(path string, sanitize bool) (source.Document, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return snapshot.Decode(r)
	}
	var opts []htmldoc.Option
	if sanitize || cfg.Builder.Sanitize {
		opts = append(opts, htmldoc.WithSanitize())
	}
	return htmldoc.Parse(r, opts...)
}

func fileLoader(path string, sanitize bool) audit.Loader {
	return func(context.Context) (source.Document, error) {
		return loadDocument(path, sanitize)
	}
}

func buildTree(path string, sanitize bool) (*axtree.Tree, error) {
	doc, err := loadDocument(path, sanitize)
	if err != nil {
		return nil, err
	}
	t, err := axtree.NewBuilder(append(cfg.BuilderOptions(), axtree.WithLogger(logger))...).Build(doc)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", path, err)
	}
	return t, nil
}

func newAuditor(opts ...audit.Option) *audit.Auditor {
	return audit.New(append(cfg.AuditOptions(), append([]audit.Option{audit.WithLogger(logger)}, opts...)...)...)
}
