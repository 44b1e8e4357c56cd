package gitsync

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"golang.org/x/sync/errgroup"

	"termbridge-backend/internal/termfile"
)

// Conflicts reports label/language slots edited to different values on the
// working branch and on a reference branch (default: the stable branch). Only
// terminology files touched on both sides are inspected. The scan is
// advisory: a file that cannot be fetched or parsed degrades to an entry
// carrying the failure instead of aborting the whole scan.
func (s *Service) Conflicts(ctx context.Context, branch, reference string) ([]FileConflicts, error) {
	if reference == "" {
		reference = s.stable
	}

	branchFiles, err := s.changedSet(ctx, branch)
	if err != nil {
		return nil, err
	}

	// Inverted on purpose: files the reference changed relative to the
	// branch, i.e. what the branch would inherit by taking the reference.
	refCmp, err := s.gh.CompareRefs(ctx, branch, reference)
	if err != nil {
		return nil, fmt.Errorf("compare %s...%s: %w", branch, reference, err)
	}
	refTouched := make(map[string]bool, len(refCmp.Files))
	for _, f := range refCmp.Files {
		refTouched[f.Filename] = true
	}

	var candidates []string
	for _, f := range branchFiles {
		if refTouched[f.Filename] && isTerminologyFile(f.Filename) {
			candidates = append(candidates, f.Filename)
		}
	}

	results := make([]FileConflicts, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, file := range candidates {
		g.Go(func() error {
			results[i] = s.fileConflicts(gctx, file, branch, reference)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]FileConflicts, 0, len(results))
	for _, fc := range results {
		if len(fc.Conflicts) > 0 || fc.Error != "" {
			out = append(out, fc)
		}
	}
	return out, nil
}

// fileConflicts compares one file across the two refs at the label/language
// level. Reference-side entries drive the scan: a conflict is a language both
// sides carry for the same label, with differing values and a non-empty
// reference value. Blank reference values never conflict.
func (s *Service) fileConflicts(ctx context.Context, file, branch, reference string) FileConflicts {
	refDoc, err := s.fetchDocument(ctx, file, reference)
	if err != nil {
		slog.Warn("conflict scan degraded", "file", file, "ref", reference, "error", err)
		return FileConflicts{File: file, Error: err.Error()}
	}
	branchDoc, err := s.fetchDocument(ctx, file, branch)
	if err != nil {
		slog.Warn("conflict scan degraded", "file", file, "ref", branch, "error", err)
		return FileConflicts{File: file, Error: err.Error()}
	}

	var conflicts []Conflict
	for _, refLabel := range refDoc.Labels() {
		branchLabel, ok := branchDoc.LabelByName(refLabel.Name)
		if !ok {
			continue
		}
		for _, entry := range refLabel.Entries() {
			if entry.Term == "" {
				continue
			}
			branchTerm, ok := branchLabel.Term(entry.Language)
			if !ok || branchTerm == entry.Term {
				continue
			}
			conflicts = append(conflicts, Conflict{
				File:           file,
				Label:          refLabel.Name,
				Language:       entry.Language,
				ReferenceValue: entry.Term,
				BranchValue:    branchTerm,
			})
		}
	}
	return FileConflicts{File: file, Conflicts: conflicts}
}

func (s *Service) fetchDocument(ctx context.Context, file, ref string) (*termfile.Document, error) {
	fc, err := s.gh.GetFileContent(ctx, file, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch %s at %s: %w", file, ref, err)
	}
	doc, err := termfile.Parse([]byte(fc.Text))
	if err != nil {
		return nil, fmt.Errorf("parse %s at %s: %w", file, ref, err)
	}
	return doc, nil
}

func isTerminologyFile(name string) bool {
	switch path.Ext(name) {
	case ".yml", ".yaml":
		return true
	}
	return false
}
