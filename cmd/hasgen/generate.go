package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/conc/pool"
)

// job is one generator invocation: a spec file, or an aggregate whose tagged
// fields are discovered.
type job struct {
	specPath string
	typeName string

	// dir is the package directory; used when outPath is empty or stdout.
	dir     string
	outPath string
}

// generator runs jobs. It holds no per-job state, so jobs may run concurrently.
type generator struct {
	logger *slog.Logger
	stdout io.Writer
	check  bool
	suffix string
}

// generateAll runs every job concurrently and joins their errors.
// One failing job does not cancel the others. Jobs that would write the same
// file are rejected before any of them runs.
func (g *generator) generateAll(ctx context.Context, jobs []job) error {
	if err := g.checkDistinctOutputs(jobs); err != nil {
		return err
	}

	p := pool.New().WithContext(ctx)
	for _, j := range jobs {
		p.Go(func(ctx context.Context) error {
			if err := g.generate(ctx, j); err != nil {
				return fmt.Errorf("%s: %w", j.label(), err)
			}
			return nil
		})
	}
	return p.Wait()
}

// checkDistinctOutputs rejects jobs that resolve to the same output file.
func (g *generator) checkDistinctOutputs(jobs []job) error {
	owners := make(map[string]string, len(jobs))
	for _, j := range jobs {
		out := j.plannedOut(g.suffix)
		if out == "" {
			continue
		}
		key := filepath.Clean(out)
		if abs, err := filepath.Abs(out); err == nil {
			key = abs
		}
		if prev, ok := owners[key]; ok {
			return invalidf("%s and %s both write %s", prev, j.label(), filepath.ToSlash(out))
		}
		owners[key] = j.label()
	}
	return nil
}

// generate produces one accessor file.
func (g *generator) generate(ctx context.Context, j job) error {
	pkgDir := j.packageDir()

	var (
		spec Spec
		raw  []byte
		info *aggregateInfo
		err  error
	)

	if j.specPath != "" {
		spec, raw, err = loadSpec(j.specPath)
		if err != nil {
			return err
		}
	} else {
		// Discovery needs the package types regardless of the check setting.
		info, err = loadAggregate(ctx, g.logger, pkgDir, j.typeName, j.resolveOut(g.suffix))
		if err != nil {
			return err
		}
		spec, err = discoverSpec(info)
		if err != nil {
			return err
		}
	}

	if err := prepareSpec(&spec); err != nil {
		return err
	}

	outPath := j.outPath
	if outPath == "" {
		outPath = filepath.Join(pkgDir, strings.ToLower(spec.Aggregate)+g.suffix)
	}

	var preserved []GoImport
	if ownerFilePath, err := findOwnerGoGenerateFile(pkgDir); err == nil {
		if parsed, err := readImportsFromFile(ownerFilePath); err == nil {
			preserved = parsed
		}
	}
	imports := mergeImports(specImports(&spec), preserved)

	if g.check || info != nil {
		if info == nil {
			info, err = loadAggregate(ctx, g.logger, pkgDir, spec.Aggregate, outPath)
			if err != nil {
				return err
			}
		}
		if err := checkSpec(&spec, info, imports); err != nil {
			return err
		}
	}

	data := renderData{
		Spec:    spec,
		Imports: imports,
	}
	if j.specPath != "" {
		data.SourcePath = filepath.ToSlash(filepath.Clean(j.specPath))
		data.SourceHash = sha256Hex(raw)
	}

	filename := outPath
	if outPath == stdoutPath {
		filename = filepath.Join(pkgDir, strings.ToLower(spec.Aggregate)+g.suffix)
	}

	src, err := render(data, filename)
	if err != nil {
		return err
	}

	for _, c := range spec.Components {
		g.logger.Debug("accessor",
			"aggregate", spec.Aggregate,
			"component", c.Type,
			"field", c.Field,
			"method", c.Method,
			"interface", c.Interface,
		)
	}

	if err := writeOutput(outPath, g.stdout, src); err != nil {
		return fmt.Errorf("write %s: %w", filepath.ToSlash(outPath), err)
	}

	g.logger.Info("generated",
		"aggregate", spec.Aggregate,
		"components", len(spec.Components),
		"out", filepath.ToSlash(outPath),
	)
	return nil
}

// packageDir is the directory of the aggregate's package: the directory of an
// explicit output file, otherwise the -dir flag.
func (j job) packageDir() string {
	if j.outPath != "" && j.outPath != stdoutPath {
		return filepath.Dir(filepath.Clean(j.outPath))
	}
	if j.dir == "" {
		return "."
	}
	return j.dir
}

// resolveOut returns the output path used to blank stale output during
// discovery, before the aggregate name is known from a spec.
func (j job) resolveOut(suffix string) string {
	if j.outPath != "" {
		return j.outPath
	}
	return filepath.Join(j.packageDir(), strings.ToLower(j.typeName)+suffix)
}

// plannedOut returns the file j writes, or "" for stdout and for specs that
// fail to load (the job itself reports that error).
func (j job) plannedOut(suffix string) string {
	switch {
	case j.outPath == stdoutPath:
		return ""
	case j.outPath != "" || j.specPath == "":
		return j.resolveOut(suffix)
	}
	spec, _, err := loadSpec(j.specPath)
	if err != nil || spec.Aggregate == "" {
		return ""
	}
	return filepath.Join(j.packageDir(), strings.ToLower(spec.Aggregate)+suffix)
}

func (j job) label() string {
	if j.specPath != "" {
		return filepath.ToSlash(j.specPath)
	}
	return "type " + j.typeName
}
