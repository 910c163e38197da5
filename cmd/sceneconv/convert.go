package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/Faultbox/sceneconv/internal/config"
	"github.com/Faultbox/sceneconv/internal/convert"
	"github.com/Faultbox/sceneconv/internal/export"
	"github.com/Faultbox/sceneconv/internal/imaging"
	"github.com/Faultbox/sceneconv/internal/logger"
	"github.com/Faultbox/sceneconv/internal/snapshot"
	"github.com/Faultbox/sceneconv/pkg/assets"
)

var errNoSnapshot = errors.New("missing snapshot file argument")

// job is one output file.
type job struct {
	name string
	run  func(convert.Options) (*convert.Result, error)
}

func convertAction(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	if ctx.NArg() != 1 {
		return errNoSnapshot
	}
	snap, err := snapshot.Open(ctx.Args().First())
	if err != nil {
		return err
	}

	roots, err := selectRoots(snap, ctx.String("object"))
	if err != nil {
		return err
	}
	clips, err := selectClips(snap.Clips, ctx.StringSlice("clip"))
	if err != nil {
		return err
	}
	imageFormat, err := cfg.Image()
	if err != nil {
		return err
	}

	opts := convertOptions(imageFormat, clips)
	writer := export.NewGLTF(exportOptions(cfg))

	jobs := plan(cfg, snap, roots)
	out := ctx.String("out")
	for _, j := range jobs {
		res, err := j.run(opts)
		if err != nil {
			return fmt.Errorf("converting %s: %w", j.name, err)
		}
		path := outputPath(out, j.name, cfg.Export.Format, len(jobs) > 1)
		if err := writer.Write(res.Bundle, path); err != nil {
			return err
		}
		logger.Info("wrote asset",
			zap.String("object", j.name),
			zap.String("path", path),
			zap.Int("conditions", res.Diagnostics.Total()))
		printDiagnostics(os.Stdout, j.name, res.Diagnostics)
	}
	return nil
}

// plan turns the selected roots into output jobs according to the entry
// mode.
func plan(cfg *config.Config, snap *snapshot.Snapshot, roots []*assets.GameObject) []job {
	if cfg.Convert.Mode == config.ModeMerged {
		name := snap.Name
		if name == "" {
			name = cfg.Convert.RootName
		}
		return []job{{
			name: name,
			run: func(o convert.Options) (*convert.Result, error) {
				return convert.ConvertGameObjects(cfg.Convert.RootName, roots, o)
			},
		}}
	}

	jobs := make([]job, 0, len(roots))
	for _, g := range roots {
		g := g
		run := func(o convert.Options) (*convert.Result, error) {
			return convert.ConvertGameObject(g, o)
		}
		switch {
		case cfg.Convert.Mode == config.ModeObject && g.Animator != nil:
			bare := *g
			bare.Animator = nil
			run = func(o convert.Options) (*convert.Result, error) {
				return convert.ConvertGameObject(&bare, o)
			}
		case cfg.Convert.Mode == config.ModeAuto && g.Animator != nil:
			run = func(o convert.Options) (*convert.Result, error) {
				return convert.ConvertAnimator(g.Animator, o)
			}
		}
		jobs = append(jobs, job{name: g.Name, run: run})
	}
	return jobs
}

func exportOptions(cfg *config.Config) export.Options {
	return export.Options{
		Binary:     strings.EqualFold(cfg.Export.Format, config.FormatGLB),
		Skins:      cfg.Export.Skins,
		Animations: cfg.Export.Animations,
		Morphs:     cfg.Export.Morphs,
		Scale:      cfg.Export.Scale,
		Logger:     logger.Log,
	}
}

// selectRoots returns the object named name, or every snapshot root.
func selectRoots(snap *snapshot.Snapshot, name string) ([]*assets.GameObject, error) {
	if name != "" {
		g, ok := snap.FindObject(name)
		if !ok {
			return nil, fmt.Errorf("object %q not found", name)
		}
		return []*assets.GameObject{g}, nil
	}
	if len(snap.Roots) == 0 {
		return nil, errors.New("snapshot has no root objects")
	}
	return snap.Roots, nil
}

// selectClips returns the snapshot clips with the given names in the order
// named. No names yields nil so controllers supply the clips.
func selectClips(all []*assets.AnimationClip, names []string) ([]*assets.AnimationClip, error) {
	if len(names) == 0 {
		return nil, nil
	}
	byName := make(map[string]*assets.AnimationClip, len(all))
	for _, c := range all {
		if _, dup := byName[c.Name]; !dup {
			byName[c.Name] = c
		}
	}
	out := make([]*assets.AnimationClip, 0, len(names))
	for _, n := range names {
		c, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("clip %q not found", n)
		}
		out = append(out, c)
	}
	return out, nil
}

// outputPath places the asset for name. With several outputs, or when out
// is an existing directory, out is a directory.
func outputPath(out, name, format string, many bool) string {
	file := sanitize(name) + "." + strings.ToLower(format)
	if many {
		return filepath.Join(out, file)
	}
	if st, err := os.Stat(out); err == nil && st.IsDir() {
		return filepath.Join(out, file)
	}
	return out
}

func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "scene"
	}
	return name
}

// printDiagnostics writes the non-zero condition counts of d as a table.
func printDiagnostics(w io.Writer, name string, d *convert.Diagnostics) {
	if d == nil || d.Total() == 0 {
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Condition", "Count"})
	for _, c := range convert.Conditions() {
		if n := d.Count(c); n > 0 {
			table.Append([]string{c.String(), fmt.Sprintf("%d", n)})
		}
	}
	table.SetFooter([]string{name, fmt.Sprintf("%d", d.Total())})
	table.Render()
}

// convertOptions returns the conversion options of a command. The
// converter names its own logger.
func convertOptions(format imaging.Format, clips []*assets.AnimationClip) convert.Options {
	return convert.Options{
		ImageFormat: format,
		Clips:       clips,
		Logger:      logger.Log,
	}
}
