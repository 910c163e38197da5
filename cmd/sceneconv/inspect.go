package main

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/Faultbox/sceneconv/internal/convert"
	"github.com/Faultbox/sceneconv/internal/snapshot"
)

func infoAction(ctx *cli.Context) error {
	if _, err := setup(ctx); err != nil {
		return err
	}
	if ctx.NArg() != 1 {
		return errNoSnapshot
	}
	snap, err := snapshot.Open(ctx.Args().First())
	if err != nil {
		return err
	}
	printInfo(os.Stdout, snap)
	return nil
}

func printInfo(w io.Writer, snap *snapshot.Snapshot) {
	fmt.Fprintf(w, "Snapshot:   %s\n", snap.Name)
	fmt.Fprintf(w, "Objects:    %d\n", len(snap.GameObjects))
	fmt.Fprintf(w, "Animators:  %d\n", len(snap.Animators))
	fmt.Fprintf(w, "Clips:      %d\n", len(snap.Clips))
	if snap.Dangling > 0 {
		fmt.Fprintf(w, "Dangling:   %d\n", snap.Dangling)
	}
	if snap.Rejected > 0 {
		fmt.Fprintf(w, "Rejected:   %d\n", snap.Rejected)
	}
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Root", "Children", "Animator", "Optimized"})
	for _, g := range snap.Roots {
		children := 0
		if g.Transform != nil {
			children = len(g.Transform.Children)
		}
		animator, optimized := "-", "-"
		if g.Animator != nil {
			animator = "yes"
			optimized = fmt.Sprintf("%t", !g.Animator.HasTransformHierarchy)
		}
		table.Append([]string{g.Name, fmt.Sprintf("%d", children), animator, optimized})
	}
	table.Render()

	if len(snap.Clips) == 0 {
		return
	}
	fmt.Fprintln(w)
	clips := tablewriter.NewWriter(w)
	clips.SetAutoFormatHeaders(false)
	clips.SetHeader([]string{"Clip", "Kind", "Sample rate"})
	for _, c := range snap.Clips {
		kind := "generic"
		if c.Legacy {
			kind = "legacy"
		}
		clips.Append([]string{c.Name, kind, fmt.Sprintf("%g", c.SampleRate)})
	}
	clips.Render()
}

func pathsAction(ctx *cli.Context) error {
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
	format, err := cfg.Image()
	if err != nil {
		return err
	}

	res, err := convert.ConvertGameObject(roots[0], convertOptions(format, nil))
	if err != nil {
		return err
	}
	printPaths(os.Stdout, res.Index)
	return nil
}

func printPaths(w io.Writer, ix *convert.HashIndex) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Hash", "Path"})
	for _, e := range ix.Entries() {
		table.Append([]string{fmt.Sprintf("%d", e.Hash), e.Path})
	}
	table.SetFooter([]string{"TOTAL", fmt.Sprintf("%d", ix.Len())})
	table.Render()
}
