package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/Faultbox/sceneconv/internal/logger"
	"github.com/Faultbox/sceneconv/internal/snapshot"
)

func packAction(ctx *cli.Context) error {
	if _, err := setup(ctx); err != nil {
		return err
	}
	if ctx.NArg() != 2 {
		return errors.New("usage: sceneconv pack <in> <out>")
	}
	return pack(ctx.Args().Get(0), ctx.Args().Get(1), !ctx.Bool("unpack"))
}

// pack re-encodes the snapshot document at in to out without linking it.
func pack(in, out string, compress bool) error {
	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	doc, err := snapshot.Decode(src)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	dst, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := snapshot.Write(dst, doc, compress); err != nil {
		dst.Close()
		return fmt.Errorf("%s: %w", out, err)
	}
	if err := dst.Close(); err != nil {
		return err
	}

	logger.Info("snapshot written",
		zap.String("path", out),
		zap.Bool("compressed", compress),
		zap.Int("objects", len(doc.GameObjects)))
	return nil
}
