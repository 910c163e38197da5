// sceneconv converts engine scene snapshots into glTF assets.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/Faultbox/sceneconv/internal/config"
	"github.com/Faultbox/sceneconv/internal/logger"
)

const version = "0.3.0"

func main() {
	app := cli.NewApp()
	app.Name = "sceneconv"
	app.Usage = "rebuild scene hierarchies, skinned meshes and animations as glTF"
	app.Version = version
	app.Commands = []cli.Command{
		{
			Name:  "convert",
			Usage: "convert a snapshot to glTF",
			Description: `
Link the snapshot, rebuild the frame hierarchy of every root object (or the
one selected with --object) and write it with its meshes, materials,
textures, blend shapes and animation clips.

In auto mode objects with an animator are converted through it, which
rebuilds optimized hierarchies from the avatar. Merged mode places every
root under one synthetic node and writes a single file.`,
			ArgsUsage: "snapshot.yaml",
			Flags: append(config.Flags(),
				cli.StringFlag{Name: "out, o", Value: ".", Usage: "output file, or directory when several roots are written"},
				cli.StringFlag{Name: "object", Usage: "convert only the object with this path or name"},
				cli.StringSliceFlag{Name: "clip", Value: &cli.StringSlice{}, Usage: "convert only the named clips instead of the controller's"},
			),
			Action: convertAction,
		},
		{
			Name:      "info",
			Usage:     "summarize a snapshot",
			ArgsUsage: "snapshot.yaml",
			Flags:     config.Flags(),
			Action:    infoAction,
		},
		{
			Name:      "paths",
			Usage:     "list the bone path checksums of a converted object",
			ArgsUsage: "snapshot.yaml",
			Flags: append(config.Flags(),
				cli.StringFlag{Name: "object", Usage: "object path or name, defaults to the first root"},
			),
			Action: pathsAction,
		},
		{
			Name:      "pack",
			Usage:     "rewrite a snapshot LZ4 compressed",
			ArgsUsage: "in.yaml out.yaml.lz4",
			Flags: append(config.Flags(),
				cli.BoolFlag{Name: "unpack", Usage: "write plain YAML instead"},
			),
			Action: packAction,
		},
		{
			Name:  "config",
			Usage: "write the default configuration",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "out, o", Usage: "config file path, defaults to the user config directory"},
			},
			Action: configAction,
		},
	}

	err := app.Run(os.Args)
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration for ctx and starts logging.
func setup(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

func configAction(ctx *cli.Context) error {
	cfg := config.Default()
	path := ctx.String("out")
	if path == "" {
		saved, err := cfg.Save()
		if err != nil {
			return err
		}
		path = saved
	} else if err := cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
