// gltool inspects binary glTF assets and flattens them into GPU-ready meshes.
package main

import (
	"fmt"
	"os"

	"github.com/Faultbox/meshflat/internal/config"
	"github.com/Faultbox/meshflat/internal/logger"
	"github.com/Faultbox/meshflat/pkg/model"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := initLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	command, rest := args[0], args[1:]
	switch command {
	case "info":
		err = cmdInfo(os.Stdout, rest)
	case "meshes", "ls":
		err = cmdMeshes(os.Stdout, cfg, rest)
	case "export", "x":
		err = cmdExport(os.Stdout, cfg, rest)
	case "watch", "w":
		err = cmdWatch(os.Stdout, cfg, rest)
	case "config":
		err = cmdConfig(os.Stdout, cfg, rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`gltool - binary glTF (GLB) mesh flattener

Usage:
  gltool [flags] <command> [options]

Flags:
  -config <path>     Config file (.yaml or .toml)
  -debug             Enable debug logging
  -tangents <mode>   Tangent baking rule: linear (default) or legacy
  -log-file <path>   Also write JSON logs to this file

Commands:
  info <file.glb>               Show container and scene graph information
  meshes <file.glb>...          Flatten and list meshes
  export <file.glb> [outdir]    Flatten and write raw .bin streams plus a manifest
  watch <file.glb>              Flatten again whenever the file changes
  config [file]                 Write the effective config (default: user config dir)

Examples:
  gltool info helmet.glb
  gltool -tangents legacy meshes helmet.glb
  gltool export -manifest helmet.yaml helmet.glb ./build
  gltool -debug watch helmet.glb`)
}

func initLogging(cfg *config.Config) error {
	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
		if cfg.Logging.MaxSizeMB > 0 {
			fileCfg.MaxSizeMB = cfg.Logging.MaxSizeMB
		}
		if cfg.Logging.MaxBackups > 0 {
			fileCfg.MaxBackups = cfg.Logging.MaxBackups
		}
	}
	return logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true)
}

// loadOptions maps configuration onto flattener options.
func loadOptions(cfg *config.Config) ([]model.Option, error) {
	mode, err := model.ParseTangentMode(cfg.Loader.TangentMode)
	if err != nil {
		return nil, err
	}
	return []model.Option{
		model.WithLogger(logger.Named("model")),
		model.WithTangentMode(mode),
	}, nil
}
