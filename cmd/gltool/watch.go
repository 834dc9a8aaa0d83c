package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Faultbox/meshflat/internal/config"
	"github.com/Faultbox/meshflat/internal/logger"
	"github.com/Faultbox/meshflat/internal/watch"
	"github.com/Faultbox/meshflat/pkg/model"
	"go.uber.org/zap"
)

func cmdWatch(out io.Writer, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	exportDir := fs.String("export", "", "Re-export streams into this directory on every change")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: gltool watch [-export dir] <file.glb>")
	}
	path := fs.Arg(0)

	opts, err := loadOptions(cfg)
	if err != nil {
		return err
	}

	w, err := watch.New(path,
		watch.WithDebounce(cfg.Watch.Debounce()),
		watch.WithLogger(logger.Named("watch")),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	// The first load must succeed; later failures are logged and the
	// previous output stays in place.
	if err := reload(out, cfg, path, *exportDir, opts); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", w.Path())
	return w.Run(ctx, func(changed string) {
		if err := reload(out, cfg, changed, *exportDir, opts); err != nil {
			logger.Error("reload failed", zap.String("path", changed), zap.Error(err))
		}
	})
}

func reload(out io.Writer, cfg *config.Config, path, exportDir string, opts []model.Option) error {
	m, err := model.Load(path, opts...)
	if err != nil {
		return err
	}
	defer m.Release()

	printModel(out, m)
	if exportDir == "" {
		return nil
	}
	if _, err := writeExport(m, exportDir, cfg.Export.Manifest, cfg.Loader.TangentMode); err != nil {
		return err
	}
	logger.Info("exported", zap.String("path", path), zap.String("dir", exportDir))
	return nil
}
