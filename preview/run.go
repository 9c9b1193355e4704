package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"tmplgen/certificate"
	"tmplgen/common"
	"tmplgen/raster"
	"tmplgen/state"
)

// Run is the action of preview command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("preview")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no template document has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	dst, err := filepath.Abs(cmd.String("output"))
	if err != nil {
		return err
	}
	env.Overwrite = cmd.Bool("overwrite")
	if err := common.CheckOutput(dst, env.Overwrite, log); err != nil {
		return err
	}
	if env.Overwrite {
		// report keeps replaced output as it was
		if err := env.Rpt.StoreCopy("previous"+filepath.Ext(dst), dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn("Unable to store replaced output in the report", zap.Error(err))
		}
	}

	cfg := &env.Cfg.Document.Preview
	if cmd.IsSet("logo") {
		cfg.Logo = cmd.String("logo")
	}
	if cmd.IsSet("template") {
		cfg.TemplatePath = cmd.String("template")
	}
	if cmd.IsSet("width") {
		cfg.Width = int(cmd.Int("width"))
	}
	if cmd.IsSet("height") {
		cfg.Height = int(cmd.Int("height"))
	}

	opts := RenderOptions{Logo: cfg.Logo, Width: cfg.Width, Height: cfg.Height, Unit: cfg.Unit}
	if len(cfg.TemplatePath) > 0 {
		if opts.Template, err = os.ReadFile(cfg.TemplatePath); err != nil {
			return fmt.Errorf("%w: unable to read preview template: %w", common.ErrInputNotFound, err)
		}
		env.Rpt.Store("template"+filepath.Ext(cfg.TemplatePath), cfg.TemplatePath)
	}

	log.Info("Preview starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		if err == nil {
			log.Info("Preview completed", zap.Duration("elapsed", time.Since(start)))
		}
	}(time.Now())

	t, err := certificate.Load(src)
	if err != nil {
		return err
	}
	env.Rpt.Store("source.json", src)
	env.Rpt.StoreData("template.txt", []byte(t.String()))

	r := raster.NewPDF(raster.NewFetcher(cfg.FetchTimeout, log), raster.Options{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Fonts:       cfg.Fonts.Download,
		UseBroken:   cfg.Images.UseBroken,
		ScaleFactor: cfg.Images.ScaleFactor,
		JPEGQuality: cfg.Images.JPEGQuality,
	}, log)

	var markup []byte
	err = common.WriteFileAtomic(dst, func(w io.Writer) (err error) {
		markup, err = Preview(ctx, t, opts, r, w, log)
		return err
	})
	if len(markup) > 0 {
		env.Rpt.StoreData("preview.html", markup)
	}
	if err != nil {
		return err
	}
	env.Rpt.Store("output.pdf", dst)
	return nil
}
