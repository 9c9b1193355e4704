package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"tmplgen/certificate"
	"tmplgen/common"
	"tmplgen/dom"
	"tmplgen/state"
)

// Run is the action of parse command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("extract")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input file has been specified")
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

	cfg := &env.Cfg.Document.Extract
	if cmd.IsSet("base-url") {
		cfg.BaseURL = cmd.String("base-url")
	}

	var opts []dom.Option
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return fmt.Errorf("bad base url %q: %w", cfg.BaseURL, err)
		}
		opts = append(opts, dom.WithBaseURL(base))
	}

	// HTML sources without proper charset declaration may need code page to be forced
	if cp := cmd.String("force-cp"); len(cp) > 0 {
		enc, err := ianaindex.IANA.Encoding(cp)
		if err != nil || enc == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
		} else {
			n, _ := ianaindex.IANA.Name(enc)
			log.Debug("Forcefully decoding source", zap.String("charset", n))
			opts = append(opts, dom.WithEncoding(enc))
		}
	}

	log.Info("Parsing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		if err == nil {
			log.Info("Parsing completed", zap.Duration("elapsed", time.Since(start)))
		}
	}(time.Now())

	source, err := ReadSource(ctx, src, log)
	if err != nil {
		return err
	}
	if source.Archive {
		env.Rpt.StoreData("source"+path.Ext(source.Entry), source.Data)
	} else {
		env.Rpt.Store("source"+filepath.Ext(src), src)
	}

	t, err := Extract(ctx, DOMEngine(dom.NewEngine(log, opts...)), source.Data, log, Options{WarnUnmatched: cfg.WarnUnmatched})
	if err != nil {
		return err
	}
	env.Rpt.StoreData("template.txt", []byte(t.String()))

	if err := certificate.Save(dst, t); err != nil {
		return fmt.Errorf("unable to save template: %w", err)
	}
	env.Rpt.Store("output.json", dst)

	log.Debug("Template saved", zap.Int("texts", len(t.Texts)), zap.Int("elements", len(t.Elements)))
	return nil
}
