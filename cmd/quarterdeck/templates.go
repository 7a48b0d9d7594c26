package main

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/flosch/pongo2/v6"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*
var TemplateFS embed.FS

type Renderer struct {
	set   *pongo2.TemplateSet
	debug bool
}

// NewRenderer builds an echo.Renderer over pongo2 templates. In debug mode
// templates load from disk on every render; otherwise they come from the
// embedded FS and are cached after first parse.
func NewRenderer(dir string, fsys *embed.FS, debug bool) *Renderer {
	if debug {
		return &Renderer{
			set:   pongo2.NewSet("templates", pongo2.MustNewLocalFileSystemLoader(dir)),
			debug: true,
		}
	}
	sub, err := fs.Sub(fsys, "templates")
	if err != nil {
		slog.Error("embedded template error", "err", err)
		os.Exit(-1)
	}
	return &Renderer{set: pongo2.NewSet("templates", pongo2.NewFSLoader(sub))}
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	ctx, ok := data.(pongo2.Context)
	if !ok {
		return fmt.Errorf("renderer expects a pongo2.Context, got %T", data)
	}
	var tpl *pongo2.Template
	var err error
	if r.debug {
		tpl, err = r.set.FromFile(name)
	} else {
		tpl, err = r.set.FromCache(name)
	}
	if err != nil {
		return err
	}
	return tpl.ExecuteWriter(ctx, w)
}
