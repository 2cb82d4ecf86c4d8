package qform

import (
	"io/fs"

	"github.com/goliatone/go-qform/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// EmbeddedAssets exposes the stylesheet and scripts the HTML renderer links
// to. Mount them under /assets/ or pass vanilla.WithAssetPrefix.
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(qform.EmbeddedAssets()),
//	  ),
//	)
func EmbeddedAssets() fs.FS {
	return vanilla.AssetsFS()
}
