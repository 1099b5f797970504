package metabox

import (
	"io/fs"

	"github.com/goliatone/go-metabox/pkg/render"
	"github.com/goliatone/go-metabox/pkg/visibility"
)

// AssetsFS exposes the client script and stylesheet so Go applications can
// serve them without a build step.
//
// Typical mount:
//
//	mux.Handle("/metabox/assets/",
//	  http.StripPrefix("/metabox/assets/",
//	    http.FileServerFS(metabox.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return visibility.AssetsFS()
}

// EmbeddedTemplates exposes the built-in chrome templates so callers can
// reuse or extend them.
func EmbeddedTemplates() fs.FS {
	return render.TemplatesFS()
}
