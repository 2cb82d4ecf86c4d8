package render

import (
	"context"

	"github.com/goliatone/go-qform/pkg/questionnaire"
)

// Renderer turns a live questionnaire tree into a byte representation (HTML,
// plain text, ...). Renderers read the tree; they never mutate answers.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, tree *questionnaire.Tree, options RenderOptions) ([]byte, error)
}
