// internal/domain/report/renderer.go
package report

import (
	"context"
	"fmt"
)

// Fingerprint identifies the content a build produced.
type Fingerprint struct {
	Value     string
	ItemCount int
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%d:%s", f.ItemCount, f.Value)
}

// RenderResult is what the fetch/render collaborator returns on success.
type RenderResult struct {
	Fingerprint Fingerprint
	Artifact    string // location of the published page
}

// Renderer fetches the content of a window and publishes the page for date.
// Failures wrap ErrFetch or ErrRender.
type Renderer interface {
	Render(ctx context.Context, date Date, window Window) (RenderResult, error)
}
