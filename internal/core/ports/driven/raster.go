package driven

import "context"

// PageCounter reports how many pages a PDF has.
type PageCounter interface {
	PageCount(ctx context.Context, pdfPath string) (int, error)
}

// Rasterizer renders every page of a PDF into outDir as page_NNNN.png
// and returns the image paths in page order.
type Rasterizer interface {
	Render(ctx context.Context, pdfPath, outDir string, dpi int) ([]string, error)
}
