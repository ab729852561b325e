package watermark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/samber/lo"

	"pdf-unwatermark/internal/domain"
)

// Remover rewrites a PDF without the described watermark objects.
type Remover struct {
	read     func(path string) (*model.Context, error)
	write    func(pdf *model.Context, path string) error
	mkdirAll func(path string, perm os.FileMode) error
}

// NewRemover builds a remover reading and writing files with pdfcpu.
func NewRemover() *Remover {
	return &Remover{
		read:     readContext,
		write:    api.WriteContextFile,
		mkdirAll: os.MkdirAll,
	}
}

// Remove writes the cleaned document to outputPath and returns it.
func (r *Remover) Remove(ctx context.Context, path string, descriptors []domain.WatermarkDescriptor, outputPath string) (string, error) {
	if strings.TrimSpace(outputPath) == "" {
		return "", fmt.Errorf("output path is required")
	}

	pdf, err := r.read(path)
	if err != nil {
		return "", err
	}

	images := lo.Uniq(lo.FilterMap(descriptors, func(d domain.WatermarkDescriptor, _ int) (int, bool) {
		return d.ObjectNumber, d.Kind == domain.DescriptorKindImage && d.ObjectNumber > 0
	}))
	for _, objNr := range images {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := blankImage(pdf, objNr); err != nil {
			return "", err
		}
	}

	links := lo.GroupBy(
		lo.Filter(descriptors, func(d domain.WatermarkDescriptor, _ int) bool { return d.Kind == domain.DescriptorKindLink }),
		func(d domain.WatermarkDescriptor) int { return d.Page },
	)
	for pageNr, ds := range links {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		uris := lo.Map(ds, func(d domain.WatermarkDescriptor, _ int) string { return d.URI })
		if err := dropLinks(pdf, pageNr, uris); err != nil {
			return "", err
		}
	}

	if err := r.mkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := r.write(pdf, outputPath); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return outputPath, nil
}

// blankImage replaces an image XObject with an empty form XObject.
func blankImage(pdf *model.Context, objNr int) error {
	entry, found := pdf.FindTableEntryLight(objNr)
	if !found || entry == nil || entry.Object == nil {
		return fmt.Errorf("image object %d not found", objNr)
	}
	if _, ok := entry.Object.(types.StreamDict); !ok {
		return fmt.Errorf("object %d is not a stream", objNr)
	}

	form := types.NewStreamDict(types.Dict{
		"Type":    types.Name("XObject"),
		"Subtype": types.Name("Form"),
		"BBox":    types.NewNumberArray(0, 0, 1, 1),
	}, 0, nil, nil, nil)
	form.Content = []byte{}
	if err := form.Encode(); err != nil {
		return fmt.Errorf("encode blank form for object %d: %w", objNr, err)
	}

	entry.Object = form
	return nil
}

// dropLinks removes link annotations on one page whose URI is in uris.
func dropLinks(pdf *model.Context, pageNr int, uris []string) error {
	pageDict, _, _, err := pdf.PageDict(pageNr, false)
	if err != nil {
		return fmt.Errorf("read page %d: %w", pageNr, err)
	}
	if pageDict == nil {
		return fmt.Errorf("page %d not found", pageNr)
	}

	annots, err := annotations(pdf, pageDict)
	if err != nil {
		return fmt.Errorf("read annotations on page %d: %w", pageNr, err)
	}
	if len(annots) == 0 {
		return nil
	}

	kept := make(types.Array, 0, len(annots))
	for _, obj := range annots {
		annot, err := pdf.DereferenceDict(obj)
		if err == nil && annot != nil && lo.Contains(uris, linkURI(pdf, annot)) {
			continue
		}
		kept = append(kept, obj)
	}

	if len(kept) == 0 {
		pageDict.Delete("Annots")
		return nil
	}
	pageDict["Annots"] = kept
	return nil
}
