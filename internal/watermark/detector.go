// Package watermark is the default pdfcpu-backed detector and remover.
//
// A watermark is either a link annotation pointing at one of the configured
// hosts, or an image XObject shared by enough pages of a multi-page
// document. Removal drops the link annotations and swaps the shared image
// for an empty form XObject, so page content streams stay untouched.
package watermark

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/samber/lo"

	"pdf-unwatermark/internal/domain"
)

// Options tunes detection.
type Options struct {
	Hosts          []string
	MinRepeatRatio float64
}

// Detector finds watermark objects in a PDF file.
type Detector struct {
	opts Options
	read func(path string) (*model.Context, error)
}

// NewDetector builds a detector reading files with pdfcpu.
func NewDetector(opts Options) *Detector {
	return &Detector{opts: normalizeOptions(opts), read: readContext}
}

// Identify returns one descriptor per watermark occurrence, ordered by page.
func (d *Detector) Identify(ctx context.Context, path string) ([]domain.WatermarkDescriptor, error) {
	pdf, err := d.read(path)
	if err != nil {
		return nil, err
	}

	var found []domain.WatermarkDescriptor
	imageUses := map[int][]domain.WatermarkDescriptor{}

	for pageNr := 1; pageNr <= pdf.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageDict, _, inherited, err := pdf.PageDict(pageNr, true)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", pageNr, err)
		}
		if pageDict == nil {
			continue
		}

		links, err := hostLinks(pdf, pageDict, d.opts.Hosts)
		if err != nil {
			return nil, fmt.Errorf("read annotations on page %d: %w", pageNr, err)
		}
		for _, uri := range links {
			found = append(found, domain.WatermarkDescriptor{
				Kind: domain.DescriptorKindLink,
				Page: pageNr,
				URI:  uri,
			})
		}

		images, err := pageImages(pdf, pageDict, inherited)
		if err != nil {
			return nil, fmt.Errorf("read images on page %d: %w", pageNr, err)
		}
		for name, objNr := range images {
			imageUses[objNr] = append(imageUses[objNr], domain.WatermarkDescriptor{
				Kind:         domain.DescriptorKindImage,
				Page:         pageNr,
				Name:         name,
				ObjectNumber: objNr,
			})
		}
	}

	if pdf.PageCount >= 2 {
		threshold := d.opts.MinRepeatRatio * float64(pdf.PageCount)
		for _, uses := range imageUses {
			pages := lo.Uniq(lo.Map(uses, func(u domain.WatermarkDescriptor, _ int) int { return u.Page }))
			if float64(len(pages)) >= threshold {
				found = append(found, uses...)
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.ObjectNumber != b.ObjectNumber {
			return a.ObjectNumber < b.ObjectNumber
		}
		return a.URI < b.URI
	})
	return found, nil
}

// readContext loads a PDF into a pdfcpu context with its page tree counted.
func readContext(path string) (*model.Context, error) {
	pdf, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if err := pdf.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}
	return pdf, nil
}

// normalizeOptions trims hosts and applies the default repeat ratio.
func normalizeOptions(opts Options) Options {
	opts.Hosts = lo.Uniq(lo.FilterMap(opts.Hosts, func(h string, _ int) (string, bool) {
		h = strings.ToLower(strings.TrimSpace(h))
		return h, h != ""
	}))
	if opts.MinRepeatRatio <= 0 || opts.MinRepeatRatio > 1 {
		opts.MinRepeatRatio = 1
	}
	return opts
}

// hostLinks returns URIs of link annotations that point at a watermark host.
func hostLinks(pdf *model.Context, pageDict types.Dict, hosts []string) ([]string, error) {
	if len(hosts) == 0 {
		return nil, nil
	}

	annots, err := annotations(pdf, pageDict)
	if err != nil {
		return nil, err
	}

	var uris []string
	for _, obj := range annots {
		annot, err := pdf.DereferenceDict(obj)
		if err != nil || annot == nil {
			continue
		}
		if uri := linkURI(pdf, annot); uri != "" && matchesHost(uri, hosts) {
			uris = append(uris, uri)
		}
	}
	return uris, nil
}

// annotations returns the page's /Annots array, if any.
func annotations(pdf *model.Context, pageDict types.Dict) (types.Array, error) {
	obj, found := pageDict.Find("Annots")
	if !found || obj == nil {
		return nil, nil
	}
	return pdf.DereferenceArray(obj)
}

// linkURI returns the URI action target of a link annotation, or "".
func linkURI(pdf *model.Context, annot types.Dict) string {
	if subtype := annot.NameEntry("Subtype"); subtype == nil || *subtype != "Link" {
		return ""
	}

	actionObj, found := annot.Find("A")
	if !found {
		return ""
	}
	action, err := pdf.DereferenceDict(actionObj)
	if err != nil || action == nil {
		return ""
	}

	uriObj, found := action.Find("URI")
	if !found {
		return ""
	}
	uriObj, err = pdf.Dereference(uriObj)
	if err != nil {
		return ""
	}

	switch v := uriObj.(type) {
	case types.StringLiteral:
		return string(v)
	case types.HexLiteral:
		b, err := v.Bytes()
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return ""
	}
}

// matchesHost reports whether the host of uri is one of the lower-cased
// hosts or a subdomain of one.
func matchesHost(uri string, hosts []string) bool {
	uri = strings.TrimSpace(uri)
	u, err := url.Parse(uri)
	if err == nil && u.Scheme == "" {
		u, err = url.Parse("//" + uri)
	}
	if err != nil {
		return false
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return false
	}
	return lo.SomeBy(hosts, func(h string) bool {
		return host == h || strings.HasSuffix(host, "."+h)
	})
}

// pageImages maps resource names to object numbers of image XObjects.
func pageImages(pdf *model.Context, pageDict types.Dict, inherited *model.InheritedPageAttrs) (map[string]int, error) {
	var resources types.Dict
	if obj, found := pageDict.Find("Resources"); found {
		d, err := pdf.DereferenceDict(obj)
		if err != nil {
			return nil, err
		}
		resources = d
	} else if inherited != nil {
		resources = inherited.Resources
	}
	if resources == nil {
		return nil, nil
	}

	obj, found := resources.Find("XObject")
	if !found {
		return nil, nil
	}
	xobjects, err := pdf.DereferenceDict(obj)
	if err != nil || xobjects == nil {
		return nil, err
	}

	images := map[string]int{}
	for name, entry := range xobjects {
		ref, ok := entry.(types.IndirectRef)
		if !ok {
			continue
		}
		target, err := pdf.Dereference(ref)
		if err != nil {
			continue
		}
		sd, ok := target.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype := sd.NameEntry("Subtype"); subtype != nil && *subtype == "Image" {
			images[name] = ref.ObjectNumber.Value()
		}
	}
	return images, nil
}
