package catalog

import (
	"net/url"
	"strings"

	"github.com/kailas-cloud/cardex/internal/domain/record"
	"github.com/kailas-cloud/cardex/internal/repository/resource"
)

// UpstreamImageBase is the image host the raw catalog data points at.
const UpstreamImageBase = "https://images.pokemontcg.io/"

const imagesField = "images"

// imageRewriter rebases image URLs onto a configured host.
type imageRewriter struct {
	base *url.URL
}

func newImageRewriter(base string) (*imageRewriter, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	return &imageRewriter{base: u}, nil
}

// rewrite returns rec with the images of the record, and for cards those
// of the embedded set, rebased. rec itself is never modified: it may be
// shared through the payload cache.
func (w *imageRewriter) rewrite(res string, rec record.Record) record.Record {
	if w == nil || rec == nil {
		return rec
	}
	out := rec.Clone()
	w.rebase(out)
	if res == resource.Cards {
		if set, ok := out["set"].(map[string]any); ok {
			w.rebase(set)
		}
	}
	return out
}

// rebase rewrites every URL of obj["images"] once one of them points at
// the upstream host.
func (w *imageRewriter) rebase(obj map[string]any) {
	images, ok := obj[imagesField].(map[string]any)
	if !ok || !pointsUpstream(images) {
		return
	}
	for k, v := range images {
		s, ok := v.(string)
		if !ok {
			continue
		}
		ref, err := url.Parse(strings.TrimPrefix(s, UpstreamImageBase))
		if err != nil {
			continue
		}
		images[k] = w.base.ResolveReference(ref).String()
	}
}

func pointsUpstream(images map[string]any) bool {
	for _, v := range images {
		if s, ok := v.(string); ok && strings.HasPrefix(s, UpstreamImageBase) {
			return true
		}
	}
	return false
}
