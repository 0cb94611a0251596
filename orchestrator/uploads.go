package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"imageflow/blobstore"
	"imageflow/validator"
)

// uploadInputs uploads the base image and every reference image
// concurrently, per §5's "only intra-request parallelism" clause. All
// uploads must succeed; the first failure observed aborts the request.
func (o *Orchestrator) uploadInputs(ctx context.Context, req *validator.Request) (blobstore.Asset, []blobstore.Asset, error) {
	n := len(req.ReferenceImages)
	refAssets := make([]blobstore.Asset, n)
	errCh := make(chan error, n+1)

	var baseAsset blobstore.Asset
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		asset, err := o.blobs.Upload(ctx, req.BaseImage.Bytes, req.BaseImage.MIME, blobstore.PrefixInputs, "")
		if err != nil {
			errCh <- fmt.Errorf("base image: %w", err)
			return
		}
		baseAsset = asset
	}()

	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			asset, err := o.blobs.Upload(ctx, req.ReferenceImages[i].Bytes, req.ReferenceImages[i].MIME, blobstore.PrefixInputs, "")
			if err != nil {
				errCh <- fmt.Errorf("reference image %d: %w", i, err)
				return
			}
			refAssets[i] = asset
		}()
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return blobstore.Asset{}, nil, err
		}
	}

	return baseAsset, refAssets, nil
}

func assetURLs(assets []blobstore.Asset) []string {
	urls := make([]string, len(assets))
	for i, a := range assets {
		urls[i] = a.PublicURL
	}
	return urls
}

func assetKeys(assets []blobstore.Asset) []string {
	keys := make([]string, len(assets))
	for i, a := range assets {
		keys[i] = a.Key
	}
	return keys
}
