package domain

import "context"

// SoundingRetriever returns the first usable sounding for a request.
type SoundingRetriever interface {
	Retrieve(ctx context.Context, req SoundingRequest) (SoundingResult, error)
}
