package service

import (
	"bytes"
	"context"
	"time"

	"github.com/dangerclosesec/dealroom/internal/imaging"
	"github.com/dangerclosesec/dealroom/internal/storage"
)

// ImageService re-encodes section images and stores them in the images bucket.
type ImageService struct {
	processor imaging.Processor
	store     storage.ObjectStore
	now       func() time.Time
}

func NewImageService(processor imaging.Processor, store storage.ObjectStore) *ImageService {
	return &ImageService{processor: processor, store: store, now: time.Now}
}

type ImageUpload struct {
	PublicURL string
	Key       string
	Width     int
	Height    int
}

// Upload converts data to a bounded progressive JPEG and stores it.
func (s *ImageService) Upload(ctx context.Context, data []byte) (*ImageUpload, error) {
	result, err := s.processor.Process(ctx, data)
	if err != nil {
		return nil, err
	}

	key, err := storage.ImageKey(s.now())
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, storage.ImagesBucket, key, bytes.NewReader(result.Data), "image/jpeg"); err != nil {
		return nil, &StorageError{Err: err}
	}

	return &ImageUpload{
		PublicURL: s.store.PublicURL(storage.ImagesBucket, key),
		Key:       key,
		Width:     result.Width,
		Height:    result.Height,
	}, nil
}
