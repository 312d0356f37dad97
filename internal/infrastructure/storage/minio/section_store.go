package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
	commontypes "github.com/curately/ResearchTools-Intelligence/pkg/types/common"
)

// objectAPI is the subset of the minio client used by the store.
type objectAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// SectionStore persists raw section text per publication.
type SectionStore struct {
	api    objectAPI
	bucket string
}

// NewSectionStore builds a SectionStore over the given client and bucket.
func NewSectionStore(api objectAPI, bucket string) *SectionStore {
	if api == nil {
		panic("minio: client must not be nil")
	}
	return &SectionStore{api: api, bucket: bucket}
}

func objectName(id commontypes.PublicationID, section mention.Section) string {
	return fmt.Sprintf("%s/%s.txt", id, section)
}

// PutSection stores one section's text.
func (s *SectionStore) PutSection(ctx context.Context, id commontypes.PublicationID, section mention.Section, text string) error {
	data := []byte(text)
	_, err := s.api.PutObject(ctx, s.bucket, objectName(id, section),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"},
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "storing section text")
	}
	return nil
}

// GetSection retrieves one section's text.
func (s *SectionStore) GetSection(ctx context.Context, id commontypes.PublicationID, section mention.Section) (string, error) {
	obj, err := s.api.GetObject(ctx, s.bucket, objectName(id, section), minio.GetObjectOptions{})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "fetching section text")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "reading section text")
	}
	return string(data), nil
}
