package media

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store keeps media objects in an S3 bucket under files/. The returned
// location is an absolute URL, so outbound sends need no further resolving.
type S3Store struct {
	bucket   string
	baseURL  string
	s3Client *s3.Client
}

func NewS3Store(bucket, baseURL string, s3Client *s3.Client) *S3Store {
	return &S3Store{bucket: bucket, baseURL: baseURL, s3Client: s3Client}
}

func (s *S3Store) Save(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	const op = "media.S3Store.Save"

	if err := validateFilename(filename); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	key := "files/" + filename

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%s: put object: %w", op, err)
	}

	return s.baseURL + "/" + key, nil
}
