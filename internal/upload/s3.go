package upload

import (
	"bytes"
	"context"
	"fmt"

	"boltadmin/internal/apperr"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// S3Uploader is an alternative image host backed by an S3-compatible bucket
// with a public access policy. Selected with IMAGE_STORAGE=s3.
type S3Uploader struct {
	s3Client *s3.S3
	bucket   string
	baseURL  string
}

// NewS3Uploader creates an uploader for the configured bucket.
func NewS3Uploader(endpoint, accessKey, secretKey, bucket string) (*S3Uploader, error) {
	if accessKey == "" || secretKey == "" || bucket == "" {
		return nil, fmt.Errorf("S3 configuration missing")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String("us-east-1"),
		Endpoint:         aws.String(endpoint),
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Uploader{
		s3Client: s3.New(sess),
		bucket:   bucket,
		baseURL:  fmt.Sprintf("https://%s", bucket),
	}, nil
}

// Upload stores the valid subset of files one at a time under unique keys and
// returns their public URLs. Same sequential contract as the imgbb client.
func (u *S3Uploader) Upload(ctx context.Context, files []File, progress ProgressFunc) ([]string, []Rejected, error) {
	valid, indexes, rejected := screen(files)

	urls := make([]string, 0, len(valid))
	for i, f := range valid {
		key := fmt.Sprintf("products/%s%s", uuid.New().String(), extensionFor(f.ContentType))

		_, err := u.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(u.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(f.Data),
			ContentType: aws.String(f.ContentType),
		})
		if err != nil {
			return urls, rejected, apperr.UploadErr(fmt.Sprintf("Failed to upload %s", f.Name), err)
		}

		urls = append(urls, fmt.Sprintf("%s/%s", u.baseURL, key))
		if progress != nil {
			progress(indexes[i], 100)
		}
	}

	if len(urls) > 0 {
		log.Info().Int("count", len(urls)).Str("bucket", u.bucket).Msg("images uploaded to S3")
	}
	return urls, rejected, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
