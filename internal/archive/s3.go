package archive

import (
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"mood-engine/internal/config"
)

type S3Provider struct {
	api    *s3.S3
	bucket string
}

func NewS3Provider(cfg *config.Config) (*S3Provider, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Archive.Region),
		Endpoint:         aws.String(cfg.Archive.Endpoint),
		Credentials:      credentials.NewStaticCredentials(cfg.Archive.KeyID, cfg.Archive.AppKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	return &S3Provider{api: s3.New(sess), bucket: cfg.Archive.Bucket}, nil
}

func (p *S3Provider) Put(key string, body io.ReadSeeker, contentType string) error {
	_, err := p.api.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	return err
}

func (p *S3Provider) List(prefix string) ([]string, error) {
	var keys []string
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
		Prefix: aws.String(prefix),
	}
	err := p.api.ListObjectsV2Pages(input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, item := range page.Contents {
			keys = append(keys, *item.Key)
		}
		return true
	})
	return keys, err
}

func (p *S3Provider) Delete(key string) error {
	_, err := p.api.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	return err
}
