package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3Storage implements Storage on S3-compatible object storage.
type S3Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       Config
}

// New creates an S3Storage. Bucket and credentials are required.
func New(cfg Config) (*S3Storage, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := s3.New(s3.Options{}, func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})

	return &S3Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		cfg:       cfg,
	}, nil
}

// Put uploads r. The body is buffered so the size limit can be enforced and
// the content type sniffed.
func (s *S3Storage) Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error) {
	o := &putOptions{acl: s.cfg.DefaultACL}
	for _, opt := range opts {
		opt(o)
	}
	limit := s.cfg.MaxUploadSize
	if o.maxSize > 0 {
		limit = min(limit, o.maxSize)
	}

	if size > limit {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, size, limit)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read input: %v", ErrUploadFailed, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, limit)
	}

	contentType := o.contentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key := o.key
	if key == "" {
		key = buildKey(o.owner, o.prefix, contentType)
	} else if err := ValidateKey(key); err != nil {
		return nil, err
	}

	acl := types.ObjectCannedACLPrivate
	if o.acl == ACLPublicRead {
		acl = types.ObjectCannedACLPublicRead
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           acl,
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrUploadFailed)
	}

	return &FileInfo{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: contentType,
		ACL:         o.acl,
	}, nil
}

// Get returns the body of key.
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrDownloadFailed)
	}
	return out.Body, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return wrapS3Error(err, ErrDeleteFailed)
	}
	return nil
}

// List returns every object under prefix.
func (s *S3Storage) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	var files []FileInfo
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, wrapS3Error(err, ErrListFailed)
		}
		for _, obj := range page.Contents {
			files = append(files, FileInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return files, nil
}

// URL returns a presigned GET URL, or the public URL with WithPublic.
func (s *S3Storage) URL(ctx context.Context, key string, opts ...URLOption) (string, error) {
	o := &urlOptions{expiry: DefaultURLExpiry}
	for _, opt := range opts {
		opt(o)
	}
	if o.public {
		return s.publicURL(key), nil
	}

	in := &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}
	if o.downloadName != "" {
		in.ResponseContentDisposition = aws.String(fmt.Sprintf("attachment; filename=%q", o.downloadName))
	}

	res, err := s.presigner.PresignGetObject(ctx, in, func(po *s3.PresignOptions) {
		po.Expires = o.expiry
	})
	if err != nil {
		return "", wrapS3Error(err, ErrPresignFailed)
	}
	return res.URL, nil
}

// Healthcheck returns a readiness check probing the bucket.
func (s *S3Storage) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
		if err != nil {
			return wrapS3Error(err, ErrUnavailable)
		}
		return nil
	}
}

func (s *S3Storage) publicURL(key string) string {
	if s.cfg.PublicURL != "" {
		return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/" + key
	}
	if s.cfg.Endpoint != "" {
		endpoint := strings.TrimSuffix(s.cfg.Endpoint, "/")
		if s.cfg.PathStyle {
			return fmt.Sprintf("%s/%s/%s", endpoint, s.cfg.Bucket, key)
		}
		return fmt.Sprintf("%s/%s", endpoint, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

// buildKey returns {owner}/{prefix}/{uuid}{ext}, skipping empty segments.
func buildKey(owner, prefix, contentType string) string {
	var parts []string
	if seg := SanitizeSegment(owner); seg != "" {
		parts = append(parts, seg)
	}
	if seg := SanitizeSegment(prefix); seg != "" {
		parts = append(parts, seg)
	}
	return strings.Join(append(parts, uuid.NewString()+extFor(contentType)), "/")
}

func extFor(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".bin"
	}
	switch mt {
	case "image/jpeg":
		return ".jpg"
	case "text/plain":
		return ".txt"
	}
	if exts, _ := mime.ExtensionsByType(mt); len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

var unsafeSegment = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// SanitizeSegment makes s safe to use as a single key segment.
func SanitizeSegment(s string) string {
	s = strings.Trim(s, " /\\")
	s = strings.ReplaceAll(s, "..", "")
	s = unsafeSegment.ReplaceAllString(s, "_")
	return url.PathEscape(s)
}

// ValidateKey rejects empty, absolute and traversing keys.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for seg := range strings.SplitSeq(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}

var _ Storage = (*S3Storage)(nil)
