package storage

import "time"

// Option configures Put.
type Option func(*putOptions)

type putOptions struct {
	key         string
	prefix      string
	owner       string
	contentType string
	acl         ACL
	maxSize     int64
}

// WithKey stores the file under an explicit key instead of a generated one.
func WithKey(key string) Option {
	return func(o *putOptions) {
		o.key = key
	}
}

// WithPrefix adds a path segment after the owner.
func WithPrefix(prefix string) Option {
	return func(o *putOptions) {
		o.prefix = prefix
	}
}

// WithOwner scopes generated keys to an owner, typically a user id.
func WithOwner(owner string) Option {
	return func(o *putOptions) {
		o.owner = owner
	}
}

// WithContentType skips content sniffing.
func WithContentType(ct string) Option {
	return func(o *putOptions) {
		o.contentType = ct
	}
}

// WithACL overrides the default ACL.
func WithACL(acl ACL) Option {
	return func(o *putOptions) {
		o.acl = acl
	}
}

// WithMaxSize lowers the upload size limit for this call.
func WithMaxSize(n int64) Option {
	return func(o *putOptions) {
		o.maxSize = n
	}
}

// URLOption configures URL.
type URLOption func(*urlOptions)

type urlOptions struct {
	downloadName string
	expiry       time.Duration
	public       bool
}

// WithExpiry sets the signed URL lifetime.
func WithExpiry(d time.Duration) URLOption {
	return func(o *urlOptions) {
		if d > 0 {
			o.expiry = d
		}
	}
}

// WithDownload sets Content-Disposition: attachment with the given name.
func WithDownload(filename string) URLOption {
	return func(o *urlOptions) {
		o.downloadName = filename
	}
}

// WithPublic returns an unsigned public URL.
func WithPublic() URLOption {
	return func(o *urlOptions) {
		o.public = true
	}
}
