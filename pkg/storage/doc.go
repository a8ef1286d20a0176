// Package storage stores files in S3-compatible object storage.
//
// The storage service builds user-scoped keys on top of [S3Storage]:
//
//	store, err := storage.New(storage.Config{
//		Bucket:    "uploads",
//		AccessKey: key,
//		SecretKey: secret,
//		Endpoint:  "http://localhost:9000", // MinIO
//		PathStyle: true,
//	})
//
//	info, err := store.Put(ctx, r, size,
//		storage.WithOwner(uid),
//		storage.WithPrefix("avatars"),
//		storage.WithMaxSize(5<<20),
//	)
//	url, err := store.URL(ctx, info.Key, storage.WithExpiry(time.Hour))
//
// Without an explicit key, Put generates {owner}/{prefix}/{uuid}{ext}. The
// content type is sniffed from the first bytes unless set with
// [WithContentType].
//
// S3 API errors are mapped onto the package sentinels, so callers match with
// errors.Is against [ErrNotFound], [ErrAccessDenied] and friends.
package storage
