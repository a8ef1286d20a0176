// Package services implements the fire services and registers them with the
// activator.
//
// Every service is initialized against the per-context [backend.Session] and
// the shared [backend.Module]:
//
//	auth      verifies the session's ID token (HS256 or Supabase)
//	database  JSON document collections on Postgres
//	storage   user-scoped files on S3
//	kv        project-scoped key/value on redis
//	analytics event stream on redis, client side only by default
//
// With both Supabase and redis configured, remote verifications are cached
// in redis by [CachedVerifier], never past the token's expiry.
//
// Register wires them into a registry; typed accessors resolve a handle from
// a namespace:
//
//	reg := activator.NewRegistry[*backend.Module, *backend.Session]()
//	if err := services.Register(reg); err != nil {
//		return err
//	}
//	...
//	db, err := services.GetDatabase(ctx, ns)
package services
