// Package backend holds the process-wide SDK handles and the per-context
// session that fire services are initialized against.
//
// A [Module] is opened once at startup. It owns the Postgres pool (migrated
// on open), the redis client, the S3 bucket and the optional Supabase client.
// Every dependency is optional; services that need a missing one fail their
// own initialization with [ErrNotConfigured].
//
// [NewAppFactory] adapts a module to the activator. Each execution context
// gets its own [Session], built from the auth state the host placed into the
// context with [ContextWithAuth].
package backend
