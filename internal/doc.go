// Package internal holds HTTP plumbing shared by the flash middleware and
// the session middleware, most notably the before-write intercepting
// ResponseWriter both use to attach Set-Cookie headers ahead of the first
// body byte.
package internal
