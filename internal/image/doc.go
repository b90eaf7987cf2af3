// Package image generates illustrations for vocabulary words. A Generator
// calls a remote image endpoint, validates the returned bytes, retries with
// a bounded linear backoff and, when every attempt fails, substitutes a
// deterministic emoji icon so that adding a word is never blocked.
//
// Generators do not touch storage; callers register results in the
// shared pool.
package image
