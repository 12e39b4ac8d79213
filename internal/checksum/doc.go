// Package checksum computes the SHA-256 digest written into installer
// manifests. Artifacts are downloaded with curl into a temporary file that is
// removed as soon as the digest is known.
package checksum
