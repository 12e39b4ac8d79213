// Package manifest discovers, copies and patches package manifest directories.
//
// Each version of a package lives in its own directory named after the
// version. Locator picks the numerically greatest one, Generator copies it to
// the new version and PatchManifest rewrites the version, installer and
// release-notes fields textually so the rest of each file stays byte for
// byte identical.
package manifest
