// Package parser is the manifest codec. It converts Razdfile.yml and
// mise.toml to and from the shared model.Manifest, and generates one
// format's content from the other.
//
// The format-specific work lives in the razdfile and misetoml
// subpackages; this package dispatches on Format and adds file helpers.
package parser
