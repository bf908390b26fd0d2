// Package normalisers holds the record normalisers. A normaliser turns the
// raw records a backend yields into the canonical records returned to
// callers.
package normalisers
