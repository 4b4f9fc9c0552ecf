// Package normalisers provides implementations of the Normaliser interface.
// A normaliser turns the raw records of one CMS into graph nodes.
package normalisers
