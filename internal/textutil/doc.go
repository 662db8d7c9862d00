// Package textutil provides filename sanitization and title helpers used
// when writing trailers into the library and when deriving titles from
// library folder names.
package textutil
