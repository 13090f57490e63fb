// Package normalisers turns uploaded files into plain text documents.
//
// Each normaliser handles a set of file extensions. The Registry picks one by
// the upload's file name; anything other than .txt and .docx is rejected with
// domain.ErrUnsupportedType.
package normalisers
