// Package normalisers turns uploaded files into clean plain text.
//
// Format-specific normalisers live in sub-packages (plaintext, tabular, html)
// and implement driven.Normaliser. The Registry selects one by file
// extension and applies the shared whitespace normalisation, Clean, to its
// output. Normalisers are registered with the Registry at startup.
package normalisers
