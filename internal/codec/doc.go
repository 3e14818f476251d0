// Package codec packs a tag into the zero low bits of a payload word.
//
// Integer words use a plain OR to encode and a mask to decode. Pointer words
// go through pointer.go, the only file in the module that performs pointer
// arithmetic or reinterprets a pointer as another type.
//
// All functions are pure and allocation free. They trust their preconditions:
// a payload whose low bits are not clear produces a word that decodes to a
// different (tag, payload) pair.
package codec
