// Package fft implements the in-place radix-2 transform used by the
// integration and spectrum packages, together with the paired real/imag
// buffers the transform operates on.
//
// The kernel mutates both slices in place and never allocates; callers
// zero-pad to a power of two beforehand, normally through a Buffer obtained
// from a Pool. Forward applies no normalization, Inverse divides by the
// transform length, so a forward/inverse round trip reproduces the input.
package fft
