// Package response computes acceleration response spectra of triaxial
// strong-motion records.
//
// A damped single-degree-of-freedom oscillator is driven through the
// ground acceleration with the average-acceleration Newmark scheme for
// every combination of natural period, damping ratio and component. The
// period axis is fixed: 100 log-spaced points from 0.02 s to 10 s. The
// spectral ordinate is the peak absolute acceleration of the oscillator
// mass, in the same unit as the input (gal for strong-motion records).
package response
