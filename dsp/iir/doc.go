// Package iir provides biquad-based IIR filters for windowed biosignal
// processing: RBJ notch and bandpass sections, Butterworth cascades, and
// zero-phase (forward-backward) application.
//
// All design functions take frequencies in Hz and validate them against
// the Nyquist frequency (sampleRate/2). Processing is scalar Direct Form
// II Transposed; biosignal rates (a few kHz at most) do not need SIMD
// kernels.
package iir
