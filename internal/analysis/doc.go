// Package analysis condenses saved or live traces into run summaries.
//
//   - [Summarize]: speed, power, efficiency and tank statistics of a trace
//   - [PowerSpectrum]: magnitude spectrum of a sampled signal
//   - [DominantFrequency]: strongest oscillation, e.g. the H3 pulse rate
//
// Statistics use gonum's stat and floats packages; spectra use dsp/fourier.
package analysis
