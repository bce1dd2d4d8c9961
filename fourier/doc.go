// Package fourier decomposes a power spectrum into named components and
// derives the standard data-converter figures of merit.
//
// A Config declares what to look for: signal tones, distortion orders,
// clock and interleaving factors, the analysis band, and symbolic
// frequency expressions such as "fs/4" that resolve at analysis time.
// Analyze expands the configuration into an ordered component list,
// assigns bin ranges with set-algebra masks, measures each component,
// ranks worst-other spurs, and aggregates SNR, SINAD, SFDR, FSNR, NSD,
// and ABN into a Results value.
//
// The engine is pure: identical configuration and spectrum produce
// bit-identical results, and a fully built Config may be shared
// read-only across goroutines.
package fourier
