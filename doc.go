// Package jxl implements the perceptual rate-control core of a still-image
// codec encoder: an adaptive quantization field derived from a masking
// model of local activity, distortion-guided search strategies that refine
// it against a full-reference comparator, and a context-adaptive tokenizer
// for the quantized transform coefficients.
//
// The package works in the opsin color space: channel 0 holds the X
// (red-green) chroma, channel 1 the intensity and channel 2 the B
// (blue-yellow) chroma, all as float planes. Images are processed in 8x8
// blocks; multi-block transform footprints share one quant value.
//
// Basic usage:
//
//	s := jxl.NewEncoderState(opsin, width, height)
//	s.InitialQuantField(&jxl.Params{Distance: 1.0})
//	err := s.FindBestQuantizer(linear, &jxl.Params{Distance: 1.0})
//	tokens, err := s.TokenizeCoefficients()
package jxl
