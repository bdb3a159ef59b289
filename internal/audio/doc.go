// Package audio provides encoding and inspection of canonical 16 kHz mono PCM WAV,
// the normalized waveform format the pretrained model consumes. It is used to probe
// converter output for logging/metrics and to synthesize fixtures in tests.
package audio
