// Package convert normalizes caller-supplied audio to the canonical 16 kHz mono
// PCM WAV format by shelling out to an external media converter (ffmpeg). Any
// encoding the converter understands is accepted; failures carry the converter's
// stderr so malformed input is diagnosable.
package convert
