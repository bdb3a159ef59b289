// Package asr wraps the pretrained speech recognition model behind the Engine
// interface. The NeMo implementation shells out to an embedded Python helper so
// the service never links against the ASR toolkit directly.
package asr
