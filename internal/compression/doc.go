// Package compression implements the codecs applied to PUT message
// application data, keyed by the 3-bit compression-type field of the PUT
// header.
//
// Algorithms are a closed set (AlgorithmNone, AlgorithmZlib); unrecognized
// values fail rather than fall through. Decompression always writes into a
// freshly allocated buffer and enforces a caller-supplied size cap so a
// hostile frame cannot declare a small payload and inflate without bound.
//
// Policy captures when the iterator decompresses: never, always, or only for
// legacy frames whose properties were compressed together with the payload
// (kept while pre-schema producers are still in the fleet).
package compression
