// Package telegram decodes the plaintext DSMR telegrams a smart meter emits on
// its P1 port into State snapshots.
//
// A Decoder pulls bytes from an io.Reader and runs every telegram through the
// same steps: the FrameReader scans for a frame between "/" and "!", the frame
// checksum is verified, each data line is parsed into an Update and the
// updates are folded into a fresh State by a Builder. A frame that fails any
// step is reported as a single error for that call and the next call resumes
// scanning, so one corrupt telegram never blocks the ones after it.
//
// The package performs no I/O of its own beyond reading the supplied source
// and keeps no state between telegrams.
package telegram
