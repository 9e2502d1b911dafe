package ess

// OpenStream exposes the non-mmap path of Decoder.Open.
var OpenStream = (*Decoder).openStream
