// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package segview

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// frameWriter emits a neverending multipart/x-mixed-replace stream, one
// part per frame. "mime/multipart".Writer cannot be used here: it only
// writes the boundary line closing a part when the next one starts, so a
// client would never see the current frame complete.
type frameWriter struct {
	u        io.Writer
	boundary string
	started  bool
	buf      bytes.Buffer
}

func newFrameWriter(u io.Writer) *frameWriter {
	return &frameWriter{u: u, boundary: mimeBoundary()}
}

// mimeBoundary returns a random boundary compatible with RFC 2046
// (section 5.1.1).
func mimeBoundary() string {
	var b [30]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return "segview" + hex.EncodeToString(b[:])
}

// writePart assembles one complete part, body and part-ending boundary
// line included, and hands it to the underlying writer in a single Write
// so the frame can be flushed to the client immediately.
func (w *frameWriter) writePart(contentType string, body []byte) error {
	w.buf.Reset()
	if !w.started {
		fmt.Fprintf(&w.buf, "--%s\r\n", w.boundary)
		w.started = true
	}
	fmt.Fprintf(&w.buf, "Content-Type: %s\r\nContent-Length: %d\r\n\r\n", contentType, len(body))
	w.buf.Write(body)
	fmt.Fprintf(&w.buf, "\r\n--%s\r\n", w.boundary)
	_, err := w.buf.WriteTo(w.u)
	return err
}
