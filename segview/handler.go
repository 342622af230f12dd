// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package segview

import (
	"bytes"
	"fmt"
	"image/png"
	"mime"
	"net/http"
	"strconv"
)

type client struct {
	refresh   chan struct{}
	terminate chan struct{}
}

func (d *Display) bufferChangedLocked() {
	d.snapshot = nil
	for c := range d.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
}

func (d *Display) terminateClientsLocked() {
	for c := range d.clients {
		select {
		case c.terminate <- struct{}{}:
		default:
		}
	}
}

// grabSnapshot returns the buffer encoded as PNG, reusing the previous
// encoding when the buffer hasn't changed since.
func (d *Display) grabSnapshot() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.snapshot == nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, d.buffer); err != nil {
			panic(fmt.Sprintf("encoding image failed: %v", err))
		}
		d.snapshot = buf.Bytes()
	}
	return d.snapshot
}

// ServeHTTP handles HTTP GET requests. The response is a PNG snapshot of
// the rendered display, or with the "stream" parameter set ("?stream=1") a
// multipart/x-mixed-replace stream with a new part for every change.
func (d *Display) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Query().Get("stream") == "" {
		payload := d.grabSnapshot()
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
		return
	}

	fw := newFrameWriter(w)

	w.Header().Set("Content-Type",
		mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{
			"boundary": fw.boundary,
		}))

	c := &client{
		refresh:   make(chan struct{}, 1),
		terminate: make(chan struct{}, 1),
	}

	d.mu.Lock()
	d.clients[c] = struct{}{}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.clients, c)
		d.mu.Unlock()
	}()

	for {
		if err := fw.writePart("image/png", d.grabSnapshot()); err != nil {
			// Errors cause the request to be silently terminated. There's
			// no good way to deliver an error message to the client within
			// an image stream.
			return
		}

		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		select {
		case <-c.refresh:
		case <-c.terminate:
			return
		case <-r.Context().Done():
			return
		}
	}
}
