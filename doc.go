// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sevenseg is a container for the seven-segment display driver
// stack: the segment7 character encoder, the bus transports, the hd44780
// line driver and the host-facing sevenseg driver, plus the termseg and
// segview preview sinks.
package sevenseg
