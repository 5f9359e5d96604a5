// Copyright (c) 2019 Perlin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package log

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/valyala/fastjson"
)

// ConsoleWriter renders log lines for a terminal. Lines logged by a module that was not
// asked for are dropped; with no modules asked for, every line is shown.
type ConsoleWriter struct {
	zerolog.ConsoleWriter

	modules map[string]struct{}
	parsers fastjson.ParserPool
}

func FilterFor(modules ...string) func(w *ConsoleWriter) {
	return func(w *ConsoleWriter) {
		for _, module := range modules {
			if module != "" {
				w.modules[module] = struct{}{}
			}
		}
	}
}

func NoColor() func(w *ConsoleWriter) {
	return func(w *ConsoleWriter) {
		w.ConsoleWriter.NoColor = true
	}
}

func NewConsoleWriter(out io.Writer, options ...func(w *ConsoleWriter)) *ConsoleWriter {
	if out == nil {
		out = os.Stdout
	}

	w := &ConsoleWriter{
		ConsoleWriter: zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"},
		modules:       make(map[string]struct{}),
	}

	for _, opt := range options {
		opt(w)
	}

	return w
}

func (w *ConsoleWriter) Write(p []byte) (int, error) {
	if len(w.modules) > 0 {
		parser := w.parsers.Get()
		defer w.parsers.Put(parser)

		v, err := parser.ParseBytes(p)
		if err != nil {
			return 0, errors.Wrap(err, "cannot decode log line")
		}

		if module := v.GetStringBytes(KeyModule); module != nil {
			if _, shown := w.modules[string(module)]; !shown {
				return len(p), nil
			}
		}
	}

	return w.ConsoleWriter.Write(p)
}
