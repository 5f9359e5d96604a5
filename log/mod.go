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

	"github.com/rs/zerolog"
)

var (
	output = &multiWriter{
		writers: map[string]io.Writer{
			LoggerDefault: os.Stderr,
		},
	}
	logger = zerolog.New(output).With().Timestamp().Logger()

	node     zerolog.Logger
	genesis  zerolog.Logger
	gas      zerolog.Logger
	payment  zerolog.Logger
	auth     zerolog.Logger
	listings zerolog.Logger
	runtime  zerolog.Logger
	metrics  zerolog.Logger
)

const (
	LoggerDefault = "default"

	KeyModule = "mod"
	KeyEvent  = "event"

	ModuleNode     = "node"
	ModuleGenesis  = "genesis"
	ModuleGas      = "gas"
	ModulePayment  = "payment"
	ModuleAuth     = "auth"
	ModuleListings = "listings"
	ModuleRuntime  = "runtime"
	ModuleMetrics  = "metrics"
)

func init() {
	setupChildLoggers()
}

func setupChildLoggers() {
	node = logger.With().Str(KeyModule, ModuleNode).Logger()
	genesis = logger.With().Str(KeyModule, ModuleGenesis).Logger()
	gas = logger.With().Str(KeyModule, ModuleGas).Logger()
	payment = logger.With().Str(KeyModule, ModulePayment).Logger()
	auth = logger.With().Str(KeyModule, ModuleAuth).Logger()
	listings = logger.With().Str(KeyModule, ModuleListings).Logger()
	runtime = logger.With().Str(KeyModule, ModuleRuntime).Logger()
	metrics = logger.With().Str(KeyModule, ModuleMetrics).Logger()
}

// SetLevel sets the level of every module logger. Unknown levels are ignored.
func SetLevel(level string) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return
	}

	node = node.Level(l)
	genesis = genesis.Level(l)
	gas = gas.Level(l)
	payment = payment.Level(l)
	auth = auth.Level(l)
	listings = listings.Level(l)
	runtime = runtime.Level(l)
	metrics = metrics.Level(l)
}

// SetWriter registers writer under key. Every log line is written to all registered writers.
func SetWriter(key string, writer io.Writer) {
	output.Set(key, writer)
}

// ClearWriter removes the writer registered under key.
func ClearWriter(key string) {
	output.Clear(key)
}

func Node() zerolog.Logger {
	return node
}

func Genesis(event string) zerolog.Logger {
	return genesis.With().Str(KeyEvent, event).Logger()
}

func Gas(event string) zerolog.Logger {
	return gas.With().Str(KeyEvent, event).Logger()
}

func Payment(event string) zerolog.Logger {
	return payment.With().Str(KeyEvent, event).Logger()
}

func Auth(event string) zerolog.Logger {
	return auth.With().Str(KeyEvent, event).Logger()
}

func Listings(event string) zerolog.Logger {
	return listings.With().Str(KeyEvent, event).Logger()
}

func Runtime(event string) zerolog.Logger {
	return runtime.With().Str(KeyEvent, event).Logger()
}

func Metrics() zerolog.Logger {
	return metrics
}
