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

package main

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/perlin-network/pallets/conf"
	"github.com/perlin-network/pallets/example"
	"github.com/perlin-network/pallets/listings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	funded = "400056ee68a7cc2695222df05ea76875bc27ec6e61e8e62317c336157019c405"
	broke  = "696937c2c8df35dba0169de72990b80761e51dd9e2411fa1fce147f68ade830a"

	deviceSeed = "0101010101010101010101010101010101010101010101010101010101010101"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	defer conf.Reset()

	var out bytes.Buffer

	require.NoError(t, Run(append([]string{"pallets", "--loglevel", "error"}, args...), &out))

	return out.String()
}

func TestGasCommands(t *testing.T) {
	assert.Equal(t, funded+" 5000000\n", run(t, "gas", "check", funded))
	assert.Equal(t, funded+" 4999000\n", run(t, "gas", "check", funded, "1000"))
	assert.Equal(t, broke+" cannot pay\n", run(t, "gas", "check", broke))

	assert.Equal(t, funded+" 4999990\n", run(t, "gas", "burn", funded, "10"))
	assert.Equal(t, broke+" 7\n", run(t, "gas", "refuel", broke, "7"))
}

func TestGasCommandsRejectBadArguments(t *testing.T) {
	defer conf.Reset()

	var out bytes.Buffer

	assert.Error(t, Run([]string{"pallets", "gas", "check"}, &out))
	assert.Error(t, Run([]string{"pallets", "gas", "burn", "nothex", "1"}, &out))
	assert.Error(t, Run([]string{"pallets", "gas", "refuel", funded, "-1"}, &out))
}

func TestCallsCommand(t *testing.T) {
	names := strings.Fields(run(t, "calls"))

	assert.Contains(t, names, example.CallSuccess)
	assert.Contains(t, names, example.CallError)
	assert.Contains(t, names, listings.CallPublishItem)
}

func TestPersistentState(t *testing.T) {
	dir := t.TempDir()

	out := run(t, "--db", dir, "genesis")
	assert.Contains(t, out, "checksum: ")
	assert.Contains(t, out, funded+" balance=10000000000000000000 gas=5000000")

	device := strings.TrimSpace(run(t, "--db", dir, "device", "register", deviceSeed, funded))
	assert.Len(t, device, 64)
	assert.Equal(t, device+"\n", run(t, "--db", dir, "device", "list", funded))

	out = run(t, "--db", dir, "apply", deviceSeed, funded, example.CallSuccess, "7")
	assert.Contains(t, out, example.CallSuccess)
	assert.Contains(t, out, ": ok\n")
	assert.Contains(t, out, "event "+example.Pallet)

	out = run(t, "--db", dir, "apply", deviceSeed, funded, example.CallError)
	assert.Contains(t, out, example.ErrExample.Error())

	fields := strings.Fields(run(t, "--db", dir, "gas", "check", funded))
	require.Len(t, fields, 2)

	level, err := strconv.ParseUint(fields[1], 10, 64)
	require.NoError(t, err)
	assert.Less(t, level, uint64(5000000))

	out = run(t, "--db", dir, "apply", deviceSeed, funded, listings.CallCreateInventory, "3/9")
	assert.Contains(t, out, ": ok\n")

	out = run(t, "--db", dir, "listings", "3/9")
	assert.Contains(t, out, `"id":"3/9"`)
	assert.Contains(t, out, `"owner":"`+funded+`"`)
}

func TestApplyRequiresRegisteredDevice(t *testing.T) {
	defer conf.Reset()

	var out bytes.Buffer

	err := Run([]string{"pallets", "apply", deviceSeed, funded, example.CallSuccess, "1"}, &out)
	assert.Error(t, err)
}
