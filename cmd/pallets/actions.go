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
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"strconv"

	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/auth"
	"github.com/perlin-network/pallets/avl"
	"github.com/perlin-network/pallets/example"
	"github.com/perlin-network/pallets/gas"
	"github.com/perlin-network/pallets/listings"
	"github.com/perlin-network/pallets/log"
	"github.com/perlin-network/pallets/runtime"
	"github.com/perlin-network/pallets/store"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"github.com/valyala/fastjson"
)

var defaultModules = []string{
	log.ModuleGenesis,
	log.ModuleGas,
	log.ModulePayment,
	log.ModuleAuth,
	log.ModuleListings,
	log.ModuleRuntime,
}

var challengeSeed = []byte("pallets")

// state is a tree opened over the store selected by --db.
type state struct {
	tree *avl.Tree
	kv   store.KV
}

// openState opens the state selected by --db. In-memory state starts from the testing
// genesis unless empty is set.
func openState(c *cli.Context, empty bool) (*state, error) {
	var kv store.KV

	if dir := c.GlobalString("db"); dir != "" {
		db, err := store.NewLevelDB(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open state at %q", dir)
		}

		kv = db
	} else {
		kv = store.NewInmem()
	}

	s := &state{tree: avl.New(kv), kv: kv}

	if c.GlobalString("db") == "" && !empty {
		genesis, err := pallets.ParseGenesis([]byte(pallets.TestingGenesis))
		if err != nil {
			_ = kv.Close()
			return nil, err
		}

		if err := genesis.Assimilate(s.tree); err != nil {
			_ = kv.Close()
			return nil, err
		}
	}

	return s, nil
}

func (s *state) commit() error {
	return errors.Wrap(s.tree.Commit(), "failed to commit state")
}

func (s *state) close() {
	_ = s.kv.Close()
}

func calls() *runtime.Calls {
	calls := runtime.NewCalls()

	if err := example.Register(calls); err != nil {
		panic(err)
	}

	if err := listings.Register(calls); err != nil {
		panic(err)
	}

	return calls
}

func parseGas(text string) (pallets.Gas, error) {
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "bad gas amount %q", text)
	}

	return pallets.Gas(n), nil
}

func parseKeypair(text string) (*auth.Keypair, error) {
	seed, err := hex.DecodeString(text)
	if err != nil {
		return nil, errors.Wrap(err, "device seed must be hex")
	}

	return auth.KeypairFromSeed(seed)
}

func genesisAction(c *cli.Context) error {
	buf := []byte(pallets.TestingGenesis)

	if path := c.Args().First(); path != "" {
		contents, err := ioutil.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "failed to read genesis from %q", path)
		}

		buf = contents
	}

	genesis, err := pallets.ParseGenesis(buf)
	if err != nil {
		return err
	}

	s, err := openState(c, true)
	if err != nil {
		return err
	}
	defer s.close()

	if err := genesis.Assimilate(s.tree); err != nil {
		return err
	}

	if err := s.commit(); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "checksum: %s\n", pallets.Checksum(s.tree))

	for _, entry := range genesis.Balances {
		balance, _ := pallets.ReadAccountBalance(s.tree, entry.Account)
		level, _ := pallets.ReadAccountGas(s.tree, entry.Account)

		fmt.Fprintf(c.App.Writer, "%s balance=%d gas=%d\n", entry.Account, balance, level)
	}

	return nil
}

func gasCheckAction(c *cli.Context) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		return errors.New("expected an account and optionally an amount of gas")
	}

	who, err := pallets.ParseAccountID(c.Args().Get(0))
	if err != nil {
		return err
	}

	var requested *pallets.Gas

	if c.NArg() == 2 {
		g, err := parseGas(c.Args().Get(1))
		if err != nil {
			return err
		}

		requested = &g
	}

	s, err := openState(c, false)
	if err != nil {
		return err
	}
	defer s.close()

	left, ok := gas.NewTank(s.tree).CheckAvailableGas(who, requested)
	if !ok {
		fmt.Fprintf(c.App.Writer, "%s cannot pay\n", who)
		return nil
	}

	fmt.Fprintf(c.App.Writer, "%s %d\n", who, left)

	return nil
}

func gasBurnAction(c *cli.Context) error {
	return adjustGas(c, func(tank *gas.Tank, who pallets.AccountID, amount pallets.Gas) pallets.Gas {
		return tank.BurnGas(who, amount)
	})
}

func gasRefuelAction(c *cli.Context) error {
	return adjustGas(c, func(tank *gas.Tank, who pallets.AccountID, amount pallets.Gas) pallets.Gas {
		return tank.RefuelGas(who, amount)
	})
}

func adjustGas(c *cli.Context, adjust func(tank *gas.Tank, who pallets.AccountID, amount pallets.Gas) pallets.Gas) error {
	if c.NArg() != 2 {
		return errors.New("expected an account and an amount of gas")
	}

	who, err := pallets.ParseAccountID(c.Args().Get(0))
	if err != nil {
		return err
	}

	amount, err := parseGas(c.Args().Get(1))
	if err != nil {
		return err
	}

	s, err := openState(c, false)
	if err != nil {
		return err
	}
	defer s.close()

	level := adjust(gas.NewTank(s.tree), who, amount)

	if err := s.commit(); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%s %d\n", who, level)

	return nil
}

func deviceRegisterAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("expected a device seed and an account")
	}

	k, err := parseKeypair(c.Args().Get(0))
	if err != nil {
		return err
	}

	who, err := pallets.ParseAccountID(c.Args().Get(1))
	if err != nil {
		return err
	}

	s, err := openState(c, false)
	if err != nil {
		return err
	}
	defer s.close()

	challenger := &auth.BlockChallenger{Seed: challengeSeed}
	block := c.GlobalUint64("block")

	id, err := auth.NewRegistry(challenger).Register(s.tree, who, k.Attest(challenger, block), block)
	if err != nil {
		return err
	}

	if err := s.commit(); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%s\n", id)

	return nil
}

func deviceListAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected an account")
	}

	who, err := pallets.ParseAccountID(c.Args().Get(0))
	if err != nil {
		return err
	}

	s, err := openState(c, false)
	if err != nil {
		return err
	}
	defer s.close()

	registry := auth.NewRegistry(&auth.BlockChallenger{Seed: challengeSeed})

	for _, id := range registry.Devices(s.tree, who) {
		fmt.Fprintf(c.App.Writer, "%s\n", id)
	}

	return nil
}

func applyAction(c *cli.Context) error {
	if c.NArg() < 3 {
		return errors.New("expected a device seed, an account and a call")
	}

	args := c.Args()

	k, err := parseKeypair(args.Get(0))
	if err != nil {
		return err
	}

	who, err := pallets.ParseAccountID(args.Get(1))
	if err != nil {
		return err
	}

	registered := calls()

	call, err := registered.Decode(args.Get(2), args[3:])
	if err != nil {
		return err
	}

	s, err := openState(c, false)
	if err != nil {
		return err
	}
	defer s.close()

	challenger := &auth.BlockChallenger{Seed: challengeSeed}
	block := c.GlobalUint64("block")

	exec := runtime.NewExecutive(s.tree, auth.NewRegistry(challenger), runtime.WithCalls(registered))
	exec.SetBlock(block)

	ext, err := runtime.Sign(k, challenger, who, block, call)
	if err != nil {
		return err
	}

	result, err := exec.Apply(ext)
	if err != nil {
		return err
	}

	if err := s.commit(); err != nil {
		return err
	}

	status := "ok"
	if !result.Ok() {
		status = result.Err.Error()
	}

	fmt.Fprintf(c.App.Writer, "%s %s declared=%s actual=%s pays=%t: %s\n",
		result.ID, result.Call, result.Declared, result.Actual, result.PaysFee, status)

	for _, ev := range exec.Events() {
		fmt.Fprintf(c.App.Writer, "event %s %+v\n", ev.Topic, ev.Data)
	}

	return nil
}

func listingsShowAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected an inventory")
	}

	var id listings.InventoryID

	if err := id.UnmarshalText([]byte(c.Args().First())); err != nil {
		return err
	}

	s, err := openState(c, false)
	if err != nil {
		return err
	}
	defer s.close()

	var arena fastjson.Arena

	buf, err := listings.NewMarket(s.tree).MarshalInventory(&arena, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%s\n", buf)

	return nil
}

func callsAction(c *cli.Context) error {
	for _, name := range calls().Names() {
		fmt.Fprintf(c.App.Writer, "%s\n", name)
	}

	return nil
}
