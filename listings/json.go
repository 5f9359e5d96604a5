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

package listings

import (
	"encoding/hex"
	"sort"
	"strconv"

	"github.com/perlin-network/pallets/log"
	"github.com/valyala/fastjson"
)

func (a Attributes) marshalArena(arena *fastjson.Arena) *fastjson.Value {
	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	o := arena.NewObject()
	for _, key := range keys {
		o.Set(key, arena.NewString(hex.EncodeToString(a[key])))
	}

	return o
}

func (it Item) marshalArena(arena *fastjson.Arena, id ItemID) *fastjson.Value {
	o := arena.NewObject()

	o.Set("id", arena.NewNumberString(id.String()))
	o.Set("owner", log.ArenaHex(arena, [32]byte(it.Owner)))
	o.Set("name", arena.NewString(it.Name))
	o.Set("price", arena.NewNumberString(strconv.FormatUint(uint64(it.Price), 10)))

	if it.Transferable {
		o.Set("transferable", arena.NewTrue())
	} else {
		o.Set("transferable", arena.NewFalse())
	}

	o.Set("attributes", it.Attributes.marshalArena(arena))

	return o
}

// MarshalInventory renders an inventory and every item in it as JSON.
func (m *Market) MarshalInventory(arena *fastjson.Arena, id InventoryID) ([]byte, error) {
	r, err := m.inventory(id)
	if err != nil {
		return nil, err
	}

	o := arena.NewObject()

	o.Set("id", arena.NewString(id.String()))
	o.Set("owner", log.ArenaHex(arena, [32]byte(r.Owner)))

	if r.Archived {
		o.Set("active", arena.NewFalse())
	} else {
		o.Set("active", arena.NewTrue())
	}

	o.Set("attributes", r.Attributes.marshalArena(arena))

	items := arena.NewArray()

	for i, itemID := range m.Items(id) {
		it, err := m.item(id, itemID)
		if err != nil {
			return nil, err
		}

		items.SetArrayItem(i, it.marshalArena(arena, itemID))
	}

	o.Set("items", items)

	return o.MarshalTo(nil), nil
}
