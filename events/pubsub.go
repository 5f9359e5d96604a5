package events

import (
	"reflect"
	"sync"
	"sync/atomic"
)

var globalHub = NewHub()

// Global returns the process-wide hub that pallets publish to unless given their own.
func Global() *Hub {
	return globalHub
}

func Publish(topic interface{}, data interface{}) {
	globalHub.Publish(topic, data)
}

func Subscribe(topic interface{}, cb interface{}) {
	globalHub.Subscribe(topic, cb)
}

type Subscriber func(interface{})

// Hub routes published values to the callbacks subscribed to the pair of the topic and
// the value's type. A callback returning false is unsubscribed.
type Hub struct {
	sync.Mutex
	channels map[reflect.Type]*Channel
}

type Channel struct {
	topics map[interface{}]*SubscribeInfo
}

type SubscribeInfo struct {
	subscribers      sync.Map // uint64 -> Subscriber
	prevSubscriberID uint64
	count            int64
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[reflect.Type]*Channel),
	}
}

func (h *Hub) getEndpoint(ty reflect.Type, topic interface{}) *SubscribeInfo {
	h.Lock()
	defer h.Unlock()

	ch, ok := h.channels[ty]
	if !ok {
		ch = newChannel()
		h.channels[ty] = ch
	}

	ep, ok := ch.topics[topic]
	if !ok {
		ep = newSubscribeInfo()
		ch.topics[topic] = ep
	}

	return ep
}

func (h *Hub) Publish(topic interface{}, data interface{}) {
	ep := h.getEndpoint(reflect.TypeOf(data), topic)
	ep.publish(data)
}

// Subscribers returns how many callbacks are subscribed to values of the given type on topic.
func (h *Hub) Subscribers(topic interface{}, data interface{}) int {
	ep := h.getEndpoint(reflect.TypeOf(data), topic)
	return int(atomic.LoadInt64(&ep.count))
}

// Subscribe registers cb, a func(T) bool, for values of type T published on topic. Calls to
// a single callback never overlap.
func (h *Hub) Subscribe(topic interface{}, cb interface{}) {
	cbVal := reflect.ValueOf(cb)

	if cbVal.Kind() != reflect.Func {
		panic("expected func for callback")
	}

	if cbVal.Type().NumIn() != 1 {
		panic("expected exactly one argument for callback")
	}

	if cbVal.Type().NumOut() != 1 || cbVal.Type().Out(0).Kind() != reflect.Bool {
		panic("expected exactly one boolean value for callback return")
	}

	h.subscribe(cbVal.Type().In(0), topic, func(msg interface{}) bool {
		return cbVal.Call([]reflect.Value{reflect.ValueOf(msg)})[0].Bool()
	})
}

// On is the type-checked form of Subscribe.
func On[T any](h *Hub, topic interface{}, cb func(T) bool) {
	h.subscribe(reflect.TypeOf((*T)(nil)).Elem(), topic, func(msg interface{}) bool {
		return cb(msg.(T))
	})
}

func (h *Hub) subscribe(ty reflect.Type, topic interface{}, cb func(interface{}) bool) {
	ep := h.getEndpoint(ty, topic)
	id := atomic.AddUint64(&ep.prevSubscriberID, 1)
	mutex := &sync.Mutex{}
	runnable := true

	atomic.AddInt64(&ep.count, 1)

	ep.subscribers.Store(id, Subscriber(func(msg interface{}) {
		mutex.Lock()
		defer mutex.Unlock()

		if !runnable {
			return
		}

		if !cb(msg) {
			ep.subscribers.Delete(id)
			atomic.AddInt64(&ep.count, -1)
			runnable = false
		}
	}))
}

func newSubscribeInfo() *SubscribeInfo {
	return &SubscribeInfo{}
}

func newChannel() *Channel {
	return &Channel{
		topics: make(map[interface{}]*SubscribeInfo),
	}
}

func (s *SubscribeInfo) publish(msg interface{}) {
	s.subscribers.Range(func(_ interface{}, _sub interface{}) bool {
		sub := _sub.(Subscriber)
		sub(msg)
		return true
	})
}
