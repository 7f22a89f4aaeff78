package statebus_test

import (
	"context"
	"fmt"

	"github.com/dep2p/go-statebus"
)

func Example() {
	bus := statebus.MustNew()
	defer bus.Destroy()

	bus.Publish("status", "online")

	// 晚到的订阅者立即收到最新值
	sub := bus.SubscribeFunc("status", func(v any) {
		fmt.Println("status:", v)
	})
	bus.Publish("status", "away")
	sub.Unsubscribe()

	bus.Publish("status", "offline")
	v, _ := bus.CurrentValue("status")
	fmt.Println("current:", v)

	// Output:
	// status: online
	// status: away
	// current: offline
}

func ExampleTopic() {
	bus := statebus.MustNew()
	ready := statebus.NewTopic[bool]("ready")

	statebus.Publish(bus, ready, true)
	statebus.Subscribe(bus, ready, func(ok bool) {
		fmt.Println("ready:", ok)
	})

	fmt.Println(ready)

	// Output:
	// ready: true
	// ready[bool]
}

func ExampleStart() {
	rt, err := statebus.Start(context.Background(), statebus.WithPreset("minimal"))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer rt.Close()

	statebus.Publish(rt.Bus(), statebus.NewTopic[int]("peers"), 3)
	fmt.Println(rt.Bus().Keys()[0])

	// Output:
	// peers[int]
}
