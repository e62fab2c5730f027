package main

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// Greeter is the demo object exposed by the CLI.
type Greeter struct {
	Greeting string
	nickname string
	calls    int64
}

func newGreeter() *Greeter {
	return &Greeter{Greeting: "Hello"}
}

func (g *Greeter) Greet(name string) string {
	g.calls++
	return g.Greeting + ", " + name
}

func (g *Greeter) Greet_Times(name string, times int32) string {
	g.calls++
	parts := make([]string, 0, max(times, 0))
	for i := int32(0); i < times; i++ {
		parts = append(parts, g.Greeting+", "+name)
	}
	return strings.Join(parts, "; ")
}

// Initial returns the first UTF-16 code unit of name.
func (g *Greeter) Initial(name string) uint16 {
	units := utf16.Encode([]rune(name))
	if len(units) == 0 {
		return 0
	}
	return units[0]
}

func (g *Greeter) Shout(loud bool) string {
	if loud {
		return strings.ToUpper(g.Greeting) + "!"
	}
	return g.Greeting
}

func (g *Greeter) Add(a, b int64) int64 { return a + b }

func (g *Greeter) Calls() int64 { return g.calls }

func (g *Greeter) Letter(c uint16) string {
	return string(utf16.Decode([]uint16{c}))
}

func (g *Greeter) Sum(xs []int32) int64 {
	var total int64
	for _, x := range xs {
		total += int64(x)
	}
	return total
}

// Ids is declared to return an array, so script only ever sees undefined.
func (g *Greeter) Ids() []int32 { return []int32{1, 2, 3} }

func (g *Greeter) SetNickname(name string) { g.nickname = name }

func (g *Greeter) Nickname() *string {
	if g.nickname == "" {
		return nil
	}
	n := g.nickname
	return &n
}

func (g *Greeter) Fail(reason string) error {
	return fmt.Errorf("greeter failed: %s", reason)
}

func (g *Greeter) Panic() { panic("greeter panicked") }
