package village

import (
	"errors"
	"fmt"
)

type Greeter interface {
	Greet() string
	Farewell() string
}

type anything interface{}

type Villager struct {
	Name string `inspect:"name"`
	Age  int
	home string `inspect:""`
}

func NewVillager(name string) *Villager {
	return &Villager{Name: name}
}

func newVillager(name, home string) (*Villager, error) {
	if home == "" {
		return nil, errors.New("homeless")
	}

	return &Villager{Name: name, home: home}, nil
}

func (v *Villager) Greet() string    { return "hello, " + v.Name }
func (v *Villager) Farewell() string { return "bye, " + v.Name }
func (v Villager) String() string    { return fmt.Sprintf("%s (%d)", v.Name, v.Age) }
func (v *Villager) rest()            {}

type Elder struct {
	*Villager
	Title string `inspect:"title"`
}

func NewElder(v *Villager, title string) Elder {
	return Elder{Villager: v, Title: title}
}

func (e Elder) Greet() string { return "greetings, " + e.Name }

type Counter int

func NewCounter(start ...int) Counter {
	var c Counter
	for _, s := range start {
		c += Counter(s)
	}

	return c
}

func (c Counter) Value() int { return int(c) }

func newLabel() string { return "label" }

var _ anything = Counter(0)
