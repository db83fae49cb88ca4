package state

type Lifecycle int

const (
	Alive Lifecycle = iota
	Wilted
)

var lifecycleNames = map[Lifecycle]string{
	Alive:  "alive",
	Wilted: "wilted",
}

func (l Lifecycle) String() string {
	name, found := lifecycleNames[l]
	if !found {
		return "unknown"
	}
	return name
}
