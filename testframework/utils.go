package testframework

import (
	"os"
	"sync"
	"time"
)

var TIMEOUT = setTimeout()

func setTimeout() time.Duration {
	if os.Getenv("SLOW_MACHINE") == "1" {
		return 420 * time.Second
	}
	return 150 * time.Second
}

type IntIdGetter struct {
	sync.Mutex
	nextId int
}

func (i *IntIdGetter) NextId() int {
	i.Lock()
	defer i.Unlock()
	i.nextId++
	return i.nextId
}
