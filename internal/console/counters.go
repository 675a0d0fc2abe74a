package console

import (
	"fmt"
	"strings"
	"sync"
)

// Counters mostra um bloco "Label: valor" por linha. Num terminal o bloco é
// redesenhado a cada Update; fora dele só Finish escreve.
type Counters struct {
	c      *Console
	mu     sync.Mutex
	labels []string
	values []int
	drawn  bool
}

func (c *Console) Counters(labels ...string) *Counters {
	return &Counters{c: c, labels: labels, values: make([]int, len(labels))}
}

func (k *Counters) Start() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.c.isTTY {
		k.draw()
	}
}

// Update recebe um valor por label, na mesma ordem.
func (k *Counters) Update(values ...int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	copy(k.values, values)
	if k.c.isTTY {
		k.draw()
	}
}

func (k *Counters) Finish() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.draw()
	k.c.Newline()
}

func (k *Counters) draw() {
	var b strings.Builder
	if k.drawn {
		// volta ao início do bloco anterior
		fmt.Fprintf(&b, "\033[%dA", len(k.labels))
	}
	for i, label := range k.labels {
		if k.c.isTTY {
			b.WriteString("\r\033[K")
		}
		fmt.Fprintf(&b, "%s: %d\n", label, k.values[i])
	}
	_, _ = fmt.Fprint(k.c.out, b.String())
	k.drawn = k.c.isTTY
}
