// utilitário pequeno para formatação de valores numéricos em headers.
// Padroniza a formatação do float (strconv.FormatFloat) sem notação científica
// para valores comuns.

package guard

import (
	"strconv"
	"time"
)

func formatInt(v int) string { return strconv.Itoa(v) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Retry-After em segundos inteiros, nunca menor que 1.
func formatRetryAfter(d time.Duration) string {
	s := int(d.Seconds())
	if s < 1 {
		s = 1
	}
	return formatInt(s)
}
