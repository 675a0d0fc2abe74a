// Package application contém os casos de uso dos guards: aquisição de lock por
// slot com timeout (LockService) e decisão/espera do rate limit (Service).
//
// Ele depende apenas do pacote domain e não conhece net/http.
package application
