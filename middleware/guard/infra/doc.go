// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - MemoryLockFactory: mutex nomeado em memória (um processo)
//   - RedisLockFactory: mutex nomeado distribuído (SET NX PX + script de release)
//   - Store: token bucket por chave usando golang.org/x/time/rate
//   - Memory/Redis/PrometheusStatsStore: estatísticas das decisões dos guards
package infra
