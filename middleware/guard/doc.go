// Package guard fornece middlewares HTTP (net/http) que protegem uma única rota:
// lock por slot (limita requests simultâneas) e rate limit por token bucket.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (slot + acquire/timeout, allow/wait) sem net/http
//   - infra: implementações concretas (locks memória/Redis, token bucket, stats)
//   - guard (este pacote): middlewares HTTP + resolução da rota + status/headers
//
// Fluxo:
//
//   1) Resolve o nome da rota da request (RouteFunc)
//   2) Se não for a rota protegida (ou o guard estiver desligado), segue direto
//   3) Rate limit: espera o token (ou responde 429 no modo sem espera)
//   4) Lock: sorteia um slot, bloqueia até adquirir (ou responde 503 no timeout)
//   5) Chama o próximo handler e libera o lock ao terminar
package guard
