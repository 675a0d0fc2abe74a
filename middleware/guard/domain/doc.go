// Package domain define contratos e tipos de domínio para os guards HTTP
// (lock por rota e rate limit).
//
// Este pacote não depende de net/http nem de implementações concretas.
// Assim as regras ficam testáveis sem Redis, sem relógio real e sem servidor.
package domain
