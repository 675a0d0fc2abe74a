package cleanup

import (
	"regexp"

	"cms-maintenance/internal/content"
)

// LocaleMarker é o prefixo fixo das propriedades candidatas à remoção
// ("i18n:<locale>"). Não acompanha o namespace configurado; veja Locales.
const LocaleMarker = "i18n:"

// Whitelist lista os campos de sistema localizados que nunca são removidos.
var Whitelist = []string{"state", "created", "creator", "changed", "changer"}

func localePattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `:([a-zA-Z_]+)-`)
}

// Locales extrai os locales de um nó a partir dos nomes
// "<prefix>:<locale>-...", sem repetição e na ordem em que aparecem.
//
// A detecção usa o prefixo configurado (system_localized), enquanto a remoção
// usa LocaleMarker. Com prefixos diferentes de "sys"/"i18n" as duas regras
// podem divergir.
func Locales(node content.Node, prefix string) []string {
	return localesFrom(node.Properties(), localePattern(prefix))
}

func localesFrom(props []content.Property, pattern *regexp.Regexp) []string {
	var locales []string
	seen := make(map[string]struct{})
	for _, p := range props {
		m := pattern.FindStringSubmatch(p.Name)
		if m == nil {
			continue
		}
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		locales = append(locales, m[1])
	}
	return locales
}

// QualifiedWhitelist monta "<prefix>:<locale>-<campo>" para cada campo da
// Whitelist.
func QualifiedWhitelist(prefix, locale string) []string {
	out := make([]string, len(Whitelist))
	for i, field := range Whitelist {
		out[i] = prefix + ":" + locale + "-" + field
	}
	return out
}
