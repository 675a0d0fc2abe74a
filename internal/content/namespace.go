package content

import "fmt"

// Papéis de namespace usados nos nomes das propriedades ("<prefixo>:...").
const (
	RoleSystem           = "system"
	RoleSystemLocalized  = "system_localized"
	RoleContentLocalized = "content_localized"
)

// NamespaceRegistry resolve o prefixo de cada papel.
type NamespaceRegistry struct {
	prefixes map[string]string
}

func NewNamespaceRegistry(prefixes map[string]string) *NamespaceRegistry {
	r := DefaultNamespaceRegistry()
	for role, prefix := range prefixes {
		if prefix != "" {
			r.prefixes[role] = prefix
		}
	}
	return r
}

func DefaultNamespaceRegistry() *NamespaceRegistry {
	return &NamespaceRegistry{prefixes: map[string]string{
		RoleSystem:           "sys",
		RoleSystemLocalized:  "sys",
		RoleContentLocalized: "i18n",
	}}
}

// Prefix retorna o prefixo do papel, ou "" se o papel não existe.
func (r *NamespaceRegistry) Prefix(role string) string {
	return r.prefixes[role]
}

// LocalizedName monta "<prefixo>:<locale>-<name>".
func (r *NamespaceRegistry) LocalizedName(role, locale, name string) string {
	return fmt.Sprintf("%s:%s-%s", r.Prefix(role), locale, name)
}
