package document

// Options acompanha cada evento de persist/hydrate.
type Options struct {
	// Locale "" significa "use o locale do evento".
	Locale              string
	ClearMissingContent bool
	Extra               map[string]any
}

// OptionsConfigurator ajusta as opções padrão; subscribers registram os seus
// no Dispatcher.
type OptionsConfigurator func(*Options)

// ResolveOptions aplica os configurators, em ordem, sobre as opções padrão.
func ResolveOptions(configurators ...OptionsConfigurator) Options {
	opts := Options{Extra: make(map[string]any)}
	for _, configure := range configurators {
		if configure != nil {
			configure(&opts)
		}
	}
	return opts
}
