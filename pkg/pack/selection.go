package pack

import (
	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/logging"
)

// Chooser picks one option out of a list, e.g. from a terminal prompt.
type Chooser interface {
	Choose(message string, options []string) (string, error)
}

// SelectConfigs resolves sel against the pack's configs. Names that match
// no config are logged and left out. "?" asks chooser; without one the
// first config is taken.
func (p *Pack) SelectConfigs(sel Selection, chooser Chooser) ([]Config, error) {
	logger := logging.GetLogger("pack.selection")

	switch {
	case sel.All, sel.IsZero():
		return append([]Config(nil), p.Configs...), nil
	case sel.Interactive:
		if len(p.Configs) == 0 {
			return nil, nil
		}
		if chooser == nil {
			logger.Debug().Str("config", p.Configs[0].Name).Msg("No prompt available, using first config")
			return []Config{p.Configs[0]}, nil
		}
		name, err := chooser.Choose("Choose config:", p.ConfigNames())
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrPrompt, "config selection failed")
		}
		c, ok := p.Config(name)
		if !ok {
			return nil, errors.Newf(errors.ErrConfigNotFound, "config %q not found", name).
				WithDetail("available", p.ConfigNames())
		}
		return []Config{c}, nil
	}

	var selected []Config
	var notFound []string
	seen := make(map[string]bool)
	for _, name := range sel.Names {
		if seen[name] {
			continue
		}
		seen[name] = true
		c, ok := p.Config(name)
		if !ok {
			notFound = append(notFound, name)
			continue
		}
		selected = append(selected, c)
		logger.Trace().Str("config", name).Msg("Selected config")
	}
	if len(notFound) > 0 {
		logger.Warn().
			Strs("notFound", notFound).
			Strs("available", p.ConfigNames()).
			Msg("Config(s) not found, skipping")
	}
	logger.Info().
		Int("selected", len(selected)).
		Int("total", len(p.Configs)).
		Msg("Selected configs")
	return selected, nil
}
