package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
)

const (
	sectionFocus   = "focus"
	sectionBloc    = "bloc"
	sectionMembers = "members"
)

var (
	norway = domain.Country{Code: "NO", Name: "Norway"}

	europeanUnion = []domain.Country{
		{Code: "AT", Name: "Austria"},
		{Code: "BE", Name: "Belgium"},
		{Code: "BG", Name: "Bulgaria"},
		{Code: "HR", Name: "Croatia"},
		{Code: "CY", Name: "Cyprus"},
		{Code: "CZ", Name: "Czechia"},
		{Code: "DK", Name: "Denmark"},
		{Code: "EE", Name: "Estonia"},
		{Code: "FI", Name: "Finland"},
		{Code: "FR", Name: "France"},
		{Code: "DE", Name: "Germany"},
		{Code: "GR", Name: "Greece"},
		{Code: "HU", Name: "Hungary"},
		{Code: "IE", Name: "Ireland"},
		{Code: "IT", Name: "Italy"},
		{Code: "LV", Name: "Latvia"},
		{Code: "LT", Name: "Lithuania"},
		{Code: "LU", Name: "Luxembourg"},
		{Code: "MT", Name: "Malta"},
		{Code: "NL", Name: "Netherlands"},
		{Code: "PL", Name: "Poland"},
		{Code: "PT", Name: "Portugal"},
		{Code: "RO", Name: "Romania"},
		{Code: "SK", Name: "Slovakia"},
		{Code: "SI", Name: "Slovenia"},
		{Code: "ES", Name: "Spain"},
		{Code: "SE", Name: "Sweden"},
	}
)

// DefaultCoverage is Norway as the focus country and the 27 EU member states
// as the bloc.
func DefaultCoverage() *domain.Coverage {
	c, err := domain.NewCoverage(norway, domain.Bloc{
		Key:     "EU",
		Name:    "European Union",
		Members: europeanUnion,
	})
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCoverage reads an INI coverage profile:
//
//	[focus]
//	code = NO
//	name = Norway
//
//	[bloc]
//	key  = EU
//	name = European Union
//
//	[members]
//	AT = Austria
func LoadCoverage(path string) (*domain.Coverage, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load coverage profile %s: %w", path, err)
	}
	return parseCoverage(cfg)
}

func parseCoverage(cfg *ini.File) (*domain.Coverage, error) {
	focus, err := cfg.GetSection(sectionFocus)
	if err != nil {
		return nil, fmt.Errorf("coverage profile: section [%s] not found", sectionFocus)
	}
	bloc, err := cfg.GetSection(sectionBloc)
	if err != nil {
		return nil, fmt.Errorf("coverage profile: section [%s] not found", sectionBloc)
	}

	var members []domain.Country
	if section, err := cfg.GetSection(sectionMembers); err == nil {
		for _, key := range section.Keys() {
			members = append(members, domain.Country{
				Code: strings.TrimSpace(key.Name()),
				Name: strings.TrimSpace(key.String()),
			})
		}
	}

	coverage, err := domain.NewCoverage(
		domain.Country{
			Code: focus.Key("code").String(),
			Name: strings.TrimSpace(focus.Key("name").String()),
		},
		domain.Bloc{
			Key:     bloc.Key("key").String(),
			Name:    strings.TrimSpace(bloc.Key("name").String()),
			Members: members,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("coverage profile: %w", err)
	}
	return coverage, nil
}

// Coverage returns the profile named by BlocFile, or DefaultCoverage.
func (s *Settings) Coverage() (*domain.Coverage, error) {
	if strings.TrimSpace(s.BlocFile) == "" {
		return DefaultCoverage(), nil
	}
	return LoadCoverage(s.BlocFile)
}
