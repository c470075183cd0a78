// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package frameworks loads the static rule and control catalogs for each
// supported regulatory framework from an embedded YAML file. Catalogs are
// parsed once per process and served from memory afterwards.
package frameworks

import (
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
)

// ControlRisk classifies how risky an uncovered control's category is.
type ControlRisk string

const (
	RiskLow    ControlRisk = "low"
	RiskMedium ControlRisk = "medium"
	RiskHigh   ControlRisk = "high"
)

// Control is one entry in a framework's control catalog.
type Control struct {
	ID          string      `yaml:"id"`
	Category    string      `yaml:"category"`
	Description string      `yaml:"description"`
	Risk        ControlRisk `yaml:"risk"`
}

// Catalog is the full static catalog for one framework: the prompt rules the
// analysis orchestrator feeds the model, the control list the gap analyzer
// maps issues onto, and the regulatory-impact multiplier the priority scorer
// applies.
type Catalog struct {
	Name        datatypes.Framework `yaml:"name"`
	DisplayName string              `yaml:"display_name"`
	Multiplier  float64             `yaml:"multiplier"`
	Rules       []string            `yaml:"rules"`
	Controls    []Control           `yaml:"controls"`
}

// TopRules returns the first n rules of the catalog, or all of them when the
// catalog has fewer. The quick analysis pass prompts with only the top five.
func (c Catalog) TopRules(n int) []string {
	if n >= len(c.Rules) {
		return c.Rules
	}
	return c.Rules[:n]
}

type catalogFile struct {
	Frameworks []Catalog `yaml:"frameworks"`
	Fallback   Catalog   `yaml:"fallback"`
}

var (
	loadOnce sync.Once
	loadErr  error
	byName   map[datatypes.Framework]Catalog
	fallback Catalog
)

func load() {
	var file catalogFile
	if err := yaml.Unmarshal(catalogYAML, &file); err != nil {
		loadErr = fmt.Errorf("failed to unmarshal the embedded framework catalogs: %w", err)
		return
	}
	byName = make(map[datatypes.Framework]Catalog, len(file.Frameworks))
	for _, cat := range file.Frameworks {
		byName[cat.Name] = cat
	}
	fallback = file.Fallback
}

// Load returns the catalog for the given framework. Unrecognized frameworks
// get the generic fallback catalog with the requested name stamped in, so
// callers always receive a usable rule set.
func Load(f datatypes.Framework) (Catalog, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return Catalog{}, loadErr
	}
	if cat, ok := byName[f]; ok {
		return cat, nil
	}
	generic := fallback
	generic.Name = f
	return generic, nil
}

// Multiplier returns the regulatory-impact weighting for the framework.
// Unlisted frameworks weigh 1.0.
func Multiplier(f datatypes.Framework) float64 {
	loadOnce.Do(load)
	if loadErr != nil {
		return 1.0
	}
	if cat, ok := byName[f]; ok && cat.Multiplier > 0 {
		return cat.Multiplier
	}
	return 1.0
}
