// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package frameworks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
)

// TestLoad_KnownFramework verifies that a shipped framework resolves to its
// own catalog with rules and controls populated.
func TestLoad_KnownFramework(t *testing.T) {
	cat, err := Load(datatypes.FrameworkHIPAA)
	require.NoError(t, err)

	assert.Equal(t, datatypes.FrameworkHIPAA, cat.Name)
	assert.Equal(t, "HIPAA", cat.DisplayName)
	assert.NotEmpty(t, cat.Rules)
	assert.NotEmpty(t, cat.Controls)
	assert.Equal(t, 2.0, cat.Multiplier)
}

// TestLoad_UnknownFramework verifies that an unrecognized framework receives
// the generic fallback catalog with the requested name stamped in.
func TestLoad_UnknownFramework(t *testing.T) {
	cat, err := Load(datatypes.Framework("basel_iii"))
	require.NoError(t, err)

	assert.Equal(t, datatypes.Framework("basel_iii"), cat.Name)
	assert.Len(t, cat.Controls, 3, "fallback catalog carries exactly three generic controls")
	assert.NotEmpty(t, cat.Rules)
}

// TestLoad_AllShippedFrameworks verifies every framework in the enumeration
// has a usable catalog.
func TestLoad_AllShippedFrameworks(t *testing.T) {
	for _, fw := range datatypes.AllFrameworks() {
		cat, err := Load(fw)
		require.NoError(t, err, "framework %s", fw)

		assert.Equal(t, fw, cat.Name)
		assert.GreaterOrEqual(t, len(cat.Rules), 4, "framework %s needs enough rules for a quick pass", fw)
		assert.GreaterOrEqual(t, len(cat.Controls), 3, "framework %s needs a control catalog", fw)
		assert.Greater(t, cat.Multiplier, 0.0, "framework %s needs a positive multiplier", fw)
	}
}

// TestTopRules verifies truncation behavior on both sides of the boundary.
func TestTopRules(t *testing.T) {
	cat, err := Load(datatypes.FrameworkGDPR)
	require.NoError(t, err)

	top := cat.TopRules(5)
	assert.Len(t, top, 5)
	assert.Equal(t, cat.Rules[:5], top)

	all := cat.TopRules(1000)
	assert.Equal(t, cat.Rules, all)
}

// TestMultiplier verifies the regulatory-impact weighting table, including
// the 1.0 default for unlisted frameworks.
func TestMultiplier(t *testing.T) {
	assert.Equal(t, 2.0, Multiplier(datatypes.FrameworkHIPAA))
	assert.Equal(t, 2.0, Multiplier(datatypes.FrameworkPCIDSS))
	assert.Equal(t, 1.8, Multiplier(datatypes.FrameworkSOX))
	assert.Equal(t, 1.7, Multiplier(datatypes.FrameworkGDPR))
	assert.Equal(t, 1.0, Multiplier(datatypes.Framework("unknown")))
}
