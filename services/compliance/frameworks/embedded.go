// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
This file bridges the build system and the runtime logic. It uses the Go
embed package to bake framework_catalogs.yaml directly into the compiled
binary, so the rule and control catalogs are immutable at runtime and travel
with the executable.
*/

package frameworks

import (
	_ "embed"
)

// catalogYAML holds the raw byte content of framework_catalogs.yaml,
// populated at compile time via the embed directive. Pass these bytes to
// yaml.Unmarshal; do not mutate.
//
//go:embed framework_catalogs.yaml
var catalogYAML []byte
