// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package emptrack

import (
	"github.com/maloquacious/semver"
)

var (
	version = semver.Version{
		Major: 1,
		Minor: 2,
		Patch: 0,
		Build: semver.Commit(),
	}
)

// Version returns the build version, recorded as app.version in new databases.
func Version() semver.Version {
	return version
}
