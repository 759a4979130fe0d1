package catalog

import (
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
	srvErrors "github.com/david-garcia-garcia/traefik-with-plugins/pkg/errors"
)

// AssertContainsAll checks that every identifier of set is a substring of the snapshot
// text. All missing identifiers are reported, in set order.
func AssertContainsAll(snapshot models.Snapshot, set models.ExpectedSet) error {
	var missing []string
	for _, id := range set.IDs {
		if !snapshot.Contains(string(id)) {
			missing = append(missing, string(id))
		}
	}
	if len(missing) > 0 {
		return srvErrors.NewMissingEntityError(set.View.Name(), missing...)
	}
	return nil
}

// AssertContainsNone fails on the first pattern found in the snapshot text.
func AssertContainsNone(snapshot models.Snapshot, patterns []models.ForbiddenPattern) error {
	for _, p := range patterns {
		if snapshot.Contains(p.Text) {
			return srvErrors.NewForbiddenContentError(snapshot.URL, p.Text, string(p.Category))
		}
	}
	return nil
}
