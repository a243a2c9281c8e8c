package cmd

import (
	"context"
	"errors"

	"github.com/erikgeiser/promptkit/confirmation"

	"github.com/Tiliavir/standup/internal/model"
	"github.com/Tiliavir/standup/internal/tags"
	"github.com/Tiliavir/standup/internal/tui/tagfield"
)

var errCancelled = errors.New("cancelled")

// confirm asks a yes/no question, defaulting to no.
func confirm(question string) (bool, error) {
	return confirmation.New(question, confirmation.No).RunPrompt()
}

// pickTags opens the tag field seeded with selected. Suggestions come from
// every known entry; when the service is unreachable the cached collection
// is used instead.
func pickTags(ctx context.Context, s *session, selected []string) ([]string, error) {
	if done := s.orch.FetchAll(ctx, model.ListFilter{}); !done.OK() {
		logger.Warn("listing entries for tag suggestions", "error", done.Err)
	}
	index := tags.BuildIndex(s.store().State().Entries)
	picked, err := tagfield.Run(index, selected)
	if errors.Is(err, tagfield.ErrAborted) {
		return nil, errCancelled
	}
	return picked, err
}
