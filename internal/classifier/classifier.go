// Package classifier is the boundary to the text model that proposes tag
// consolidations. The engine only sees raw response text; parsing and
// resolution happen in package suggest.
package classifier

import (
	"context"

	domainerrors "github.com/listenupapp/tagengine/internal/errors"
)

// Classifier sends one chunk of tag names with the instruction prompt and
// returns the model's raw text.
type Classifier interface {
	Classify(ctx context.Context, prompt string, chunk []string) (string, error)
}

// Func adapts a plain function to Classifier.
type Func func(ctx context.Context, prompt string, chunk []string) (string, error)

// Classify calls f.
func (f Func) Classify(ctx context.Context, prompt string, chunk []string) (string, error) {
	return f(ctx, prompt, chunk)
}

// Unavailable is the classifier used when no provider is configured.
// Every call fails with CLASSIFIER_UNAVAILABLE.
type Unavailable struct{}

// Classify always fails.
func (Unavailable) Classify(context.Context, string, []string) (string, error) {
	return "", domainerrors.ClassifierUnavailablef("no classifier provider configured")
}
