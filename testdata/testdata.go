// Package testdata embeds a small labeled pair dataset. Every pair scores
// the same under any lambda: five same-pose pairs at 70-90 and five
// different-pose pairs at 30-60, so 61 is the first separating threshold.
package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/ayusman/samadhi/internal/evaluate"
)

//go:embed pairs.json
var pairsJSON []byte

// BestThreshold is the first threshold reaching accuracy 1 on Pairs.
const BestThreshold = 61

// PairsJSON returns the raw dataset, a JSON array of labeled pairs.
func PairsJSON() []byte {
	return append([]byte(nil), pairsJSON...)
}

// Pairs decodes the dataset.
func Pairs() ([]evaluate.LabeledPair, error) {
	var pairs []evaluate.LabeledPair
	if err := json.Unmarshal(pairsJSON, &pairs); err != nil {
		return nil, fmt.Errorf("decode pairs: %w", err)
	}
	return pairs, nil
}
