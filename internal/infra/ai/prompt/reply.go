package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/virouzrx/petfood-verifai/internal/domain/analyses"
	domai "github.com/virouzrx/petfood-verifai/internal/domain/ai"
)

// Wire shape of a reply. Pointers distinguish a missing field from a zero
// value: the reply is an untrusted boundary and absent or mistyped fields are
// rejected, never defaulted.
type reply struct {
	IsRecommended *bool          `json:"isRecommended"`
	Justification *string        `json:"justification"`
	Concerns      *[]replyConcern `json:"concerns"`
}

type replyConcern struct {
	Type       *string `json:"type"`
	Ingredient *string `json:"ingredient"`
	Reason     *string `json:"reason"`
}

// ParseReply validates the raw reply body against the three-field contract.
// Any deviation (not JSON, missing field, wrong type, extra field, unknown
// severity) is ErrBadReply.
func ParseReply(raw string) (*domai.Result, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()

	var rep reply
	if err := dec.Decode(&rep); err != nil {
		return nil, fmt.Errorf("%w: %v", domai.ErrBadReply, err)
	}
	if rep.IsRecommended == nil {
		return nil, fmt.Errorf("%w: missing isRecommended", domai.ErrBadReply)
	}
	if rep.Justification == nil {
		return nil, fmt.Errorf("%w: missing justification", domai.ErrBadReply)
	}
	if rep.Concerns == nil {
		return nil, fmt.Errorf("%w: missing concerns", domai.ErrBadReply)
	}

	out := &domai.Result{
		IsRecommended: *rep.IsRecommended,
		Justification: *rep.Justification,
		Concerns:      make([]analyses.IngredientConcern, 0, len(*rep.Concerns)),
	}
	for i, c := range *rep.Concerns {
		if c.Type == nil || c.Ingredient == nil || c.Reason == nil {
			return nil, fmt.Errorf("%w: concern %d is incomplete", domai.ErrBadReply, i)
		}
		severity := analyses.ConcernType(*c.Type)
		if severity != analyses.ConcernQuestionable && severity != analyses.ConcernUnacceptable {
			return nil, fmt.Errorf("%w: unknown concern type %q", domai.ErrBadReply, *c.Type)
		}
		out.Concerns = append(out.Concerns, analyses.IngredientConcern{
			Type:       severity,
			Ingredient: *c.Ingredient,
			Reason:     *c.Reason,
		})
	}
	return out, nil
}
