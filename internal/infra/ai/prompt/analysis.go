package prompt

import (
	"fmt"
	"strings"

	"github.com/virouzrx/petfood-verifai/internal/domain/analyses"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a veterinary nutrition expert evaluating a commercial pet food for a specific pet. You must produce one valid JSON object only (no markdown, no commentary, no code fences).

Requirements:
- Output must be a single JSON object with exactly three fields: isRecommended, justification, concerns.
- isRecommended is a boolean. Set it to false if any unacceptable ingredient is present, if an essential nutrient for the species is missing, or if an ingredient conflicts with the pet's stated health notes or allergies. Otherwise set it to true.
- justification is a short string explaining the decision.
- concerns is an array (possibly empty) of objects with exactly these fields: type, ingredient, reason.
- type must be one of the lowercase literals: unacceptable, questionable. Use unacceptable for ingredients that are toxic or harmful to the species, questionable for controversial or low-quality ingredients.

Schema (example with empty values):
{
  "isRecommended": true,
  "justification": "<string>",
  "concerns": [
    {
      "type": "<unacceptable|questionable>",
      "ingredient": "<string>",
      "reason": "<string>"
    }
  ]
}`
}

// GetUserPrompt builds the deterministic analysis request around the pet
// profile and the ingredient text that was actually acquired.
func GetUserPrompt(ingredientsText string, pet analyses.PetProfile) string {
	notes := strings.TrimSpace(pet.AdditionalInfo)
	if notes == "" {
		notes = "none provided"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate this food for the following pet.\n")
	fmt.Fprintf(&b, "Species: %s\n", pet.Species)
	fmt.Fprintf(&b, "Breed: %s\n", pet.Breed)
	fmt.Fprintf(&b, "Age: %d years\n", pet.Age)
	fmt.Fprintf(&b, "Health notes: %s\n\n", notes)
	fmt.Fprintf(&b, "Ingredients:\n%s\n\n", ingredientsText)
	b.WriteString(guidelines(pet.Species))
	b.WriteString("\nRespond with the JSON object per schema only.")
	return b.String()
}

// guidelines are the fixed species checklists sent with every request.
func guidelines(species analyses.Species) string {
	switch species {
	case analyses.SpeciesCat:
		return `Guidelines for cats:
- Essential nutrients that must be present or derivable from the ingredients: taurine, animal-derived protein, arachidonic acid, vitamin A (preformed), niacin.
- Unacceptable ingredients for cats include: onion, garlic, chives, leek, grapes, raisins, chocolate, cocoa, caffeine, alcohol, xylitol, macadamia nuts, raw yeast dough, propylene glycol.
- Questionable ingredients include: unspecified meat by-products, artificial colors (e.g. Red 40, Yellow 5), BHA, BHT, ethoxyquin, excessive plant protein substituting for animal protein, added sugars, carrageenan.`
	default:
		return `Guidelines for dogs:
- Essential nutrients that must be present or derivable from the ingredients: complete protein with essential amino acids, linoleic acid, calcium and phosphorus in balance, vitamin E, B vitamins.
- Unacceptable ingredients for dogs include: onion, garlic, chives, leek, grapes, raisins, chocolate, cocoa, caffeine, alcohol, xylitol, macadamia nuts, raw yeast dough, hops.
- Questionable ingredients include: unspecified meat by-products, artificial colors (e.g. Red 40, Yellow 5), BHA, BHT, ethoxyquin, propylene glycol, added sugars or corn syrup, excessive salt.`
	}
}
