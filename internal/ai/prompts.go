package ai

import genai "google.golang.org/genai"

const structurePrompt = `You are an expert travel consultant for motorcycle tours. Extract and structure travel package details from the provided text.
The user specifically wants the itinerary to maintain the "day-wise pointers" format seen in the source document.

Focus on extracting:
- Package Name, Destination, Duration, Currency.
- Pricing: every price line as a row with a label (e.g. "Solo Bike Price", "Dual Rider Price", "Single Room Extra") and its value.
- Inclusions & Exclusions.
- Itinerary: For each day, extract the Title, Location, and a list of specific "Activities" or "Pointers" as shown in the document.

Text: `

// ImagePrompt is the fixed template sent to the image model.
func ImagePrompt(req ImageRequest) string {
	p := "A high-end, professional travel photograph of " + req.Location + ". Topic: " + req.Title +
		". Description: " + req.Description +
		". Cinematic lighting, 8k resolution, National Geographic photography style."
	if req.CustomPrompt != "" {
		p += " Additionally, focus on: " + req.CustomPrompt
	}
	return p
}

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func stringList() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

// packageSchema constrains the structuring response to the TravelPackage shape.
func packageSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"packageName": str(""),
			"destination": str(""),
			"duration":    str(""),
			"currency":    str(""),
			"pricing": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"label": str("What the price is for"),
						"value": str("The amount, without currency"),
					},
					Required: []string{"label", "value"},
				},
			},
			"inclusions": stringList(),
			"exclusions": stringList(),
			"itinerary": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"day":         {Type: genai.TypeInteger},
						"title":       str(""),
						"description": str("A summary of the day if available"),
						"location":    str(""),
						"activities": {
							Type:        genai.TypeArray,
							Items:       &genai.Schema{Type: genai.TypeString},
							Description: "The day-wise pointers/bullet points from the document",
						},
					},
					Required: []string{"day", "title", "location", "activities"},
				},
			},
		},
		Required: []string{"packageName", "destination", "itinerary"},
	}
}
