package prompt

import (
	"encoding/json"
	"fmt"

	"pricelens/internal/dataset"
)

// Payload is the assembled request for the reasoning service.
type Payload struct {
	// System states the assistant's role and grounding rules.
	System string
	// Full carries the labeled data block plus the user question.
	Full string
	// Included is how many records made it into the data block after the
	// optional cap was applied.
	Included int
}

// Build serializes the aggregated records into a JSON data block and wraps it,
// together with the user question, into a system instruction and a full
// prompt. maxRecords > 0 caps the data block to the first N records of the
// deterministic snapshot order; 0 sends everything.
func Build(records []dataset.Record, question string, maxRecords int) (Payload, error) {
	total := len(records)
	included := records
	if maxRecords > 0 && total > maxRecords {
		included = records[:maxRecords]
	}

	data, err := json.Marshal(included)
	if err != nil {
		return Payload{}, fmt.Errorf("marshal records: %w", err)
	}

	var count string
	if len(included) < total {
		count = fmt.Sprintf("The data has %d entries (of %d total; the rest were omitted for size).", len(included), total)
	} else {
		count = fmt.Sprintf("The data has %d entries.", total)
	}

	system := "You are an expert Price Intelligent (PI) assistant. Your task is to analyze the provided " +
		"JSON data containing item names, locations, units, and average prices in RM, and answer " +
		"the user's question based *only* on this data. " + count + " " +
		"Provide specific item names, prices, locations, and units from the data to support your answer. " +
		"Do not invent information. Format the final response clearly, using bold text for key results."

	full := fmt.Sprintf("Data for analysis (JSON Array of Objects):\n```json\n%s\n```\n\nUser Question:\n%s",
		data, question)

	return Payload{System: system, Full: full, Included: len(included)}, nil
}
