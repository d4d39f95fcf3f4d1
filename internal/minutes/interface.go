package minutes

import "context"

// Generator renders the prompt template and asks the LLM endpoint for
// structured meeting minutes.
type Generator interface {
	// Load reads the prompt template once. Subsequent calls are no-ops.
	Load() error
	// Generate produces markdown minutes for the merged transcript.
	Generate(ctx context.Context, transcript, date, speakers string) (string, error)
}
